package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"time"
)

type AppointmentRepository struct {
	mu      sync.Mutex
	nextID  int
	records map[string]models.Appointment
	// BeforeCAS runs inside CompareAndSwapStatus before the status check, letting tests simulate a racing writer.
	BeforeCAS func(appointmentID string)
}

func NewAppointmentRepository(seed ...models.Appointment) *AppointmentRepository {
	repo := &AppointmentRepository{records: make(map[string]models.Appointment)}
	for _, appointment := range seed {
		repo.Put(appointment)
	}
	return repo
}

// Put stores appointment as is, assigning an id when missing.
func (r *AppointmentRepository) Put(appointment models.Appointment) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.ID == "" {
		r.nextID++
		appointment.ID = fmt.Sprintf("appt-%d", r.nextID)
	}
	r.records[appointment.ID] = cloneAppointment(appointment)
	return appointment.ID
}

// Get returns a copy of the stored appointment, or nil.
func (r *AppointmentRepository) Get(appointmentID string) *models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.records[appointmentID]
	if !ok {
		return nil
	}
	clone := cloneAppointment(appointment)
	return &clone
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) (string, error) {
	r.mu.Lock()
	r.nextID++
	id := fmt.Sprintf("appt-%d", r.nextID)
	stored := cloneAppointment(*appointment)
	stored.ID = id
	r.records[id] = stored
	r.mu.Unlock()
	return id, nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return r.Get(appointmentID), nil
}

func (r *AppointmentRepository) FindAll(ctx context.Context, query contracts.AppointmentQuery) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selectLocked(query), nil
}

func (r *AppointmentRepository) Count(ctx context.Context, query contracts.AppointmentQuery) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	query.Skip, query.Limit = 0, 0
	return len(r.selectLocked(query)), nil
}

func (r *AppointmentRepository) FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.selectLocked(contracts.AppointmentQuery{DoctorID: doctorID, Statuses: models.ActiveAppointmentStatuses})
	for i := range matches {
		if matches[i].ID != excludeID && matches[i].Overlaps(start, end) {
			return &matches[i], nil
		}
	}
	return nil, nil
}

func (r *AppointmentRepository) CompareAndSwapStatus(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write contracts.AppointmentStatusWrite) (bool, error) {
	if r.BeforeCAS != nil {
		r.BeforeCAS(appointmentID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.records[appointmentID]
	if !ok || appointment.Status != expected {
		return false, nil
	}
	appointment.Status = write.To
	if write.CancellationReason != "" {
		appointment.CancellationReason = write.CancellationReason
	}
	if write.CancelledBy != "" {
		appointment.CancelledBy = write.CancelledBy
	}
	appointment.StatusHistory = append(appointment.StatusHistory, write.Change)
	appointment.UpdatedAt = write.UpdatedAt
	r.records[appointmentID] = appointment
	return true, nil
}

func (r *AppointmentRepository) CompareAndSwapReschedule(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write contracts.AppointmentRescheduleWrite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.records[appointmentID]
	if !ok || appointment.Status != expected {
		return false, nil
	}
	from := write.RescheduledFrom
	appointment.RescheduledFrom = &from
	appointment.DateTime = write.DateTime
	appointment.Status = models.AppointmentStatusPending
	appointment.StatusHistory = append(appointment.StatusHistory, write.Changes...)
	appointment.UpdatedAt = write.UpdatedAt
	r.records[appointmentID] = appointment
	return true, nil
}

func (r *AppointmentRepository) SetRating(ctx context.Context, appointmentID string, rating models.Rating, updatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.records[appointmentID]
	if !ok || appointment.Status != models.AppointmentStatusCompleted {
		return false, nil
	}
	appointment.Rating = &rating
	appointment.UpdatedAt = updatedAt
	r.records[appointmentID] = appointment
	return true, nil
}

func (r *AppointmentRepository) selectLocked(query contracts.AppointmentQuery) []models.Appointment {
	result := make([]models.Appointment, 0)
	for _, appointment := range r.records {
		if query.ParticipantID != "" && !appointment.IsParticipant(query.ParticipantID) {
			continue
		}
		if query.PatientID != "" && appointment.PatientID != query.PatientID {
			continue
		}
		if query.DoctorID != "" && appointment.DoctorID != query.DoctorID {
			continue
		}
		if len(query.Statuses) > 0 && !containsStatus(query.Statuses, appointment.Status) {
			continue
		}
		if !query.From.IsZero() && appointment.DateTime.Before(query.From) {
			continue
		}
		if !query.To.IsZero() && !appointment.DateTime.Before(query.To) {
			continue
		}
		result = append(result, cloneAppointment(appointment))
	}
	sort.Slice(result, func(i, j int) bool {
		if query.SortDesc {
			return result[i].DateTime.After(result[j].DateTime)
		}
		return result[i].DateTime.Before(result[j].DateTime)
	})
	if query.Skip > 0 {
		if query.Skip >= len(result) {
			return []models.Appointment{}
		}
		result = result[query.Skip:]
	}
	if query.Limit > 0 && len(result) > query.Limit {
		result = result[:query.Limit]
	}
	return result
}

func containsStatus(statuses []models.AppointmentStatus, status models.AppointmentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func cloneAppointment(a models.Appointment) models.Appointment {
	if a.StatusHistory != nil {
		a.StatusHistory = append([]models.StatusChange(nil), a.StatusHistory...)
	}
	if a.Rating != nil {
		rating := *a.Rating
		a.Rating = &rating
	}
	if a.RescheduledFrom != nil {
		from := *a.RescheduledFrom
		a.RescheduledFrom = &from
	}
	return a
}
