package models

import (
	"errors"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPendingPayment AppointmentStatus = "pending_payment"
	AppointmentStatusPending        AppointmentStatus = "pending"
	AppointmentStatusConfirmed      AppointmentStatus = "confirmed"
	AppointmentStatusCancelled      AppointmentStatus = "cancelled"
	AppointmentStatusCompleted      AppointmentStatus = "completed"
	AppointmentStatusNoShow         AppointmentStatus = "no_show"
	AppointmentStatusRescheduled    AppointmentStatus = "rescheduled"
)

// ActiveAppointmentStatuses hold a doctor's time and take part in overlap checks.
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPendingPayment,
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

// BookedAppointmentStatuses mark a calendar slot as booked.
var BookedAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPendingPayment, AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusNoShow, AppointmentStatusRescheduled:
		return true
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted || s == AppointmentStatusNoShow
}

func (s AppointmentStatus) IsActive() bool {
	for _, active := range ActiveAppointmentStatuses {
		if s == active {
			return true
		}
	}
	return false
}

type CancelledBy string

const (
	CancelledByPatient CancelledBy = "patient"
	CancelledByDoctor  CancelledBy = "doctor"
)

const (
	DefaultAppointmentDuration = 30
	MinAppointmentDuration     = 15
	MaxAppointmentDuration     = 240
)

var (
	ErrAppointmentPatientRequired = errors.New("appointment patient is required")
	ErrAppointmentDoctorRequired  = errors.New("appointment doctor is required")
	ErrAppointmentSameParticipant = errors.New("appointment patient and doctor must differ")
	ErrAppointmentReasonRequired  = errors.New("appointment reason for visit is required")
	ErrAppointmentTimeRequired    = errors.New("appointment date time is required")
	ErrAppointmentDuration        = errors.New("appointment duration out of range")
)

type Rating struct {
	Score       int       `json:"score" bson:"score"`
	Feedback    string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
	IsAnonymous bool      `json:"isAnonymous" bson:"isAnonymous"`
	RatedAt     time.Time `json:"ratedAt" bson:"ratedAt"`
}

type StatusChange struct {
	From   AppointmentStatus `json:"from" bson:"from"`
	To     AppointmentStatus `json:"to" bson:"to"`
	By     string            `json:"by" bson:"by"`
	Role   string            `json:"role" bson:"role"`
	Reason string            `json:"reason,omitempty" bson:"reason,omitempty"`
	At     time.Time         `json:"at" bson:"at"`
}

type Appointment struct {
	ID                 string            `json:"id" bson:"_id,omitempty"`
	PatientID          string            `json:"patientId" bson:"patientId"`
	DoctorID           string            `json:"doctorId" bson:"doctorId"`
	DateTime           time.Time         `json:"dateTime" bson:"dateTime"`
	Duration           int               `json:"duration" bson:"duration"`
	Status             AppointmentStatus `json:"status" bson:"status"`
	ReasonForVisit     string            `json:"reasonForVisit" bson:"reasonForVisit"`
	CancellationReason string            `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledBy        CancelledBy       `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"`
	RescheduledFrom    *time.Time        `json:"rescheduledFrom,omitempty" bson:"rescheduledFrom,omitempty"`
	Rating             *Rating           `json:"rating,omitempty" bson:"rating,omitempty"`
	StatusHistory      []StatusChange    `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`
	TimeModel          `bson:",inline"`
}

// NewAppointment builds an appointment awaiting payment. A zero duration falls back to the default.
func NewAppointment(patientID, doctorID string, dateTime time.Time, duration int, reasonForVisit string, now time.Time) (*Appointment, error) {
	reasonForVisit = strings.TrimSpace(reasonForVisit)
	switch {
	case patientID == "":
		return nil, ErrAppointmentPatientRequired
	case doctorID == "":
		return nil, ErrAppointmentDoctorRequired
	case patientID == doctorID:
		return nil, ErrAppointmentSameParticipant
	case reasonForVisit == "":
		return nil, ErrAppointmentReasonRequired
	case dateTime.IsZero():
		return nil, ErrAppointmentTimeRequired
	}
	if duration == 0 {
		duration = DefaultAppointmentDuration
	}
	if duration < MinAppointmentDuration || duration > MaxAppointmentDuration {
		return nil, ErrAppointmentDuration
	}

	return &Appointment{
		PatientID:      patientID,
		DoctorID:       doctorID,
		DateTime:       dateTime.UTC(),
		Duration:       duration,
		Status:         AppointmentStatusPendingPayment,
		ReasonForVisit: reasonForVisit,
		TimeModel: TimeModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

func (a *Appointment) EndTime() time.Time {
	return a.DateTime.Add(time.Duration(a.Duration) * time.Minute)
}

// Overlaps reports whether the appointment intersects the half-open window [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.DateTime.Before(end) && a.EndTime().After(start)
}

func (a *Appointment) IsParticipant(userID string) bool {
	return userID != "" && (a.PatientID == userID || a.DoctorID == userID)
}

// Counterpart returns the other participant of the appointment.
func (a *Appointment) Counterpart(userID string) string {
	if a.PatientID == userID {
		return a.DoctorID
	}
	return a.PatientID
}
