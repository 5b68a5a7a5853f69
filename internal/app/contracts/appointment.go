package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"time"
)

// AppointmentQuery selects appointments. Zero values are ignored.
type AppointmentQuery struct {
	ParticipantID string
	PatientID     string
	DoctorID      string
	Statuses      []models.AppointmentStatus
	From          time.Time
	To            time.Time
	SortDesc      bool
	Skip          int
	Limit         int
}

// AppointmentStatusWrite is applied only while the stored status still equals the expected one.
type AppointmentStatusWrite struct {
	To                 models.AppointmentStatus
	CancellationReason string
	CancelledBy        models.CancelledBy
	Change             models.StatusChange
	UpdatedAt          time.Time
}

type AppointmentRescheduleWrite struct {
	DateTime        time.Time
	RescheduledFrom time.Time
	Changes         []models.StatusChange
	UpdatedAt       time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) (string, error)
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindAll(ctx context.Context, query AppointmentQuery) ([]models.Appointment, error)
	Count(ctx context.Context, query AppointmentQuery) (int, error)
	// FindOverlapping returns the first active appointment of the doctor intersecting [start, end), skipping excludeID.
	FindOverlapping(ctx context.Context, doctorID string, start, end time.Time, excludeID string) (*models.Appointment, error)
	CompareAndSwapStatus(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write AppointmentStatusWrite) (bool, error)
	CompareAndSwapReschedule(ctx context.Context, appointmentID string, expected models.AppointmentStatus, write AppointmentRescheduleWrite) (bool, error)
	SetRating(ctx context.Context, appointmentID string, rating models.Rating, updatedAt time.Time) (bool, error)
}

type AppointmentUsecase interface {
	Create(ctx context.Context, principal *models.Principal, request *requests.CreateAppointment) (*models.Appointment, error)
	FindAll(ctx context.Context, principal *models.Principal, filter *requests.AppointmentFilter) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.UpdateAppointmentStatus) (*responses.AppointmentStatusUpdate, error)
	RequestReschedule(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.RescheduleAppointment) (*models.Appointment, error)
	AddRating(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.RateAppointment) (*models.Appointment, error)
	Schedule(ctx context.Context, principal *models.Principal, query *requests.AppointmentScheduleQuery) ([]models.Appointment, error)
	Stats(ctx context.Context, principal *models.Principal) (*responses.AppointmentStats, error)
	History(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.AppointmentHistory, error)
}
