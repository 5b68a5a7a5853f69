package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
)

type CalendarRepository interface {
	FindByDoctorID(ctx context.Context, doctorID string) (*models.DoctorCalendar, error)
	// Upsert stores the whole calendar keyed by doctor id.
	Upsert(ctx context.Context, calendar *models.DoctorCalendar) error
}

type CalendarUsecase interface {
	GetCalendar(ctx context.Context, principal *models.Principal) (*models.DoctorCalendar, error)
	SetDefaultWorkingHours(ctx context.Context, principal *models.Principal, request *requests.SetWorkingHours) (*models.DoctorCalendar, error)
	UpdateDateSchedule(ctx context.Context, principal *models.Principal, date string, request *requests.UpdateDateSchedule) (*models.DoctorCalendar, error)
	BlockTimeSlot(ctx context.Context, principal *models.Principal, request *requests.BlockTimeSlot) (*responses.BlockedSlot, error)
	UnblockTimeSlot(ctx context.Context, principal *models.Principal, date, slotID string) error
	GetAvailableSlots(ctx context.Context, doctorID, date string) (*responses.AvailableSlots, error)
}
