package calendars

import (
	"context"
	"fmt"
	"sort"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const doctorLockTTL = 15 * time.Second

type calendarUsecase struct {
	CalendarRepository    contracts.CalendarRepository
	AppointmentRepository contracts.AppointmentRepository
	LockService           contracts.LockerService
	Dispatcher            contracts.NotificationDispatcher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewCalendarUsecase(
	calendarRepository contracts.CalendarRepository,
	appointmentRepository contracts.AppointmentRepository,
	lockService contracts.LockerService,
	dispatcher contracts.NotificationDispatcher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.CalendarUsecase {
	return &calendarUsecase{
		CalendarRepository:    calendarRepository,
		AppointmentRepository: appointmentRepository,
		LockService:           lockService,
		Dispatcher:            dispatcher,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *calendarUsecase) location() *time.Location {
	if uc.InternalConfig != nil && uc.InternalConfig.App.Location != nil {
		return uc.InternalConfig.App.Location
	}
	return time.UTC
}

func (uc *calendarUsecase) GetCalendar(ctx context.Context, principal *models.Principal) (*models.DoctorCalendar, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.GetCalendar called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if !principal.IsDoctor() {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}

	calendar, err := uc.CalendarRepository.FindByDoctorID(ctx, principal.ID)
	if err != nil {
		uc.Log.Error("calendarUsecase.GetCalendar error fetching calendar",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if calendar == nil {
		calendar = models.NewDoctorCalendar(principal.ID)
	}

	uc.Log.Info("calendarUsecase.GetCalendar succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID),
	)
	return calendar, nil
}

func (uc *calendarUsecase) SetDefaultWorkingHours(ctx context.Context, principal *models.Principal, request *requests.SetWorkingHours) (*models.DoctorCalendar, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.SetDefaultWorkingHours called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if !principal.IsDoctor() {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}

	seenDays := make(map[int]bool, len(request.WorkingHours))
	workingHours := make([]models.WorkingDay, 0, len(request.WorkingHours))
	for _, day := range request.WorkingHours {
		if seenDays[day.Day] {
			return nil, exceptions.ErrCalendarDuplicateDay(nil, day.Day)
		}
		seenDays[day.Day] = true

		slots, err := normalizeSlots(day.Slots)
		if err != nil {
			return nil, err
		}
		workingHours = append(workingHours, models.WorkingDay{
			Day:       day.Day,
			IsWorking: day.IsWorking,
			Slots:     slots,
		})
	}
	sort.Slice(workingHours, func(i, j int) bool {
		return workingHours[i].Day < workingHours[j].Day
	})

	var calendar *models.DoctorCalendar
	err := uc.withDoctorLock(ctx, principal.ID, func() error {
		loaded, err := uc.loadOrNew(ctx, principal.ID)
		if err != nil {
			return err
		}
		loaded.DefaultWorkingHours = workingHours
		if err := uc.save(ctx, loaded); err != nil {
			return err
		}
		calendar = loaded
		return nil
	})
	if err != nil {
		uc.Log.Error("calendarUsecase.SetDefaultWorkingHours error saving calendar",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.dispatchScheduleUpdated(principal.ID, "")
	uc.Log.Info("calendarUsecase.SetDefaultWorkingHours succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID),
		zap.Int(constvars.LoggingCountKey, len(workingHours)),
	)
	return calendar, nil
}

func (uc *calendarUsecase) UpdateDateSchedule(ctx context.Context, principal *models.Principal, date string, request *requests.UpdateDateSchedule) (*models.DoctorCalendar, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.UpdateDateSchedule called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, date),
	)

	if !principal.IsDoctor() {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}
	if !utils.IsValidDate(date) {
		return nil, exceptions.ErrURLParamValidation(fmt.Errorf("invalid date %q", date), "date")
	}

	slots, err := normalizeSlots(request.Slots)
	if err != nil {
		return nil, err
	}

	var calendar *models.DoctorCalendar
	err = uc.withDoctorLock(ctx, principal.ID, func() error {
		loaded, err := uc.loadOrNew(ctx, principal.ID)
		if err != nil {
			return err
		}
		if previous, ok := loaded.DateEntry(date); ok {
			slots = mergeBlocked(slots, previous.Slots)
		}
		loaded.PutDateEntry(models.DateSchedule{
			Date:          date,
			Slots:         slots,
			IsHoliday:     request.IsHoliday,
			HolidayReason: request.HolidayReason,
		})
		if err := uc.save(ctx, loaded); err != nil {
			return err
		}
		calendar = loaded
		return nil
	})
	if err != nil {
		uc.Log.Error("calendarUsecase.UpdateDateSchedule error saving calendar",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.dispatchScheduleUpdated(principal.ID, date)
	uc.Log.Info("calendarUsecase.UpdateDateSchedule succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID),
		zap.String(constvars.LoggingDateKey, date),
	)
	return calendar, nil
}

func (uc *calendarUsecase) BlockTimeSlot(ctx context.Context, principal *models.Principal, request *requests.BlockTimeSlot) (*responses.BlockedSlot, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.BlockTimeSlot called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, request.Date),
	)

	if !principal.IsDoctor() {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}
	blockRange, err := parseClockRange(request.StartTime, request.EndTime)
	if err != nil {
		return nil, err
	}
	day, err := utils.ParseDateInLocation(request.Date, uc.location())
	if err != nil {
		return nil, exceptions.ErrInvalidFormat(err, "date")
	}
	start := day.Add(time.Duration(blockRange.start) * time.Minute)
	end := day.Add(time.Duration(blockRange.end) * time.Minute)

	var result *responses.BlockedSlot
	err = uc.withDoctorLock(ctx, principal.ID, func() error {
		conflict, err := uc.AppointmentRepository.FindOverlapping(ctx, principal.ID, start, end, "")
		if err != nil {
			return err
		}
		if conflict != nil {
			return exceptions.ErrCalendarBlockConflict(nil, conflict.ID, request.Date, request.StartTime, request.EndTime)
		}

		calendar, err := uc.loadOrNew(ctx, principal.ID)
		if err != nil {
			return err
		}
		entry, ok := calendar.DateEntry(request.Date)
		if !ok {
			seeded := models.DateSchedule{Date: request.Date, Slots: []models.Slot{}}
			if template, working := calendar.WorkingDay(int(day.Weekday())); working && template.IsWorking {
				seeded.Slots = seedSlots(template.Slots)
			}
			calendar.PutDateEntry(seeded)
			entry, _ = calendar.DateEntry(request.Date)
		}

		var slotID string
		if i := indexOfRange(entry.Slots, request.StartTime, request.EndTime); i >= 0 {
			entry.Slots[i].IsBlocked = true
			entry.Slots[i].BlockReason = request.Reason
			slotID = entry.Slots[i].ID
		} else {
			slotID = uuid.NewString()
			entry.Slots = append(entry.Slots, models.Slot{
				ID:          slotID,
				StartTime:   request.StartTime,
				EndTime:     request.EndTime,
				IsBlocked:   true,
				BlockReason: request.Reason,
				BlockOnly:   true,
			})
			sortSlots(entry.Slots)
		}

		if err := uc.save(ctx, calendar); err != nil {
			return err
		}
		result = &responses.BlockedSlot{SlotID: slotID, Date: request.Date}
		return nil
	})
	if err != nil {
		uc.Log.Error("calendarUsecase.BlockTimeSlot error blocking slot",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("calendarUsecase.BlockTimeSlot succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID),
		zap.String(constvars.LoggingSlotIDKey, result.SlotID),
	)
	return result, nil
}

func (uc *calendarUsecase) UnblockTimeSlot(ctx context.Context, principal *models.Principal, date, slotID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.UnblockTimeSlot called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, date),
		zap.String(constvars.LoggingSlotIDKey, slotID),
	)

	if !principal.IsDoctor() {
		return exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}

	err := uc.withDoctorLock(ctx, principal.ID, func() error {
		calendar, err := uc.CalendarRepository.FindByDoctorID(ctx, principal.ID)
		if err != nil {
			return err
		}
		if calendar == nil {
			return exceptions.ErrCalendarNotFound(nil, principal.ID)
		}
		entry, ok := calendar.DateEntry(date)
		if !ok {
			return exceptions.ErrCalendarSlotNotFound(nil, slotID, date)
		}
		i := indexOfID(entry.Slots, slotID)
		if i < 0 {
			return exceptions.ErrCalendarSlotNotFound(nil, slotID, date)
		}
		if !entry.Slots[i].IsBlocked {
			return exceptions.ErrCalendarSlotNotBlocked(nil, slotID, date)
		}

		if entry.Slots[i].BlockOnly {
			entry.Slots = append(entry.Slots[:i], entry.Slots[i+1:]...)
		} else {
			entry.Slots[i].IsBlocked = false
			entry.Slots[i].BlockReason = ""
		}
		return uc.save(ctx, calendar)
	})
	if err != nil {
		uc.Log.Error("calendarUsecase.UnblockTimeSlot error saving calendar",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}

	uc.Log.Info("calendarUsecase.UnblockTimeSlot succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotIDKey, slotID),
	)
	return nil
}

func (uc *calendarUsecase) GetAvailableSlots(ctx context.Context, doctorID, date string) (*responses.AvailableSlots, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarUsecase.GetAvailableSlots called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingDateKey, date),
	)

	loc := uc.location()
	day, err := utils.ParseDateInLocation(date, loc)
	if err != nil {
		return nil, exceptions.ErrURLParamValidation(err, "date")
	}

	calendar, err := uc.CalendarRepository.FindByDoctorID(ctx, doctorID)
	if err != nil {
		uc.Log.Error("calendarUsecase.GetAvailableSlots error fetching calendar",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	result := &responses.AvailableSlots{DoctorID: doctorID, Date: date, Slots: []responses.AvailableSlot{}}
	if calendar == nil {
		return result, nil
	}
	slots, isHoliday := effectiveSlots(calendar, date, int(day.Weekday()))
	result.IsHoliday = isHoliday
	if len(slots) == 0 {
		return result, nil
	}

	dayStart, dayEnd := utils.DayBounds(day, loc)
	booked, err := uc.AppointmentRepository.FindAll(ctx, contracts.AppointmentQuery{
		DoctorID: doctorID,
		Statuses: models.BookedAppointmentStatuses,
		From:     dayStart,
		To:       dayEnd,
	})
	if err != nil {
		uc.Log.Error("calendarUsecase.GetAvailableSlots error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	bookedStarts := make(map[string]bool, len(booked))
	for _, appointment := range booked {
		bookedStarts[utils.FormatClock(appointment.DateTime, loc)] = true
	}

	result.Slots = resolveAvailable(slots, bookedStarts)
	uc.Log.Info("calendarUsecase.GetAvailableSlots succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(result.Slots)),
	)
	return result, nil
}

// withDoctorLock serializes calendar writes with bookings of the same doctor, since a save
// replaces the whole calendar document.
func (uc *calendarUsecase) withDoctorLock(ctx context.Context, doctorID string, fn func() error) error {
	lockKey := fmt.Sprintf(constvars.RedisKeyDoctorBookingLockFormat, doctorID)
	acquired, err := locker.WithLock(ctx, uc.LockService, lockKey, doctorLockTTL, fn)
	if err != nil {
		return err
	}
	if !acquired {
		return exceptions.ErrAppointmentBusy(nil, doctorID)
	}
	return nil
}

func (uc *calendarUsecase) loadOrNew(ctx context.Context, doctorID string) (*models.DoctorCalendar, error) {
	calendar, err := uc.CalendarRepository.FindByDoctorID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if calendar == nil {
		calendar = models.NewDoctorCalendar(doctorID)
	}
	return calendar, nil
}

func (uc *calendarUsecase) save(ctx context.Context, calendar *models.DoctorCalendar) error {
	now := time.Now().UTC()
	if calendar.CreatedAt.IsZero() {
		calendar.CreatedAt = now
	}
	calendar.UpdatedAt = now
	return uc.CalendarRepository.Upsert(ctx, calendar)
}

func (uc *calendarUsecase) dispatchScheduleUpdated(doctorID, date string) {
	reason := "default working hours updated"
	if date != "" {
		reason = "schedule for " + date + " updated"
	}
	uc.Dispatcher.Dispatch(models.NotificationEvent{
		Type:       models.NotificationScheduleUpdated,
		Recipients: []string{doctorID},
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}
