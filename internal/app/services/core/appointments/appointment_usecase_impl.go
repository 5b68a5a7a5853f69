package appointments

import (
	"context"
	"errors"
	"fmt"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/app/services/shared/metrics"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

const (
	doctorLockTTL       = 15 * time.Second
	defaultScheduleDays = 7
)

type appointmentUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	RefundProcessor       contracts.RefundProcessor
	LockService           contracts.LockerService
	Dispatcher            contracts.NotificationDispatcher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewAppointmentUsecase(
	appointmentRepository contracts.AppointmentRepository,
	refundProcessor contracts.RefundProcessor,
	lockService contracts.LockerService,
	dispatcher contracts.NotificationDispatcher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	return &appointmentUsecase{
		AppointmentRepository: appointmentRepository,
		RefundProcessor:       refundProcessor,
		LockService:           lockService,
		Dispatcher:            dispatcher,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *appointmentUsecase) location() *time.Location {
	if uc.InternalConfig != nil && uc.InternalConfig.App.Location != nil {
		return uc.InternalConfig.App.Location
	}
	return time.UTC
}

func (uc *appointmentUsecase) Create(ctx context.Context, principal *models.Principal, request *requests.CreateAppointment) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Create called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
	)

	if !principal.IsPatient() {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}

	now := time.Now().UTC()
	appointment, err := models.NewAppointment(principal.ID, request.DoctorID, request.DateTime, request.Duration, request.ReasonForVisit, now)
	if err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if !appointment.DateTime.After(now) {
		return nil, exceptions.ErrAppointmentInPast(nil, appointment.DateTime)
	}
	appointment.StatusHistory = []models.StatusChange{{
		To:   models.AppointmentStatusPendingPayment,
		By:   principal.ID,
		Role: principal.Role,
		At:   now,
	}}

	lockKey := fmt.Sprintf(constvars.RedisKeyDoctorBookingLockFormat, appointment.DoctorID)
	acquired, err := locker.WithLock(ctx, uc.LockService, lockKey, doctorLockTTL, func() error {
		conflict, err := uc.AppointmentRepository.FindOverlapping(ctx, appointment.DoctorID, appointment.DateTime, appointment.EndTime(), "")
		if err != nil {
			return err
		}
		if conflict != nil {
			return exceptions.ErrAppointmentOverlap(nil, appointment.DoctorID, conflict.ID)
		}

		appointmentID, err := uc.AppointmentRepository.Create(ctx, appointment)
		if err != nil {
			return err
		}
		appointment.ID = appointmentID
		return nil
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Create error booking appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrAppointmentBusy(nil, appointment.DoctorID)
	}

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(appointment.Status)).Inc()
	uc.dispatch(models.AppointmentNotificationType(appointment.Status), appointment, "")

	uc.Log.Info("appointmentUsecase.Create succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return appointment, nil
}

func (uc *appointmentUsecase) FindAll(ctx context.Context, principal *models.Principal, filter *requests.AppointmentFilter) ([]models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query := contracts.AppointmentQuery{ParticipantID: principal.ID}
	if principal.IsAdmin() {
		query.ParticipantID = ""
	}
	if filter != nil {
		if filter.Status != "" {
			query.Statuses = []models.AppointmentStatus{models.AppointmentStatus(filter.Status)}
		}
		loc := uc.location()
		if filter.StartDate != "" {
			from, err := utils.ParseDateInLocation(filter.StartDate, loc)
			if err != nil {
				return nil, exceptions.ErrInvalidFormat(err, "startDate")
			}
			query.From = from
		}
		if filter.EndDate != "" {
			to, err := utils.ParseDateInLocation(filter.EndDate, loc)
			if err != nil {
				return nil, exceptions.ErrInvalidFormat(err, "endDate")
			}
			query.To = to.AddDate(0, 0, 1)
		}
	}

	appointments, err := uc.AppointmentRepository.FindAll(ctx, query)
	if err != nil {
		uc.Log.Error("appointmentUsecase.FindAll error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("appointmentUsecase.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	return appointments, nil
}

func (uc *appointmentUsecase) UpdateStatus(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.UpdateAppointmentStatus) (*responses.AppointmentStatusUpdate, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	to := models.AppointmentStatus(request.Status)
	uc.Log.Info("appointmentUsecase.UpdateStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingToStatusKey, string(to)),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(principal, appointment, to); err != nil {
		return nil, err
	}
	from := appointment.Status
	if !CanTransition(from, to) {
		return nil, exceptions.ErrInvalidStatusTransition(nil, string(from), string(to))
	}

	result := &responses.AppointmentStatusUpdate{}
	write := contracts.AppointmentStatusWrite{
		To:        to,
		UpdatedAt: time.Now().UTC(),
		Change: models.StatusChange{
			From:   from,
			To:     to,
			By:     principal.ID,
			Role:   principal.Role,
			Reason: request.Reason,
			At:     time.Now().UTC(),
		},
	}
	if to == models.AppointmentStatusCancelled {
		write.CancellationReason = request.Reason
		write.CancelledBy = cancelledBy(principal)
	}

	swapped, err := uc.AppointmentRepository.CompareAndSwapStatus(ctx, appointment.ID, from, write)
	if err != nil {
		uc.Log.Error("appointmentUsecase.UpdateStatus error writing status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !swapped {
		uc.Log.Warn("appointmentUsecase.UpdateStatus lost status race",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.String(constvars.LoggingFromStatusKey, string(from)),
		)
		return nil, exceptions.ErrAppointmentStatusChanged(nil, appointment.ID, string(from))
	}
	if to == models.AppointmentStatusCancelled {
		result.Refund = uc.refundOnCancel(ctx, appointment, request.Reason)
	}

	updated, err := uc.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	result.Appointment = updated

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(to)).Inc()
	uc.dispatch(models.AppointmentNotificationType(to), updated, request.Reason)

	uc.Log.Info("appointmentUsecase.UpdateStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingFromStatusKey, string(from)),
		zap.String(constvars.LoggingToStatusKey, string(to)),
	)
	return result, nil
}

// refundOnCancel refunds an appointment whose cancellation has been written. A failed refund is
// reported back in the outcome and left in REFUND_FAILED for a retry. A missing or uncaptured
// payment yields nil.
func (uc *appointmentUsecase) refundOnCancel(ctx context.Context, appointment *models.Appointment, reason string) *responses.RefundOutcome {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	payment, err := uc.RefundProcessor.ProcessRefund(ctx, appointment.ID, reason)
	switch {
	case err == nil:
		status := models.PaymentStatusRefunded
		if payment != nil {
			status = payment.Status
		}
		return &responses.RefundOutcome{Status: string(status)}
	case exceptions.HasStatusCode(err, constvars.StatusNotFound), exceptions.HasStatusCode(err, constvars.StatusBadRequest):
		uc.Log.Info("appointmentUsecase.refundOnCancel no refundable payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		return nil
	default:
		uc.Log.Error("appointmentUsecase.refundOnCancel refund failed after cancellation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		return &responses.RefundOutcome{
			Status: string(models.PaymentStatusRefundFailed),
			Error:  refundErrorMessage(err),
		}
	}
}

func refundErrorMessage(err error) string {
	var providerErr *contracts.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Error()
	}
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		return customErr.ClientMessage
	}
	return err.Error()
}

func (uc *appointmentUsecase) RequestReschedule(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.RescheduleAppointment) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.RequestReschedule called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireOwningPatient(principal, appointment); err != nil {
		return nil, err
	}

	from := appointment.Status
	if from != models.AppointmentStatusPending && from != models.AppointmentStatusConfirmed {
		return nil, exceptions.ErrInvalidStatusTransition(nil, string(from), string(models.AppointmentStatusRescheduled))
	}
	now := time.Now().UTC()
	newDateTime := request.NewDateTime.UTC()
	if !newDateTime.After(now) {
		return nil, exceptions.ErrAppointmentInPast(nil, newDateTime)
	}
	newEnd := newDateTime.Add(time.Duration(appointment.Duration) * time.Minute)

	lockKey := fmt.Sprintf(constvars.RedisKeyDoctorBookingLockFormat, appointment.DoctorID)
	acquired, err := locker.WithLock(ctx, uc.LockService, lockKey, doctorLockTTL, func() error {
		conflict, err := uc.AppointmentRepository.FindOverlapping(ctx, appointment.DoctorID, newDateTime, newEnd, appointment.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return exceptions.ErrAppointmentOverlap(nil, appointment.DoctorID, conflict.ID)
		}

		swapped, err := uc.AppointmentRepository.CompareAndSwapReschedule(ctx, appointment.ID, from, contracts.AppointmentRescheduleWrite{
			DateTime:        newDateTime,
			RescheduledFrom: appointment.DateTime,
			UpdatedAt:       now,
			Changes: []models.StatusChange{
				{From: from, To: models.AppointmentStatusRescheduled, By: principal.ID, Role: principal.Role, Reason: request.Reason, At: now},
				{From: models.AppointmentStatusRescheduled, To: models.AppointmentStatusPending, By: principal.ID, Role: principal.Role, At: now},
			},
		})
		if err != nil {
			return err
		}
		if !swapped {
			return exceptions.ErrAppointmentStatusChanged(nil, appointment.ID, string(from))
		}
		return nil
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.RequestReschedule error rescheduling",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrAppointmentBusy(nil, appointment.DoctorID)
	}

	updated, err := uc.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(models.AppointmentStatusRescheduled)).Inc()
	uc.dispatch(models.NotificationAppointmentRescheduled, updated, request.Reason)

	uc.Log.Info("appointmentUsecase.RequestReschedule succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return updated, nil
}

func (uc *appointmentUsecase) AddRating(ctx context.Context, principal *models.Principal, appointmentID string, request *requests.RateAppointment) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.AddRating called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	appointment, err := uc.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireOwningPatient(principal, appointment); err != nil {
		return nil, err
	}
	if appointment.Status != models.AppointmentStatusCompleted {
		return nil, exceptions.ErrAppointmentNotCompleted(nil, appointment.ID, string(appointment.Status))
	}

	now := time.Now().UTC()
	rating := models.Rating{
		Score:       request.Score,
		Feedback:    request.Feedback,
		IsAnonymous: request.IsAnonymous,
		RatedAt:     now,
	}
	updated, err := uc.AppointmentRepository.SetRating(ctx, appointment.ID, rating, now)
	if err != nil {
		uc.Log.Error("appointmentUsecase.AddRating error writing rating",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !updated {
		return nil, exceptions.ErrAppointmentNotCompleted(nil, appointment.ID, string(appointment.Status))
	}

	uc.Log.Info("appointmentUsecase.AddRating succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
	)
	return uc.findAppointment(ctx, appointment.ID)
}

func (uc *appointmentUsecase) Schedule(ctx context.Context, principal *models.Principal, query *requests.AppointmentScheduleQuery) ([]models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Schedule called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	loc := uc.location()
	from, _ := utils.DayBounds(time.Now(), loc)
	if query != nil && query.From != "" {
		parsed, err := utils.ParseDateInLocation(query.From, loc)
		if err != nil {
			return nil, exceptions.ErrInvalidFormat(err, "from")
		}
		from = parsed
	}
	to := from.AddDate(0, 0, defaultScheduleDays)
	if query != nil && query.To != "" {
		parsed, err := utils.ParseDateInLocation(query.To, loc)
		if err != nil {
			return nil, exceptions.ErrInvalidFormat(err, "to")
		}
		to = parsed.AddDate(0, 0, 1)
	}

	appointments, err := uc.AppointmentRepository.FindAll(ctx, contracts.AppointmentQuery{
		ParticipantID: principal.ID,
		Statuses:      models.ActiveAppointmentStatuses,
		From:          from,
		To:            to,
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Schedule error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("appointmentUsecase.Schedule succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	return appointments, nil
}

var reportedStatuses = []models.AppointmentStatus{
	models.AppointmentStatusPendingPayment,
	models.AppointmentStatusPending,
	models.AppointmentStatusConfirmed,
	models.AppointmentStatusCompleted,
	models.AppointmentStatusCancelled,
	models.AppointmentStatusNoShow,
}

func (uc *appointmentUsecase) Stats(ctx context.Context, principal *models.Principal) (*responses.AppointmentStats, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Stats called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	stats := &responses.AppointmentStats{ByStatus: make(map[string]int, len(reportedStatuses))}
	for _, status := range reportedStatuses {
		count, err := uc.AppointmentRepository.Count(ctx, contracts.AppointmentQuery{
			ParticipantID: principal.ID,
			Statuses:      []models.AppointmentStatus{status},
		})
		if err != nil {
			uc.Log.Error("appointmentUsecase.Stats error counting appointments",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingStatusKey, string(status)),
				zap.Error(err),
			)
			return nil, err
		}
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}

	upcoming, err := uc.AppointmentRepository.Count(ctx, contracts.AppointmentQuery{
		ParticipantID: principal.ID,
		Statuses:      models.ActiveAppointmentStatuses,
		From:          time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	stats.Upcoming = upcoming

	uc.Log.Info("appointmentUsecase.Stats succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, stats.Total),
	)
	return stats, nil
}

var terminalStatuses = []models.AppointmentStatus{
	models.AppointmentStatusCompleted,
	models.AppointmentStatusCancelled,
	models.AppointmentStatusNoShow,
}

func (uc *appointmentUsecase) History(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.AppointmentHistory, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.History called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query := contracts.AppointmentQuery{
		ParticipantID: principal.ID,
		Statuses:      terminalStatuses,
		SortDesc:      true,
	}
	if pagination != nil && pagination.PageSize > 0 {
		query.Limit = pagination.PageSize
		if pagination.Page > 1 {
			query.Skip = (pagination.Page - 1) * pagination.PageSize
		}
	}

	appointments, err := uc.AppointmentRepository.FindAll(ctx, query)
	if err != nil {
		uc.Log.Error("appointmentUsecase.History error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	total, err := uc.AppointmentRepository.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("appointmentUsecase.History succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	return &responses.AppointmentHistory{Appointments: appointments, Total: total}, nil
}

func (uc *appointmentUsecase) findAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appointment, err := uc.AppointmentRepository.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, appointmentID)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) requireOwningPatient(principal *models.Principal, appointment *models.Appointment) error {
	if !appointment.IsParticipant(principal.ID) {
		return exceptions.ErrAppointmentNotParticipant(nil, principal.ID, appointment.ID)
	}
	if !principal.IsPatient() || appointment.PatientID != principal.ID {
		return exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}
	return nil
}

func (uc *appointmentUsecase) dispatch(eventType models.NotificationType, appointment *models.Appointment, reason string) {
	uc.Dispatcher.Dispatch(models.NotificationEvent{
		Type:        eventType,
		Appointment: appointment,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	})
}
