package payments

import (
	"context"
	"errors"
	"fmt"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/metrics"
	"telehealth-service/internal/app/services/shared/ratelimiter"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type paymentUsecase struct {
	PaymentRepository     contracts.PaymentRepository
	AppointmentRepository contracts.AppointmentRepository
	PaymentGateway        contracts.PaymentGatewayService
	WebhookVerifier       contracts.WebhookVerifier
	ArchiveStorage        contracts.ArchiveStorage
	RedisRepository       contracts.RedisRepository
	ResourceLimiter       *ratelimiter.ResourceLimiter
	Dispatcher            contracts.NotificationDispatcher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewPaymentUsecase(
	paymentRepository contracts.PaymentRepository,
	appointmentRepository contracts.AppointmentRepository,
	paymentGateway contracts.PaymentGatewayService,
	webhookVerifier contracts.WebhookVerifier,
	archiveStorage contracts.ArchiveStorage,
	redisRepository contracts.RedisRepository,
	resourceLimiter *ratelimiter.ResourceLimiter,
	dispatcher contracts.NotificationDispatcher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	return &paymentUsecase{
		PaymentRepository:     paymentRepository,
		AppointmentRepository: appointmentRepository,
		PaymentGateway:        paymentGateway,
		WebhookVerifier:       webhookVerifier,
		ArchiveStorage:        archiveStorage,
		RedisRepository:       redisRepository,
		ResourceLimiter:       resourceLimiter,
		Dispatcher:            dispatcher,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *paymentUsecase) currency() string {
	if uc.InternalConfig.PaymentGateway.Currency == "" {
		return "USD"
	}
	return uc.InternalConfig.PaymentGateway.Currency
}

func (uc *paymentUsecase) CreateOrder(ctx context.Context, principal *models.Principal, request *requests.CreatePaymentOrder, metadata requests.PaymentMetadata) (*responses.PaymentOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, request.AppointmentID)
	}
	if !appointment.IsParticipant(principal.ID) {
		return nil, exceptions.ErrAppointmentNotParticipant(nil, principal.ID, appointment.ID)
	}
	if !principal.IsPatient() || appointment.PatientID != principal.ID {
		return nil, exceptions.ErrRoleNotAllowed(nil, principal.Role)
	}
	if appointment.Status != models.AppointmentStatusPendingPayment && appointment.Status != models.AppointmentStatusPending {
		return nil, exceptions.ErrPaymentNotAllowed(nil, appointment.ID, string(appointment.Status))
	}
	captured, err := uc.capturedPayment(ctx, appointment.ID, "")
	if err != nil {
		return nil, err
	}
	if captured != nil {
		return nil, exceptions.ErrPaymentAlreadyCaptured(nil, appointment.ID, captured.ID)
	}

	if err := uc.applyOrderLimit(ctx, principal.ID); err != nil {
		return nil, err
	}

	order, err := uc.PaymentGateway.CreateOrder(ctx, appointment.ID, request.Amount, uc.currency())
	if err != nil {
		uc.Log.Error("paymentUsecase.CreateOrder provider rejected order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Error(err),
		)
		return nil, providerError(err, "create order")
	}

	attempts, err := uc.PaymentRepository.CountByAppointmentID(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		Amount:        request.Amount,
		Currency:      uc.currency(),
		Status:        models.PaymentStatusPending,
		PayPalOrderID: order.OrderID,
		ApprovalURL:   order.ApprovalURL,
		Metadata: models.PaymentMetadata{
			IPAddress:    metadata.IPAddress,
			UserAgent:    metadata.UserAgent,
			RequestID:    metadata.RequestID,
			AttemptCount: attempts + 1,
		},
		TimeModel: models.TimeModel{CreatedAt: now, UpdatedAt: now},
	}
	payment.ID, err = uc.PaymentRepository.Create(ctx, payment)
	if err != nil {
		uc.Log.Error("paymentUsecase.CreateOrder error persisting payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderIDKey, order.OrderID),
			zap.Error(err),
		)
		return nil, err
	}

	if appointment.Status == models.AppointmentStatusPendingPayment {
		uc.markAppointmentPending(ctx, principal, appointment)
	}

	utils.LogBusinessEvent(uc.Log, "payment_order_created", requestID,
		zap.String(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingOrderIDKey, order.OrderID),
		zap.Int(constvars.LoggingCountKey, payment.Metadata.AttemptCount),
	)
	return &responses.PaymentOrder{
		PaymentID:   payment.ID,
		OrderID:     order.OrderID,
		ApprovalURL: order.ApprovalURL,
		Status:      payment.Status,
	}, nil
}

func (uc *paymentUsecase) applyOrderLimit(ctx context.Context, patientID string) error {
	cfg := uc.InternalConfig.PaymentGateway
	if uc.ResourceLimiter == nil || cfg.OrderAttemptsPerWindow <= 0 {
		return nil
	}
	result, err := uc.ResourceLimiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:     patientID,
		LimiterGroupName: constvars.RateLimitGroupPaymentOrder,
		WindowDuration:   time.Duration(cfg.OrderAttemptWindowInSeconds) * time.Second,
		MaxQuota:         cfg.OrderAttemptsPerWindow,
	})
	if err != nil {
		return err
	}
	if !result.Allowed {
		return exceptions.ErrTooManyRequests(nil).WithDetails(map[string]int{
			"retryAfterSeconds": int(result.RetryAfter.Seconds()),
		})
	}
	return nil
}

// markAppointmentPending moves a freshly paid-for appointment out of pending_payment. A lost race
// means another order already did it.
func (uc *paymentUsecase) markAppointmentPending(ctx context.Context, principal *models.Principal, appointment *models.Appointment) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	now := time.Now().UTC()

	swapped, err := uc.AppointmentRepository.CompareAndSwapStatus(ctx, appointment.ID, models.AppointmentStatusPendingPayment, contracts.AppointmentStatusWrite{
		To:        models.AppointmentStatusPending,
		UpdatedAt: now,
		Change: models.StatusChange{
			From: models.AppointmentStatusPendingPayment,
			To:   models.AppointmentStatusPending,
			By:   principal.ID,
			Role: principal.Role,
			At:   now,
		},
	})
	if err != nil || !swapped {
		uc.Log.Warn("paymentUsecase.markAppointmentPending appointment not moved",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Bool(constvars.LoggingSuccessKey, swapped),
			zap.Error(err),
		)
		return
	}

	appointment.Status = models.AppointmentStatusPending
	metrics.AppointmentTransitionsTotal.WithLabelValues(string(models.AppointmentStatusPending)).Inc()
	uc.Dispatcher.Dispatch(models.NotificationEvent{
		Type:        models.NotificationAppointmentPending,
		Appointment: appointment,
		OccurredAt:  now,
	})
}

func (uc *paymentUsecase) CapturePayment(ctx context.Context, orderID string, source models.CaptureSource) (*responses.PaymentCapture, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CapturePayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, orderID),
		zap.String(constvars.LoggingOperationKey, string(source)),
	)

	payment, err := uc.PaymentRepository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, exceptions.ErrPaymentNotFound(nil, orderID)
	}
	if payment.Status == models.PaymentStatusCompleted {
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultNoop).Inc()
		return &responses.PaymentCapture{Payment: payment, AlreadyCaptured: true}, nil
	}
	appointment, err := uc.AppointmentRepository.FindByID(ctx, payment.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(nil, payment.AppointmentID)
	}
	if appointment.Status.IsTerminal() {
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultConflict).Inc()
		return nil, exceptions.ErrPaymentCaptureNotAllowed(nil, appointment.ID, string(appointment.Status))
	}

	claimed, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID,
		[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed},
		contracts.PaymentWrite{To: models.PaymentStatusProcessing, UpdatedAt: time.Now().UTC()},
	)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return uc.lostCaptureClaim(ctx, payment.ID, source)
	}
	// a sibling order may have been captured between CreateOrder and now
	other, err := uc.capturedPayment(ctx, payment.AppointmentID, payment.ID)
	if err != nil {
		uc.releaseCaptureClaim(ctx, payment.ID, nil)
		return nil, err
	}
	if other != nil {
		uc.releaseCaptureClaim(ctx, payment.ID, nil)
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultConflict).Inc()
		return nil, exceptions.ErrPaymentAlreadyCaptured(nil, payment.AppointmentID, other.ID)
	}

	capture, err := uc.PaymentGateway.CaptureOrder(ctx, orderID)
	if err != nil {
		uc.Log.Error("paymentUsecase.CapturePayment provider rejected capture",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		uc.releaseCaptureClaim(ctx, payment.ID, nil)
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultFailure).Inc()
		return nil, providerError(err, "capture")
	}

	now := time.Now().UTC()
	details := &models.TransactionDetails{
		CaptureID:         capture.CaptureID,
		PaymentMethod:     capture.PaymentMethod,
		ProcessorResponse: capture.ProcessorResponse,
		MerchantID:        capture.MerchantID,
		PaymentTimestamp:  captureTimestamp(capture.CapturedAt, now),
		CaptureSource:     string(source),
	}
	uc.archive(ctx, fmt.Sprintf(constvars.ArchiveCaptureObjectFormat, payment.ID, capture.CaptureID), capture.Raw)

	if capture.Status != constvars.PayPalCaptureStatusCompleted {
		// the provider holds the funds; PAYMENT.CAPTURE.COMPLETED finishes it later
		uc.Log.Warn("paymentUsecase.CapturePayment capture not yet completed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
			zap.String(constvars.LoggingStatusKey, capture.Status),
		)
		uc.releaseCaptureClaim(ctx, payment.ID, details)
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultNoop).Inc()
		updated, err := uc.PaymentRepository.FindByID(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		return &responses.PaymentCapture{Payment: updated}, nil
	}

	completed, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID,
		[]models.PaymentStatus{models.PaymentStatusProcessing},
		contracts.PaymentWrite{
			To:                 models.PaymentStatusCompleted,
			PayerID:            capture.PayerID,
			TransactionDetails: details,
			UpdatedAt:          now,
		},
	)
	if err != nil {
		return nil, err
	}
	if !completed {
		return uc.lostCaptureClaim(ctx, payment.ID, source)
	}

	updated, err := uc.PaymentRepository.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultSuccess).Inc()
	uc.dispatchPayment(ctx, models.NotificationPaymentCompleted, updated, "")
	if refunded := uc.refundIfClosed(ctx, updated); refunded != nil {
		updated = refunded
	}

	uc.Log.Info("paymentUsecase.CapturePayment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingCaptureIDKey, capture.CaptureID),
	)
	return &responses.PaymentCapture{Payment: updated}, nil
}

// capturedStatuses are the payment states that hold, or are about to hold, the patient's money.
var capturedStatuses = []models.PaymentStatus{
	models.PaymentStatusProcessing,
	models.PaymentStatusCompleted,
	models.PaymentStatusRefundFailed,
}

// capturedPayment returns a payment of the appointment in a captured state other than excludeID.
func (uc *paymentUsecase) capturedPayment(ctx context.Context, appointmentID, excludeID string) (*models.Payment, error) {
	payments, err := uc.PaymentRepository.FindAll(ctx, contracts.PaymentQuery{
		AppointmentID: appointmentID,
		Statuses:      capturedStatuses,
	})
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].ID != excludeID {
			return &payments[i], nil
		}
	}
	return nil, nil
}

// refundIfClosed gives the money back when the appointment was cancelled while the provider
// was capturing. It returns the refunded payment, or nil when nothing was done.
func (uc *paymentUsecase) refundIfClosed(ctx context.Context, payment *models.Payment) *models.Payment {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	appointment, err := uc.AppointmentRepository.FindByID(ctx, payment.AppointmentID)
	if err != nil || appointment == nil || appointment.Status != models.AppointmentStatusCancelled {
		return nil
	}

	uc.Log.Warn("paymentUsecase.refundIfClosed appointment closed during capture",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingStatusKey, string(appointment.Status)),
	)
	refunded, err := uc.ProcessRefund(ctx, appointment.ID, "appointment cancelled before capture completed")
	if err != nil {
		uc.Log.Error("paymentUsecase.refundIfClosed refund failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		return nil
	}
	return refunded
}

// lostCaptureClaim resolves a capture that found the payment already claimed by another caller.
func (uc *paymentUsecase) lostCaptureClaim(ctx context.Context, paymentID string, source models.CaptureSource) (*responses.PaymentCapture, error) {
	current, err := uc.PaymentRepository.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, exceptions.ErrPaymentNotFound(nil, paymentID)
	}
	switch current.Status {
	case models.PaymentStatusCompleted, models.PaymentStatusRefunded, models.PaymentStatusRefundFailed:
		metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultNoop).Inc()
		return &responses.PaymentCapture{Payment: current, AlreadyCaptured: true}, nil
	}
	metrics.PaymentCapturesTotal.WithLabelValues(string(source), metrics.ResultConflict).Inc()
	return nil, exceptions.ErrPaymentCaptureInProgress(nil, paymentID)
}

func (uc *paymentUsecase) releaseCaptureClaim(ctx context.Context, paymentID string, details *models.TransactionDetails) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	_, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, paymentID,
		[]models.PaymentStatus{models.PaymentStatusProcessing},
		contracts.PaymentWrite{
			To:                 models.PaymentStatusPending,
			TransactionDetails: details,
			UpdatedAt:          time.Now().UTC(),
		},
	)
	if err != nil {
		uc.Log.Error("paymentUsecase.releaseCaptureClaim error reverting claim",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, paymentID),
			zap.Error(err),
		)
	}
}

func (uc *paymentUsecase) GetByID(ctx context.Context, principal *models.Principal, paymentID string) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.GetByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIDKey, paymentID),
	)

	payment, err := uc.PaymentRepository.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil || (!principal.IsAdmin() && !payment.IsParticipant(principal.ID)) {
		return nil, exceptions.ErrPaymentNotFound(nil, paymentID)
	}
	return payment, nil
}

func (uc *paymentUsecase) History(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error) {
	return uc.list(ctx, "History", principal, nil, pagination)
}

func (uc *paymentUsecase) Refunds(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error) {
	return uc.list(ctx, "Refunds", principal, []models.PaymentStatus{models.PaymentStatusRefunded, models.PaymentStatusRefundFailed}, pagination)
}

func (uc *paymentUsecase) Pending(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error) {
	return uc.list(ctx, "Pending", principal, []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}, pagination)
}

func (uc *paymentUsecase) list(ctx context.Context, view string, principal *models.Principal, statuses []models.PaymentStatus, pagination *requests.Pagination) (*responses.PaymentList, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase."+view+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query := contracts.PaymentQuery{ParticipantID: scopeOf(principal), Statuses: statuses}
	if pagination != nil && pagination.PageSize > 0 {
		query.Limit = pagination.PageSize
		if pagination.Page > 1 {
			query.Skip = (pagination.Page - 1) * pagination.PageSize
		}
	}

	payments, err := uc.PaymentRepository.FindAll(ctx, query)
	if err != nil {
		uc.Log.Error("paymentUsecase."+view+" error fetching payments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	total, err := uc.PaymentRepository.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	uc.Log.Info("paymentUsecase."+view+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(payments)),
	)
	return &responses.PaymentList{Payments: payments, Total: total}, nil
}

func (uc *paymentUsecase) Analytics(ctx context.Context, principal *models.Principal) (*responses.PaymentAnalytics, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.Analytics called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	summaries, err := uc.PaymentRepository.SummarizeByStatus(ctx, scopeOf(principal))
	if err != nil {
		uc.Log.Error("paymentUsecase.Analytics error summarizing payments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	analytics := &responses.PaymentAnalytics{Currency: uc.currency(), ByStatus: summaries}
	for _, summary := range summaries {
		analytics.TotalCount += summary.Count
		switch summary.Status {
		case models.PaymentStatusCompleted:
			analytics.TotalCompleted += summary.Amount
		case models.PaymentStatusRefunded:
			analytics.TotalRefunded += summary.Amount
		}
	}
	return analytics, nil
}

// scopeOf limits reads to the caller's own payments unless the caller is an admin.
func scopeOf(principal *models.Principal) string {
	if principal.IsAdmin() {
		return ""
	}
	return principal.ID
}

func (uc *paymentUsecase) archive(ctx context.Context, objectName string, body []byte) {
	if uc.ArchiveStorage == nil || len(body) == 0 {
		return
	}
	if err := uc.ArchiveStorage.PutJSON(ctx, objectName, body); err != nil {
		requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		uc.Log.Warn("paymentUsecase.archive failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
	}
}

func (uc *paymentUsecase) dispatchPayment(ctx context.Context, eventType models.NotificationType, payment *models.Payment, reason string) {
	event := models.NotificationEvent{
		Type:       eventType,
		Payment:    payment,
		Recipients: []string{payment.PatientID},
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if appointment, err := uc.AppointmentRepository.FindByID(ctx, payment.AppointmentID); err == nil && appointment != nil {
		event.Appointment = appointment
	}
	uc.Dispatcher.Dispatch(event)
}

func providerError(err error, operation string) error {
	wrapped := exceptions.ErrPaymentProvider(err, operation)
	var providerErr *contracts.ProviderError
	if errors.As(err, &providerErr) {
		return wrapped.WithDetails(providerErr)
	}
	return wrapped
}

func captureTimestamp(capturedAt string, fallback time.Time) time.Time {
	if parsed, err := time.Parse(time.RFC3339, capturedAt); err == nil {
		return parsed.UTC()
	}
	return fallback
}
