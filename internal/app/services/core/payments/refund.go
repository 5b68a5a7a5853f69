package payments

import (
	"context"
	"fmt"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/metrics"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

var refundableStatuses = []models.PaymentStatus{
	models.PaymentStatusCompleted,
	models.PaymentStatusRefundFailed,
}

// ProcessRefund refunds the full amount of the captured payment of an appointment.
// A provider failure leaves the payment in REFUND_FAILED so it can be retried.
func (uc *paymentUsecase) ProcessRefund(ctx context.Context, appointmentID, reason string) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessRefund called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	payment, err := uc.refundCandidate(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, exceptions.ErrPaymentNotFound(nil, appointmentID)
	}
	switch payment.Status {
	case models.PaymentStatusRefunded:
		return nil, exceptions.ErrPaymentAlreadyRefunded(nil, payment.ID)
	case models.PaymentStatusCompleted, models.PaymentStatusRefundFailed:
	default:
		return nil, exceptions.ErrPaymentNotRefundable(nil, payment.ID, string(payment.Status))
	}
	if payment.TransactionDetails == nil || payment.TransactionDetails.CaptureID == "" {
		return nil, exceptions.ErrPaymentNotRefundable(nil, payment.ID, string(payment.Status))
	}

	refund, err := uc.PaymentGateway.RefundCapture(ctx, payment.TransactionDetails.CaptureID, payment.Amount, payment.Currency, reason)
	if err != nil {
		uc.Log.Error("paymentUsecase.ProcessRefund provider rejected refund",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		metrics.RefundsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		uc.recordRefundFailure(ctx, payment, reason, err)
		return nil, providerError(err, "refund")
	}

	now := time.Now().UTC()
	swapped, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID, refundableStatuses, contracts.PaymentWrite{
		To: models.PaymentStatusRefunded,
		RefundDetails: &models.RefundDetails{
			RefundID:          refund.RefundID,
			Reason:            reason,
			RefundedAt:        now,
			Status:            refund.Status,
			Amount:            payment.Amount,
			ProcessorResponse: refund.ProcessorResponse,
		},
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	uc.archive(ctx, fmt.Sprintf(constvars.ArchiveRefundObjectFormat, payment.ID, refund.RefundID), refund.Raw)

	updated, err := uc.PaymentRepository.FindByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	if !swapped {
		uc.Log.Warn("paymentUsecase.ProcessRefund payment changed during refund",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
		)
		return updated, nil
	}

	metrics.RefundsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	uc.dispatchPayment(ctx, models.NotificationRefundCompleted, updated, reason)

	uc.Log.Info("paymentUsecase.ProcessRefund succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentIDKey, payment.ID),
	)
	return updated, nil
}

// refundCandidate prefers a captured payment over newer orders that were never paid.
func (uc *paymentUsecase) refundCandidate(ctx context.Context, appointmentID string) (*models.Payment, error) {
	payments, err := uc.PaymentRepository.FindAll(ctx, contracts.PaymentQuery{
		AppointmentID: appointmentID,
		Statuses:      append([]models.PaymentStatus{models.PaymentStatusRefunded}, refundableStatuses...),
	})
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].Status != models.PaymentStatusRefunded {
			return &payments[i], nil
		}
	}
	if len(payments) > 0 {
		return &payments[0], nil
	}
	return uc.PaymentRepository.FindLatestByAppointmentID(ctx, appointmentID)
}

func (uc *paymentUsecase) recordRefundFailure(ctx context.Context, payment *models.Payment, reason string, cause error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	swapped, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID, refundableStatuses, contracts.PaymentWrite{
		To: models.PaymentStatusRefundFailed,
		RefundDetails: &models.RefundDetails{
			Reason:            reason,
			Status:            constvars.PayPalRefundStatusFailed,
			Amount:            payment.Amount,
			ProcessorResponse: cause.Error(),
		},
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil || !swapped {
		uc.Log.Error("paymentUsecase.recordRefundFailure error marking payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Bool(constvars.LoggingSuccessKey, swapped),
			zap.Error(err),
		)
		return
	}

	failed := *payment
	failed.Status = models.PaymentStatusRefundFailed
	uc.dispatchPayment(ctx, models.NotificationRefundFailed, &failed, reason)
}
