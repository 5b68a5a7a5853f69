package payments

import (
	"context"
	"fmt"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const defaultWebhookDedupTTL = 72 * time.Hour

// HandleWebhook verifies a provider notification and applies it at most once per event id.
func (uc *paymentUsecase) HandleWebhook(ctx context.Context, headers requests.WebhookHeaders, body []byte) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if err := uc.WebhookVerifier.Verify(ctx, headers, body); err != nil {
		utils.LogSecurityEvent(uc.Log, "webhook_signature_rejected", requestID, "high",
			zap.String(constvars.LoggingEventIDKey, headers.TransmissionID),
			zap.Error(err),
		)
		return exceptions.ErrWebhookSignatureInvalid(err)
	}

	var event requests.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if event.ID == "" || event.EventType == "" {
		return exceptions.ErrInputValidation(fmt.Errorf("webhook event id and type are required"))
	}
	uc.Log.Info("paymentUsecase.HandleWebhook called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventIDKey, event.ID),
		zap.String(constvars.LoggingEventTypeKey, event.EventType),
	)

	dedupKey := fmt.Sprintf(constvars.RedisKeyWebhookEventFormat, event.ID)
	first, err := uc.RedisRepository.TrySetNX(ctx, dedupKey, time.Now().UTC().Format(time.RFC3339), uc.webhookDedupTTL())
	if err != nil {
		return err
	}
	if !first {
		uc.Log.Info("paymentUsecase.HandleWebhook duplicate event ignored",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventIDKey, event.ID),
		)
		return nil
	}

	uc.archive(ctx, fmt.Sprintf(constvars.ArchiveWebhookObjectFormat, time.Now().UTC().Format(constvars.DateFormatYYYYMMDD), event.ID), body)

	if err := uc.applyWebhookEvent(ctx, &event); err != nil {
		// forget the event so the provider's retry is processed
		if delErr := uc.RedisRepository.Delete(ctx, dedupKey); delErr != nil {
			uc.Log.Warn("paymentUsecase.HandleWebhook error clearing dedup key",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, dedupKey),
				zap.Error(delErr),
			)
		}
		uc.Log.Error("paymentUsecase.HandleWebhook error applying event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventIDKey, event.ID),
			zap.Error(err),
		)
		return err
	}

	uc.Log.Info("paymentUsecase.HandleWebhook succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventIDKey, event.ID),
	)
	return nil
}

func (uc *paymentUsecase) webhookDedupTTL() time.Duration {
	if hours := uc.InternalConfig.Webhook.EventDedupTTLInHours; hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return defaultWebhookDedupTTL
}

func (uc *paymentUsecase) applyWebhookEvent(ctx context.Context, event *requests.PayPalWebhookEvent) error {
	switch event.EventType {
	case constvars.PayPalEventOrderApproved:
		_, err := uc.CapturePayment(ctx, event.Resource.OrderID(), models.CaptureSourceWebhook)
		if exceptions.HasStatusCode(err, constvars.StatusConflict) {
			// a direct capture is running; it finishes the payment
			return nil
		}
		return err
	case constvars.PayPalEventCaptureComplete:
		return uc.applyCaptureCompleted(ctx, event)
	case constvars.PayPalEventCaptureDenied, constvars.PayPalEventCaptureDeclined:
		return uc.applyCaptureFailed(ctx, event)
	case constvars.PayPalEventCaptureRefunded:
		return uc.applyCaptureRefunded(ctx, event)
	default:
		requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		uc.Log.Info("paymentUsecase.applyWebhookEvent event type ignored",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.EventType),
		)
		return nil
	}
}

// webhookPayment finds the payment an event refers to. Unknown orders are acknowledged.
func (uc *paymentUsecase) webhookPayment(ctx context.Context, event *requests.PayPalWebhookEvent) (*models.Payment, error) {
	orderID := event.Resource.OrderID()
	payment, err := uc.PaymentRepository.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		uc.Log.Warn("paymentUsecase.webhookPayment no payment for order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.String(constvars.LoggingEventTypeKey, event.EventType),
		)
	}
	return payment, nil
}

func (uc *paymentUsecase) applyCaptureCompleted(ctx context.Context, event *requests.PayPalWebhookEvent) error {
	payment, err := uc.webhookPayment(ctx, event)
	if err != nil || payment == nil || payment.Status == models.PaymentStatusCompleted {
		return err
	}

	details := &models.TransactionDetails{
		CaptureID:         event.Resource.ID,
		ProcessorResponse: event.Resource.Status,
		PaymentTimestamp:  captureTimestamp(event.CreateTime, time.Now().UTC()),
		CaptureSource:     string(models.CaptureSourceWebhook),
	}
	if payment.TransactionDetails != nil {
		details.PaymentMethod = payment.TransactionDetails.PaymentMethod
		details.MerchantID = payment.TransactionDetails.MerchantID
	}
	write := contracts.PaymentWrite{
		To:                 models.PaymentStatusCompleted,
		TransactionDetails: details,
		UpdatedAt:          time.Now().UTC(),
	}
	if event.Resource.Payer != nil {
		write.PayerID = event.Resource.Payer.PayerID
	}

	swapped, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID,
		[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing, models.PaymentStatusFailed},
		write,
	)
	if err != nil || !swapped {
		return err
	}
	updated, err := uc.PaymentRepository.FindByID(ctx, payment.ID)
	if err != nil {
		return err
	}
	uc.dispatchPayment(ctx, models.NotificationPaymentCompleted, updated, "")
	uc.refundIfClosed(ctx, updated)
	return nil
}

func (uc *paymentUsecase) applyCaptureFailed(ctx context.Context, event *requests.PayPalWebhookEvent) error {
	payment, err := uc.webhookPayment(ctx, event)
	if err != nil || payment == nil {
		return err
	}

	swapped, err := uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID,
		[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing, models.PaymentStatusFailed},
		contracts.PaymentWrite{To: models.PaymentStatusFailed, UpdatedAt: time.Now().UTC()},
	)
	if err != nil || !swapped {
		return err
	}
	payment.Status = models.PaymentStatusFailed
	uc.dispatchPayment(ctx, models.NotificationPaymentFailed, payment, event.Summary)
	return nil
}

func (uc *paymentUsecase) applyCaptureRefunded(ctx context.Context, event *requests.PayPalWebhookEvent) error {
	payment, err := uc.webhookPayment(ctx, event)
	if err != nil || payment == nil {
		return err
	}

	_, err = uc.PaymentRepository.CompareAndSwapStatus(ctx, payment.ID,
		[]models.PaymentStatus{models.PaymentStatusCompleted},
		contracts.PaymentWrite{
			To: models.PaymentStatusRefunded,
			RefundDetails: &models.RefundDetails{
				Reason:     event.Summary,
				RefundedAt: time.Now().UTC(),
				Status:     constvars.PayPalCaptureStatusCompleted,
				Amount:     payment.Amount,
			},
			UpdatedAt: time.Now().UTC(),
		},
	)
	return err
}
