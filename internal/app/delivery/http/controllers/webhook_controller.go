package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// webhookTimeout leaves room for certificate download plus a capture call.
const webhookTimeout = 45 * time.Second

type WebhookController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
}

func NewWebhookController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase) *WebhookController {
	return &WebhookController{
		Log:            logger,
		PaymentUsecase: paymentUsecase,
	}
}

// HandlePayPal processes POST /payments/webhook. The raw body is handed over untouched because
// the signature covers its exact bytes.
func (ctrl *WebhookController) HandlePayPal(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())

	if !strings.HasPrefix(r.Header.Get(constvars.HeaderContentType), constvars.MIMEApplicationJSON) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidFormat(errors.New("content type must be application/json"), constvars.HeaderContentType))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRequestTooLarge(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrReadBody(err))
		return
	}
	defer r.Body.Close()

	headers := requests.WebhookHeaders{
		TransmissionID:   r.Header.Get(constvars.HeaderPayPalTransmissionID),
		TransmissionTime: r.Header.Get(constvars.HeaderPayPalTransmissionTime),
		TransmissionSig:  r.Header.Get(constvars.HeaderPayPalTransmissionSig),
		CertURL:          r.Header.Get(constvars.HeaderPayPalCertURL),
		AuthAlgo:         r.Header.Get(constvars.HeaderPayPalAuthAlgo),
	}
	// Peek only; the body is not trusted until the signature is checked.
	ctrl.Log.Info("WebhookController.HandlePayPal called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("transmission_id", headers.TransmissionID),
		zap.String(constvars.LoggingEventIDKey, gjson.GetBytes(raw, "id").String()),
		zap.String(constvars.LoggingEventTypeKey, gjson.GetBytes(raw, "event_type").String()),
		zap.Int("body_size", len(raw)))

	ctx, cancel := context.WithTimeout(r.Context(), webhookTimeout)
	defer cancel()

	if err := ctrl.PaymentUsecase.HandleWebhook(ctx, headers, raw); err != nil {
		ctrl.Log.Error("WebhookController.HandlePayPal PaymentUsecase.HandleWebhook error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentWebhookProcessedMessage, nil)
}
