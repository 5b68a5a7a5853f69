package controllers

import (
	"context"
	"net/http"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
	// providerTimeout bounds requests that call the payment provider.
	providerTimeout time.Duration
}

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase, internalConfig *config.InternalConfig) *PaymentController {
	providerTimeout := time.Duration(internalConfig.PaymentGateway.RequestTimeoutInSeconds)*time.Second + defaultRequestTimeout
	return &PaymentController{
		Log:             logger,
		PaymentUsecase:  paymentUsecase,
		providerTimeout: providerTimeout,
	}
}

func (ctrl *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "PaymentController.CreateOrder")
	if !ok {
		return
	}
	ctrl.Log.Info("PaymentController.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID))

	request := new(requests.CreatePaymentOrder)
	if err := decodeBody(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	metadata := requests.PaymentMetadata{
		IPAddress: utils.ClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: requestID,
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.providerTimeout)
	defer cancel()

	order, err := ctrl.PaymentUsecase.CreateOrder(ctx, principal, request, metadata)
	if err != nil {
		ctrl.Log.Error("PaymentController.CreateOrder PaymentUsecase.CreateOrder error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("PaymentController.CreateOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, order.OrderID))
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreatePaymentOrderSuccessMessage, order)
}

func (ctrl *PaymentController) Capture(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "PaymentController.Capture")
	if !ok {
		return
	}

	orderID, err := pathParam(r, "orderId")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("PaymentController.Capture called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingOrderIDKey, orderID))

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.providerTimeout)
	defer cancel()

	capture, err := ctrl.PaymentUsecase.CapturePayment(ctx, orderID, models.CaptureSourceDirect)
	if err != nil {
		ctrl.Log.Error("PaymentController.Capture PaymentUsecase.CapturePayment error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOrderIDKey, orderID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	message := constvars.CapturePaymentSuccessMessage
	if capture.AlreadyCaptured {
		message = constvars.PaymentAlreadyCapturedMessage
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, message, capture)
}

func (ctrl *PaymentController) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "PaymentController.GetByID")
	if !ok {
		return
	}

	paymentID, err := pathParam(r, "paymentId")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	payment, err := ctrl.PaymentUsecase.GetByID(ctx, principal, paymentID)
	if err != nil {
		ctrl.Log.Error("PaymentController.GetByID PaymentUsecase.GetByID error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentIDKey, paymentID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentSuccessMessage, payment)
}

func (ctrl *PaymentController) History(w http.ResponseWriter, r *http.Request) {
	ctrl.list(w, r, "PaymentController.History", constvars.GetPaymentHistorySuccessMessage, ctrl.PaymentUsecase.History)
}

func (ctrl *PaymentController) Refunds(w http.ResponseWriter, r *http.Request) {
	ctrl.list(w, r, "PaymentController.Refunds", constvars.GetPaymentRefundsSuccessMessage, ctrl.PaymentUsecase.Refunds)
}

func (ctrl *PaymentController) Pending(w http.ResponseWriter, r *http.Request) {
	ctrl.list(w, r, "PaymentController.Pending", constvars.GetPendingPaymentsSuccessMessage, ctrl.PaymentUsecase.Pending)
}

type paymentListFunc func(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error)

func (ctrl *PaymentController) list(w http.ResponseWriter, r *http.Request, operation, message string, fetch paymentListFunc) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, operation)
	if !ok {
		return
	}

	pagination := utils.BuildPaginationRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	list, err := fetch(ctx, principal, pagination)
	if err != nil {
		ctrl.Log.Error(operation+" error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	paginationData := utils.BuildPaginationResponse(list.Total, pagination.Page, pagination.PageSize, r.URL.Path)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, message, paginationData, list.Payments)
}

func (ctrl *PaymentController) Analytics(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "PaymentController.Analytics")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	analytics, err := ctrl.PaymentUsecase.Analytics(ctx, principal)
	if err != nil {
		ctrl.Log.Error("PaymentController.Analytics PaymentUsecase.Analytics error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentAnalyticsSuccessMessage, analytics)
}
