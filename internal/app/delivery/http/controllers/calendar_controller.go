package controllers

import (
	"context"
	"errors"
	"net/http"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type CalendarController struct {
	Log             *zap.Logger
	CalendarUsecase contracts.CalendarUsecase
}

func NewCalendarController(logger *zap.Logger, calendarUsecase contracts.CalendarUsecase) *CalendarController {
	return &CalendarController{
		Log:             logger,
		CalendarUsecase: calendarUsecase,
	}
}

func (ctrl *CalendarController) GetCalendar(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "CalendarController.GetCalendar")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	calendar, err := ctrl.CalendarUsecase.GetCalendar(ctx, principal)
	if err != nil {
		ctrl.Log.Error("CalendarController.GetCalendar CalendarUsecase.GetCalendar error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetCalendarSuccessMessage, calendar)
}

func (ctrl *CalendarController) SetWorkingHours(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "CalendarController.SetWorkingHours")
	if !ok {
		return
	}
	ctrl.Log.Info("CalendarController.SetWorkingHours called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID))

	request := new(requests.SetWorkingHours)
	if err := decodeBody(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	calendar, err := ctrl.CalendarUsecase.SetDefaultWorkingHours(ctx, principal, request)
	if err != nil {
		ctrl.Log.Error("CalendarController.SetWorkingHours CalendarUsecase.SetDefaultWorkingHours error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CalendarController.SetWorkingHours succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SetWorkingHoursSuccessMessage, calendar)
}

func (ctrl *CalendarController) UpdateDateSchedule(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "CalendarController.UpdateDateSchedule")
	if !ok {
		return
	}

	date, err := datePathParam(r, "date")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("CalendarController.UpdateDateSchedule called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, date))

	request := new(requests.UpdateDateSchedule)
	if err := decodeBody(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	calendar, err := ctrl.CalendarUsecase.UpdateDateSchedule(ctx, principal, date, request)
	if err != nil {
		ctrl.Log.Error("CalendarController.UpdateDateSchedule CalendarUsecase.UpdateDateSchedule error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdateDateScheduleSuccessMessage, calendar)
}

func (ctrl *CalendarController) BlockTimeSlot(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "CalendarController.BlockTimeSlot")
	if !ok {
		return
	}

	request := new(requests.BlockTimeSlot)
	if err := decodeBody(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	ctrl.Log.Info("CalendarController.BlockTimeSlot called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, request.Date))

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	blocked, err := ctrl.CalendarUsecase.BlockTimeSlot(ctx, principal, request)
	if err != nil {
		ctrl.Log.Error("CalendarController.BlockTimeSlot CalendarUsecase.BlockTimeSlot error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CalendarController.BlockTimeSlot succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSlotIDKey, blocked.SlotID))
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.BlockTimeSlotSuccessMessage, blocked)
}

func (ctrl *CalendarController) UnblockTimeSlot(w http.ResponseWriter, r *http.Request) {
	requestID, principal, ok := requestScope(ctrl.Log, w, r, "CalendarController.UnblockTimeSlot")
	if !ok {
		return
	}

	date, err := datePathParam(r, "date")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	slotID, err := pathParam(r, "slotId")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	if err := ctrl.CalendarUsecase.UnblockTimeSlot(ctx, principal, date, slotID); err != nil {
		ctrl.Log.Error("CalendarController.UnblockTimeSlot CalendarUsecase.UnblockTimeSlot error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSlotIDKey, slotID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UnblockTimeSlotSuccessMessage, nil)
}

// GetAvailableSlots is public; it needs no principal.
func (ctrl *CalendarController) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())

	doctorID, err := pathParam(r, "doctorId")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	date, err := datePathParam(r, "date")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	slots, err := ctrl.CalendarUsecase.GetAvailableSlots(ctx, doctorID, date)
	if err != nil {
		ctrl.Log.Error("CalendarController.GetAvailableSlots CalendarUsecase.GetAvailableSlots error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err))
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAvailableSlotsSuccessMessage, slots)
}

func datePathParam(r *http.Request, name string) (string, error) {
	date, err := pathParam(r, name)
	if err != nil {
		return "", err
	}
	if !utils.IsValidDate(date) {
		return "", exceptions.ErrURLParamValidation(errors.New("expected YYYY-MM-DD"), name)
	}
	return date, nil
}
