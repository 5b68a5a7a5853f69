package constvars

const (
	CreateAppointmentSuccessMessage       = "appointment created"
	GetAppointmentSuccessMessage          = "appointments fetched"
	UpdateAppointmentStatusSuccessMessage = "appointment status updated"
	CancelAppointmentRefundFailedMessage  = "appointment cancelled, refund pending manual review"
	RescheduleAppointmentSuccessMessage   = "appointment rescheduled"
	RateAppointmentSuccessMessage         = "appointment rated"
	GetAppointmentScheduleSuccessMessage  = "schedule fetched"
	GetAppointmentStatsSuccessMessage     = "appointment stats fetched"
	GetAppointmentHistorySuccessMessage   = "appointment history fetched"

	GetCalendarSuccessMessage        = "calendar fetched"
	SetWorkingHoursSuccessMessage    = "working hours updated"
	UpdateDateScheduleSuccessMessage = "date schedule updated"
	BlockTimeSlotSuccessMessage      = "time slot blocked"
	UnblockTimeSlotSuccessMessage    = "time slot unblocked"
	GetAvailableSlotsSuccessMessage  = "available slots fetched"

	CreatePaymentOrderSuccessMessage  = "payment order created"
	CapturePaymentSuccessMessage      = "payment captured"
	PaymentAlreadyCapturedMessage     = "payment already captured"
	PaymentWebhookProcessedMessage    = "webhook processed"
	GetPaymentSuccessMessage          = "payment fetched"
	GetPaymentHistorySuccessMessage   = "payment history fetched"
	GetPaymentAnalyticsSuccessMessage = "payment analytics fetched"
	GetPaymentRefundsSuccessMessage   = "refunds fetched"
	GetPendingPaymentsSuccessMessage  = "pending payments fetched"

	HealthCheckSuccessMessage = "ok"
)

const (
	ResponseUnknown = "unknown"
)
