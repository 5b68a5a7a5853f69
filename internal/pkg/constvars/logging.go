package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingPrincipalIDKey        = "principal_id"
	LoggingPrincipalRoleKey      = "principal_role"
	LoggingQueryParamsKey        = "query_params"
	LoggingResponseLengthKey     = "response_length"
	LoggingErrorMessageKey       = "error_message"
	LoggingOperationKey          = "operation"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingAppointmentIDKey      = "appointment_id"
	LoggingDoctorIDKey           = "doctor_id"
	LoggingPatientIDKey          = "patient_id"
	LoggingPaymentIDKey          = "payment_id"
	LoggingOrderIDKey            = "order_id"
	LoggingCaptureIDKey          = "capture_id"
	LoggingStatusKey             = "status"
	LoggingFromStatusKey         = "from_status"
	LoggingToStatusKey           = "to_status"
	LoggingEventTypeKey          = "event_type"
	LoggingEventIDKey            = "event_id"
	LoggingNotificationTypeKey   = "notification_type"
	LoggingDateKey               = "date"
	LoggingSlotIDKey             = "slot_id"
	LoggingQueueNameKey          = "queue_name"
	LoggingObjectNameKey         = "object_name"
	LoggingCountKey              = "count"
)
