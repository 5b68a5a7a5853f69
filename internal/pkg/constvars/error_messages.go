package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"len":      "must be %s characters long",
	"oneof":    "must be one of [%s]",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"lt":       "must be less than %s",
	"lte":      "must be less than or equal to %s",
	"dive":     "is invalid",
	"hhmm":     "must be a time in HH:MM 24-hour format",
	"yyyymmdd": "must be a date in YYYY-MM-DD format",
	"objectid": "must be a valid identifier",
	"weekday":  "must be a weekday between 0 (Sunday) and 6 (Saturday)",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"oneof": true,
	"gt":    true,
	"gte":   true,
	"lt":    true,
	"lte":   true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientAppointmentNotFound           = "appointment not found"
	ErrClientAppointmentNotParticipant     = "you are not a participant of this appointment"
	ErrClientAppointmentInvalidTransition  = "appointment cannot move to the requested status"
	ErrClientAppointmentStatusChanged      = "appointment was modified by another request, please retry"
	ErrClientAppointmentSlotTaken          = "the doctor already has an appointment at that time"
	ErrClientAppointmentInPast             = "appointment time must be in the future"
	ErrClientAppointmentNotCompleted       = "only completed appointments can be rated"
	ErrClientAppointmentBusy               = "another booking for this doctor is in progress, please retry"
	ErrClientCalendarNotFound              = "doctor calendar not found"
	ErrClientCalendarSlotNotFound          = "slot not found"
	ErrClientCalendarSlotRange             = "slot start time must be before end time"
	ErrClientCalendarDuplicateDay          = "each weekday may appear only once"
	ErrClientCalendarBlockConflict         = "an active appointment exists in the selected time range"
	ErrClientCalendarSlotNotBlocked        = "slot is not blocked"
	ErrClientPaymentNotFound               = "payment not found"
	ErrClientPaymentNotAllowed             = "appointment is not awaiting payment"
	ErrClientPaymentAlreadyRefunded        = "payment already refunded"
	ErrClientPaymentNotRefundable          = "payment has not been captured and cannot be refunded"
	ErrClientPaymentCaptureInProgress      = "payment capture is already in progress"
	ErrClientPaymentAlreadyCaptured        = "appointment is already paid"
	ErrClientPaymentCaptureNotAllowed      = "appointment can no longer be paid"
	ErrClientPaymentProvider               = "payment provider rejected the request"
	ErrClientWebhookSignatureInvalid       = "invalid webhook signature"
	ErrClientTooManyRequests               = "too many requests, please slow down"
	ErrClientRequestTooLarge               = "request body is too large"
)

// Error messages for developers
const (
	ErrDevValidationFailed           = "validation failed"
	ErrDevCannotParseJSON            = "cannot parse JSON"
	ErrDevCannotMarshalJSON          = "cannot marshal JSON"
	ErrDevReadBody                   = "cannot read request body"
	ErrDevInvalidFormat              = "invalid %s format"
	ErrDevURLParamValidationFailed   = "validation failed for URL parameter: %s"
	ErrDevServerDeadlineExceeded     = "server deadline exceeded"
	ErrDevServerProcess              = "server failed to process the request"
	ErrDevMissingRequestID           = "request id missing from context"
	ErrDevAuthTokenMissing           = "authorization token missing"
	ErrDevAuthTokenInvalidOrExpired  = "authorization token invalid or expired"
	ErrDevAuthRoleNotAllowed         = "principal role %s not allowed on this route"
	ErrDevPrincipalMissing           = "principal missing from context"
	ErrDevAppointmentNotFound        = "appointment %s not found"
	ErrDevAppointmentNotParticipant  = "principal %s is not a participant of appointment %s"
	ErrDevAppointmentRoleNotAllowed  = "role %s may not move appointment to %s"
	ErrDevAppointmentTransition      = "transition %s -> %s is not allowed"
	ErrDevAppointmentCASLost         = "appointment %s no longer in status %s"
	ErrDevAppointmentOverlap         = "doctor %s has an overlapping appointment %s"
	ErrDevAppointmentInPast          = "appointment time %s is not in the future"
	ErrDevAppointmentNotCompleted    = "appointment %s is %s, rating needs completed"
	ErrDevAppointmentLockNotAcquired = "booking lock for doctor %s not acquired"
	ErrDevCalendarNotFound           = "calendar for doctor %s not found"
	ErrDevCalendarSlotNotFound       = "slot %s not found on %s"
	ErrDevCalendarSlotRange          = "slot %s-%s has start not before end"
	ErrDevCalendarDuplicateDay       = "weekday %d appears more than once"
	ErrDevCalendarBlockConflict      = "appointment %s overlaps blocked range %s %s-%s"
	ErrDevCalendarSlotNotBlocked     = "slot %s on %s is not blocked"
	ErrDevPaymentNotFound            = "payment not found for %s"
	ErrDevPaymentNotAllowed          = "appointment %s in status %s cannot open a payment order"
	ErrDevPaymentAlreadyRefunded     = "payment %s already refunded"
	ErrDevPaymentNotRefundable       = "payment %s in status %s cannot be refunded"
	ErrDevPaymentCaptureInProgress   = "payment %s is being captured"
	ErrDevPaymentAlreadyCaptured     = "appointment %s already has captured payment %s"
	ErrDevPaymentCaptureNotAllowed   = "appointment %s in status %s cannot be charged"
	ErrDevPaymentProvider            = "payment provider %s failed"
	ErrDevWebhookSignatureInvalid    = "webhook signature verification failed"
	ErrDevMongoDBInsertDocument      = "failed to insert document into mongodb"
	ErrDevMongoDBFindDocument        = "failed to find document in mongodb"
	ErrDevMongoDBUpdateDocument      = "failed to update document in mongodb"
	ErrDevMongoDBAggregate           = "failed to aggregate documents in mongodb"
	ErrDevMongoDBNotObjectID         = "value is not a valid mongodb object id"
	ErrDevMongoDBCreateIndex         = "failed to create mongodb index"
	ErrDevRedisGetData               = "failed to get data from redis"
	ErrDevRedisSetData               = "failed to set data to redis"
	ErrDevRedisDeleteData            = "failed to delete data from redis"
	ErrDevRedisExpire                = "failed to set redis key expiry"
	ErrDevRedisUnlock                = "failed to release redis lock"
	ErrDevRabbitMQPublishMessage     = "failed to publish message to queue %s"
	ErrDevMinioPutObject             = "failed to put object %s to minio"
	ErrDevCreateHTTPRequest          = "failed to create HTTP request"
	ErrDevSendHTTPRequest            = "failed to send HTTP request"
	ErrDevDecodeResponse             = "failed to decode %s response"
)
