package constvars

const (
	RedisKeyDoctorBookingLockFormat = "appointment:doctor:%s:lock"
	RedisKeyMaintenanceLeaderFormat = "maintenance:%s:leader"
	RedisKeyWebhookEventFormat      = "payment:webhook:event:%s"
	RedisKeyReminderSentFormat      = "appointment:reminder:%s:%s"
)

const (
	RedisKeyRateLimitFormat    = "ratelimit:%s:%s:%d"
	RateLimitGroupPaymentOrder = "payment-order"
)
