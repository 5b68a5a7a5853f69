package config

import "time"

type InternalConfig struct {
	App            App
	JWT            AppJWT
	Mailer         AppMailer
	Minio          AppMinio
	RabbitMQ       AppRabbitMQ
	PaymentGateway AppPaymentGateway
	Webhook        AppWebhook
	Maintenance    AppMaintenance
	Notification   AppNotification
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	Timezone                   string
	EndpointPrefix             string
	MaxRequests                int
	ShutdownTimeoutInSeconds   int
	MaxTimeRequestsPerSeconds  int
	RequestBodyLimitInMegabyte int
	CorsAllowedOrigins         []string
	// Location is resolved from Timezone at startup.
	Location *time.Location
}

type AppJWT struct {
	Secret        string
	ExpTimeInHour int
}

type AppMailer struct {
	EmailSender string
}

type AppMinio struct {
	BucketName string
}

type AppRabbitMQ struct {
	MailerQueue       string
	NotificationQueue string
}

// AppPaymentGateway holds the PayPal REST credentials.
type AppPaymentGateway struct {
	BaseUrl                 string
	ClientID                string
	ClientSecret            string
	WebhookID               string
	Currency                string
	ReturnUrl               string
	CancelUrl               string
	RequestTimeoutInSeconds int

	// OrderAttemptsPerWindow caps order creation per patient; zero disables the cap.
	OrderAttemptsPerWindow      int
	OrderAttemptWindowInSeconds int
}

type AppWebhook struct {
	// SignatureToleranceInMinutes bounds the age of a provider transmission.
	SignatureToleranceInMinutes int
	// EventDedupTTLInHours is how long a processed event id is remembered.
	EventDedupTTLInHours   int
	RateLimitPerSecond     float64
	RateLimitBurst         int
	RateLimitBlockDuration int
	CertCacheTTLInMinutes  int
}

type AppMaintenance struct {
	Enabled                 bool
	NoShowCronSpec          string
	ReminderCronSpec        string
	NoShowGraceInMinutes    int
	LeaderLockTTLInSeconds  int
	ReminderDedupTTLInHours int
}

type AppNotification struct {
	Workers   int
	QueueSize int
	// SendTimeoutInSeconds bounds one delivery: persist, email and event publish.
	SendTimeoutInSeconds int
}
