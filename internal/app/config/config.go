package config

import (
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "telehealth"),
			Username: utils.GetEnvString("MONGODB_USERNAME", ""),
			Password: utils.GetEnvString("MONGODB_PASSWORD", ""),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() (*InternalConfig, error) {
	cfg := &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", constvars.APP_ENV_DEVELOPMENT),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 1),
			CorsAllowedOrigins:         utils.GetEnvStringSlice("APP_CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		JWT: AppJWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "anyjwt"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 1),
		},
		Mailer: AppMailer{
			EmailSender: utils.GetEnvString("APP_MAILER_EMAIL_SENDER", "no-reply@telehealth.local"),
		},
		Minio: AppMinio{
			BucketName: utils.GetEnvString("APP_MINIO_BUCKET_NAME", "telehealth-payments"),
		},
		RabbitMQ: AppRabbitMQ{
			MailerQueue:       utils.GetEnvString("APP_RABBITMQ_MAILER_QUEUE", "mailer"),
			NotificationQueue: utils.GetEnvString("APP_RABBITMQ_NOTIFICATION_QUEUE", "notifications"),
		},
		PaymentGateway: AppPaymentGateway{
			BaseUrl:                 utils.GetEnvString("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			ClientID:                utils.GetEnvString("PAYPAL_CLIENT_ID", ""),
			ClientSecret:            utils.GetEnvString("PAYPAL_CLIENT_SECRET", ""),
			WebhookID:               utils.GetEnvString("PAYPAL_WEBHOOK_ID", ""),
			Currency:                utils.GetEnvString("PAYMENT_CURRENCY", "USD"),
			ReturnUrl:               utils.GetEnvString("PAYPAL_RETURN_URL", ""),
			CancelUrl:               utils.GetEnvString("PAYPAL_CANCEL_URL", ""),
			RequestTimeoutInSeconds: utils.GetEnvInt("PAYPAL_REQUEST_TIMEOUT_IN_SECONDS", 30),

			OrderAttemptsPerWindow:      utils.GetEnvInt("PAYMENT_ORDER_ATTEMPTS_PER_WINDOW", 5),
			OrderAttemptWindowInSeconds: utils.GetEnvInt("PAYMENT_ORDER_ATTEMPT_WINDOW_IN_SECONDS", 600),
		},
		Webhook: AppWebhook{
			SignatureToleranceInMinutes: utils.GetEnvInt("WEBHOOK_SIGNATURE_TOLERANCE_IN_MINUTES", 10),
			EventDedupTTLInHours:        utils.GetEnvInt("WEBHOOK_EVENT_DEDUP_TTL_IN_HOURS", 72),
			RateLimitPerSecond:          utils.GetEnvFloat("WEBHOOK_RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:              utils.GetEnvInt("WEBHOOK_RATE_LIMIT_BURST", 20),
			RateLimitBlockDuration:      utils.GetEnvInt("WEBHOOK_RATE_LIMIT_BLOCK_IN_SECONDS", 60),
			CertCacheTTLInMinutes:       utils.GetEnvInt("WEBHOOK_CERT_CACHE_TTL_IN_MINUTES", 60),
		},
		Maintenance: AppMaintenance{
			Enabled:                 utils.GetEnvBool("MAINTENANCE_ENABLED", true),
			NoShowCronSpec:          utils.GetEnvString("MAINTENANCE_NO_SHOW_CRON", "@hourly"),
			ReminderCronSpec:        utils.GetEnvString("MAINTENANCE_REMINDER_CRON", "0 8 * * *"),
			NoShowGraceInMinutes:    utils.GetEnvInt("MAINTENANCE_NO_SHOW_GRACE_IN_MINUTES", 30),
			LeaderLockTTLInSeconds:  utils.GetEnvInt("MAINTENANCE_LEADER_LOCK_TTL_IN_SECONDS", 120),
			ReminderDedupTTLInHours: utils.GetEnvInt("MAINTENANCE_REMINDER_DEDUP_TTL_IN_HOURS", 48),
		},
		Notification: AppNotification{
			Workers:              utils.GetEnvInt("NOTIFICATION_WORKERS", 4),
			QueueSize:            utils.GetEnvInt("NOTIFICATION_QUEUE_SIZE", 256),
			SendTimeoutInSeconds: utils.GetEnvInt("NOTIFICATION_SEND_TIMEOUT_IN_SECONDS", 10),
		},
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.App.Location = location

	return cfg, nil
}
