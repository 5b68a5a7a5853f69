package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"
	"telehealth-service/internal/app/delivery/http/routers"
	"telehealth-service/internal/app/drivers/database"
	"telehealth-service/internal/app/drivers/logger"
	"telehealth-service/internal/app/drivers/messaging"
	"telehealth-service/internal/app/drivers/storage"
	"telehealth-service/internal/app/services/core/appointments"
	"telehealth-service/internal/app/services/core/calendars"
	"telehealth-service/internal/app/services/core/maintenance"
	"telehealth-service/internal/app/services/core/notifications"
	"telehealth-service/internal/app/services/core/payments"
	"telehealth-service/internal/app/services/core/users"
	"telehealth-service/internal/app/services/shared/eventqueue"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/app/services/shared/mailer"
	"telehealth-service/internal/app/services/shared/payment_gateway"
	"telehealth-service/internal/app/services/shared/ratelimiter"
	"telehealth-service/internal/app/services/shared/rbac"
	"telehealth-service/internal/app/services/shared/redis"
	minioStorage "telehealth-service/internal/app/services/shared/storage"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig, err := config.NewInternalConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewZapLogger(driverConfig, internalConfig)
	time.Local = internalConfig.App.Location

	mongoDB := database.NewMongoDB(driverConfig, log)
	redisClient := database.NewRedisClient(driverConfig, log)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig, log)
	minioClient := storage.NewMinio(driverConfig, log)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		RabbitMQ:       rabbitMQ,
		Minio:          minioClient,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if err := bootstrapingTheApp(bootstrap); err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(internalConfig.App.Address, internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := bootstrap.Shutdown(shutdownCtx, server); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) error {
	cfg := bootstrap.InternalConfig
	log := bootstrap.Logger

	setupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureIndexes(setupCtx, bootstrap.MongoDB); err != nil {
		return err
	}
	if err := storage.EnsureBucket(setupCtx, bootstrap.Minio, cfg.Minio.BucketName); err != nil {
		return err
	}
	if err := messaging.DeclareQueues(bootstrap.RabbitMQ, cfg.RabbitMQ.MailerQueue, cfg.RabbitMQ.NotificationQueue); err != nil {
		return err
	}

	// Shared services
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	resourceLimiter := ratelimiter.NewResourceLimiter(redisRepository, log)
	archiveStorage := minioStorage.NewMinioStorage(bootstrap.Minio, cfg.Minio.BucketName)
	jwtManager, err := jwtmanager.NewJWTManager(cfg, log)
	if err != nil {
		return err
	}
	mailerService, err := mailer.NewMailerService(bootstrap.RabbitMQ, cfg.RabbitMQ.MailerQueue, log)
	if err != nil {
		return err
	}
	publisher, err := eventqueue.NewNotificationPublisher(bootstrap.RabbitMQ, cfg.RabbitMQ.NotificationQueue, log)
	if err != nil {
		return err
	}
	paypalService := payment_gateway.NewPayPalService(cfg, log)
	webhookVerifier := payment_gateway.NewWebhookVerifier(payment_gateway.WebhookVerifierConfig{
		WebhookID:    cfg.PaymentGateway.WebhookID,
		Tolerance:    time.Duration(cfg.Webhook.SignatureToleranceInMinutes) * time.Minute,
		CertCacheTTL: time.Duration(cfg.Webhook.CertCacheTTLInMinutes) * time.Minute,
	}, log)

	// Repositories
	userRepository := users.NewUserMongoRepository(bootstrap.MongoDB)
	appointmentRepository := appointments.NewAppointmentMongoRepository(bootstrap.MongoDB)
	calendarRepository := calendars.NewCalendarMongoRepository(bootstrap.MongoDB)
	paymentRepository := payments.NewPaymentMongoRepository(bootstrap.MongoDB)
	notificationRepository := notifications.NewNotificationMongoRepository(bootstrap.MongoDB)

	// Notifications
	dispatcher := notifications.NewDispatcher(notificationRepository, userRepository, mailerService, publisher, cfg, log)
	dispatcher.Start()
	bootstrap.DispatcherStop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeoutInSeconds)*time.Second)
		defer cancel()
		if err := dispatcher.Stop(ctx); err != nil {
			log.Warn("notification dispatcher did not drain", zap.Error(err))
		}
	}

	// Usecases
	paymentUsecase := payments.NewPaymentUsecase(
		paymentRepository,
		appointmentRepository,
		paypalService,
		webhookVerifier,
		archiveStorage,
		redisRepository,
		resourceLimiter,
		dispatcher,
		cfg,
		log,
	)
	appointmentUsecase := appointments.NewAppointmentUsecase(appointmentRepository, paymentUsecase, lockService, dispatcher, cfg, log)
	calendarUsecase := calendars.NewCalendarUsecase(calendarRepository, appointmentRepository, lockService, dispatcher, cfg, log)

	// Maintenance
	if cfg.Maintenance.Enabled {
		worker := maintenance.NewWorker(appointmentRepository, redisRepository, lockService, dispatcher, cfg, log)
		worker.Start(context.Background())
		bootstrap.WorkerStop = worker.Stop
	}

	// Controllers
	appointmentController := controllers.NewAppointmentController(log, appointmentUsecase)
	calendarController := controllers.NewCalendarController(log, calendarUsecase)
	paymentController := controllers.NewPaymentController(log, paymentUsecase, cfg)
	webhookController := controllers.NewWebhookController(log, paymentUsecase)
	healthController := controllers.NewHealthController(log, cfg.App.Version, map[string]controllers.HealthCheck{
		"mongodb": func(ctx context.Context) error {
			return bootstrap.MongoDB.Client().Ping(ctx, nil)
		},
		"redis": func(ctx context.Context) error {
			return bootstrap.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(ctx context.Context) error {
			if bootstrap.RabbitMQ.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
		"minio": func(ctx context.Context) error {
			_, err := bootstrap.Minio.BucketExists(ctx, cfg.Minio.BucketName)
			return err
		},
	})

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	middlewares := middlewares.NewMiddlewares(log, jwtManager, enforcer, cfg)

	routers.SetupRoutes(
		bootstrap.Router,
		cfg,
		middlewares,
		appointmentController,
		calendarController,
		paymentController,
		webhookController,
		healthController,
	)
	return nil
}
