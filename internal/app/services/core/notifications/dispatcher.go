package notifications

import (
	"context"
	"sync"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/metrics"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher delivers notification events on a bounded worker pool. Each delivery persists the
// notification, emails the recipient and publishes it for realtime consumers. Failures are logged
// and never reach the code that raised the event.
type Dispatcher struct {
	NotificationRepository contracts.NotificationRepository
	UserRepository         contracts.UserRepository
	Mailer                 contracts.MailerService
	Publisher              contracts.EventPublisher
	InternalConfig         *config.InternalConfig
	Log                    *zap.Logger

	queue       chan models.NotificationEvent
	workers     int
	sendTimeout time.Duration
	wg          sync.WaitGroup
	mu          sync.RWMutex
	started     bool
	closed      bool
}

func NewDispatcher(
	notificationRepository contracts.NotificationRepository,
	userRepository contracts.UserRepository,
	mailer contracts.MailerService,
	publisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *Dispatcher {
	cfg := internalConfig.Notification
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	sendTimeout := time.Duration(cfg.SendTimeoutInSeconds) * time.Second
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	return &Dispatcher{
		NotificationRepository: notificationRepository,
		UserRepository:         userRepository,
		Mailer:                 mailer,
		Publisher:              publisher,
		InternalConfig:         internalConfig,
		Log:                    logger,
		queue:                  make(chan models.NotificationEvent, queueSize),
		workers:                workers,
		sendTimeout:            sendTimeout,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.Log.Info("notification dispatcher started", zap.Int(constvars.LoggingCountKey, d.workers))
}

// Dispatch enqueues event without blocking. It returns false when the queue is full or closed.
func (d *Dispatcher) Dispatch(event models.NotificationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "dispatcher stopped")
		return false
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.drop(event, "queue full")
		return false
	}
}

// Stop refuses new events and waits for queued ones to be delivered, or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.Log.Info("notification dispatcher drained")
		return nil
	case <-ctx.Done():
		d.Log.Warn("notification dispatcher stop timed out", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) drop(event models.NotificationEvent, reason string) {
	metrics.NotificationsTotal.WithLabelValues(string(event.Type), metrics.ResultDropped).Inc()
	d.Log.Warn("notification dropped",
		zap.String(constvars.LoggingNotificationTypeKey, string(event.Type)),
		zap.String(constvars.LoggingErrorMessageKey, reason),
	)
}

func (d *Dispatcher) location() *time.Location {
	if d.InternalConfig != nil && d.InternalConfig.App.Location != nil {
		return d.InternalConfig.App.Location
	}
	return time.UTC
}

func (d *Dispatcher) deliver(event models.NotificationEvent) {
	requestID := utils.GenerateRequestID()
	ctx, cancel := context.WithTimeout(context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, requestID), d.sendTimeout)
	defer cancel()

	title := titleFor(event.Type)
	message := messageFor(event, d.location())
	for _, userID := range recipientsOf(event) {
		if userID == "" || userID == constvars.RoleTypeSystem {
			continue
		}
		notification := &models.Notification{
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      event.Type,
			CreatedAt: event.OccurredAt,
		}
		if event.Appointment != nil {
			notification.AppointmentID = event.Appointment.ID
		}
		if event.Payment != nil {
			notification.PaymentID = event.Payment.ID
		}

		if err := d.deliverTo(ctx, notification); err != nil {
			metrics.NotificationsTotal.WithLabelValues(string(event.Type), metrics.ResultFailure).Inc()
			d.Log.Error("notification delivery failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingNotificationTypeKey, string(event.Type)),
				zap.String(constvars.LoggingPrincipalIDKey, userID),
				zap.Error(err),
			)
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(string(event.Type), metrics.ResultSuccess).Inc()
	}
}

// deliverTo persists the notification first; email and realtime publish are best-effort on top.
func (d *Dispatcher) deliverTo(ctx context.Context, notification *models.Notification) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	notificationID, err := d.NotificationRepository.Create(ctx, notification)
	if err != nil {
		return err
	}
	notification.ID = notificationID

	user, err := d.UserRepository.FindByID(ctx, notification.UserID)
	switch {
	case err != nil:
		d.Log.Warn("notification recipient lookup failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPrincipalIDKey, notification.UserID),
			zap.Error(err),
		)
	case user == nil || user.Email == "":
		d.Log.Debug("notification recipient has no email",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPrincipalIDKey, notification.UserID),
		)
	default:
		payload := utils.BuildNotificationEmailPayload(d.InternalConfig.Mailer.EmailSender, user.Email, user.Name, notification.Title, notification.Message)
		if err := d.Mailer.SendEmail(ctx, payload); err != nil {
			d.Log.Warn("notification email failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingPrincipalIDKey, notification.UserID),
				zap.Error(err),
			)
		}
	}

	if err := d.Publisher.PublishNotification(ctx, notification); err != nil {
		d.Log.Warn("notification publish failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPrincipalIDKey, notification.UserID),
			zap.Error(err),
		)
	}
	return nil
}
