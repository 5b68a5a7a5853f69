package eventqueue

import (
	"context"
	"fmt"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationMessage is the event consumed by the realtime delivery service.
type NotificationMessage struct {
	ID            string                  `json:"id"`
	UserID        string                  `json:"userId"`
	Type          models.NotificationType `json:"type"`
	Title         string                  `json:"title"`
	Message       string                  `json:"message"`
	AppointmentID string                  `json:"appointmentId,omitempty"`
	PaymentID     string                  `json:"paymentId,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}

type notificationPublisher struct {
	ch       *amqp.Channel
	queue    string
	log      *zap.Logger
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

// NewNotificationPublisher opens a confirm-mode channel and declares the durable notification queue.
func NewNotificationPublisher(conn *amqp.Connection, queue string, log *zap.Logger) (contracts.EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &notificationPublisher{
		ch:       ch,
		queue:    queue,
		log:      log,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (p *notificationPublisher) PublishNotification(ctx context.Context, notification *models.Notification) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	p.log.Debug("notificationPublisher.PublishNotification called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingNotificationTypeKey, string(notification.Type)),
	)

	body, err := json.Marshal(NotificationMessage{
		ID:            notification.ID,
		UserID:        notification.UserID,
		Type:          notification.Type,
		Title:         notification.Title,
		Message:       notification.Message,
		AppointmentID: notification.AppointmentID,
		PaymentID:     notification.PaymentID,
		CreatedAt:     notification.CreatedAt,
	})
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Type:         string(notification.Type),
		Timestamp:    notification.CreatedAt,
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, p.queue)
	}

	select {
	case confirmed := <-p.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), p.queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), p.queue)
	}
	return nil
}
