package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
)

type MailerService interface {
	SendEmail(ctx context.Context, request *requests.EmailPayload) error
}

// EventPublisher fans notification events out to realtime consumers.
type EventPublisher interface {
	PublishNotification(ctx context.Context, notification *models.Notification) error
}

// NotificationDispatcher accepts events without blocking the caller. It returns false when the event was dropped.
type NotificationDispatcher interface {
	Dispatch(event models.NotificationEvent) bool
}
