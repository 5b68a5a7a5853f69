package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) (string, error)
	FindByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}
