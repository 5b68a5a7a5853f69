package fakes

import (
	"context"
	"fmt"
	"sync"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
)

type NotificationRepository struct {
	mu      sync.Mutex
	records []models.Notification
	Err     error
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	stored := *notification
	stored.ID = fmt.Sprintf("notif-%d", len(r.records)+1)
	r.records = append(r.records, stored)
	return stored.ID, nil
}

func (r *NotificationRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Notification, 0)
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			result = append(result, r.records[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *NotificationRepository) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.records...)
}

type UserRepository struct {
	users map[string]models.User
}

func NewUserRepository(users ...models.User) *UserRepository {
	repo := &UserRepository{users: make(map[string]models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Mailer records sent emails.
type Mailer struct {
	mu     sync.Mutex
	Emails []requests.EmailPayload
	Err    error
}

func (m *Mailer) SendEmail(ctx context.Context, request *requests.EmailPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Emails = append(m.Emails, *request)
	return nil
}

func (m *Mailer) Sent() []requests.EmailPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]requests.EmailPayload(nil), m.Emails...)
}

// Publisher records published notifications.
type Publisher struct {
	mu            sync.Mutex
	Notifications []models.Notification
	Err           error
}

func (p *Publisher) PublishNotification(ctx context.Context, notification *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Notifications = append(p.Notifications, *notification)
	return nil
}

func (p *Publisher) Published() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.Notifications...)
}

// Dispatcher records events synchronously instead of delivering them.
type Dispatcher struct {
	mu     sync.Mutex
	Events []models.NotificationEvent
	// Reject makes Dispatch report a dropped event.
	Reject bool
}

func (d *Dispatcher) Dispatch(event models.NotificationEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Reject {
		return false
	}
	d.Events = append(d.Events, event)
	return true
}

func (d *Dispatcher) Types() []models.NotificationType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]models.NotificationType, 0, len(d.Events))
	for _, event := range d.Events {
		types = append(types, event.Type)
	}
	return types
}
