package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"time"
)

type PaymentQuery struct {
	ParticipantID string
	AppointmentID string
	Statuses      []models.PaymentStatus
	Skip          int
	Limit         int
}

// PaymentWrite holds the fields set together with a status change. Nil members are left untouched.
type PaymentWrite struct {
	To                 models.PaymentStatus
	PayerID            string
	TransactionDetails *models.TransactionDetails
	RefundDetails      *models.RefundDetails
	UpdatedAt          time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (string, error)
	FindByID(ctx context.Context, paymentID string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	FindLatestByAppointmentID(ctx context.Context, appointmentID string) (*models.Payment, error)
	CountByAppointmentID(ctx context.Context, appointmentID string) (int, error)
	FindAll(ctx context.Context, query PaymentQuery) ([]models.Payment, error)
	Count(ctx context.Context, query PaymentQuery) (int, error)
	SummarizeByStatus(ctx context.Context, participantID string) ([]models.PaymentStatusSummary, error)
	// CompareAndSwapStatus applies write only while the stored status is one of expected.
	CompareAndSwapStatus(ctx context.Context, paymentID string, expected []models.PaymentStatus, write PaymentWrite) (bool, error)
}

// RefundProcessor is the slice of the payment usecase the appointment lifecycle depends on.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, appointmentID, reason string) (*models.Payment, error)
}

type PaymentUsecase interface {
	RefundProcessor
	CreateOrder(ctx context.Context, principal *models.Principal, request *requests.CreatePaymentOrder, metadata requests.PaymentMetadata) (*responses.PaymentOrder, error)
	CapturePayment(ctx context.Context, orderID string, source models.CaptureSource) (*responses.PaymentCapture, error)
	HandleWebhook(ctx context.Context, headers requests.WebhookHeaders, body []byte) error
	GetByID(ctx context.Context, principal *models.Principal, paymentID string) (*models.Payment, error)
	History(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error)
	Analytics(ctx context.Context, principal *models.Principal) (*responses.PaymentAnalytics, error)
	Refunds(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error)
	Pending(ctx context.Context, principal *models.Principal, pagination *requests.Pagination) (*responses.PaymentList, error)
}
