package contracts

import (
	"context"
	"telehealth-service/internal/pkg/dto/requests"
)

type ProviderOrder struct {
	OrderID     string
	Status      string
	ApprovalURL string
}

type ProviderCapture struct {
	CaptureID         string
	Status            string
	PayerID           string
	MerchantID        string
	PaymentMethod     string
	CapturedAt        string
	ProcessorResponse string
	Raw               []byte
}

type ProviderRefund struct {
	RefundID          string
	Status            string
	ProcessorResponse string
	Raw               []byte
}

// ProviderError carries the provider's own failure description back to the caller.
type ProviderError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name,omitempty"`
	Message    string `json:"message,omitempty"`
	DebugID    string `json:"debugId,omitempty"`
	Body       string `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Name == "" && e.Message == "" {
		return e.Body
	}
	return e.Name + ": " + e.Message
}

type PaymentGatewayService interface {
	CreateOrder(ctx context.Context, referenceID string, amount float64, currency string) (*ProviderOrder, error)
	CaptureOrder(ctx context.Context, orderID string) (*ProviderCapture, error)
	RefundCapture(ctx context.Context, captureID string, amount float64, currency, note string) (*ProviderRefund, error)
}

type WebhookVerifier interface {
	Verify(ctx context.Context, headers requests.WebhookHeaders, body []byte) error
}
