package fakes

import (
	"context"
	"fmt"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
)

// PaymentGateway answers with the configured funcs and counts calls.
type PaymentGateway struct {
	mu            sync.Mutex
	OrderFunc     func(referenceID string, amount float64, currency string) (*contracts.ProviderOrder, error)
	CaptureFunc   func(orderID string) (*contracts.ProviderCapture, error)
	RefundFunc    func(captureID string, amount float64) (*contracts.ProviderRefund, error)
	OrderCalls    int
	CaptureCalls  int
	RefundCalls   int
	orderSequence int
}

func (g *PaymentGateway) CreateOrder(ctx context.Context, referenceID string, amount float64, currency string) (*contracts.ProviderOrder, error) {
	g.mu.Lock()
	g.OrderCalls++
	g.orderSequence++
	sequence := g.orderSequence
	g.mu.Unlock()
	if g.OrderFunc != nil {
		return g.OrderFunc(referenceID, amount, currency)
	}
	orderID := fmt.Sprintf("ORDER-%d", sequence)
	return &contracts.ProviderOrder{
		OrderID:     orderID,
		Status:      "CREATED",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + orderID,
	}, nil
}

func (g *PaymentGateway) CaptureOrder(ctx context.Context, orderID string) (*contracts.ProviderCapture, error) {
	g.mu.Lock()
	g.CaptureCalls++
	g.mu.Unlock()
	if g.CaptureFunc != nil {
		return g.CaptureFunc(orderID)
	}
	return &contracts.ProviderCapture{
		CaptureID:     "CAPTURE-" + orderID,
		Status:        "COMPLETED",
		PayerID:       "PAYER-1",
		MerchantID:    "MERCHANT-1",
		PaymentMethod: "paypal",
		Raw:           []byte(`{"status":"COMPLETED"}`),
	}, nil
}

func (g *PaymentGateway) RefundCapture(ctx context.Context, captureID string, amount float64, currency, note string) (*contracts.ProviderRefund, error) {
	g.mu.Lock()
	g.RefundCalls++
	g.mu.Unlock()
	if g.RefundFunc != nil {
		return g.RefundFunc(captureID, amount)
	}
	return &contracts.ProviderRefund{RefundID: "REFUND-" + captureID, Status: "COMPLETED"}, nil
}

func (g *PaymentGateway) Calls() (orders, captures, refunds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.OrderCalls, g.CaptureCalls, g.RefundCalls
}

// WebhookVerifier returns Err for every transmission.
type WebhookVerifier struct {
	Err error
}

func (v *WebhookVerifier) Verify(ctx context.Context, headers requests.WebhookHeaders, body []byte) error {
	return v.Err
}

// Archive keeps stored objects in memory.
type Archive struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
}

func NewArchive() *Archive {
	return &Archive{Objects: make(map[string][]byte)}
}

func (a *Archive) PutJSON(ctx context.Context, objectName string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.Objects[objectName] = append([]byte(nil), body...)
	return nil
}

func (a *Archive) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.Objects))
	for name := range a.Objects {
		names = append(names, name)
	}
	return names
}

// RefundProcessor records refund requests and answers with Func.
type RefundProcessor struct {
	mu    sync.Mutex
	Calls []string
	Func  func(appointmentID, reason string) (*models.Payment, error)
}

func (p *RefundProcessor) ProcessRefund(ctx context.Context, appointmentID, reason string) (*models.Payment, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, appointmentID)
	p.mu.Unlock()
	if p.Func != nil {
		return p.Func(appointmentID, reason)
	}
	return nil, nil
}
