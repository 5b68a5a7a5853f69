package requests

type CreatePaymentOrder struct {
	AppointmentID string  `json:"appointmentId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

// PaymentMetadata is collected from the incoming HTTP request.
type PaymentMetadata struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// WebhookHeaders carries the provider transmission headers needed for signature verification.
type WebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

type PayPalWebhookEvent struct {
	ID           string                `json:"id"`
	EventType    string                `json:"event_type"`
	ResourceType string                `json:"resource_type"`
	Summary      string                `json:"summary"`
	CreateTime   string                `json:"create_time"`
	Resource     PayPalWebhookResource `json:"resource"`
}

// PayPalWebhookResource covers the order and capture resource shapes the service reacts to.
type PayPalWebhookResource struct {
	ID                string                   `json:"id"`
	Status            string                   `json:"status"`
	SupplementaryData *PayPalSupplementaryData `json:"supplementary_data,omitempty"`
	Payer             *PayPalPayer             `json:"payer,omitempty"`
}

type PayPalSupplementaryData struct {
	RelatedIDs struct {
		OrderID string `json:"order_id"`
	} `json:"related_ids"`
}

type PayPalPayer struct {
	PayerID string `json:"payer_id"`
}

// OrderID resolves the order a webhook resource refers to. Order events carry it as the resource id.
func (r PayPalWebhookResource) OrderID() string {
	if r.SupplementaryData != nil && r.SupplementaryData.RelatedIDs.OrderID != "" {
		return r.SupplementaryData.RelatedIDs.OrderID
	}
	return r.ID
}
