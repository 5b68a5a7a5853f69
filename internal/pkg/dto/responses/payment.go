package responses

import "telehealth-service/internal/app/models"

type PaymentOrder struct {
	PaymentID   string               `json:"paymentId"`
	OrderID     string               `json:"orderId"`
	ApprovalURL string               `json:"approvalUrl"`
	Status      models.PaymentStatus `json:"status"`
}

// PaymentCapture reports the payment after a capture attempt. AlreadyCaptured is set for idempotent repeats.
type PaymentCapture struct {
	Payment         *models.Payment `json:"payment"`
	AlreadyCaptured bool            `json:"alreadyCaptured"`
}

type PaymentAnalytics struct {
	TotalCount     int                           `json:"totalCount"`
	TotalCompleted float64                       `json:"totalCompleted"`
	TotalRefunded  float64                       `json:"totalRefunded"`
	Currency       string                        `json:"currency"`
	ByStatus       []models.PaymentStatusSummary `json:"byStatus"`
}

type PaymentList struct {
	Payments []models.Payment `json:"payments"`
	Total    int              `json:"total"`
}
