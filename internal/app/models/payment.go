package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending      PaymentStatus = "PENDING"
	PaymentStatusProcessing   PaymentStatus = "PROCESSING"
	PaymentStatusCompleted    PaymentStatus = "COMPLETED"
	PaymentStatusFailed       PaymentStatus = "FAILED"
	PaymentStatusRefunded     PaymentStatus = "REFUNDED"
	PaymentStatusRefundFailed PaymentStatus = "REFUND_FAILED"
)

// CaptureSource tells which path drove a capture.
type CaptureSource string

const (
	CaptureSourceDirect  CaptureSource = "direct"
	CaptureSourceWebhook CaptureSource = "webhook"
)

type TransactionDetails struct {
	CaptureID         string    `json:"captureId,omitempty" bson:"captureId,omitempty"`
	PaymentMethod     string    `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	ProcessorResponse string    `json:"processorResponse,omitempty" bson:"processorResponse,omitempty"`
	MerchantID        string    `json:"merchantId,omitempty" bson:"merchantId,omitempty"`
	PaymentTimestamp  time.Time `json:"paymentTimestamp,omitempty" bson:"paymentTimestamp,omitempty"`
	CaptureSource     string    `json:"captureSource,omitempty" bson:"captureSource,omitempty"`
}

type PaymentMetadata struct {
	IPAddress    string `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent    string `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	RequestID    string `json:"requestId,omitempty" bson:"requestId,omitempty"`
	AttemptCount int    `json:"attemptCount" bson:"attemptCount"`
}

type RefundDetails struct {
	RefundID          string    `json:"refundId,omitempty" bson:"refundId,omitempty"`
	Reason            string    `json:"reason,omitempty" bson:"reason,omitempty"`
	RefundedAt        time.Time `json:"refundedAt,omitempty" bson:"refundedAt,omitempty"`
	Status            string    `json:"status,omitempty" bson:"status,omitempty"`
	Amount            float64   `json:"amount" bson:"amount"`
	ProcessorResponse string    `json:"processorResponse,omitempty" bson:"processorResponse,omitempty"`
}

type Payment struct {
	ID                 string              `json:"id" bson:"_id,omitempty"`
	AppointmentID      string              `json:"appointmentId" bson:"appointmentId"`
	PatientID          string              `json:"patientId" bson:"patientId"`
	DoctorID           string              `json:"doctorId" bson:"doctorId"`
	Amount             float64             `json:"amount" bson:"amount"`
	Currency           string              `json:"currency" bson:"currency"`
	Status             PaymentStatus       `json:"status" bson:"status"`
	PayPalOrderID      string              `json:"paypalOrderId" bson:"paypalOrderId"`
	PayerID            string              `json:"payerId,omitempty" bson:"payerId,omitempty"`
	ApprovalURL        string              `json:"approvalUrl,omitempty" bson:"approvalUrl,omitempty"`
	TransactionDetails *TransactionDetails `json:"transactionDetails,omitempty" bson:"transactionDetails,omitempty"`
	Metadata           PaymentMetadata     `json:"metadata" bson:"metadata"`
	RefundDetails      *RefundDetails      `json:"refundDetails,omitempty" bson:"refundDetails,omitempty"`
	TimeModel          `bson:",inline"`
}

func (p *Payment) IsParticipant(userID string) bool {
	return userID != "" && (p.PatientID == userID || p.DoctorID == userID)
}

// PaymentStatusSummary aggregates payments sharing one status.
type PaymentStatusSummary struct {
	Status PaymentStatus `json:"status" bson:"_id"`
	Count  int           `json:"count" bson:"count"`
	Amount float64       `json:"amount" bson:"amount"`
}
