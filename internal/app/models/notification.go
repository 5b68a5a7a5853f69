package models

import "time"

type NotificationType string

const (
	NotificationAppointmentPendingPayment NotificationType = "appointment_pending_payment"
	NotificationAppointmentPending        NotificationType = "appointment_pending"
	NotificationAppointmentConfirmed      NotificationType = "appointment_confirmed"
	NotificationAppointmentCancelled      NotificationType = "appointment_cancelled"
	NotificationAppointmentCompleted      NotificationType = "appointment_completed"
	NotificationAppointmentNoShow         NotificationType = "appointment_no_show"
	NotificationAppointmentRescheduled    NotificationType = "appointment_rescheduled"
	NotificationAppointmentReminder       NotificationType = "appointment_reminder"
	NotificationPaymentCompleted          NotificationType = "payment_completed"
	NotificationPaymentFailed             NotificationType = "payment_failed"
	NotificationRefundCompleted           NotificationType = "refund_completed"
	NotificationRefundFailed              NotificationType = "refund_failed"
	NotificationScheduleUpdated           NotificationType = "schedule_updated"
)

// AppointmentNotificationType maps a status to its appointment_{status} event.
func AppointmentNotificationType(status AppointmentStatus) NotificationType {
	return NotificationType("appointment_" + string(status))
}

type Notification struct {
	ID            string           `json:"id" bson:"_id,omitempty"`
	UserID        string           `json:"userId" bson:"userId"`
	Title         string           `json:"title" bson:"title"`
	Message       string           `json:"message" bson:"message"`
	Type          NotificationType `json:"type" bson:"type"`
	AppointmentID string           `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
	PaymentID     string           `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	IsRead        bool             `json:"isRead" bson:"isRead"`
	CreatedAt     time.Time        `json:"createdAt" bson:"createdAt"`
}

// NotificationEvent is what domain code hands to the dispatcher.
// Recipients defaults to the appointment participants when empty.
type NotificationEvent struct {
	Type        NotificationType
	Appointment *Appointment
	Payment     *Payment
	Recipients  []string
	Reason      string
	OccurredAt  time.Time
}
