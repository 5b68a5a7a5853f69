package notifications

import (
	"fmt"
	"telehealth-service/internal/app/models"
	"time"
)

var notificationTitles = map[models.NotificationType]string{
	models.NotificationAppointmentPendingPayment: "Appointment awaiting payment",
	models.NotificationAppointmentPending:        "Appointment requested",
	models.NotificationAppointmentConfirmed:      "Appointment confirmed",
	models.NotificationAppointmentCancelled:      "Appointment cancelled",
	models.NotificationAppointmentCompleted:      "Appointment completed",
	models.NotificationAppointmentNoShow:         "Missed appointment",
	models.NotificationAppointmentRescheduled:    "Appointment rescheduled",
	models.NotificationAppointmentReminder:       "Appointment tomorrow",
	models.NotificationPaymentCompleted:          "Payment received",
	models.NotificationPaymentFailed:             "Payment failed",
	models.NotificationRefundCompleted:           "Refund issued",
	models.NotificationRefundFailed:              "Refund could not be processed",
	models.NotificationScheduleUpdated:           "Schedule updated",
}

func titleFor(eventType models.NotificationType) string {
	if title, ok := notificationTitles[eventType]; ok {
		return title
	}
	return "Telehealth update"
}

// messageFor renders the body shown in-app and in the email. Times are shown in loc.
func messageFor(event models.NotificationEvent, loc *time.Location) string {
	var when string
	if event.Appointment != nil {
		when = event.Appointment.DateTime.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
	}

	var message string
	switch event.Type {
	case models.NotificationAppointmentPendingPayment:
		message = fmt.Sprintf("Your appointment on %s is reserved. Complete the payment to send the request to your doctor.", when)
	case models.NotificationAppointmentPending:
		message = fmt.Sprintf("The appointment on %s is waiting for the doctor's confirmation.", when)
	case models.NotificationAppointmentConfirmed:
		message = fmt.Sprintf("The appointment on %s is confirmed.", when)
	case models.NotificationAppointmentCancelled:
		message = fmt.Sprintf("The appointment on %s was cancelled.", when)
	case models.NotificationAppointmentCompleted:
		message = fmt.Sprintf("The appointment on %s is complete. You can now rate it.", when)
	case models.NotificationAppointmentNoShow:
		message = fmt.Sprintf("The appointment on %s was marked as missed.", when)
	case models.NotificationAppointmentRescheduled:
		message = fmt.Sprintf("The appointment moved to %s and awaits confirmation.", when)
	case models.NotificationAppointmentReminder:
		message = fmt.Sprintf("Reminder: you have an appointment on %s.", when)
	case models.NotificationPaymentCompleted:
		message = fmt.Sprintf("We received your payment of %s.", paymentAmount(event.Payment))
	case models.NotificationPaymentFailed:
		message = fmt.Sprintf("Your payment of %s did not go through. Please try again.", paymentAmount(event.Payment))
	case models.NotificationRefundCompleted:
		message = fmt.Sprintf("A refund of %s is on its way.", paymentAmount(event.Payment))
	case models.NotificationRefundFailed:
		message = fmt.Sprintf("The refund of %s failed and is being reviewed.", paymentAmount(event.Payment))
	case models.NotificationScheduleUpdated:
		if event.Reason != "" {
			return "Your availability was updated: " + event.Reason + "."
		}
		return "Your availability was updated."
	default:
		message = titleFor(event.Type)
	}

	if event.Reason != "" {
		message += " Reason: " + event.Reason
	}
	return message
}

func paymentAmount(payment *models.Payment) string {
	if payment == nil {
		return "your payment"
	}
	return fmt.Sprintf("%.2f %s", payment.Amount, payment.Currency)
}

// recipientsOf returns the users an event is delivered to.
func recipientsOf(event models.NotificationEvent) []string {
	if len(event.Recipients) > 0 {
		return event.Recipients
	}
	if event.Appointment != nil {
		return []string{event.Appointment.PatientID, event.Appointment.DoctorID}
	}
	if event.Payment != nil {
		return []string{event.Payment.PatientID}
	}
	return nil
}
