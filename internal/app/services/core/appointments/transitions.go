package appointments

import (
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/exceptions"
)

var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentStatusPendingPayment: {models.AppointmentStatusPending, models.AppointmentStatusCancelled},
	models.AppointmentStatusPending:        {models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled},
	models.AppointmentStatusConfirmed:      {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled, models.AppointmentStatusNoShow},
}

// CanTransition reports whether the state machine allows moving from one status to another.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// authorizeTransition checks that the caller takes part in the appointment under the matching
// role and that the role may request the target status.
func authorizeTransition(principal *models.Principal, appointment *models.Appointment, to models.AppointmentStatus) error {
	switch {
	case principal.IsPatient() && appointment.PatientID == principal.ID:
	case principal.IsDoctor() && appointment.DoctorID == principal.ID:
	default:
		return exceptions.ErrAppointmentNotParticipant(nil, principal.ID, appointment.ID)
	}

	switch to {
	case models.AppointmentStatusPending:
		// only the payment flow moves an appointment to pending
		return exceptions.ErrInvalidStatusTransition(nil, string(appointment.Status), string(to))
	case models.AppointmentStatusConfirmed, models.AppointmentStatusCompleted, models.AppointmentStatusNoShow:
		if !principal.IsDoctor() {
			return exceptions.ErrAppointmentRoleNotAllowed(nil, principal.Role, string(to))
		}
	case models.AppointmentStatusCancelled:
	default:
		return exceptions.ErrInvalidStatusTransition(nil, string(appointment.Status), string(to))
	}
	return nil
}

func cancelledBy(principal *models.Principal) models.CancelledBy {
	if principal.IsDoctor() {
		return models.CancelledByDoctor
	}
	return models.CancelledByPatient
}
