package appointments

import (
	"testing"
	"telehealth-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []models.AppointmentStatus{
		models.AppointmentStatusPendingPayment,
		models.AppointmentStatusPending,
		models.AppointmentStatusConfirmed,
		models.AppointmentStatusCancelled,
		models.AppointmentStatusCompleted,
		models.AppointmentStatusNoShow,
		models.AppointmentStatusRescheduled,
	}
	allowed := map[[2]models.AppointmentStatus]bool{
		{models.AppointmentStatusPendingPayment, models.AppointmentStatusPending}:   true,
		{models.AppointmentStatusPendingPayment, models.AppointmentStatusCancelled}: true,
		{models.AppointmentStatusPending, models.AppointmentStatusConfirmed}:        true,
		{models.AppointmentStatusPending, models.AppointmentStatusCancelled}:        true,
		{models.AppointmentStatusConfirmed, models.AppointmentStatusCompleted}:      true,
		{models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled}:      true,
		{models.AppointmentStatusConfirmed, models.AppointmentStatusNoShow}:         true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.AppointmentStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
