package responses

import "telehealth-service/internal/app/models"

type RefundOutcome struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// AppointmentStatusUpdate is returned by a status change. Refund is set only when a cancellation attempted one.
type AppointmentStatusUpdate struct {
	Appointment *models.Appointment `json:"appointment"`
	Refund      *RefundOutcome      `json:"refund,omitempty"`
}

type AppointmentStats struct {
	Total    int            `json:"total"`
	Upcoming int            `json:"upcoming"`
	ByStatus map[string]int `json:"byStatus"`
}

type AppointmentHistory struct {
	Appointments []models.Appointment `json:"appointments"`
	Total        int                  `json:"total"`
}
