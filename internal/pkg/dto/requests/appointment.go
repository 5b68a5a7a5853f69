package requests

import "time"

type CreateAppointment struct {
	DoctorID       string    `json:"doctorId" validate:"required"`
	DateTime       time.Time `json:"dateTime" validate:"required"`
	ReasonForVisit string    `json:"reasonForVisit" validate:"required,min=1,max=1000"`
	Duration       int       `json:"duration" validate:"omitempty,gte=15,lte=240"`
}

type UpdateAppointmentStatus struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed no_show"`
	Reason string `json:"reason" validate:"max=1000"`
}

type RescheduleAppointment struct {
	NewDateTime time.Time `json:"newDateTime" validate:"required"`
	Reason      string    `json:"reason" validate:"max=1000"`
}

type RateAppointment struct {
	Score       int    `json:"score" validate:"required,gte=1,lte=5"`
	Feedback    string `json:"feedback" validate:"max=2000"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// AppointmentFilter narrows list queries; empty fields are ignored.
type AppointmentFilter struct {
	Status    string `validate:"omitempty,oneof=pending_payment pending confirmed cancelled completed no_show"`
	StartDate string `validate:"omitempty,yyyymmdd"`
	EndDate   string `validate:"omitempty,yyyymmdd"`
}

type AppointmentScheduleQuery struct {
	From string `validate:"omitempty,yyyymmdd"`
	To   string `validate:"omitempty,yyyymmdd"`
}
