package requests

type Slot struct {
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

type WorkingDay struct {
	Day       int    `json:"day" validate:"weekday"`
	IsWorking bool   `json:"isWorking"`
	Slots     []Slot `json:"slots" validate:"dive"`
}

type SetWorkingHours struct {
	WorkingHours []WorkingDay `json:"workingHours" validate:"required,max=7,dive"`
}

type UpdateDateSchedule struct {
	Slots         []Slot `json:"slots" validate:"dive"`
	IsHoliday     bool   `json:"isHoliday"`
	HolidayReason string `json:"holidayReason" validate:"max=500"`
}

type BlockTimeSlot struct {
	Date      string `json:"date" validate:"required,yyyymmdd"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
	Reason    string `json:"reason" validate:"max=500"`
}
