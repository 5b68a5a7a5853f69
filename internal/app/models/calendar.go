package models

import "sort"

type Slot struct {
	ID          string `json:"id" bson:"id"`
	StartTime   string `json:"startTime" bson:"startTime"`
	EndTime     string `json:"endTime" bson:"endTime"`
	IsBooked    bool   `json:"isBooked" bson:"isBooked"`
	IsBlocked   bool   `json:"isBlocked" bson:"isBlocked"`
	BlockReason string `json:"blockReason,omitempty" bson:"blockReason,omitempty"`
	// BlockOnly marks a slot that exists only to carry a block; unblocking removes it.
	BlockOnly bool `json:"blockOnly,omitempty" bson:"blockOnly,omitempty"`
}

type DateSchedule struct {
	Date          string `json:"date" bson:"date"`
	Slots         []Slot `json:"slots" bson:"slots"`
	IsHoliday     bool   `json:"isHoliday" bson:"isHoliday"`
	HolidayReason string `json:"holidayReason,omitempty" bson:"holidayReason,omitempty"`
}

// WorkingDay is the default template for a weekday, 0 being Sunday.
type WorkingDay struct {
	Day       int    `json:"day" bson:"day"`
	IsWorking bool   `json:"isWorking" bson:"isWorking"`
	Slots     []Slot `json:"slots" bson:"slots"`
}

type DoctorCalendar struct {
	ID                  string         `json:"id" bson:"_id,omitempty"`
	DoctorID            string         `json:"doctorId" bson:"doctorId"`
	Schedule            []DateSchedule `json:"schedule" bson:"schedule"`
	DefaultWorkingHours []WorkingDay   `json:"defaultWorkingHours" bson:"defaultWorkingHours"`
	TimeModel           `bson:",inline"`
}

func NewDoctorCalendar(doctorID string) *DoctorCalendar {
	return &DoctorCalendar{
		DoctorID:            doctorID,
		Schedule:            []DateSchedule{},
		DefaultWorkingHours: []WorkingDay{},
	}
}

// DateEntry returns the explicit schedule entry for date, if any.
func (c *DoctorCalendar) DateEntry(date string) (*DateSchedule, bool) {
	for i := range c.Schedule {
		if c.Schedule[i].Date == date {
			return &c.Schedule[i], true
		}
	}
	return nil, false
}

// WorkingDay returns the default entry for weekday, if any.
func (c *DoctorCalendar) WorkingDay(weekday int) (*WorkingDay, bool) {
	for i := range c.DefaultWorkingHours {
		if c.DefaultWorkingHours[i].Day == weekday {
			return &c.DefaultWorkingHours[i], true
		}
	}
	return nil, false
}

// PutDateEntry replaces the entry for entry.Date or inserts it, keeping the schedule ordered by date.
func (c *DoctorCalendar) PutDateEntry(entry DateSchedule) {
	if existing, ok := c.DateEntry(entry.Date); ok {
		*existing = entry
		return
	}
	c.Schedule = append(c.Schedule, entry)
	sort.SliceStable(c.Schedule, func(i, j int) bool {
		return c.Schedule[i].Date < c.Schedule[j].Date
	})
}
