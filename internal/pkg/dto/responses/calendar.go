package responses

type AvailableSlot struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBooked  bool   `json:"isBooked"`
}

type AvailableSlots struct {
	DoctorID  string          `json:"doctorId"`
	Date      string          `json:"date"`
	IsHoliday bool            `json:"isHoliday"`
	Slots     []AvailableSlot `json:"slots"`
}

type BlockedSlot struct {
	SlotID string `json:"slotId"`
	Date   string `json:"date"`
}
