package calendars

import (
	"sort"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/dto/responses"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"

	"github.com/google/uuid"
)

// clockRange is a slot expressed in minutes after midnight, end exclusive.
type clockRange struct {
	start int
	end   int
}

func (r clockRange) overlaps(other clockRange) bool {
	return r.start < other.end && other.start < r.end
}

func parseClockRange(startTime, endTime string) (clockRange, error) {
	start, err := utils.ClockToMinutes(startTime)
	if err != nil {
		return clockRange{}, exceptions.ErrCalendarSlotRange(err, startTime, endTime)
	}
	end, err := utils.ClockToMinutes(endTime)
	if err != nil {
		return clockRange{}, exceptions.ErrCalendarSlotRange(err, startTime, endTime)
	}
	if start >= end {
		return clockRange{}, exceptions.ErrCalendarSlotRange(nil, startTime, endTime)
	}
	return clockRange{start: start, end: end}, nil
}

// normalizeSlots validates requested slots, drops repeated (start, end) pairs keeping the first,
// and assigns fresh ids.
func normalizeSlots(in []requests.Slot) ([]models.Slot, error) {
	out := make([]models.Slot, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, slot := range in {
		if _, err := parseClockRange(slot.StartTime, slot.EndTime); err != nil {
			return nil, err
		}
		key := slot.StartTime + "-" + slot.EndTime
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Slot{
			ID:        uuid.NewString(),
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	sortSlots(out)
	return out, nil
}

// mergeBlocked carries the blocked slots of a previous date entry into a new slot list.
// A blocked slot matching a new range flags that range; the rest are appended as block-only.
func mergeBlocked(slots []models.Slot, previous []models.Slot) []models.Slot {
	for _, old := range previous {
		if !old.IsBlocked {
			continue
		}
		if i := indexOfRange(slots, old.StartTime, old.EndTime); i >= 0 {
			old.BlockOnly = false
			slots[i] = old
			continue
		}
		old.BlockOnly = true
		slots = append(slots, old)
	}
	sortSlots(slots)
	return slots
}

// seedSlots copies template slots for a new date entry under fresh ids.
func seedSlots(template []models.Slot) []models.Slot {
	out := make([]models.Slot, 0, len(template))
	for _, slot := range template {
		slot.ID = uuid.NewString()
		slot.IsBooked = false
		slot.BlockOnly = false
		out = append(out, slot)
	}
	return out
}

func indexOfRange(slots []models.Slot, startTime, endTime string) int {
	for i := range slots {
		if slots[i].StartTime == startTime && slots[i].EndTime == endTime {
			return i
		}
	}
	return -1
}

func indexOfID(slots []models.Slot, slotID string) int {
	for i := range slots {
		if slots[i].ID == slotID {
			return i
		}
	}
	return -1
}

func sortSlots(slots []models.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime == slots[j].StartTime {
			return slots[i].EndTime < slots[j].EndTime
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// effectiveSlots picks the slot source for a date: the explicit entry unless it is a holiday,
// then the weekday template when working, else nothing.
func effectiveSlots(calendar *models.DoctorCalendar, date string, weekday int) (slots []models.Slot, isHoliday bool) {
	if entry, ok := calendar.DateEntry(date); ok {
		if entry.IsHoliday {
			return nil, true
		}
		return entry.Slots, false
	}
	if day, ok := calendar.WorkingDay(weekday); ok && day.IsWorking {
		return day.Slots, false
	}
	return nil, false
}

// resolveAvailable drops blocked slots and anything intersecting a blocked range, then marks
// slots whose start matches a booked start clock.
func resolveAvailable(slots []models.Slot, bookedStarts map[string]bool) []responses.AvailableSlot {
	var blocked []clockRange
	for _, slot := range slots {
		if !slot.IsBlocked {
			continue
		}
		if r, err := parseClockRange(slot.StartTime, slot.EndTime); err == nil {
			blocked = append(blocked, r)
		}
	}

	available := make([]responses.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsBlocked {
			continue
		}
		r, err := parseClockRange(slot.StartTime, slot.EndTime)
		if err != nil {
			continue
		}
		if overlapsAny(r, blocked) {
			continue
		}
		available = append(available, responses.AvailableSlot{
			ID:        slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			IsBooked:  bookedStarts[slot.StartTime],
		})
	}
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].StartTime < available[j].StartTime
	})
	return available
}

func overlapsAny(r clockRange, ranges []clockRange) bool {
	for _, other := range ranges {
		if r.overlaps(other) {
			return true
		}
	}
	return false
}
