package utils

import (
	"fmt"
	"strconv"
	"telehealth-service/internal/pkg/constvars"
	"time"
)

// ClockToMinutes converts an HH:MM clock value to minutes after midnight.
func ClockToMinutes(clock string) (int, error) {
	if !IsValidHHMM(clock) {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hours, _ := strconv.Atoi(clock[:2])
	minutes, _ := strconv.Atoi(clock[3:])
	return hours*60 + minutes, nil
}

func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDateInLocation parses a YYYY-MM-DD date as midnight in loc.
func ParseDateInLocation(date string, loc *time.Location) (time.Time, error) {
	if !IsValidDate(date) {
		return time.Time{}, fmt.Errorf("invalid date value %q", date)
	}
	return time.ParseInLocation(constvars.DateFormatYYYYMMDD, date, loc)
}

// DayBounds returns [midnight, next midnight) of the calendar date of t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constvars.DateFormatYYYYMMDD)
}

func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constvars.TimeFormatHHMM)
}
