package calendars

import (
	"testing"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlots(t *testing.T) {
	t.Run("dedups identical ranges and sorts", func(t *testing.T) {
		slots, err := normalizeSlots([]requests.Slot{
			{StartTime: "10:00", EndTime: "10:30"},
			{StartTime: "09:00", EndTime: "09:30"},
			{StartTime: "10:00", EndTime: "10:30"},
		})
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Equal(t, "09:00", slots[0].StartTime)
		assert.Equal(t, "10:00", slots[1].StartTime)
		assert.NotEmpty(t, slots[0].ID)
		assert.NotEqual(t, slots[0].ID, slots[1].ID)
	})

	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"start after end", "11:00", "10:00"},
		{"empty range", "10:00", "10:00"},
		{"bad hour", "24:00", "24:30"},
		{"single digit hour", "9:00", "10:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalizeSlots([]requests.Slot{{StartTime: tc.start, EndTime: tc.end}})
			require.Error(t, err)
			assert.True(t, exceptions.HasStatusCode(err, 400))
		})
	}
}

func TestMergeBlocked(t *testing.T) {
	fresh := []models.Slot{
		{ID: "a", StartTime: "09:00", EndTime: "09:30"},
		{ID: "b", StartTime: "10:00", EndTime: "10:30"},
	}
	previous := []models.Slot{
		{ID: "old-open", StartTime: "08:00", EndTime: "08:30"},
		{ID: "old-blocked", StartTime: "10:00", EndTime: "10:30", IsBlocked: true, BlockReason: "surgery"},
		{ID: "old-lunch", StartTime: "12:00", EndTime: "13:00", IsBlocked: true},
	}

	merged := mergeBlocked(fresh, previous)

	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "old-blocked", merged[1].ID)
	assert.Equal(t, "surgery", merged[1].BlockReason)
	assert.False(t, merged[1].BlockOnly)
	assert.Equal(t, "old-lunch", merged[2].ID)
	assert.True(t, merged[2].BlockOnly)
}

func TestEffectiveSlots(t *testing.T) {
	calendar := models.NewDoctorCalendar("doc-1")
	calendar.DefaultWorkingHours = []models.WorkingDay{
		{Day: 1, IsWorking: true, Slots: []models.Slot{{ID: "mon", StartTime: "09:00", EndTime: "09:30"}}},
		{Day: 2, IsWorking: false, Slots: []models.Slot{{ID: "tue", StartTime: "09:00", EndTime: "09:30"}}},
	}
	calendar.PutDateEntry(models.DateSchedule{Date: "2030-01-14", Slots: []models.Slot{{ID: "explicit", StartTime: "14:00", EndTime: "14:30"}}})
	calendar.PutDateEntry(models.DateSchedule{Date: "2030-01-21", IsHoliday: true, Slots: []models.Slot{{ID: "ignored", StartTime: "14:00", EndTime: "14:30"}}})

	cases := []struct {
		name        string
		date        string
		weekday     int
		wantIDs     []string
		wantHoliday bool
	}{
		{"explicit entry wins", "2030-01-14", 1, []string{"explicit"}, false},
		{"holiday empties the day", "2030-01-21", 1, nil, true},
		{"working weekday default", "2030-01-07", 1, []string{"mon"}, false},
		{"non working weekday", "2030-01-08", 2, nil, false},
		{"weekday without template", "2030-01-09", 3, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots, isHoliday := effectiveSlots(calendar, tc.date, tc.weekday)
			assert.Equal(t, tc.wantHoliday, isHoliday)
			var ids []string
			for _, slot := range slots {
				ids = append(ids, slot.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestResolveAvailable(t *testing.T) {
	slots := []models.Slot{
		{ID: "late", StartTime: "11:00", EndTime: "11:30"},
		{ID: "early", StartTime: "09:00", EndTime: "09:30"},
		{ID: "covered", StartTime: "10:00", EndTime: "10:30"},
		{ID: "block", StartTime: "10:15", EndTime: "10:45", IsBlocked: true},
		{ID: "touching", StartTime: "10:45", EndTime: "11:00"},
	}

	available := resolveAvailable(slots, map[string]bool{"11:00": true})

	require.Len(t, available, 3)
	assert.Equal(t, "early", available[0].ID)
	assert.False(t, available[0].IsBooked)
	assert.Equal(t, "touching", available[1].ID)
	assert.Equal(t, "late", available[2].ID)
	assert.True(t, available[2].IsBooked)
}
