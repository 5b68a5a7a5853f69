package fakes

import (
	"context"
	"sync"
	"telehealth-service/internal/app/models"

	"github.com/goccy/go-json"
)

type CalendarRepository struct {
	mu sync.Mutex
	// calendars are kept encoded so callers never share slices with the store.
	calendars map[string][]byte
	// UpsertErr, when set, fails Upsert.
	UpsertErr error
}

func NewCalendarRepository(seed ...models.DoctorCalendar) *CalendarRepository {
	repo := &CalendarRepository{calendars: make(map[string][]byte)}
	for i := range seed {
		repo.Upsert(context.Background(), &seed[i])
	}
	return repo
}

func (r *CalendarRepository) FindByDoctorID(ctx context.Context, doctorID string) (*models.DoctorCalendar, error) {
	r.mu.Lock()
	raw, ok := r.calendars[doctorID]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var calendar models.DoctorCalendar
	if err := json.Unmarshal(raw, &calendar); err != nil {
		return nil, err
	}
	return &calendar, nil
}

func (r *CalendarRepository) Upsert(ctx context.Context, calendar *models.DoctorCalendar) error {
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	if calendar.ID == "" {
		calendar.ID = "cal-" + calendar.DoctorID
	}
	raw, err := json.Marshal(calendar)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.calendars[calendar.DoctorID] = raw
	r.mu.Unlock()
	return nil
}
