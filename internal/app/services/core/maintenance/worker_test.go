package maintenance

import (
	"context"
	"fmt"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts/fakes"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var clinicZone = time.FixedZone("WIB", 7*60*60)

type workerFixture struct {
	worker       *Worker
	appointments *fakes.AppointmentRepository
	redis        *fakes.RedisRepository
	dispatcher   *fakes.Dispatcher
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		appointments: fakes.NewAppointmentRepository(),
		redis:        fakes.NewRedisRepository(),
		dispatcher:   &fakes.Dispatcher{},
	}
	cfg := &config.InternalConfig{
		App: config.App{Location: clinicZone},
		Maintenance: config.AppMaintenance{
			NoShowCronSpec:          "@hourly",
			ReminderCronSpec:        "0 8 * * *",
			NoShowGraceInMinutes:    30,
			LeaderLockTTLInSeconds:  60,
			ReminderDedupTTLInHours: 48,
		},
	}
	lockService := locker.NewLockService(f.redis, zap.NewNop())
	f.worker = NewWorker(f.appointments, f.redis, lockService, f.dispatcher, cfg, zap.NewNop())
	return f
}

func (f *workerFixture) put(status models.AppointmentStatus, at time.Time) string {
	return f.appointments.Put(models.Appointment{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		DateTime:  at.UTC(),
		Duration:  30,
		Status:    status,
	})
}

func TestWorker_RunNoShowSweep(t *testing.T) {
	f := newWorkerFixture(t)
	now := time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC)

	overdue := f.put(models.AppointmentStatusConfirmed, now.Add(-2*time.Hour))
	withinGrace := f.put(models.AppointmentStatusConfirmed, now.Add(-10*time.Minute))
	pending := f.put(models.AppointmentStatusPending, now.Add(-2*time.Hour))
	upcoming := f.put(models.AppointmentStatusConfirmed, now.Add(time.Hour))

	moved, err := f.worker.RunNoShowSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	swept := f.appointments.Get(overdue)
	assert.Equal(t, models.AppointmentStatusNoShow, swept.Status)
	require.NotEmpty(t, swept.StatusHistory)
	last := swept.StatusHistory[len(swept.StatusHistory)-1]
	assert.Equal(t, constvars.RoleTypeSystem, last.By)
	assert.Equal(t, models.AppointmentStatusConfirmed, last.From)

	assert.Equal(t, models.AppointmentStatusConfirmed, f.appointments.Get(withinGrace).Status)
	assert.Equal(t, models.AppointmentStatusPending, f.appointments.Get(pending).Status)
	assert.Equal(t, models.AppointmentStatusConfirmed, f.appointments.Get(upcoming).Status)
	assert.Equal(t, []models.NotificationType{models.NotificationAppointmentNoShow}, f.dispatcher.Types())

	moved, err = f.worker.RunNoShowSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestWorker_RunNoShowSweep_SkipsConcurrentChange(t *testing.T) {
	f := newWorkerFixture(t)
	now := time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC)
	id := f.put(models.AppointmentStatusConfirmed, now.Add(-2*time.Hour))

	f.appointments.BeforeCAS = func(appointmentID string) {
		completed := *f.appointments.Get(appointmentID)
		completed.Status = models.AppointmentStatusCompleted
		f.appointments.Put(completed)
	}

	moved, err := f.worker.RunNoShowSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Equal(t, models.AppointmentStatusCompleted, f.appointments.Get(id).Status)
	assert.Empty(t, f.dispatcher.Types())
}

func TestWorker_RunReminders(t *testing.T) {
	f := newWorkerFixture(t)
	// 20:00 local on the 7th; tomorrow is the 8th in the clinic zone
	now := time.Date(2030, 1, 7, 20, 0, 0, 0, clinicZone)

	early := f.put(models.AppointmentStatusConfirmed, time.Date(2030, 1, 8, 0, 30, 0, 0, clinicZone))
	late := f.put(models.AppointmentStatusConfirmed, time.Date(2030, 1, 8, 23, 30, 0, 0, clinicZone))
	f.put(models.AppointmentStatusConfirmed, time.Date(2030, 1, 9, 0, 0, 0, 0, clinicZone))
	f.put(models.AppointmentStatusPending, time.Date(2030, 1, 8, 10, 0, 0, 0, clinicZone))
	f.put(models.AppointmentStatusConfirmed, time.Date(2030, 1, 7, 22, 0, 0, 0, clinicZone))

	sent, err := f.worker.RunReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []models.NotificationType{models.NotificationAppointmentReminder, models.NotificationAppointmentReminder}, f.dispatcher.Types())
	assert.True(t, f.redis.Has(fmt.Sprintf(constvars.RedisKeyReminderSentFormat, early, "2030-01-08")))
	assert.True(t, f.redis.Has(fmt.Sprintf(constvars.RedisKeyReminderSentFormat, late, "2030-01-08")))

	sent, err = f.worker.RunReminders(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.dispatcher.Types(), 2)
}

func TestWorker_RunReminders_DroppedEventIsRetried(t *testing.T) {
	f := newWorkerFixture(t)
	now := time.Date(2030, 1, 7, 8, 0, 0, 0, clinicZone)
	id := f.put(models.AppointmentStatusConfirmed, time.Date(2030, 1, 8, 9, 0, 0, 0, clinicZone))

	f.dispatcher.Reject = true
	sent, err := f.worker.RunReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.False(t, f.redis.Has(fmt.Sprintf(constvars.RedisKeyReminderSentFormat, id, "2030-01-08")))

	f.dispatcher.Reject = false
	sent, err = f.worker.RunReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestWorker_RunAsLeader(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	key := fmt.Sprintf(constvars.RedisKeyMaintenanceLeaderFormat, JobReminders)

	runs := 0
	run := func(context.Context, time.Time) (int, error) {
		runs++
		return 0, nil
	}

	acquired, token, err := f.worker.LockService.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	f.worker.runAsLeader(ctx, JobReminders, run)
	assert.Zero(t, runs)

	require.NoError(t, f.worker.LockService.Unlock(ctx, key, token))
	f.worker.runAsLeader(ctx, JobReminders, run)
	assert.Equal(t, 1, runs)
	assert.False(t, f.redis.Has(key))

	// the other job has its own lock
	otherKey := fmt.Sprintf(constvars.RedisKeyMaintenanceLeaderFormat, JobNoShowSweep)
	assert.NotEqual(t, key, otherKey)
}

func TestWorker_StartFallsBackOnInvalidSpec(t *testing.T) {
	f := newWorkerFixture(t)
	f.worker.InternalConfig.Maintenance.NoShowCronSpec = "every now and then"

	f.worker.Start(context.Background())
	defer f.worker.Stop()

	require.NotNil(t, f.worker.cron)
	assert.Len(t, f.worker.cron.Entries(), 2)
}
