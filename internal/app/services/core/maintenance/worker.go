package maintenance

import (
	"context"
	"errors"
	"fmt"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/metrics"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobNoShowSweep = "no_show_sweep"
	JobReminders   = "reminders"

	defaultNoShowCronSpec   = "@hourly"
	defaultReminderCronSpec = "0 8 * * *"
	defaultNoShowGrace      = 30 * time.Minute
	defaultLeaderLockTTL    = 2 * time.Minute
	defaultReminderDedupTTL = 48 * time.Hour

	noShowReason = "marked as no-show after the grace period"
)

// Worker runs the scheduled appointment maintenance: the no-show sweep and day-ahead reminders.
// Each tick takes a per-job leader lock so only one replica does the work.
type Worker struct {
	AppointmentRepository contracts.AppointmentRepository
	RedisRepository       contracts.RedisRepository
	LockService           contracts.LockerService
	Dispatcher            contracts.NotificationDispatcher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
}

func NewWorker(
	appointmentRepository contracts.AppointmentRepository,
	redisRepository contracts.RedisRepository,
	lockService contracts.LockerService,
	dispatcher contracts.NotificationDispatcher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		AppointmentRepository: appointmentRepository,
		RedisRepository:       redisRepository,
		LockService:           lockService,
		Dispatcher:            dispatcher,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

// Start schedules both jobs. An invalid cron spec falls back to the job's default.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New(
		cron.WithLocation(w.location()),
		cron.WithLogger(newCronLogger(w.Log)),
		cron.WithChain(cron.SkipIfStillRunning(newCronLogger(w.Log))),
	)

	cfg := w.InternalConfig.Maintenance
	w.schedule(c, JobNoShowSweep, cfg.NoShowCronSpec, defaultNoShowCronSpec, w.RunNoShowSweep)
	w.schedule(c, JobReminders, cfg.ReminderCronSpec, defaultReminderCronSpec, w.RunReminders)

	c.Start()
	w.cron = c
	w.Log.Info("maintenance worker started",
		zap.String("no_show_cron", cfg.NoShowCronSpec),
		zap.String("reminder_cron", cfg.ReminderCronSpec),
	)
}

func (w *Worker) schedule(c *cron.Cron, job, spec, fallback string, run func(context.Context, time.Time) (int, error)) {
	if spec == "" {
		spec = fallback
	}
	task := func() { w.runAsLeader(w.runCtx, job, run) }
	if _, err := c.AddFunc(spec, task); err != nil {
		w.Log.Warn("maintenance.worker: invalid cron spec, using default",
			zap.String(constvars.LoggingOperationKey, job),
			zap.String("cron_spec", spec),
			zap.Error(err),
		)
		_, _ = c.AddFunc(fallback, task)
	}
}

// Stop cancels in-flight runs and waits for them to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) runAsLeader(ctx context.Context, job string, run func(context.Context, time.Time) (int, error)) {
	ttl := w.leaderLockTTL()
	key := fmt.Sprintf(constvars.RedisKeyMaintenanceLeaderFormat, job)

	acquired, token, err := w.LockService.TryLock(ctx, key, ttl)
	if err != nil {
		metrics.MaintenanceRunsTotal.WithLabelValues(job, metrics.ResultFailure).Inc()
		w.Log.Warn("maintenance.worker: leader lock attempt failed", zap.String(constvars.LoggingOperationKey, job), zap.Error(err))
		return
	}
	if !acquired {
		metrics.MaintenanceRunsTotal.WithLabelValues(job, metrics.ResultNoop).Inc()
		w.Log.Info("maintenance.worker: leader lock held by another instance", zap.String(constvars.LoggingOperationKey, job))
		return
	}
	defer w.LockService.Unlock(context.WithoutCancel(ctx), key, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.LockService.Refresh(refreshCtx, key, token, ttl); err != nil {
					w.Log.Warn("maintenance.worker: failed to refresh leader lock", zap.String(constvars.LoggingRedisKey, key), zap.Error(err))
				}
			}
		}
	}()

	start := time.Now()
	count, err := run(ctx, start)
	if err != nil {
		metrics.MaintenanceRunsTotal.WithLabelValues(job, metrics.ResultFailure).Inc()
		w.Log.Error("maintenance.worker: run failed",
			zap.String(constvars.LoggingOperationKey, job),
			zap.Int(constvars.LoggingCountKey, count),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		return
	}
	metrics.MaintenanceRunsTotal.WithLabelValues(job, metrics.ResultSuccess).Inc()
	w.Log.Info("maintenance.worker: run finished",
		zap.String(constvars.LoggingOperationKey, job),
		zap.Int(constvars.LoggingCountKey, count),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
}

// RunNoShowSweep moves confirmed appointments whose start is older than the grace period to
// no_show. It returns how many were moved. Appointments changed concurrently are skipped.
func (w *Worker) RunNoShowSweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.UTC().Add(-w.noShowGrace())
	appointments, err := w.AppointmentRepository.FindAll(ctx, contracts.AppointmentQuery{
		Statuses: []models.AppointmentStatus{models.AppointmentStatusConfirmed},
		To:       cutoff,
	})
	if err != nil {
		return 0, err
	}

	var errs []error
	moved := 0
	for i := range appointments {
		appointment := appointments[i]
		change := models.StatusChange{
			From:   models.AppointmentStatusConfirmed,
			To:     models.AppointmentStatusNoShow,
			By:     models.SystemPrincipal.ID,
			Role:   models.SystemPrincipal.Role,
			Reason: noShowReason,
			At:     now.UTC(),
		}
		swapped, err := w.AppointmentRepository.CompareAndSwapStatus(ctx, appointment.ID, models.AppointmentStatusConfirmed, contracts.AppointmentStatusWrite{
			To:        models.AppointmentStatusNoShow,
			Change:    change,
			UpdatedAt: now.UTC(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("appointment %s: %w", appointment.ID, err))
			continue
		}
		if !swapped {
			w.Log.Info("maintenance.worker: appointment changed before no-show sweep",
				zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
			)
			continue
		}

		moved++
		metrics.AppointmentTransitionsTotal.WithLabelValues(string(models.AppointmentStatusNoShow)).Inc()
		appointment.Status = models.AppointmentStatusNoShow
		appointment.StatusHistory = append(appointment.StatusHistory, change)
		appointment.UpdatedAt = now.UTC()
		w.Dispatcher.Dispatch(models.NotificationEvent{
			Type:        models.NotificationAppointmentNoShow,
			Appointment: &appointment,
			OccurredAt:  now.UTC(),
		})
	}
	return moved, errors.Join(errs...)
}

// RunReminders notifies both participants of confirmed appointments starting tomorrow in the
// clinic timezone. A redis marker per appointment and day keeps overlapping runs from repeating
// a reminder.
func (w *Worker) RunReminders(ctx context.Context, now time.Time) (int, error) {
	loc := w.location()
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	day := start.Format(time.DateOnly)

	appointments, err := w.AppointmentRepository.FindAll(ctx, contracts.AppointmentQuery{
		Statuses: []models.AppointmentStatus{models.AppointmentStatusConfirmed},
		From:     start.UTC(),
		To:       end.UTC(),
	})
	if err != nil {
		return 0, err
	}

	var errs []error
	sent := 0
	for i := range appointments {
		appointment := appointments[i]
		key := fmt.Sprintf(constvars.RedisKeyReminderSentFormat, appointment.ID, day)
		first, err := w.RedisRepository.TrySetNX(ctx, key, now.UTC().Format(time.RFC3339), w.reminderDedupTTL())
		if err != nil {
			errs = append(errs, fmt.Errorf("appointment %s: %w", appointment.ID, err))
			continue
		}
		if !first {
			continue
		}

		ok := w.Dispatcher.Dispatch(models.NotificationEvent{
			Type:        models.NotificationAppointmentReminder,
			Appointment: &appointment,
			OccurredAt:  now.UTC(),
		})
		if !ok {
			// let the next run retry
			if err := w.RedisRepository.Delete(ctx, key); err != nil {
				w.Log.Warn("maintenance.worker: failed to clear reminder marker", zap.String(constvars.LoggingRedisKey, key), zap.Error(err))
			}
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

func (w *Worker) location() *time.Location {
	if w.InternalConfig.App.Location != nil {
		return w.InternalConfig.App.Location
	}
	return time.UTC
}

func (w *Worker) noShowGrace() time.Duration {
	if minutes := w.InternalConfig.Maintenance.NoShowGraceInMinutes; minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultNoShowGrace
}

func (w *Worker) leaderLockTTL() time.Duration {
	if seconds := w.InternalConfig.Maintenance.LeaderLockTTLInSeconds; seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultLeaderLockTTL
}

func (w *Worker) reminderDedupTTL() time.Duration {
	if hours := w.InternalConfig.Maintenance.ReminderDedupTTLInHours; hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return defaultReminderDedupTTL
}
