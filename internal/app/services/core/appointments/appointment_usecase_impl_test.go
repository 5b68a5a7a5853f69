package appointments

import (
	"context"
	"fmt"
	"testing"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/contracts/fakes"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	patient      = &models.Principal{ID: "pat-1", Role: constvars.RoleTypePatient}
	otherPatient = &models.Principal{ID: "pat-2", Role: constvars.RoleTypePatient}
	doctor       = &models.Principal{ID: "doc-1", Role: constvars.RoleTypeDoctor}
)

type appointmentFixture struct {
	usecase      contracts.AppointmentUsecase
	appointments *fakes.AppointmentRepository
	refunds      *fakes.RefundProcessor
	redis        *fakes.RedisRepository
	dispatcher   *fakes.Dispatcher
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	f := &appointmentFixture{
		appointments: fakes.NewAppointmentRepository(),
		refunds:      &fakes.RefundProcessor{},
		redis:        fakes.NewRedisRepository(),
		dispatcher:   &fakes.Dispatcher{},
	}
	f.usecase = NewAppointmentUsecase(
		f.appointments,
		f.refunds,
		locker.NewLockService(f.redis, zap.NewNop()),
		f.dispatcher,
		&config.InternalConfig{App: config.App{Location: time.UTC}},
		zap.NewNop(),
	)
	return f
}

func (f *appointmentFixture) put(status models.AppointmentStatus, at time.Time) string {
	return f.appointments.Put(models.Appointment{
		PatientID:      patient.ID,
		DoctorID:       doctor.ID,
		DateTime:       at,
		Duration:       30,
		Status:         status,
		ReasonForVisit: "checkup",
	})
}

func tomorrowAt(hour int) time.Time {
	base := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, time.UTC)
}

func TestAppointmentUsecase_Create(t *testing.T) {
	ctx := context.Background()
	valid := func() *requests.CreateAppointment {
		return &requests.CreateAppointment{
			DoctorID:       doctor.ID,
			DateTime:       tomorrowAt(10),
			ReasonForVisit: "persistent cough",
		}
	}

	t.Run("books in pending payment with default duration", func(t *testing.T) {
		f := newAppointmentFixture(t)
		appointment, err := f.usecase.Create(ctx, patient, valid())
		require.NoError(t, err)

		assert.NotEmpty(t, appointment.ID)
		assert.Equal(t, models.AppointmentStatusPendingPayment, appointment.Status)
		assert.Equal(t, models.DefaultAppointmentDuration, appointment.Duration)
		require.Len(t, appointment.StatusHistory, 1)
		assert.Equal(t, models.AppointmentStatusPendingPayment, appointment.StatusHistory[0].To)
		assert.Equal(t, []models.NotificationType{models.NotificationAppointmentPendingPayment}, f.dispatcher.Types())
		assert.False(t, f.redis.Has(fmt.Sprintf(constvars.RedisKeyDoctorBookingLockFormat, doctor.ID)))
	})

	cases := []struct {
		name      string
		principal *models.Principal
		mutate    func(*requests.CreateAppointment)
		seed      func(*appointmentFixture)
		status    int
	}{
		{
			name:      "doctors cannot book",
			principal: doctor,
			status:    constvars.StatusForbidden,
		},
		{
			name:      "time in the past",
			principal: patient,
			mutate:    func(r *requests.CreateAppointment) { r.DateTime = time.Now().Add(-time.Hour) },
			status:    constvars.StatusBadRequest,
		},
		{
			name:      "duration out of range",
			principal: patient,
			mutate:    func(r *requests.CreateAppointment) { r.Duration = 300 },
			status:    constvars.StatusBadRequest,
		},
		{
			name:      "booking with oneself",
			principal: &models.Principal{ID: doctor.ID, Role: constvars.RoleTypePatient},
			status:    constvars.StatusBadRequest,
		},
		{
			name:      "overlaps an active appointment",
			principal: otherPatient,
			mutate:    func(r *requests.CreateAppointment) { r.DateTime = tomorrowAt(10).Add(15 * time.Minute) },
			seed:      func(f *appointmentFixture) { f.put(models.AppointmentStatusConfirmed, tomorrowAt(10)) },
			status:    constvars.StatusConflict,
		},
		{
			name:      "doctor lock held elsewhere",
			principal: patient,
			seed: func(f *appointmentFixture) {
				f.redis.Set(context.Background(), fmt.Sprintf(constvars.RedisKeyDoctorBookingLockFormat, doctor.ID), "other", time.Minute)
			},
			status: constvars.StatusConflict,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			if tc.seed != nil {
				tc.seed(f)
			}
			request := valid()
			if tc.mutate != nil {
				tc.mutate(request)
			}
			_, err := f.usecase.Create(ctx, tc.principal, request)
			require.Error(t, err)
			assert.True(t, exceptions.HasStatusCode(err, tc.status), err.Error())
			assert.Empty(t, f.dispatcher.Events)
		})
	}

	t.Run("cancelled appointments free the slot", func(t *testing.T) {
		f := newAppointmentFixture(t)
		f.put(models.AppointmentStatusCancelled, tomorrowAt(10))
		_, err := f.usecase.Create(ctx, otherPatient, valid())
		assert.NoError(t, err)
	})
}

func TestAppointmentUsecase_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		from      models.AppointmentStatus
		principal *models.Principal
		to        string
		status    int
	}{
		{"doctor confirms pending", models.AppointmentStatusPending, doctor, "confirmed", 0},
		{"doctor completes confirmed", models.AppointmentStatusConfirmed, doctor, "completed", 0},
		{"doctor marks no show", models.AppointmentStatusConfirmed, doctor, "no_show", 0},
		{"patient cancels pending", models.AppointmentStatusPending, patient, "cancelled", 0},
		{"doctor cancels confirmed", models.AppointmentStatusConfirmed, doctor, "cancelled", 0},
		{"patient cannot confirm", models.AppointmentStatusPending, patient, "confirmed", constvars.StatusForbidden},
		{"patient cannot complete", models.AppointmentStatusConfirmed, patient, "completed", constvars.StatusForbidden},
		{"outsider cannot cancel", models.AppointmentStatusPending, otherPatient, "cancelled", constvars.StatusForbidden},
		{"doctor id with patient role", models.AppointmentStatusPending, &models.Principal{ID: doctor.ID, Role: constvars.RoleTypePatient}, "cancelled", constvars.StatusForbidden},
		{"pending is reserved for payment", models.AppointmentStatusPendingPayment, doctor, "pending", constvars.StatusBadRequest},
		{"cannot confirm before payment", models.AppointmentStatusPendingPayment, doctor, "confirmed", constvars.StatusBadRequest},
		{"cannot complete pending", models.AppointmentStatusPending, doctor, "completed", constvars.StatusBadRequest},
		{"terminal stays terminal", models.AppointmentStatusCompleted, doctor, "cancelled", constvars.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			id := f.put(tc.from, tomorrowAt(9))

			result, err := f.usecase.UpdateStatus(ctx, tc.principal, id, &requests.UpdateAppointmentStatus{Status: tc.to, Reason: "because"})
			if tc.status != 0 {
				require.Error(t, err)
				assert.True(t, exceptions.HasStatusCode(err, tc.status), err.Error())
				assert.Equal(t, tc.from, f.appointments.Get(id).Status)
				assert.Empty(t, f.dispatcher.Events)
				return
			}
			require.NoError(t, err)
			to := models.AppointmentStatus(tc.to)
			assert.Equal(t, to, result.Appointment.Status)
			last := result.Appointment.StatusHistory[len(result.Appointment.StatusHistory)-1]
			assert.Equal(t, tc.from, last.From)
			assert.Equal(t, to, last.To)
			assert.Equal(t, tc.principal.ID, last.By)
			assert.Equal(t, []models.NotificationType{models.AppointmentNotificationType(to)}, f.dispatcher.Types())
		})
	}

	t.Run("unknown appointment", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.usecase.UpdateStatus(ctx, doctor, "missing", &requests.UpdateAppointmentStatus{Status: "confirmed"})
		assert.True(t, exceptions.HasStatusCode(err, constvars.StatusNotFound))
	})

	t.Run("losing the status race leaves state untouched", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusPending, tomorrowAt(9))
		f.appointments.BeforeCAS = func(appointmentID string) {
			current := f.appointments.Get(appointmentID)
			current.Status = models.AppointmentStatusCancelled
			f.appointments.Put(*current)
		}

		_, err := f.usecase.UpdateStatus(ctx, doctor, id, &requests.UpdateAppointmentStatus{Status: "confirmed"})
		require.Error(t, err)
		assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest))
		assert.Equal(t, models.AppointmentStatusCancelled, f.appointments.Get(id).Status)
		assert.Empty(t, f.dispatcher.Events)
	})
}

func TestAppointmentUsecase_Cancel(t *testing.T) {
	ctx := context.Background()
	cancel := &requests.UpdateAppointmentStatus{Status: "cancelled", Reason: "travel"}

	t.Run("refunds a captured payment", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
		f.refunds.Func = func(appointmentID, reason string) (*models.Payment, error) {
			return &models.Payment{AppointmentID: appointmentID, Status: models.PaymentStatusRefunded}, nil
		}

		result, err := f.usecase.UpdateStatus(ctx, patient, id, cancel)
		require.NoError(t, err)
		require.NotNil(t, result.Refund)
		assert.Equal(t, string(models.PaymentStatusRefunded), result.Refund.Status)
		assert.Empty(t, result.Refund.Error)
		assert.Equal(t, []string{id}, f.refunds.Calls)
		assert.Equal(t, "travel", result.Appointment.CancellationReason)
		assert.Equal(t, models.CancelledByPatient, result.Appointment.CancelledBy)
	})

	t.Run("provider failure still cancels", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
		f.refunds.Func = func(string, string) (*models.Payment, error) {
			providerErr := &contracts.ProviderError{StatusCode: 422, Name: "UNPROCESSABLE_ENTITY", Message: "capture already refunded"}
			return nil, exceptions.ErrPaymentProvider(providerErr, "refund")
		}

		result, err := f.usecase.UpdateStatus(ctx, doctor, id, cancel)
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentStatusCancelled, result.Appointment.Status)
		assert.Equal(t, models.CancelledByDoctor, result.Appointment.CancelledBy)
		require.NotNil(t, result.Refund)
		assert.Equal(t, string(models.PaymentStatusRefundFailed), result.Refund.Status)
		assert.Equal(t, "UNPROCESSABLE_ENTITY: capture already refunded", result.Refund.Error)
	})

	skipped := []struct {
		name string
		err  error
	}{
		{"no payment", exceptions.ErrPaymentNotFound(nil, "appt")},
		{"payment never captured", exceptions.ErrPaymentNotRefundable(nil, "pay-1", "PENDING")},
	}
	for _, tc := range skipped {
		t.Run(tc.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			id := f.put(models.AppointmentStatusPendingPayment, tomorrowAt(9))
			f.refunds.Func = func(string, string) (*models.Payment, error) { return nil, tc.err }

			result, err := f.usecase.UpdateStatus(ctx, patient, id, cancel)
			require.NoError(t, err)
			assert.Nil(t, result.Refund)
			assert.Equal(t, models.AppointmentStatusCancelled, result.Appointment.Status)
		})
	}

	t.Run("refund runs after the cancellation is written", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
		var statusAtRefund models.AppointmentStatus
		f.refunds.Func = func(appointmentID, reason string) (*models.Payment, error) {
			statusAtRefund = f.appointments.Get(appointmentID).Status
			return &models.Payment{AppointmentID: appointmentID, Status: models.PaymentStatusRefunded}, nil
		}

		_, err := f.usecase.UpdateStatus(ctx, patient, id, cancel)
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentStatusCancelled, statusAtRefund)
	})

	t.Run("lost race refunds nothing", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusPending, tomorrowAt(9))
		f.appointments.BeforeCAS = func(appointmentID string) {
			f.appointments.BeforeCAS = nil
			confirmed := f.appointments.Get(appointmentID)
			confirmed.Status = models.AppointmentStatusConfirmed
			f.appointments.Put(*confirmed)
		}

		_, err := f.usecase.UpdateStatus(ctx, patient, id, cancel)
		require.Error(t, err)
		assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest), err.Error())
		assert.Equal(t, models.AppointmentStatusConfirmed, f.appointments.Get(id).Status)
		assert.Empty(t, f.refunds.Calls)
		assert.Empty(t, f.dispatcher.Events)
	})

	t.Run("no refund attempt for other transitions", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
		_, err := f.usecase.UpdateStatus(ctx, doctor, id, &requests.UpdateAppointmentStatus{Status: "completed"})
		require.NoError(t, err)
		assert.Empty(t, f.refunds.Calls)
		assert.Empty(t, f.appointments.Get(id).CancellationReason)
	})
}

func TestAppointmentUsecase_RequestReschedule(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the appointment back to pending", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))

		updated, err := f.usecase.RequestReschedule(ctx, patient, id, &requests.RescheduleAppointment{NewDateTime: tomorrowAt(14), Reason: "meeting"})
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentStatusPending, updated.Status)
		assert.True(t, updated.DateTime.Equal(tomorrowAt(14)))
		require.NotNil(t, updated.RescheduledFrom)
		assert.True(t, updated.RescheduledFrom.Equal(tomorrowAt(9)))
		require.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, models.AppointmentStatusRescheduled, updated.StatusHistory[0].To)
		assert.Equal(t, models.AppointmentStatusPending, updated.StatusHistory[1].To)
		assert.Equal(t, []models.NotificationType{models.NotificationAppointmentRescheduled}, f.dispatcher.Types())
	})

	t.Run("may shift within its own window", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := f.put(models.AppointmentStatusPending, tomorrowAt(9))
		_, err := f.usecase.RequestReschedule(ctx, patient, id, &requests.RescheduleAppointment{NewDateTime: tomorrowAt(9).Add(15 * time.Minute)})
		assert.NoError(t, err)
	})

	cases := []struct {
		name      string
		from      models.AppointmentStatus
		principal *models.Principal
		newTime   time.Time
		seed      func(*appointmentFixture)
		status    int
	}{
		{"doctor cannot reschedule", models.AppointmentStatusConfirmed, doctor, tomorrowAt(14), nil, constvars.StatusForbidden},
		{"outsider cannot reschedule", models.AppointmentStatusConfirmed, otherPatient, tomorrowAt(14), nil, constvars.StatusForbidden},
		{"awaiting payment", models.AppointmentStatusPendingPayment, patient, tomorrowAt(14), nil, constvars.StatusBadRequest},
		{"already completed", models.AppointmentStatusCompleted, patient, tomorrowAt(14), nil, constvars.StatusBadRequest},
		{"new time in the past", models.AppointmentStatusConfirmed, patient, time.Now().Add(-time.Minute), nil, constvars.StatusBadRequest},
		{
			"new time overlaps another booking", models.AppointmentStatusConfirmed, patient, tomorrowAt(14),
			func(f *appointmentFixture) {
				f.appointments.Put(models.Appointment{PatientID: otherPatient.ID, DoctorID: doctor.ID, DateTime: tomorrowAt(14).Add(-15 * time.Minute), Duration: 30, Status: models.AppointmentStatusPending})
			},
			constvars.StatusConflict,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			if tc.seed != nil {
				tc.seed(f)
			}
			id := f.put(tc.from, tomorrowAt(9))

			_, err := f.usecase.RequestReschedule(ctx, tc.principal, id, &requests.RescheduleAppointment{NewDateTime: tc.newTime})
			require.Error(t, err)
			assert.True(t, exceptions.HasStatusCode(err, tc.status), err.Error())
			assert.True(t, f.appointments.Get(id).DateTime.Equal(tomorrowAt(9)))
		})
	}
}

func TestAppointmentUsecase_AddRating(t *testing.T) {
	ctx := context.Background()
	rate := &requests.RateAppointment{Score: 5, Feedback: "great", IsAnonymous: true}

	f := newAppointmentFixture(t)
	pendingID := f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
	_, err := f.usecase.AddRating(ctx, patient, pendingID, rate)
	assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest))

	completedID := f.put(models.AppointmentStatusCompleted, time.Now().Add(-time.Hour))
	_, err = f.usecase.AddRating(ctx, doctor, completedID, rate)
	assert.True(t, exceptions.HasStatusCode(err, constvars.StatusForbidden))

	rated, err := f.usecase.AddRating(ctx, patient, completedID, rate)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, rated.Rating.Score)
	assert.True(t, rated.Rating.IsAnonymous)

	rated, err = f.usecase.AddRating(ctx, patient, completedID, &requests.RateAppointment{Score: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rated.Rating.Score)
}

func TestAppointmentUsecase_Views(t *testing.T) {
	ctx := context.Background()
	f := newAppointmentFixture(t)
	f.put(models.AppointmentStatusConfirmed, tomorrowAt(9))
	f.put(models.AppointmentStatusPending, tomorrowAt(11))
	f.put(models.AppointmentStatusPendingPayment, time.Now().UTC().AddDate(0, 0, 30))
	f.put(models.AppointmentStatusCompleted, time.Now().UTC().AddDate(0, 0, -3))
	f.put(models.AppointmentStatusCancelled, time.Now().UTC().AddDate(0, 0, -2))
	f.put(models.AppointmentStatusNoShow, time.Now().UTC().AddDate(0, 0, -1))
	f.appointments.Put(models.Appointment{PatientID: otherPatient.ID, DoctorID: "doc-2", DateTime: tomorrowAt(9), Duration: 30, Status: models.AppointmentStatusConfirmed})

	t.Run("find all scoped to the caller", func(t *testing.T) {
		all, err := f.usecase.FindAll(ctx, patient, &requests.AppointmentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 6)

		confirmed, err := f.usecase.FindAll(ctx, doctor, &requests.AppointmentFilter{Status: "confirmed"})
		require.NoError(t, err)
		assert.Len(t, confirmed, 1)

		tomorrow := tomorrowAt(0).Format(constvars.DateFormatYYYYMMDD)
		dated, err := f.usecase.FindAll(ctx, patient, &requests.AppointmentFilter{StartDate: tomorrow, EndDate: tomorrow})
		require.NoError(t, err)
		assert.Len(t, dated, 2)

		everyone, err := f.usecase.FindAll(ctx, &models.Principal{ID: "admin", Role: constvars.RoleTypeAdmin}, nil)
		require.NoError(t, err)
		assert.Len(t, everyone, 7)
	})

	t.Run("schedule defaults to the coming week", func(t *testing.T) {
		agenda, err := f.usecase.Schedule(ctx, doctor, &requests.AppointmentScheduleQuery{})
		require.NoError(t, err)
		require.Len(t, agenda, 2)
		assert.True(t, agenda[0].DateTime.Before(agenda[1].DateTime))

		wide, err := f.usecase.Schedule(ctx, doctor, &requests.AppointmentScheduleQuery{
			To: time.Now().UTC().AddDate(0, 0, 40).Format(constvars.DateFormatYYYYMMDD),
		})
		require.NoError(t, err)
		assert.Len(t, wide, 3)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := f.usecase.Stats(ctx, patient)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.Total)
		assert.Equal(t, 3, stats.Upcoming)
		assert.Equal(t, 1, stats.ByStatus["no_show"])
		assert.Equal(t, 1, stats.ByStatus["pending_payment"])
	})

	t.Run("history pages terminal appointments newest first", func(t *testing.T) {
		page, err := f.usecase.History(ctx, patient, &requests.Pagination{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Appointments, 2)
		assert.Equal(t, models.AppointmentStatusNoShow, page.Appointments[0].Status)
		assert.Equal(t, models.AppointmentStatusCancelled, page.Appointments[1].Status)

		next, err := f.usecase.History(ctx, patient, &requests.Pagination{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, next.Appointments, 1)
		assert.Equal(t, models.AppointmentStatusCompleted, next.Appointments[0].Status)
	})
}
