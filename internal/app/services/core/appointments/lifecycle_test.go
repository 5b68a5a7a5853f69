package appointments_test

import (
	"context"
	"testing"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/contracts/fakes"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/core/appointments"
	"telehealth-service/internal/app/services/core/payments"
	"telehealth-service/internal/app/services/shared/locker"
	"telehealth-service/internal/app/services/shared/ratelimiter"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	lifecyclePatient = &models.Principal{ID: "pat-1", Role: constvars.RoleTypePatient}
	lifecycleDoctor  = &models.Principal{ID: "doc-1", Role: constvars.RoleTypeDoctor}
)

// clinic wires the real appointment and payment usecases over shared in-memory stores.
type clinic struct {
	appointments  contracts.AppointmentUsecase
	payments      contracts.PaymentUsecase
	appointmentDB *fakes.AppointmentRepository
	paymentDB     *fakes.PaymentRepository
	gateway       *fakes.PaymentGateway
	dispatcher    *fakes.Dispatcher
}

func newClinic(t *testing.T) *clinic {
	t.Helper()
	c := &clinic{
		appointmentDB: fakes.NewAppointmentRepository(),
		paymentDB:     fakes.NewPaymentRepository(),
		gateway:       &fakes.PaymentGateway{},
		dispatcher:    &fakes.Dispatcher{},
	}
	redis := fakes.NewRedisRepository()
	cfg := &config.InternalConfig{
		App: config.App{Location: time.UTC},
		PaymentGateway: config.AppPaymentGateway{
			Currency:                    "USD",
			OrderAttemptsPerWindow:      5,
			OrderAttemptWindowInSeconds: 600,
		},
		Webhook: config.AppWebhook{EventDedupTTLInHours: 1},
	}
	c.payments = payments.NewPaymentUsecase(
		c.paymentDB,
		c.appointmentDB,
		c.gateway,
		&fakes.WebhookVerifier{},
		fakes.NewArchive(),
		redis,
		ratelimiter.NewResourceLimiter(redis, zap.NewNop()),
		c.dispatcher,
		cfg,
		zap.NewNop(),
	)
	c.appointments = appointments.NewAppointmentUsecase(
		c.appointmentDB,
		c.payments,
		locker.NewLockService(redis, zap.NewNop()),
		c.dispatcher,
		cfg,
		zap.NewNop(),
	)
	return c
}

// bookAndPay runs create, order and capture, leaving a pending appointment with a completed payment.
func (c *clinic) bookAndPay(t *testing.T) (appointmentID, paymentID string) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().AddDate(0, 0, 2)
	appointment, err := c.appointments.Create(ctx, lifecyclePatient, &requests.CreateAppointment{
		DoctorID:       lifecycleDoctor.ID,
		DateTime:       time.Date(base.Year(), base.Month(), base.Day(), 10, 0, 0, 0, time.UTC),
		ReasonForVisit: "follow-up",
	})
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusPendingPayment, appointment.Status)

	order, err := c.payments.CreateOrder(ctx, lifecyclePatient, &requests.CreatePaymentOrder{
		AppointmentID: appointment.ID,
		Amount:        50,
	}, requests.PaymentMetadata{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, models.AppointmentStatusPending, c.appointmentDB.Get(appointment.ID).Status)

	captured, err := c.payments.CapturePayment(ctx, order.OrderID, models.CaptureSourceDirect)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, captured.Payment.Status)
	return appointment.ID, order.PaymentID
}

func TestLifecycle_PaidAppointmentCancelledByPatientIsRefunded(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	appointmentID, paymentID := c.bookAndPay(t)

	confirmed, err := c.appointments.UpdateStatus(ctx, lifecycleDoctor, appointmentID, &requests.UpdateAppointmentStatus{
		Status: string(models.AppointmentStatusConfirmed),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Appointment.Status)
	assert.Nil(t, confirmed.Refund)

	cancelled, err := c.appointments.UpdateStatus(ctx, lifecyclePatient, appointmentID, &requests.UpdateAppointmentStatus{
		Status: string(models.AppointmentStatusCancelled),
		Reason: "feeling better",
	})
	require.NoError(t, err)
	require.NotNil(t, cancelled.Refund)
	assert.Equal(t, string(models.PaymentStatusRefunded), cancelled.Refund.Status)
	assert.Empty(t, cancelled.Refund.Error)

	appointment := c.appointmentDB.Get(appointmentID)
	assert.Equal(t, models.AppointmentStatusCancelled, appointment.Status)
	assert.Equal(t, models.CancelledByPatient, appointment.CancelledBy)
	assert.Equal(t, "feeling better", appointment.CancellationReason)

	payment := c.paymentDB.Get(paymentID)
	assert.Equal(t, models.PaymentStatusRefunded, payment.Status)
	require.NotNil(t, payment.RefundDetails)
	assert.Equal(t, "REFUND-CAPTURE-"+payment.PayPalOrderID, payment.RefundDetails.RefundID)
	assert.Equal(t, 50.0, payment.RefundDetails.Amount)

	orders, captures, refunds := c.gateway.Calls()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, captures)
	assert.Equal(t, 1, refunds)

	_, err = c.appointments.UpdateStatus(ctx, lifecyclePatient, appointmentID, &requests.UpdateAppointmentStatus{
		Status: string(models.AppointmentStatusCancelled),
	})
	assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest))
	_, _, refunds = c.gateway.Calls()
	assert.Equal(t, 1, refunds)
}

func TestLifecycle_PaidAppointmentTakesNoSecondPayment(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	appointmentID, paymentID := c.bookAndPay(t)

	_, err := c.payments.CreateOrder(ctx, lifecyclePatient, &requests.CreatePaymentOrder{
		AppointmentID: appointmentID,
		Amount:        50,
	}, requests.PaymentMetadata{})
	assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest))

	count, err := c.paymentDB.CountByAppointmentID(ctx, appointmentID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cancelled, err := c.appointments.UpdateStatus(ctx, lifecyclePatient, appointmentID, &requests.UpdateAppointmentStatus{
		Status: string(models.AppointmentStatusCancelled),
	})
	require.NoError(t, err)
	require.NotNil(t, cancelled.Refund)
	assert.Equal(t, models.PaymentStatusRefunded, c.paymentDB.Get(paymentID).Status)

	orders, captures, refunds := c.gateway.Calls()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, captures)
	assert.Equal(t, 1, refunds)
}

func TestLifecycle_CancelLosingToConfirmKeepsPayment(t *testing.T) {
	ctx := context.Background()
	c := newClinic(t)
	appointmentID, paymentID := c.bookAndPay(t)

	c.appointmentDB.BeforeCAS = func(id string) {
		c.appointmentDB.BeforeCAS = nil
		current := c.appointmentDB.Get(id)
		current.Status = models.AppointmentStatusConfirmed
		c.appointmentDB.Put(*current)
	}

	_, err := c.appointments.UpdateStatus(ctx, lifecyclePatient, appointmentID, &requests.UpdateAppointmentStatus{
		Status: string(models.AppointmentStatusCancelled),
	})
	assert.True(t, exceptions.HasStatusCode(err, constvars.StatusBadRequest))

	assert.Equal(t, models.AppointmentStatusConfirmed, c.appointmentDB.Get(appointmentID).Status)
	assert.Equal(t, models.PaymentStatusCompleted, c.paymentDB.Get(paymentID).Status)
	_, _, refunds := c.gateway.Calls()
	assert.Equal(t, 0, refunds)
}
