package notifications

import (
	"context"
	"encoding/base64"
	"errors"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts/fakes"
	"telehealth-service/internal/app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type dispatcherFixture struct {
	dispatcher    *Dispatcher
	notifications *fakes.NotificationRepository
	mailer        *fakes.Mailer
	publisher     *fakes.Publisher
}

func newDispatcherFixture(t *testing.T, workers, queueSize int) *dispatcherFixture {
	t.Helper()
	f := &dispatcherFixture{
		notifications: fakes.NewNotificationRepository(),
		mailer:        &fakes.Mailer{},
		publisher:     &fakes.Publisher{},
	}
	users := fakes.NewUserRepository(
		models.User{ID: "pat-1", Name: "Pat", Email: "pat@example.com"},
		models.User{ID: "doc-1", Name: "Dr. Who", Email: "doc@example.com"},
	)
	cfg := &config.InternalConfig{
		App:          config.App{Location: time.UTC},
		Mailer:       config.AppMailer{EmailSender: "no-reply@example.com"},
		Notification: config.AppNotification{Workers: workers, QueueSize: queueSize, SendTimeoutInSeconds: 5},
	}
	f.dispatcher = NewDispatcher(f.notifications, users, f.mailer, f.publisher, cfg, zap.NewNop())
	return f
}

func confirmedAppointment() *models.Appointment {
	return &models.Appointment{
		ID:        "appt-1",
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		DateTime:  time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC),
		Duration:  30,
		Status:    models.AppointmentStatusConfirmed,
	}
}

func TestDispatcher_DeliversToBothParticipants(t *testing.T) {
	f := newDispatcherFixture(t, 2, 8)
	f.dispatcher.Start()

	require.True(t, f.dispatcher.Dispatch(models.NotificationEvent{
		Type:        models.NotificationAppointmentConfirmed,
		Appointment: confirmedAppointment(),
	}))
	require.NoError(t, f.dispatcher.Stop(context.Background()))

	stored := f.notifications.All()
	require.Len(t, stored, 2)
	recipients := []string{stored[0].UserID, stored[1].UserID}
	assert.ElementsMatch(t, []string{"pat-1", "doc-1"}, recipients)
	for _, notification := range stored {
		assert.Equal(t, "Appointment confirmed", notification.Title)
		assert.Contains(t, notification.Message, "07 Jan 2030 09:00")
		assert.Equal(t, "appt-1", notification.AppointmentID)
		assert.False(t, notification.IsRead)
	}

	emails := f.mailer.Sent()
	require.Len(t, emails, 2)
	assert.Equal(t, "no-reply@example.com", emails[0].From)
	assert.True(t, emails[0].Encoded)
	html, err := base64.StdEncoding.DecodeString(emails[0].HTMLCode)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Appointment confirmed")

	published := f.publisher.Published()
	require.Len(t, published, 2)
	assert.NotEmpty(t, published[0].ID)
}

func TestDispatcher_ExplicitRecipientsAndMissingEmail(t *testing.T) {
	f := newDispatcherFixture(t, 1, 8)
	f.dispatcher.Start()

	f.dispatcher.Dispatch(models.NotificationEvent{
		Type:       models.NotificationScheduleUpdated,
		Recipients: []string{"doc-1"},
		Reason:     "schedule for 2030-01-07 updated",
	})
	f.dispatcher.Dispatch(models.NotificationEvent{
		Type:       models.NotificationPaymentCompleted,
		Payment:    &models.Payment{ID: "pay-1", PatientID: "pat-unknown", Amount: 50, Currency: "USD"},
		Recipients: []string{"pat-unknown"},
	})
	require.NoError(t, f.dispatcher.Stop(context.Background()))

	stored := f.notifications.All()
	require.Len(t, stored, 2)
	byUser := map[string]models.Notification{}
	for _, notification := range stored {
		byUser[notification.UserID] = notification
	}
	assert.Equal(t, "Your availability was updated: schedule for 2030-01-07 updated.", byUser["doc-1"].Message)
	assert.Equal(t, "pay-1", byUser["pat-unknown"].PaymentID)
	assert.Contains(t, byUser["pat-unknown"].Message, "50.00 USD")

	assert.Len(t, f.mailer.Sent(), 1)
	assert.Len(t, f.publisher.Published(), 2)
}

func TestDispatcher_EmailAndPublishFailuresDoNotLoseNotification(t *testing.T) {
	f := newDispatcherFixture(t, 1, 8)
	f.mailer.Err = errors.New("broker down")
	f.publisher.Err = errors.New("broker down")
	f.dispatcher.Start()

	f.dispatcher.Dispatch(models.NotificationEvent{Type: models.NotificationAppointmentReminder, Appointment: confirmedAppointment()})
	require.NoError(t, f.dispatcher.Stop(context.Background()))

	assert.Len(t, f.notifications.All(), 2)
}

func TestDispatcher_PersistFailureSkipsEmail(t *testing.T) {
	f := newDispatcherFixture(t, 1, 8)
	f.notifications.Err = errors.New("mongo down")
	f.dispatcher.Start()

	f.dispatcher.Dispatch(models.NotificationEvent{Type: models.NotificationAppointmentCancelled, Appointment: confirmedAppointment()})
	require.NoError(t, f.dispatcher.Stop(context.Background()))

	assert.Empty(t, f.mailer.Sent())
	assert.Empty(t, f.publisher.Published())
}

func TestDispatcher_DropsWhenFullAndAfterStop(t *testing.T) {
	f := newDispatcherFixture(t, 1, 1)
	event := models.NotificationEvent{Type: models.NotificationAppointmentPending, Appointment: confirmedAppointment()}

	// not started, so the single slot stays occupied
	assert.True(t, f.dispatcher.Dispatch(event))
	assert.False(t, f.dispatcher.Dispatch(event))

	f.dispatcher.Start()
	require.NoError(t, f.dispatcher.Stop(context.Background()))
	assert.False(t, f.dispatcher.Dispatch(event))
	assert.Len(t, f.notifications.All(), 2)
	assert.NoError(t, f.dispatcher.Stop(context.Background()))
}

func TestRecipientsOf(t *testing.T) {
	assert.Equal(t, []string{"pat-1", "doc-1"}, recipientsOf(models.NotificationEvent{Appointment: confirmedAppointment()}))
	assert.Equal(t, []string{"pat-9"}, recipientsOf(models.NotificationEvent{Payment: &models.Payment{PatientID: "pat-9"}}))
	assert.Equal(t, []string{"x"}, recipientsOf(models.NotificationEvent{Recipients: []string{"x"}, Appointment: confirmedAppointment()}))
	assert.Nil(t, recipientsOf(models.NotificationEvent{}))
}
