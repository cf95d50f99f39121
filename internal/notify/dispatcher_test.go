package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"local-services/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeBroadcaster) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBroadcaster) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func fastQueueConfig() queue.Config {
	return queue.Config{MaxAttempts: 2, Backoff: []time.Duration{time.Millisecond}}
}

func TestDispatcherDeliversQueuedEmail(t *testing.T) {
	sender := &fakeSender{}
	hub := &fakeBroadcaster{}
	d := NewDispatcher(fastQueueConfig(), sender, hub, zap.NewNop())
	defer d.Close()

	d.EnqueueEmail(EmailBookingApproved, EmailPayload{
		Email:       "user@example.com",
		Name:        "Asha",
		ServiceName: "Deep Cleaning",
		Notes:       "Your booking has been approved.",
	})

	require.Eventually(t, func() bool {
		return len(sender.all()) == 1
	}, time.Second, 5*time.Millisecond)

	mail := sender.all()[0]
	assert.Equal(t, "user@example.com", mail.To)
	assert.Equal(t, "Booking Approved", mail.Subject)
	assert.Contains(t, mail.Body, "Deep Cleaning")
}

func TestDispatcherFallsBackToDirectSendWhenQueueClosed(t *testing.T) {
	sender := &fakeSender{}
	hub := &fakeBroadcaster{}
	d := NewDispatcher(fastQueueConfig(), sender, hub, zap.NewNop())
	d.Close()

	d.EnqueueEmail(EmailOTP, EmailPayload{Email: "user@example.com", OTP: "123456"})

	// Direct fallback is synchronous
	mails := sender.all()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].Body, "123456")
}

func TestDispatcherSwallowsDirectSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	hub := &fakeBroadcaster{}
	d := NewDispatcher(fastQueueConfig(), sender, hub, zap.NewNop())
	d.Close()

	// Must not panic or surface the error
	d.EnqueueEmail(EmailOTP, EmailPayload{Email: "user@example.com", OTP: "123456"})
}

func TestDispatcherBroadcasts(t *testing.T) {
	sender := &fakeSender{}
	hub := &fakeBroadcaster{}
	d := NewDispatcher(fastQueueConfig(), sender, hub, zap.NewNop())
	defer d.Close()

	d.EnqueueNotification(BookingStatusUpdated, map[string]string{"id": "b1"})

	require.Eventually(t, func() bool {
		return len(hub.all()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{BookingStatusUpdated}, hub.all())
}

func TestComposeEmailCoversEveryKind(t *testing.T) {
	kinds := []EmailKind{
		EmailOTP, EmailProviderApproval, EmailProviderRejection,
		EmailServiceApproval, EmailServiceRejection,
		EmailBookingApproved, EmailBookingRejected, EmailBookingScheduled,
		EmailBookingInProgress, EmailBookingCompleted,
		EmailPasswordReset, EmailContactForm,
	}

	payload := EmailPayload{
		Email:       "user@example.com",
		Name:        "Asha",
		ServiceName: "Deep Cleaning",
		Notes:       "note",
		Date:        "2025-03-01",
		Time:        "10:00",
		BookingID:   "b1",
		OTP:         "123456",
		ResetURL:    "https://example.com/reset",
		FromEmail:   "visitor@example.com",
		Subject:     "Hello",
		Message:     "Hi there",
	}

	for _, kind := range kinds {
		subject, body, err := ComposeEmail(kind, payload)
		require.NoError(t, err, "kind %s", kind)
		assert.NotEmpty(t, subject, "kind %s", kind)
		assert.NotEmpty(t, body, "kind %s", kind)
	}

	_, _, err := ComposeEmail("no-such-kind", payload)
	assert.Error(t, err)
}
