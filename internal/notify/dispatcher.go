package notify

import (
	"context"

	"local-services/internal/realtime"
	"local-services/pkg/mailer"
	"local-services/pkg/queue"

	"go.uber.org/zap"
)

// BookingStatusUpdated is the realtime event carrying the full updated booking.
const BookingStatusUpdated = "bookingStatusUpdated"

// Notifier is the fire-and-forget side-effect boundary the business logic
// talks to. Both methods return before anything is delivered; failures are
// retried by the queue and ultimately only logged.
type Notifier interface {
	EnqueueEmail(kind EmailKind, payload EmailPayload)
	EnqueueNotification(event string, payload any)
}

// EmailJob is a queued mail send.
type EmailJob struct {
	Kind    EmailKind
	Payload EmailPayload
}

// BroadcastJob is a queued realtime fan-out.
type BroadcastJob struct {
	Event   string
	Payload any
}

// Dispatcher fans side effects out over two queues: one for transactional
// email, one for realtime broadcast. Constructed once at the composition
// root and injected wherever notifications are fired.
type Dispatcher struct {
	emails     *queue.Queue[EmailJob]
	broadcasts *queue.Queue[BroadcastJob]
	sender     mailer.Sender
	hub        realtime.Broadcaster
	log        *zap.Logger
}

func NewDispatcher(cfg queue.Config, sender mailer.Sender, hub realtime.Broadcaster, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		hub:    hub,
		log:    log.With(zap.String("component", "dispatcher")),
	}

	d.emails = queue.New("email", cfg, d.processEmail, log)
	d.broadcasts = queue.New("notification", cfg, d.processBroadcast, log)

	return d
}

// EnqueueEmail queues a mail send. If the queue refuses the job, one direct
// synchronous send is attempted as a recovery path; its failure is swallowed.
func (d *Dispatcher) EnqueueEmail(kind EmailKind, payload EmailPayload) {
	if _, err := d.emails.Enqueue(EmailJob{Kind: kind, Payload: payload}); err != nil {
		d.log.Warn("Email enqueue failed, attempting direct send",
			zap.String("kind", string(kind)),
			zap.Error(err))

		if sendErr := d.sendEmail(kind, payload); sendErr != nil {
			d.log.Error("Direct email send failed",
				zap.String("kind", string(kind)),
				zap.String("to", payload.Email),
				zap.Error(sendErr))
		}
	}
}

// EnqueueNotification queues a realtime broadcast. Failure is logged only.
func (d *Dispatcher) EnqueueNotification(event string, payload any) {
	if _, err := d.broadcasts.Enqueue(BroadcastJob{Event: event, Payload: payload}); err != nil {
		d.log.Warn("Notification enqueue failed",
			zap.String("event", event),
			zap.Error(err))
	}
}

// Counts exposes queue depths for the admin observability endpoint.
func (d *Dispatcher) Counts() map[string]queue.Counts {
	return map[string]queue.Counts{
		"email":        d.emails.Counts(),
		"notification": d.broadcasts.Counts(),
	}
}

// Close stops both queues. In-flight retries are abandoned.
func (d *Dispatcher) Close() {
	d.emails.Close()
	d.broadcasts.Close()
}

func (d *Dispatcher) processEmail(ctx context.Context, job *queue.Job[EmailJob]) error {
	return d.sendEmail(job.Payload.Kind, job.Payload.Payload)
}

func (d *Dispatcher) sendEmail(kind EmailKind, payload EmailPayload) error {
	subject, body, err := ComposeEmail(kind, payload)
	if err != nil {
		return err
	}
	return d.sender.Send(payload.Email, subject, body)
}

func (d *Dispatcher) processBroadcast(ctx context.Context, job *queue.Job[BroadcastJob]) error {
	return d.hub.Emit(job.Payload.Event, job.Payload.Payload)
}
