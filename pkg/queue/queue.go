package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue is closed")

// DefaultBackoff is the retry delay schedule. A job on its nth retry waits
// DefaultBackoff[n-1] (clamped to the last entry) before moving to the tail.
var DefaultBackoff = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

// Job is a unit of deferred work held in memory. Nothing is persisted:
// queued jobs are lost on restart, which is acceptable because every payload
// is a best-effort notification, never the source of truth.
type Job[T any] struct {
	ID          string
	Payload     T
	Attempts    int
	MaxAttempts int
	EnqueuedAt  time.Time
}

// Processor handles one job. An error (or panic) counts as a failed attempt.
type Processor[T any] func(ctx context.Context, job *Job[T]) error

// Counts is an observability snapshot.
type Counts struct {
	Waiting int `json:"waiting"`
	Active  int `json:"active"`
}

// Config tunes a queue instance. Zero values fall back to defaults.
type Config struct {
	MaxAttempts int             // default attempts per job (min 1)
	Backoff     []time.Duration // retry delay schedule
}

// Queue is a single-process FIFO with bounded retry. One worker goroutine
// drains the list; the list is only mutated under mu, so ordering is
// preserved for jobs that succeed first try. A retried job re-enters at the
// tail, so cross-job ordering is not guaranteed once retries happen.
type Queue[T any] struct {
	name    string
	proc    Processor[T]
	backoff []time.Duration
	maxAtt  int
	log     *zap.Logger

	mu         sync.Mutex
	jobs       []*Job[T]
	processing bool
	active     int
	closed     bool
}

func New[T any](name string, cfg Config, proc Processor[T], log *zap.Logger) *Queue[T] {
	maxAtt := cfg.MaxAttempts
	if maxAtt < 1 {
		maxAtt = 3
	}
	backoff := cfg.Backoff
	if len(backoff) == 0 {
		backoff = DefaultBackoff
	}

	return &Queue[T]{
		name:    name,
		proc:    proc,
		backoff: backoff,
		maxAtt:  maxAtt,
		log:     log.With(zap.String("queue", name)),
	}
}

// EnqueueOption overrides per-job settings.
type EnqueueOption func(*jobSettings)

type jobSettings struct {
	maxAttempts int
}

func WithMaxAttempts(n int) EnqueueOption {
	return func(s *jobSettings) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Enqueue appends a job and wakes the worker. It never blocks on processing;
// the returned job descriptor is a snapshot, not a handle to await.
func (q *Queue[T]) Enqueue(payload T, opts ...EnqueueOption) (*Job[T], error) {
	settings := jobSettings{maxAttempts: q.maxAtt}
	for _, opt := range opts {
		opt(&settings)
	}

	job := &Job[T]{
		ID:          fmt.Sprintf("job-%s", uuid.New().String()),
		Payload:     payload,
		MaxAttempts: settings.maxAttempts,
		EnqueuedAt:  time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrClosed
	}
	q.jobs = append(q.jobs, job)
	start := !q.processing
	if start {
		q.processing = true
	}
	q.mu.Unlock()

	q.log.Debug("Job enqueued", zap.String("job_id", job.ID))

	if start {
		go q.run()
	}

	return job, nil
}

// Counts returns a snapshot of waiting and active jobs.
func (q *Queue[T]) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Counts{Waiting: len(q.jobs), Active: q.active}
}

// Close refuses further enqueues and drops waiting jobs. Retry timers already
// scheduled are abandoned: their requeue becomes a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	dropped := len(q.jobs)
	q.jobs = nil
	q.mu.Unlock()

	if dropped > 0 {
		q.log.Info("Queue closed with jobs dropped", zap.Int("dropped", dropped))
	}
}

// run drains the queue. Exactly one run loop exists at a time, guarded by
// the processing flag.
func (q *Queue[T]) run() {
	for {
		q.mu.Lock()
		if q.closed || len(q.jobs) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.active++
		q.mu.Unlock()

		err := q.invoke(job)

		q.mu.Lock()
		q.active--
		q.mu.Unlock()

		if err == nil {
			q.log.Debug("Job completed", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempts))
			continue
		}

		if job.Attempts >= job.MaxAttempts {
			// Retry budget exhausted: the failure is logged, never surfaced
			// to the original caller.
			q.log.Warn("Job dropped after max attempts",
				zap.String("job_id", job.ID),
				zap.Int("attempts", job.Attempts),
				zap.Error(err))
			continue
		}

		delay := q.delayFor(job.Attempts)
		q.log.Info("Job failed, scheduling retry",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		time.AfterFunc(delay, func() { q.requeue(job) })
	}
}

// invoke runs the processor for one attempt, converting panics to errors so
// a bad job can never take the worker down.
func (q *Queue[T]) invoke(job *Job[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()

	job.Attempts++
	return q.proc(context.Background(), job)
}

// requeue moves a failed job to the tail after its backoff delay.
func (q *Queue[T]) requeue(job *Job[T]) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.jobs = append(q.jobs, job)
	start := !q.processing
	if start {
		q.processing = true
	}
	q.mu.Unlock()

	if start {
		go q.run()
	}
}

func (q *Queue[T]) delayFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(q.backoff) {
		idx = len(q.backoff) - 1
	}
	return q.backoff[idx]
}
