package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts: maxAttempts,
		Backoff:     []time.Duration{time.Millisecond, time.Millisecond},
	}
}

func TestQueueProcessesInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []int

	q := New("test", fastConfig(3), func(ctx context.Context, job *Job[int]) error {
		mu.Lock()
		got = append(got, job.Payload)
		mu.Unlock()
		return nil
	}, zap.NewNop())
	defer q.Close()

	for i := 1; i <= 5; i++ {
		_, err := q.Enqueue(i)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestQueueRetriesThenSucceeds(t *testing.T) {
	const maxAttempts = 4

	var invocations atomic.Int32
	done := make(chan struct{})

	q := New("test", fastConfig(maxAttempts), func(ctx context.Context, job *Job[string]) error {
		n := invocations.Add(1)
		if int(n) < maxAttempts {
			return errors.New("transient failure")
		}
		close(done)
		return nil
	}, zap.NewNop())
	defer q.Close()

	_, err := q.Enqueue("payload")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}

	// No further retries after success
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(maxAttempts), invocations.Load())
}

func TestQueueDropsAfterMaxAttempts(t *testing.T) {
	const maxAttempts = 3

	var invocations atomic.Int32

	q := New("test", fastConfig(maxAttempts), func(ctx context.Context, job *Job[string]) error {
		invocations.Add(1)
		return errors.New("permanent failure")
	}, zap.NewNop())
	defer q.Close()

	_, err := q.Enqueue("payload")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return invocations.Load() == maxAttempts
	}, time.Second, 5*time.Millisecond)

	// Dropped silently: no extra invocations, queue empty
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(maxAttempts), invocations.Load())
	assert.Equal(t, Counts{}, q.Counts())
}

func TestQueuePerJobMaxAttempts(t *testing.T) {
	var invocations atomic.Int32

	q := New("test", fastConfig(5), func(ctx context.Context, job *Job[string]) error {
		invocations.Add(1)
		return errors.New("fail")
	}, zap.NewNop())
	defer q.Close()

	_, err := q.Enqueue("payload", WithMaxAttempts(1))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return invocations.Load() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), invocations.Load())
}

func TestQueuePanicTreatedAsFailure(t *testing.T) {
	var invocations atomic.Int32

	q := New("test", fastConfig(2), func(ctx context.Context, job *Job[string]) error {
		invocations.Add(1)
		panic("boom")
	}, zap.NewNop())
	defer q.Close()

	_, err := q.Enqueue("first")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return invocations.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// Worker survived the panics and still serves new jobs
	done := make(chan struct{})
	okQueue := New("ok", fastConfig(1), func(ctx context.Context, job *Job[string]) error {
		close(done)
		return nil
	}, zap.NewNop())
	defer okQueue.Close()

	_, err = okQueue.Enqueue("second")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("follow-up job not processed")
	}
}

func TestQueueCloseRejectsEnqueue(t *testing.T) {
	q := New("test", fastConfig(3), func(ctx context.Context, job *Job[string]) error {
		return nil
	}, zap.NewNop())

	q.Close()

	_, err := q.Enqueue("payload")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueueCounts(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	q := New("test", fastConfig(3), func(ctx context.Context, job *Job[int]) error {
		once.Do(func() { close(started) })
		<-block
		return nil
	}, zap.NewNop())
	defer q.Close()

	for i := 0; i < 3; i++ {
		_, err := q.Enqueue(i)
		require.NoError(t, err)
	}

	<-started
	counts := q.Counts()
	assert.Equal(t, 1, counts.Active)
	assert.Equal(t, 2, counts.Waiting)

	close(block)
	require.Eventually(t, func() bool {
		return q.Counts() == Counts{}
	}, time.Second, 5*time.Millisecond)
}
