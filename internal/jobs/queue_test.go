package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQueue(t *testing.T, cfg Config) *Queue {
	t.Helper()
	return New(Params{
		Log:    zap.NewNop(),
		Config: cfg,
	})
}

func TestQueueRunsJob(t *testing.T) {
	q := newQueue(t, Config{Workers: 1, BaseBackoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	done := make(chan struct{})
	q.Enqueue(Job{
		Name: "notify",
		Run: func(context.Context) error {
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	cancel()
	q.Wait()
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := newQueue(t, Config{Workers: 1, MaxRetries: 3, BaseBackoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	var attempts atomic.Int32
	done := make(chan struct{})
	q.Enqueue(Job{
		Name: "flaky",
		Run: func(context.Context) error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	require.EqualValues(t, 3, attempts.Load())

	cancel()
	q.Wait()
}

func TestQueueIgnoresNilRun(t *testing.T) {
	q := newQueue(t, Config{Workers: 1, QueueSize: 1, BaseBackoff: time.Millisecond})

	// Must not occupy the single buffer slot.
	q.Enqueue(Job{Name: "empty"})
	require.Len(t, q.ch, 0)
}

func TestQueueStopsOnContextCancel(t *testing.T) {
	q := newQueue(t, Config{Workers: 2, BaseBackoff: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	cancel()

	finished := make(chan struct{})
	go func() {
		q.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not exit after cancel")
	}
}
