package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelab/internal/models"
)

type fakeSink struct {
	mu       sync.Mutex
	failures int
	applied  []models.ExperimentResult
}

func (f *fakeSink) AppendResultRow(ctx context.Context, r models.ExperimentResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("sheet unavailable")
	}
	f.applied = append(f.applied, r)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func fastRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func testResult() models.ExperimentResult {
	return models.ExperimentResult{
		Timestamp:   "2026-08-30T10:00:00Z",
		FirstSystem: models.DisplayText,
		Trial1:      models.TrialResult{System: models.DisplayText, Prompt: "p", Duration: 100},
		Trial2:      models.TrialResult{System: models.DisplayColoured, Prompt: "p", Duration: 200},
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	// Clamped.
	assert.Equal(t, 5*time.Second, p.NextDelay(4))
	// Bad attempt values normalize.
	assert.Equal(t, time.Second, p.NextDelay(-3))

	zero := RetryPolicy{}
	assert.Equal(t, time.Second, zero.NextDelay(1))
}

func TestWorkerProcessesMemoryQueue(t *testing.T) {
	sink := &fakeSink{}
	w := NewResultsWorker(sink, nil, fastRetry(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, w.EnqueueResult(ctx, testResult()))

	assert.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	sink := &fakeSink{failures: 2}
	w := NewResultsWorker(sink, nil, fastRetry(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, w.EnqueueResult(ctx, testResult()))

	assert.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestWorkerUsesRedisQueue(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	sink := &fakeSink{}
	w := NewResultsWorker(sink, client, fastRetry(), nil)
	w.pollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Enqueue before the worker runs: the task survives in redis.
	require.NoError(t, w.EnqueueResult(ctx, testResult()))

	go w.Run(ctx)

	assert.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestWorkerDeadLettersExhaustedTasks(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	defer srv.Close()

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	sink := &fakeSink{failures: 100}
	w := NewResultsWorker(sink, client, fastRetry(), nil)
	w.pollInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.EnqueueResult(ctx, testResult()))
	go w.Run(ctx)

	assert.Eventually(t, func() bool {
		n, err := client.LLen(context.Background(), w.deadLetterKey).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnqueueWithoutSink(t *testing.T) {
	w := NewResultsWorker(nil, nil, RetryPolicy{}, nil)
	assert.Error(t, w.EnqueueResult(context.Background(), testResult()))
}
