package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tablelab/internal/models"
)

// ResultSink applies one experiment record to the external sheet.
type ResultSink interface {
	AppendResultRow(ctx context.Context, result models.ExperimentResult) error
}

// ResultsWorker ships saved experiment records to a Google Sheet without
// blocking the save path. Tasks go through redis when available for
// durability across restarts, falling back to an in-memory queue.
type ResultsWorker struct {
	sink          ResultSink
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.ExperimentResult
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        zerolog.Logger
}

func NewResultsWorker(sink ResultSink, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *ResultsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	w := &ResultsWorker{
		sink:          sink,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.ExperimentResult, models.WorkerQueueSize),
		redisQueueKey: "results:queue",
		deadLetterKey: "results:deadletter",
		pollInterval:  2 * time.Second,
		logger:        zerolog.Nop(),
	}
	if logger != nil {
		w.logger = logger.With().Str("component", "results_worker").Logger()
	}
	return w
}

// EnqueueResult schedules a record for sheet sync. Never blocks the caller;
// a full in-memory queue drops the task with a log line because the record
// itself is already durable in the result store.
func (w *ResultsWorker) EnqueueResult(ctx context.Context, result models.ExperimentResult) error {
	if w.sink == nil {
		return errors.New("no result sink configured")
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, result); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- result:
	default:
		w.logger.Error().Str("timestamp", result.Timestamp).Msg("in-memory queue full, sheet sync dropped")
	}
	return nil
}

// Run consumes tasks until the context is canceled.
func (w *ResultsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case result := <-w.queue:
			w.process(ctx, result)
		case <-ticker.C:
			w.drainRedis(ctx)
		}
	}
}

func (w *ResultsWorker) pushRedis(ctx context.Context, result models.ExperimentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return w.redis.RPush(ctx, w.redisQueueKey, payload).Err()
}

func (w *ResultsWorker) drainRedis(ctx context.Context) {
	if w.redis == nil {
		return
	}
	for {
		payload, err := w.redis.LPop(ctx, w.redisQueueKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			w.logger.Warn().Err(err).Msg("redis pop failed")
			return
		}

		var result models.ExperimentResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			w.logger.Error().Err(err).Msg("malformed queued result, sending to dead letter")
			w.deadLetter(ctx, payload)
			continue
		}
		w.process(ctx, result)
	}
}

func (w *ResultsWorker) process(ctx context.Context, result models.ExperimentResult) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.sink.AppendResultRow(ctx, result)
		if lastErr == nil {
			w.logger.Debug().Str("timestamp", result.Timestamp).Msg("result synced to sheet")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Err(lastErr).Str("timestamp", result.Timestamp).Msg("sheet sync exhausted retries")
	if payload, err := json.Marshal(result); err == nil {
		w.deadLetter(ctx, string(payload))
	}
}

func (w *ResultsWorker) deadLetter(ctx context.Context, payload string) {
	if w.redis == nil {
		return
	}
	if err := w.redis.RPush(ctx, w.deadLetterKey, payload).Err(); err != nil {
		w.logger.Error().Err(err).Msg("dead letter push failed")
	}
}
