package domain

import (
	"context"

	"tablelab/internal/models"
)

// ResultStore is the durable sequence of completed experiment records.
type ResultStore interface {
	Append(ctx context.Context, result models.ExperimentResult) error
	List(ctx context.Context) ([]models.ExperimentResult, error)
	Close() error
}

// SessionRepository holds in-progress experiment sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker pushes saved results to an external sheet asynchronously.
type SyncWorker interface {
	EnqueueResult(ctx context.Context, result models.ExperimentResult) error
}
