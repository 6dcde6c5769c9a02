package session

import (
	"context"
	"sync"
	"time"

	"tablelab/internal/models"
)

type memoryEntry struct {
	session   *models.Session
	expiresAt time.Time
}

// MemoryRepository is the zero-dependency fallback for session state.
type MemoryRepository struct {
	sessions sync.Map
	ttl      time.Duration
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{ttl: ttl}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.sessions.Delete(id)
		return nil, nil
	}
	return entry.session, nil
}

func (r *MemoryRepository) Save(ctx context.Context, session *models.Session) error {
	r.sessions.Store(session.ID, memoryEntry{
		session:   session,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}
