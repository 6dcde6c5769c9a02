package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tablelab/internal/domain"
	"tablelab/internal/models"
)

// FailoverRepository prefers the primary (redis) repository and falls back
// to the secondary (memory) when the primary errors, retrying the primary
// after a cool-down.
type FailoverRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	downSince atomic.Int64
}

const recoveryInterval = time.Minute

func NewFailoverRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverRepository {
	return &FailoverRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	if r.tryPrimary() {
		session, err := r.primary.Get(ctx, id)
		if err == nil {
			r.markUp()
			return session, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, id)
}

func (r *FailoverRepository) Save(ctx context.Context, session *models.Session) error {
	if r.tryPrimary() {
		if err := r.primary.Save(ctx, session); err == nil {
			r.markUp()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.Save(ctx, session)
}

func (r *FailoverRepository) Delete(ctx context.Context, id string) error {
	if r.tryPrimary() {
		if err := r.primary.Delete(ctx, id); err == nil {
			r.markUp()
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.Delete(ctx, id)
}

// tryPrimary reports whether the primary should be attempted: either it is
// believed healthy, or the cool-down elapsed and it deserves a probe.
func (r *FailoverRepository) tryPrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	downSince := time.Unix(0, r.downSince.Load())
	return time.Since(downSince) > recoveryInterval
}

func (r *FailoverRepository) markDown(err error) {
	if r.logger != nil {
		r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
	}
	r.isDown.Store(true)
	r.downSince.Store(time.Now().UnixNano())
}

func (r *FailoverRepository) markUp() {
	r.isDown.Store(false)
}
