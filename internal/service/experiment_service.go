package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tablelab/internal/domain"
	"tablelab/internal/events"
	"tablelab/internal/metrics"
	"tablelab/internal/models"
	"tablelab/internal/scenario"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTrialOutOfRange = errors.New("trial must be 1 or 2")
)

// ExperimentService orchestrates one participant's run: session bookkeeping,
// per-trial scenario generation, and result persistence with downstream
// fan-out (events, sheet sync).
type ExperimentService struct {
	generator *scenario.Generator
	sessions  domain.SessionRepository
	store     domain.ResultStore
	eventBus  domain.EventPublisher
	syncer    domain.SyncWorker
	logger    *zerolog.Logger
}

func NewExperimentService(
	generator *scenario.Generator,
	sessions domain.SessionRepository,
	store domain.ResultStore,
	eventBus domain.EventPublisher,
	syncer domain.SyncWorker,
	logger *zerolog.Logger,
) *ExperimentService {
	return &ExperimentService{
		generator: generator,
		sessions:  sessions,
		store:     store,
		eventBus:  eventBus,
		syncer:    syncer,
		logger:    logger,
	}
}

// StartSession assigns a counterbalanced system order and registers the
// session for later trial bookkeeping.
func (s *ExperimentService) StartSession(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		ID:          uuid.NewString(),
		FirstSystem: s.generator.FirstSystem(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventSessionStarted, events.TrialEventPayload{
			SessionID: session.ID,
			System:    session.FirstSystem,
		})
	}
	return session, nil
}

func (s *ExperimentService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// StartTrial marks the server-side start of a trial and returns the scenario
// for the system assigned to that trial position.
func (s *ExperimentService) StartTrial(ctx context.Context, sessionID string, trial int) (*models.Scenario, error) {
	if trial != 1 && trial != 2 {
		return nil, ErrTrialOutOfRange
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	mode := session.SystemForTrial(trial)
	sc, err := s.generator.Generate(mode)
	if err != nil {
		return nil, err
	}
	metrics.IncScenario(string(mode))

	now := time.Now().UTC()
	session.CurrentTrial = trial
	if trial == 1 {
		session.Trial1Started = now
	} else {
		session.Trial2Started = now
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventTrialStarted, events.TrialEventPayload{
			SessionID: session.ID,
			Trial:     trial,
			System:    mode,
		})
	}
	return sc, nil
}

// NewScenario generates a standalone scenario outside any session. Used by
// the UI's practice screen and by the plain scenario endpoint.
func (s *ExperimentService) NewScenario(mode models.DisplayMode) (*models.Scenario, error) {
	sc, err := s.generator.Generate(mode)
	if err != nil {
		return nil, err
	}
	metrics.IncScenario(string(mode))
	return sc, nil
}

// CheckAvailability runs the pure oracle over a caller-supplied booking set.
func (s *ExperimentService) CheckAvailability(tableID int, clock string, bookings []models.BookingSlot) (bool, error) {
	metrics.IncAvailabilityQuery()
	return scenario.IsAvailable(tableID, clock, bookings)
}

// SaveResult appends a completed record to the durable sequence, then fans
// out to the event bus and the sheet-sync worker. Fan-out failures are
// logged, never surfaced: the record is already safe.
func (s *ExperimentService) SaveResult(ctx context.Context, sessionID string, result models.ExperimentResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	if err := s.store.Append(ctx, result); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	metrics.IncResultSaved()

	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear finished session")
		}
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventResultSaved, events.ResultEventPayload{
			Timestamp:      result.Timestamp,
			FirstSystem:    result.FirstSystem,
			Trial1Duration: result.Trial1.Duration,
			Trial2Duration: result.Trial2.Duration,
		})
	}

	if s.syncer != nil {
		if err := s.syncer.EnqueueResult(ctx, result); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Msg("failed to enqueue sheet sync")
		}
	}
	return nil
}

// ListResults returns the full historical sequence for the analysis consumer.
func (s *ExperimentService) ListResults(ctx context.Context) ([]models.ExperimentResult, error) {
	return s.store.List(ctx)
}
