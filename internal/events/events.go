package events

import (
	"encoding/json"
	"sync"
	"time"

	"tablelab/internal/models"
)

const (
	EventSessionStarted = "session_started"
	EventTrialStarted   = "trial_started"
	EventResultSaved    = "result_saved"
)

// ResultEventPayload is the minimal snapshot event consumers need.
type ResultEventPayload struct {
	Timestamp      string             `json:"timestamp"`
	FirstSystem    models.DisplayMode `json:"first_system"`
	Trial1Duration int64              `json:"trial1_duration"`
	Trial2Duration int64              `json:"trial2_duration"`
}

// TrialEventPayload describes a trial transition within a session.
type TrialEventPayload struct {
	SessionID string             `json:"session_id"`
	Trial     int                `json:"trial"`
	System    models.DisplayMode `json:"system"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously;
// the caller decides the concurrency model.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
