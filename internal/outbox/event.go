package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/google/uuid"
)

const (
	StatusPendingRaw    = "PENDING"
	StatusProcessingRaw = "PROCESSING"
	StatusPublishedRaw  = "PUBLISHED"
	StatusFailedRaw     = "FAILED"
	StatusInvalidRaw    = "INVALID"

	DefaultMaxPayloadBytes = 1 << 20
)

// Event is a domain event stored for reliable delivery. It is written in the
// same transaction as the state change that produced it.
type Event struct {
	ID          uuid.UUID
	EventType   string
	AggregateID string
	Payload     []byte
	Status      string
	Attempts    int
	PublishedAt *time.Time
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent creates a pending event after validating its payload.
func NewEvent(eventType, aggregateID string, payload []byte, now time.Time) (*Event, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, ErrEventTypeRequired
	}
	if strings.TrimSpace(aggregateID) == "" {
		return nil, ErrAggregateIDRequired
	}
	if len(payload) == 0 {
		return nil, ErrEventPayloadRequired
	}
	if len(payload) > DefaultMaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrEventPayloadTooLarge, len(payload))
	}
	if !json.Valid(payload) {
		return nil, ErrEventPayloadNotJSON
	}

	now = now.UTC()
	return &Event{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      StatusPendingRaw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// FromDomainEvent serializes a domain event into a pending outbox event.
func FromDomainEvent(ev domain.DomainEvent, now time.Time) (*Event, error) {
	if ev == nil {
		return nil, ErrEventRequired
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return NewEvent(ev.EventType(), ev.AggregateID(), payload, now)
}
