package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/outbox"
)

// Envelope is the wire form of an outbox event. Consumers deduplicate on ID.
type Envelope struct {
	ID          string          `json:"id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Attempt     int             `json:"attempt"`
	Payload     json.RawMessage `json:"payload"`
}

// encode wraps event in an Envelope. A payload that is not JSON can never be
// delivered, so it is reported as non-retryable.
func encode(event *outbox.Event) ([]byte, error) {
	if !json.Valid(event.Payload) {
		return nil, fmt.Errorf("%w: event %s payload is not JSON", outbox.ErrNonRetryablePublishErr, event.ID)
	}
	body, err := json.Marshal(Envelope{
		ID:          event.ID.String(),
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		OccurredAt:  event.CreatedAt,
		Attempt:     event.Attempts + 1,
		Payload:     event.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal event %s: %v", outbox.ErrNonRetryablePublishErr, event.ID, err)
	}
	return body, nil
}
