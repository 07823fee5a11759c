package mapping

import (
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/outbox"
)

// ToModelOutboxEvent converts an outbox Event to its row.
func ToModelOutboxEvent(e outbox.Event) models.OutboxEvent {
	var lastError *string
	if e.LastError != "" {
		msg := e.LastError
		lastError = &msg
	}
	return models.OutboxEvent{
		ID:          e.ID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Payload:     e.Payload,
		Status:      e.Status,
		Attempts:    e.Attempts,
		LastError:   lastError,
		PublishedAt: e.PublishedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToOutboxEvent converts an outbox row to an outbox Event.
func ToOutboxEvent(m models.OutboxEvent) *outbox.Event {
	e := &outbox.Event{
		ID:          m.ID,
		EventType:   m.EventType,
		AggregateID: m.AggregateID,
		Payload:     m.Payload,
		Status:      m.Status,
		Attempts:    m.Attempts,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.LastError != nil {
		e.LastError = *m.LastError
	}
	return e
}
