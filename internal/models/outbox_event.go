package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a row of the outbox_events table.
type OutboxEvent struct {
	ID          uuid.UUID  `db:"id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"` // jsonb
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
