package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the dispatcher's view of outbox storage. Listing methods claim
// the rows they return by moving them to PROCESSING.
type Repository interface {
	ListPending(ctx context.Context, limit int) ([]*Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
	// MarkFailed increments attempts and moves the event to INVALID once
	// maxAttempts is reached, FAILED otherwise.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error
	MarkInvalid(ctx context.Context, id uuid.UUID, errMsg string) error
	ResetForRetry(ctx context.Context, limit int, failedBefore time.Time, maxAttempts int) ([]*Event, error)
	// ResetStuckProcessing reclaims events left in PROCESSING by a crashed
	// dispatcher. Events that exhausted maxAttempts become INVALID instead.
	ResetStuckProcessing(ctx context.Context, limit int, processingBefore time.Time, maxAttempts int) ([]*Event, error)
}

// Publisher delivers one event to a broker.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event *Event) error

func (fn PublisherFunc) Publish(ctx context.Context, event *Event) error {
	return fn(ctx, event)
}
