package events

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/outbox"
)

// NewLogPublisher writes every event to the logger. It is the default when no
// broker is configured and keeps the outbox draining in development.
func NewLogPublisher(logger *slog.Logger) outbox.Publisher {
	logger = logger.With(slog.String("publisher", "log"))
	return outbox.PublisherFunc(func(ctx context.Context, event *outbox.Event) error {
		body, err := encode(event)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Ledger event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("envelope", string(body)),
		)
		return nil
	})
}
