package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// Dispatcher publishes stored events. Delivery is at-least-once: an event is
// marked PUBLISHED only after the publisher accepted it, so consumers must be
// idempotent on Event.ID.
type Dispatcher struct {
	repo           Repository
	publisher      Publisher
	logger         *slog.Logger
	cfg            DispatcherConfig
	isNonRetryable func(error) bool
	now            func() time.Time

	mu      sync.Mutex
	running bool
}

// DispatchResult captures one dispatch cycle outcome.
type DispatchResult struct {
	Processed         int
	Published         int
	Failed            int
	StateUpdateFailed int
}

func NewDispatcher(repo Repository, publisher Publisher, logger *slog.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "outbox_dispatcher")),
		cfg:       DefaultDispatcherConfig(),
		isNonRetryable: func(err error) bool {
			return errors.Is(err, ErrNonRetryablePublishErr)
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.cfg.normalize()
	return d, nil
}

// Run dispatches immediately and then on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrDispatcherRunning
	}
	d.running = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.logger.Info("Outbox dispatcher started", slog.Duration("interval", d.cfg.DispatchInterval))
	defer d.logger.Info("Outbox dispatcher stopped")

	ticker := time.NewTicker(d.cfg.DispatchInterval)
	defer ticker.Stop()

	d.dispatchLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.dispatchLogged(ctx)
		}
	}
}

func (d *Dispatcher) dispatchLogged(ctx context.Context) {
	res := d.DispatchOnce(ctx)
	if res.Processed == 0 {
		return
	}
	d.logger.Debug("Outbox dispatch cycle finished",
		slog.Int("processed", res.Processed),
		slog.Int("published", res.Published),
		slog.Int("failed", res.Failed),
		slog.Int("state_update_failed", res.StateUpdateFailed))
}

// DispatchOnce runs a single cycle and returns its counters.
func (d *Dispatcher) DispatchOnce(ctx context.Context) DispatchResult {
	var res DispatchResult
	for _, event := range d.collectEvents(ctx) {
		if ctx.Err() != nil {
			break
		}
		res.Processed++

		if err := d.publishWithRetry(ctx, event); err != nil {
			d.handlePublishError(ctx, event, err)
			res.Failed++
			continue
		}
		res.Published++

		if err := d.repo.MarkPublished(ctx, event.ID, d.now()); err != nil {
			d.logger.Error("Event published but PUBLISHED state was not persisted; it may be delivered again",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
			res.StateUpdateFailed++
		}
	}
	return res
}

// collectEvents reclaims stuck rows first, then retry-eligible failures, then
// fills the batch with pending rows.
func (d *Dispatcher) collectEvents(ctx context.Context) []*Event {
	now := d.now()
	limit := d.cfg.BatchSize

	stuck, err := d.repo.ResetStuckProcessing(ctx, limit, now.Add(-d.cfg.ProcessingTimeout), d.cfg.MaxDispatchAttempts)
	if err != nil {
		d.logger.Error("Failed to reset stuck outbox events", slog.String("error", err.Error()))
	}

	events := append([]*Event{}, stuck...)
	failedLimit := min(limit-len(events), d.cfg.MaxFailedPerBatch)
	if failedLimit > 0 {
		failed, err := d.repo.ResetForRetry(ctx, failedLimit, now.Add(-d.cfg.RetryWindow), d.cfg.MaxDispatchAttempts)
		if err != nil {
			d.logger.Error("Failed to reset outbox events for retry", slog.String("error", err.Error()))
		}
		events = append(events, failed...)
	}

	if remaining := limit - len(events); remaining > 0 {
		pending, err := d.repo.ListPending(ctx, remaining)
		if err != nil {
			d.logger.Error("Failed to list pending outbox events", slog.String("error", err.Error()))
		}
		events = append(events, pending...)
	}
	return deduplicate(events)
}

func deduplicate(events []*Event) []*Event {
	seen := make(map[uuid.UUID]bool, len(events))
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e == nil || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, event *Event) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.PublishBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := d.publisher.Publish(ctx, event); err != nil {
			if d.isNonRetryable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(d.cfg.PublishMaxAttempts)))
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}
	return nil
}

func (d *Dispatcher) handlePublishError(ctx context.Context, event *Event, err error) {
	logger := d.logger.With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.Int("attempts", event.Attempts))

	if d.isNonRetryable(err) {
		logger.Warn("Outbox event rejected by publisher, marking invalid", slog.String("error", err.Error()))
		if markErr := d.repo.MarkInvalid(ctx, event.ID, err.Error()); markErr != nil {
			logger.Error("Failed to mark outbox event invalid", slog.String("error", markErr.Error()))
		}
		return
	}

	logger.Warn("Outbox event publish failed", slog.String("error", err.Error()))
	if markErr := d.repo.MarkFailed(ctx, event.ID, err.Error(), d.cfg.MaxDispatchAttempts); markErr != nil {
		logger.Error("Failed to mark outbox event failed", slog.String("error", markErr.Error()))
	}
}
