package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/google/uuid"
)

type outboxTx struct {
	uow *unitOfWork
}

var _ repositories.OutboxWriter = outboxTx{}

// Enqueue stages events so they commit together with the unit of work.
func (w outboxTx) Enqueue(ctx context.Context, events ...domain.DomainEvent) error {
	for _, ev := range events {
		record, err := outbox.FromDomainEvent(ev, w.uow.store.now())
		if err != nil {
			return err
		}
		w.uow.events = append(w.uow.events, record)
	}
	return nil
}

var _ outbox.Repository = (*Store)(nil)

// claim moves up to limit events matching pick to PROCESSING, oldest first.
func (s *Store) claim(limit int, pick func(outbox.Event) bool, apply func(*outbox.Event) string) ([]*outbox.Event, error) {
	if limit <= 0 {
		return nil, outbox.ErrLimitMustBePositive
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	claimed := make([]*outbox.Event, 0, limit)
	for _, id := range s.eventsOrder {
		if len(claimed) == limit {
			break
		}
		ev := s.events[id]
		if !pick(ev) {
			continue
		}
		next := apply(&ev)
		if err := outbox.ValidateTransition(ev.Status, next); err != nil {
			return nil, err
		}
		ev.Status = next
		ev.UpdatedAt = now
		s.events[id] = ev
		if next == outbox.StatusProcessingRaw {
			out := ev
			claimed = append(claimed, &out)
		}
	}
	return claimed, nil
}

func (s *Store) ListPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return s.claim(limit,
		func(ev outbox.Event) bool { return ev.Status == outbox.StatusPendingRaw },
		func(*outbox.Event) string { return outbox.StatusProcessingRaw })
}

func (s *Store) ResetForRetry(ctx context.Context, limit int, failedBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	return s.claim(limit,
		func(ev outbox.Event) bool {
			return ev.Status == outbox.StatusFailedRaw && ev.UpdatedAt.Before(failedBefore) && ev.Attempts < maxAttempts
		},
		func(*outbox.Event) string { return outbox.StatusProcessingRaw })
}

func (s *Store) ResetStuckProcessing(ctx context.Context, limit int, processingBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	return s.claim(limit,
		func(ev outbox.Event) bool {
			return ev.Status == outbox.StatusProcessingRaw && ev.UpdatedAt.Before(processingBefore)
		},
		func(ev *outbox.Event) string {
			ev.Attempts++
			if ev.Attempts >= maxAttempts {
				ev.LastError = "processing timed out"
				return outbox.StatusInvalidRaw
			}
			return outbox.StatusProcessingRaw
		})
}

func (s *Store) update(id uuid.UUID, apply func(*outbox.Event) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return fmt.Errorf("%w: %s", outbox.ErrEventNotFound, id)
	}
	from := ev.Status
	next := apply(&ev)
	if err := outbox.ValidateTransition(from, next); err != nil {
		return err
	}
	ev.Status = next
	ev.UpdatedAt = s.now()
	s.events[id] = ev
	return nil
}

func (s *Store) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	return s.update(id, func(ev *outbox.Event) string {
		at := publishedAt.UTC()
		ev.PublishedAt = &at
		ev.LastError = ""
		return outbox.StatusPublishedRaw
	})
}

func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error {
	return s.update(id, func(ev *outbox.Event) string {
		ev.Attempts++
		ev.LastError = errMsg
		if ev.Attempts >= maxAttempts {
			return outbox.StatusInvalidRaw
		}
		return outbox.StatusFailedRaw
	})
}

func (s *Store) MarkInvalid(ctx context.Context, id uuid.UUID, errMsg string) error {
	return s.update(id, func(ev *outbox.Event) string {
		ev.LastError = errMsg
		return outbox.StatusInvalidRaw
	})
}

// OutboxEvents returns a copy of every committed event in enqueue order.
func (s *Store) OutboxEvents() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]outbox.Event, 0, len(s.eventsOrder))
	for _, id := range s.eventsOrder {
		out = append(out, s.events[id])
	}
	return out
}
