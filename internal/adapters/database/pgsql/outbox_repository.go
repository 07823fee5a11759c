package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const outboxColumns = `id, event_type, aggregate_id, payload, status, attempts, last_error, published_at, created_at, updated_at`

const stuckProcessingError = "processing timed out"

// outboxWriter stages events in the caller's transaction.
type outboxWriter struct {
	db  querier
	now func() time.Time
}

var _ repositories.OutboxWriter = (*outboxWriter)(nil)

func (w *outboxWriter) Enqueue(ctx context.Context, events ...domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `INSERT INTO outbox_events (` + outboxColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	for _, ev := range events {
		record, err := outbox.FromDomainEvent(ev, w.now())
		if err != nil {
			return err
		}
		m := mapping.ToModelOutboxEvent(*record)
		batch.Queue(query, m.ID, m.EventType, m.AggregateID, m.Payload, m.Status, m.Attempts, m.LastError, m.PublishedAt, m.CreatedAt, m.UpdatedAt)
	}
	if err := w.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "failed to enqueue outbox events")
	}
	return nil
}

// PgxOutboxRepository is the dispatcher's view of outbox_events. Claims use
// FOR UPDATE SKIP LOCKED so several dispatchers can share the table.
type PgxOutboxRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ outbox.Repository = (*PgxOutboxRepository)(nil)

// NewPgxOutboxRepository creates the outbox repository used by the dispatcher.
func NewPgxOutboxRepository(pool *pgxpool.Pool) *PgxOutboxRepository {
	return &PgxOutboxRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PgxOutboxRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*outbox.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query outbox events")
	}
	defer rows.Close()

	events := []*outbox.Event{}
	for rows.Next() {
		var m models.OutboxEvent
		if err := rows.Scan(
			&m.ID,
			&m.EventType,
			&m.AggregateID,
			&m.Payload,
			&m.Status,
			&m.Attempts,
			&m.LastError,
			&m.PublishedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event row: %w", err)
		}
		events = append(events, mapping.ToOutboxEvent(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating outbox event rows")
	}
	// RETURNING does not preserve the claim order.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID.String() < events[j].ID.String()
	})
	return events, nil
}

func (r *PgxOutboxRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	if limit <= 0 {
		return nil, outbox.ErrLimitMustBePositive
	}
	query := `
		UPDATE outbox_events o SET status = $2, updated_at = $3
		FROM (
			SELECT id FROM outbox_events WHERE status = $4
			ORDER BY created_at, id LIMIT $1 FOR UPDATE SKIP LOCKED
		) claimed
		WHERE o.id = claimed.id
		RETURNING ` + prefixed("o", outboxColumns)
	return r.queryEvents(ctx, query, limit, outbox.StatusProcessingRaw, r.now(), outbox.StatusPendingRaw)
}

func (r *PgxOutboxRepository) ResetForRetry(ctx context.Context, limit int, failedBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	if limit <= 0 {
		return nil, outbox.ErrLimitMustBePositive
	}
	query := `
		UPDATE outbox_events o SET status = $2, updated_at = $3
		FROM (
			SELECT id FROM outbox_events WHERE status = $4 AND updated_at < $5 AND attempts < $6
			ORDER BY created_at, id LIMIT $1 FOR UPDATE SKIP LOCKED
		) claimed
		WHERE o.id = claimed.id
		RETURNING ` + prefixed("o", outboxColumns)
	return r.queryEvents(ctx, query, limit, outbox.StatusProcessingRaw, r.now(), outbox.StatusFailedRaw, failedBefore, maxAttempts)
}

func (r *PgxOutboxRepository) ResetStuckProcessing(ctx context.Context, limit int, processingBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	if limit <= 0 {
		return nil, outbox.ErrLimitMustBePositive
	}
	query := `
		UPDATE outbox_events o
		SET attempts = o.attempts + 1,
			status = CASE WHEN o.attempts + 1 >= $3 THEN $4 ELSE o.status END,
			last_error = CASE WHEN o.attempts + 1 >= $3 THEN $5 ELSE o.last_error END,
			updated_at = $6
		FROM (
			SELECT id FROM outbox_events WHERE status = $2 AND updated_at < $7
			ORDER BY created_at, id LIMIT $1 FOR UPDATE SKIP LOCKED
		) stuck
		WHERE o.id = stuck.id
		RETURNING ` + prefixed("o", outboxColumns)
	events, err := r.queryEvents(ctx, query, limit, outbox.StatusProcessingRaw, maxAttempts,
		outbox.StatusInvalidRaw, stuckProcessingError, r.now(), processingBefore)
	if err != nil {
		return nil, err
	}
	reclaimed := events[:0]
	for _, ev := range events {
		if ev.Status == outbox.StatusProcessingRaw {
			reclaimed = append(reclaimed, ev)
		}
	}
	return reclaimed, nil
}

// finish applies a PROCESSING -> next transition.
func (r *PgxOutboxRepository) finish(ctx context.Context, id uuid.UUID, next string, set string, args ...any) error {
	query := `UPDATE outbox_events SET status = $2, ` + set + ` WHERE id = $1 AND status = $3`
	tag, err := r.pool.Exec(ctx, query, append([]any{id, next, outbox.StatusProcessingRaw}, args...)...)
	if err != nil {
		return mapPgError(err, "failed to update outbox event %s", id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainMiss(ctx, id, next)
}

// explainMiss reports whether an event that matched no row is missing or in the wrong state.
func (r *PgxOutboxRepository) explainMiss(ctx context.Context, id uuid.UUID, next string) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM outbox_events WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", outbox.ErrEventNotFound, id)
	}
	if err != nil {
		return mapPgError(err, "failed to load outbox event %s", id)
	}
	if err := outbox.ValidateTransition(current, next); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", outbox.ErrTransitionInvalid, current, next)
}

func (r *PgxOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	return r.finish(ctx, id, outbox.StatusPublishedRaw,
		"published_at = $4, last_error = NULL, updated_at = $5", publishedAt.UTC(), r.now())
}

func (r *PgxOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			status = CASE WHEN attempts + 1 >= $3 THEN $4 ELSE $5 END,
			last_error = $2, updated_at = $6
		WHERE id = $1 AND status = $7`
	tag, err := r.pool.Exec(ctx, query, id, errMsg, maxAttempts,
		outbox.StatusInvalidRaw, outbox.StatusFailedRaw, r.now(), outbox.StatusProcessingRaw)
	if err != nil {
		return mapPgError(err, "failed to mark outbox event %s failed", id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainMiss(ctx, id, outbox.StatusFailedRaw)
}

func (r *PgxOutboxRepository) MarkInvalid(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.finish(ctx, id, outbox.StatusInvalidRaw, "last_error = $4, updated_at = $5", errMsg, r.now())
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
