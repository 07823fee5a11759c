package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can
// run standalone or bound to a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	pgUniqueViolation      = "23505"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapPgError translates driver errors into the application's sentinels.
func mapPgError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrDuplicate, msg, pgErr.ConstraintName)
		case pgExclusionViolation:
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrOverlappingPeriod, msg, pgErr.ConstraintName)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrStaleVersion, msg, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// versionMiss explains a guarded UPDATE that matched no row: either the row
// is gone or someone else bumped its version first.
func versionMiss(ctx context.Context, q querier, table, idColumn, id string, notFound error) error {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", table, idColumn)
	if err := q.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return mapPgError(err, "failed to check %s %s", table, id)
	}
	if !exists {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return fmt.Errorf("%w: %s %s", apperrors.ErrStaleVersion, table, id)
}

// nullIfEmpty stores empty optional references as NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
