package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const fiscalPeriodColumns = `period_id, fiscal_year, period_number, name, start_date, end_date, status,
	total_debits, total_credits, posting_restrictions, opened_by, opened_at, closed_by, closed_at, close_notes,
	reopened_by, reopened_at, reopen_reason, reopen_count, version,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxFiscalPeriodRepository implements repositories.FiscalPeriodRepositoryFacade.
type PgxFiscalPeriodRepository struct {
	db querier
}

var _ repositories.FiscalPeriodRepositoryFacade = (*PgxFiscalPeriodRepository)(nil)

func newPgxFiscalPeriodRepository(db querier) *PgxFiscalPeriodRepository {
	return &PgxFiscalPeriodRepository{db: db}
}

func scanFiscalPeriod(row pgx.Row) (domain.FiscalPeriod, error) {
	var m models.FiscalPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.FiscalYear,
		&m.PeriodNumber,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.TotalDebits,
		&m.TotalCredits,
		&m.Restrictions,
		&m.OpenedBy,
		&m.OpenedAt,
		&m.ClosedBy,
		&m.ClosedAt,
		&m.CloseNotes,
		&m.ReopenedBy,
		&m.ReopenedAt,
		&m.ReopenReason,
		&m.ReopenCount,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.FiscalPeriod{}, err
	}
	return mapping.ToDomainFiscalPeriod(m), nil
}

func (r *PgxFiscalPeriodRepository) findOne(ctx context.Context, where string, arg any) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods WHERE ` + where
	p, err := scanFiscalPeriod(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUnknownFiscalPeriod, arg)
		}
		return nil, mapPgError(err, "failed to find fiscal period %v", arg)
	}
	return &p, nil
}

// FindFiscalPeriodByID retrieves a period by its ID.
func (r *PgxFiscalPeriodRepository) FindFiscalPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	return r.findOne(ctx, "period_id = $1", periodID)
}

// FindFiscalPeriodByDate retrieves the period whose date range contains date.
func (r *PgxFiscalPeriodRepository) FindFiscalPeriodByDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	return r.findOne(ctx, "$1::date BETWEEN start_date AND end_date", domain.DateOnly(date))
}

// FindFiscalPeriodByDateForUpdate locks the containing period until the surrounding transaction ends.
// Concurrent postings into one period queue on this row instead of failing its version guard.
func (r *PgxFiscalPeriodRepository) FindFiscalPeriodByDateForUpdate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	return r.findOne(ctx, "$1::date BETWEEN start_date AND end_date FOR UPDATE", domain.DateOnly(date))
}

func (r *PgxFiscalPeriodRepository) queryPeriods(ctx context.Context, query string, args ...any) ([]domain.FiscalPeriod, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query fiscal periods")
	}
	defer rows.Close()

	periods := []domain.FiscalPeriod{}
	for rows.Next() {
		p, err := scanFiscalPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period row: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating fiscal period rows")
	}
	return periods, nil
}

// ListFiscalPeriods lists periods of one fiscal year, or all when fiscalYear is 0.
func (r *PgxFiscalPeriodRepository) ListFiscalPeriods(ctx context.Context, fiscalYear int) ([]domain.FiscalPeriod, error) {
	if fiscalYear == 0 {
		return r.queryPeriods(ctx, `SELECT `+fiscalPeriodColumns+` FROM fiscal_periods ORDER BY start_date`)
	}
	return r.queryPeriods(ctx, `SELECT `+fiscalPeriodColumns+` FROM fiscal_periods WHERE fiscal_year = $1 ORDER BY start_date`, fiscalYear)
}

// ListFiscalPeriodsByStatus lists periods in one status ordered by start date.
func (r *PgxFiscalPeriodRepository) ListFiscalPeriodsByStatus(ctx context.Context, status domain.PeriodStatus) ([]domain.FiscalPeriod, error) {
	return r.queryPeriods(ctx, `SELECT `+fiscalPeriodColumns+` FROM fiscal_periods WHERE status = $1 ORDER BY start_date`, string(status))
}

// SaveFiscalPeriod inserts a new period or performs a version-guarded update.
// Overlapping date ranges are rejected by the fiscal_periods_no_overlap exclusion constraint.
func (r *PgxFiscalPeriodRepository) SaveFiscalPeriod(ctx context.Context, period domain.FiscalPeriod, expectedVersion int64) error {
	m := mapping.ToModelFiscalPeriod(period)
	if expectedVersion == 0 {
		query := `
			INSERT INTO fiscal_periods (` + fiscalPeriodColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
		`
		_, err := r.db.Exec(ctx, query,
			m.PeriodID,
			m.FiscalYear,
			m.PeriodNumber,
			m.Name,
			m.StartDate,
			m.EndDate,
			m.Status,
			m.TotalDebits,
			m.TotalCredits,
			m.Restrictions,
			m.OpenedBy,
			m.OpenedAt,
			m.ClosedBy,
			m.ClosedAt,
			m.CloseNotes,
			m.ReopenedBy,
			m.ReopenedAt,
			m.ReopenReason,
			m.ReopenCount,
			m.Version,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return mapPgError(err, "failed to save fiscal period %s", m.PeriodID)
		}
		return nil
	}

	query := `
		UPDATE fiscal_periods
		SET name = $2, status = $3, total_debits = $4, total_credits = $5, posting_restrictions = $6,
			opened_by = $7, opened_at = $8, closed_by = $9, closed_at = $10, close_notes = $11,
			reopened_by = $12, reopened_at = $13, reopen_reason = $14, reopen_count = $15, version = $16,
			last_updated_at = $17, last_updated_by = $18
		WHERE period_id = $1 AND version = $19;
	`
	tag, err := r.db.Exec(ctx, query,
		m.PeriodID,
		m.Name,
		m.Status,
		m.TotalDebits,
		m.TotalCredits,
		m.Restrictions,
		m.OpenedBy,
		m.OpenedAt,
		m.ClosedBy,
		m.ClosedAt,
		m.CloseNotes,
		m.ReopenedBy,
		m.ReopenedAt,
		m.ReopenReason,
		m.ReopenCount,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return mapPgError(err, "failed to update fiscal period %s", m.PeriodID)
	}
	if tag.RowsAffected() == 0 {
		return versionMiss(ctx, r.db, "fiscal_periods", "period_id", m.PeriodID, apperrors.ErrUnknownFiscalPeriod)
	}
	return nil
}
