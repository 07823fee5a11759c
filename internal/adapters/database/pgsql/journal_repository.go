package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const journalEntryColumns = `e.entry_id, e.reference_number, e.entry_date, e.entry_type, e.description, e.status,
	COALESCE(e.fiscal_period_id, ''), e.source_system, e.requires_approval, e.submitted_by, e.posted_by, e.posted_at,
	COALESCE(e.reversal_of_id, ''), COALESCE(e.reversed_by_id, ''), e.reversal_reason, e.cancelled_by, e.version,
	e.created_at, e.created_by, e.last_updated_at, e.last_updated_by`

const journalLineColumns = `line_id, entry_id, line_number, account_id, amount, currency_code, side, memo`

// PgxJournalEntryRepository implements repositories.JournalEntryRepositoryFacade.
// Headers live in journal_entries and lines in journal_lines.
type PgxJournalEntryRepository struct {
	db querier
}

var _ repositories.JournalEntryRepositoryFacade = (*PgxJournalEntryRepository)(nil)

func newPgxJournalEntryRepository(db querier) *PgxJournalEntryRepository {
	return &PgxJournalEntryRepository{db: db}
}

func scanJournalEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.ReferenceNumber,
		&m.EntryDate,
		&m.EntryType,
		&m.Description,
		&m.Status,
		&m.FiscalPeriodID,
		&m.SourceSystem,
		&m.RequiresApproval,
		&m.SubmittedBy,
		&m.PostedBy,
		&m.PostedAt,
		&m.ReversalOfID,
		&m.ReversedByID,
		&m.ReversalReason,
		&m.CancelledBy,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// linesFor loads the lines of every given entry, keyed by entry id, in line number order.
func (r *PgxJournalEntryRepository) linesFor(ctx context.Context, entryIDs []string) (map[string][]models.JournalLine, error) {
	result := make(map[string][]models.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + journalLineColumns + ` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number`
	rows, err := r.db.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to query journal lines")
	}
	defer rows.Close()

	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.LineNumber,
			&l.AccountID,
			&l.Amount,
			&l.CurrencyCode,
			&l.Side,
			&l.Memo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		result[l.EntryID] = append(result[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating journal line rows")
	}
	return result, nil
}

// assemble attaches lines to headers and converts them to domain entries.
func (r *PgxJournalEntryRepository) assemble(ctx context.Context, headers []models.JournalEntry) ([]domain.JournalEntry, error) {
	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.JournalEntry, 0, len(headers))
	for _, h := range headers {
		e, err := mapping.ToDomainJournalEntry(h, lines[h.EntryID])
		if err != nil {
			return nil, fmt.Errorf("failed to map journal entry %s: %w", h.EntryID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *PgxJournalEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query journal entries")
	}
	headers := []models.JournalEntry{}
	for rows.Next() {
		h, err := scanJournalEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating journal entry rows")
	}
	// Lines are loaded after the header cursor is closed; a pgx.Tx runs one query at a time.
	return r.assemble(ctx, headers)
}

func (r *PgxJournalEntryRepository) findOne(ctx context.Context, where string, arg any) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries e WHERE ` + where
	h, err := scanJournalEntry(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUnknownJournalEntry, arg)
		}
		return nil, mapPgError(err, "failed to find journal entry %v", arg)
	}
	entries, err := r.assemble(ctx, []models.JournalEntry{h})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// FindJournalEntryByID retrieves an entry and its lines.
func (r *PgxJournalEntryRepository) FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, "e.entry_id = $1", entryID)
}

// FindJournalEntryByIDForUpdate locks the entry header row until the surrounding transaction ends.
func (r *PgxJournalEntryRepository) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, "e.entry_id = $1 FOR UPDATE", entryID)
}

// FindJournalEntryByReference retrieves an entry by its unique reference number.
func (r *PgxJournalEntryRepository) FindJournalEntryByReference(ctx context.Context, referenceNumber string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, "e.reference_number = $1", referenceNumber)
}

// ListJournalEntries pages entries newest first by (entry_date, created_at, entry_id).
// One extra row is fetched to decide whether a next token is needed.
func (r *PgxJournalEntryRepository) ListJournalEntries(ctx context.Context, filter repositories.JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i, v := range vals {
			args = append(args, v)
			placeholders[i] = len(args)
		}
		conds = append(conds, fmt.Sprintf(cond, placeholders...))
	}
	if filter.Status != "" {
		add("e.status = $%d", string(filter.Status))
	}
	if filter.EntryType != "" {
		add("e.entry_type = $%d", string(filter.EntryType))
	}
	if filter.FiscalPeriodID != "" {
		add("e.fiscal_period_id = $%d", filter.FiscalPeriodID)
	}
	if filter.From != nil {
		add("e.entry_date >= $%d", domain.DateOnly(*filter.From))
	}
	if filter.To != nil {
		add("e.entry_date <= $%d", domain.DateOnly(*filter.To))
	}
	if filter.AccountID != "" {
		add("EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = e.entry_id AND l.account_id = $%d)", filter.AccountID)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		add("(e.entry_date, e.created_at, e.entry_id) < ($%d, $%d, $%d)", cursor.EntryDate, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries e`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY e.entry_date DESC, e.created_at DESC, e.entry_id DESC`
	if limit > 0 {
		args = append(args, limit+1)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 || len(entries) <= limit {
		return entries, nil, nil
	}
	entries = entries[:limit]
	last := entries[limit-1]
	token := pagination.EncodeCursor(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
	return entries, &token, nil
}

// ListJournalEntriesInRange lists entries dated within [from, to] in one of statuses.
func (r *PgxJournalEntryRepository) ListJournalEntriesInRange(ctx context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries e
		WHERE e.entry_date BETWEEN $1 AND $2`
	args := []any{domain.DateOnly(from), domain.DateOnly(to)}
	if len(statuses) > 0 {
		raw := make([]string, len(statuses))
		for i, s := range statuses {
			raw[i] = string(s)
		}
		query += ` AND e.status = ANY($3)`
		args = append(args, raw)
	}
	query += ` ORDER BY e.entry_date, e.reference_number`
	return r.queryEntries(ctx, query, args...)
}

// SaveJournalEntry writes the header and replaces the lines. It must run inside
// a transaction so header and lines change together.
func (r *PgxJournalEntryRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	m, lines := mapping.ToModelJournalEntry(entry)
	if expectedVersion == 0 {
		query := `
			INSERT INTO journal_entries (entry_id, reference_number, entry_date, entry_type, description, status,
				fiscal_period_id, source_system, requires_approval, submitted_by, posted_by, posted_at,
				reversal_of_id, reversed_by_id, reversal_reason, cancelled_by, version,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
		`
		_, err := r.db.Exec(ctx, query,
			m.EntryID,
			m.ReferenceNumber,
			m.EntryDate,
			m.EntryType,
			m.Description,
			m.Status,
			nullIfEmpty(m.FiscalPeriodID),
			m.SourceSystem,
			m.RequiresApproval,
			m.SubmittedBy,
			m.PostedBy,
			m.PostedAt,
			nullIfEmpty(m.ReversalOfID),
			nullIfEmpty(m.ReversedByID),
			m.ReversalReason,
			m.CancelledBy,
			m.Version,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return mapPgError(err, "failed to save journal entry %s", m.EntryID)
		}
	} else {
		query := `
			UPDATE journal_entries
			SET entry_date = $2, entry_type = $3, description = $4, status = $5, fiscal_period_id = $6,
				requires_approval = $7, submitted_by = $8, posted_by = $9, posted_at = $10,
				reversed_by_id = $11, reversal_reason = $12, cancelled_by = $13, version = $14,
				last_updated_at = $15, last_updated_by = $16
			WHERE entry_id = $1 AND version = $17;
		`
		tag, err := r.db.Exec(ctx, query,
			m.EntryID,
			m.EntryDate,
			m.EntryType,
			m.Description,
			m.Status,
			nullIfEmpty(m.FiscalPeriodID),
			m.RequiresApproval,
			m.SubmittedBy,
			m.PostedBy,
			m.PostedAt,
			nullIfEmpty(m.ReversedByID),
			m.ReversalReason,
			m.CancelledBy,
			m.Version,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
			expectedVersion,
		)
		if err != nil {
			return mapPgError(err, "failed to update journal entry %s", m.EntryID)
		}
		if tag.RowsAffected() == 0 {
			return versionMiss(ctx, r.db, "journal_entries", "entry_id", m.EntryID, apperrors.ErrUnknownJournalEntry)
		}
		if _, err := r.db.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, m.EntryID); err != nil {
			return mapPgError(err, "failed to clear lines of journal entry %s", m.EntryID)
		}
	}

	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, l := range lines {
		batch.Queue(lineQuery,
			l.LineID,
			l.EntryID,
			l.LineNumber,
			l.AccountID,
			l.Amount,
			l.CurrencyCode,
			l.Side,
			l.Memo,
		)
	}
	br := r.db.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError(err, "failed to execute line batch for journal entry %s", m.EntryID)
	}
	return nil
}
