package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// ledgerReader serves queries and reports from a read-only snapshot transaction.
type ledgerReader struct {
	db       querier
	accounts *PgxAccountRepository
}

var _ repositories.LedgerReader = (*ledgerReader)(nil)

func newLedgerReader(db querier) *ledgerReader {
	return &ledgerReader{db: db, accounts: newPgxAccountRepository(db)}
}

func (r *ledgerReader) Accounts(ctx context.Context) ([]domain.Account, error) {
	return r.accounts.ListAccounts(ctx, repositories.AccountFilter{}, 0, 0)
}

func (r *ledgerReader) Account(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.accounts.FindAccountByID(ctx, accountID)
}

// PostedLines joins lines to their Posted or Reversed entries.
func (r *ledgerReader) PostedLines(ctx context.Context, filter repositories.PostedLineFilter) ([]domain.PostedLine, error) {
	query := `
		SELECT e.entry_id, e.reference_number, e.entry_date, COALESCE(e.posted_at, e.created_at), e.entry_type, e.description,
			l.line_number, l.line_id, l.account_id, l.side, l.amount, l.currency_code, l.memo
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.status IN ($1, $2)`
	args := []any{string(domain.EntryPosted), string(domain.EntryReversed)}
	if !filter.To.IsZero() {
		args = append(args, domain.DateOnly(filter.To))
		query += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	if len(filter.AccountIDs) > 0 {
		args = append(args, filter.AccountIDs)
		query += fmt.Sprintf(" AND l.account_id = ANY($%d)", len(args))
	}
	query += ` ORDER BY e.entry_date, 4, e.reference_number, l.line_number`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query posted lines")
	}
	defer rows.Close()

	lines := []domain.PostedLine{}
	for rows.Next() {
		var (
			pl        domain.PostedLine
			entryDate time.Time
			entryType string
			side      string
			amount    decimal.Decimal
			currency  string
		)
		if err := rows.Scan(
			&pl.EntryID,
			&pl.ReferenceNumber,
			&entryDate,
			&pl.PostedAt,
			&entryType,
			&pl.Description,
			&pl.LineNumber,
			&pl.LineID,
			&pl.AccountID,
			&side,
			&amount,
			&currency,
			&pl.Memo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan posted line row: %w", err)
		}
		money, err := domain.NewMoney(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("invalid amount on line %s: %w", pl.LineID, err)
		}
		pl.EntryDate = domain.DateOnly(entryDate)
		pl.EntryType = domain.EntryType(entryType)
		pl.Side = domain.Side(side)
		pl.Amount = money
		lines = append(lines, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating posted line rows")
	}
	// Keep the exact tie-breaking the domain builders rely on.
	domain.SortPostedLines(lines)
	return lines, nil
}
