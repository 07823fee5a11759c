package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// PostedLineFilter narrows PostedLines. Empty AccountIDs means every account;
// a zero To means no upper bound.
type PostedLineFilter struct {
	AccountIDs []string
	To         time.Time
}

// LedgerReader is a consistent read-only view used by queries and reports.
type LedgerReader interface {
	// Accounts returns every account in the chart.
	Accounts(ctx context.Context) ([]domain.Account, error)

	// Account returns one account.
	Account(ctx context.Context, accountID string) (*domain.Account, error)

	// PostedLines returns the lines of Posted and Reversed entries matching filter,
	// ordered by entry date, posting time, reference and line number.
	PostedLines(ctx context.Context, filter PostedLineFilter) ([]domain.PostedLine, error)
}
