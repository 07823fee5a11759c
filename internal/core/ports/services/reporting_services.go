package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// LedgerQuerySvc derives balances and ledgers from posted entries.
type LedgerQuerySvc interface {
	// AccountBalance returns the balance of an account as of the end of asOf.
	AccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error)

	// TrialBalance lists every account with activity up to asOf.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)

	// GeneralLedger lists the postings of an account between from and to with running balances.
	GeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error)
}

// ReportingSvc builds financial statements from posted entries.
type ReportingSvc interface {
	// IncomeStatement reports revenue and expenses between from and to, one statement per currency.
	IncomeStatement(ctx context.Context, from, to time.Time) ([]domain.IncomeStatement, error)

	// BalanceSheet reports assets, liabilities and equity as of asOf, one sheet per currency.
	BalanceSheet(ctx context.Context, asOf time.Time) ([]domain.BalanceSheet, error)
}
