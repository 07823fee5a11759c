package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table. Lines live in journal_lines.
type JournalEntry struct {
	EntryID          string     `db:"entry_id"`
	ReferenceNumber  string     `db:"reference_number"`
	EntryDate        time.Time  `db:"entry_date"`
	EntryType        string     `db:"entry_type"`
	Description      string     `db:"description"`
	Status           string     `db:"status"`
	FiscalPeriodID   string     `db:"fiscal_period_id"` // Nullable
	SourceSystem     string     `db:"source_system"`
	RequiresApproval bool       `db:"requires_approval"`
	SubmittedBy      string     `db:"submitted_by"`
	PostedBy         string     `db:"posted_by"`
	PostedAt         *time.Time `db:"posted_at"`
	ReversalOfID     string     `db:"reversal_of_id"` // Nullable
	ReversedByID     string     `db:"reversed_by_id"` // Nullable
	ReversalReason   string     `db:"reversal_reason"`
	CancelledBy      string     `db:"cancelled_by"`
	Version          int64      `db:"version"`
	AuditFields
}

// JournalLine is a row of the journal_lines table.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	LineNumber   int             `db:"line_number"`
	AccountID    string          `db:"account_id"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
	Side         string          `db:"side"`
	Memo         string          `db:"memo"`
}
