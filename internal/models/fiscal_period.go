package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalPeriod is a row of the fiscal_periods table.
type FiscalPeriod struct {
	PeriodID     string          `db:"period_id"`
	FiscalYear   int             `db:"fiscal_year"`
	PeriodNumber int             `db:"period_number"`
	Name         string          `db:"name"`
	StartDate    time.Time       `db:"start_date"`
	EndDate      time.Time       `db:"end_date"`
	Status       string          `db:"status"`
	TotalDebits  decimal.Decimal `db:"total_debits"`
	TotalCredits decimal.Decimal `db:"total_credits"`
	Restrictions []string        `db:"posting_restrictions"` // text[]
	OpenedBy     string          `db:"opened_by"`
	OpenedAt     *time.Time      `db:"opened_at"`
	ClosedBy     string          `db:"closed_by"`
	ClosedAt     *time.Time      `db:"closed_at"`
	CloseNotes   string          `db:"close_notes"`
	ReopenedBy   string          `db:"reopened_by"`
	ReopenedAt   *time.Time      `db:"reopened_at"`
	ReopenReason string          `db:"reopen_reason"`
	ReopenCount  int             `db:"reopen_count"`
	Version      int64           `db:"version"`
	AuditFields
}
