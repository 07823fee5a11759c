package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// AsOfParams selects a point-in-time report. Defaults to today.
type AsOfParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
}

// DateRangeParams selects a period report. Both bounds are inclusive.
type DateRangeParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" binding:"required"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf     string                     `json:"asOf"`
	Balanced bool                       `json:"balanced"`
	Rows     []domain.TrialBalanceRow   `json:"rows"`
	Totals   []domain.TrialBalanceTotal `json:"totals"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	return TrialBalanceResponse{
		AsOf:     tb.AsOf.Format(time.DateOnly),
		Balanced: tb.IsBalanced(),
		Rows:     nonNil(tb.Rows),
		Totals:   nonNil(tb.Totals),
	}
}

// GeneralLedgerResponse represents the general ledger of one account
type GeneralLedgerResponse struct {
	domain.GeneralLedger
	PostingCount int `json:"postingCount"`
}

// ToGeneralLedgerResponse converts a domain general ledger to a DTO response
func ToGeneralLedgerResponse(gl *domain.GeneralLedger) GeneralLedgerResponse {
	res := GeneralLedgerResponse{GeneralLedger: *gl, PostingCount: len(gl.Postings)}
	res.Postings = nonNil(gl.Postings)
	return res
}

// IncomeStatementResponse holds one statement per currency
type IncomeStatementResponse struct {
	From       string                   `json:"from"`
	To         string                   `json:"to"`
	Statements []domain.IncomeStatement `json:"statements"`
}

// ToIncomeStatementResponse converts domain income statements to a DTO response
func ToIncomeStatementResponse(statements []domain.IncomeStatement, from, to time.Time) IncomeStatementResponse {
	return IncomeStatementResponse{
		From:       from.Format(time.DateOnly),
		To:         to.Format(time.DateOnly),
		Statements: nonNil(statements),
	}
}

// BalanceSheetResponse holds one balance sheet per currency
type BalanceSheetResponse struct {
	AsOf     string                `json:"asOf"`
	Balanced bool                  `json:"balanced"`
	Sheets   []domain.BalanceSheet `json:"sheets"`
}

// ToBalanceSheetResponse converts domain balance sheets to a DTO response
func ToBalanceSheetResponse(sheets []domain.BalanceSheet, asOf time.Time) BalanceSheetResponse {
	balanced := true
	for _, s := range sheets {
		balanced = balanced && s.IsBalanced()
	}
	return BalanceSheetResponse{
		AsOf:     asOf.Format(time.DateOnly),
		Balanced: balanced,
		Sheets:   nonNil(sheets),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
