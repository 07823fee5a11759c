package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CreateFiscalPeriodRequest defines one ad-hoc period.
type CreateFiscalPeriodRequest struct {
	FiscalYear   int       `json:"fiscalYear" binding:"required,min=1"`
	PeriodNumber int       `json:"periodNumber" binding:"required,min=1"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required"`
}

// CreateFiscalYearRequest generates the twelve monthly periods of a year.
type CreateFiscalYearRequest struct {
	FiscalYear int       `json:"fiscalYear" binding:"required,min=1"`
	StartDate  time.Time `json:"startDate" binding:"required"`
}

// OpenFiscalPeriodRequest opens a future period. Reason is required when the period is being reopened.
type OpenFiscalPeriodRequest struct {
	Reason string `json:"reason"`
}

// CloseFiscalPeriodRequest closes a period.
type CloseFiscalPeriodRequest struct {
	Notes string `json:"notes"`
}

// ReopenFiscalPeriodRequest reopens a closed or soft-closed period.
type ReopenFiscalPeriodRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SetPeriodRestrictionsRequest replaces the restriction set of a period.
type SetPeriodRestrictionsRequest struct {
	Restrictions []domain.PostingRestriction `json:"restrictions" binding:"dive,oneof=ADJUSTMENT_ONLY NO_REVERSALS SYSTEM_ENTRIES_ONLY"`
}

// ListFiscalPeriodsParams defines query parameters for listing periods.
type ListFiscalPeriodsParams struct {
	FiscalYear int    `form:"fiscalYear" binding:"min=0"`
	Status     string `form:"status" binding:"omitempty,oneof=FUTURE OPEN SOFT_CLOSED CLOSED"`
}

// OpenDuePeriodsResponse reports the periods opened by a scheduled run.
type OpenDuePeriodsResponse struct {
	Opened []FiscalPeriodResponse `json:"opened"`
}

// FiscalPeriodResponse defines the data returned for a fiscal period.
type FiscalPeriodResponse struct {
	PeriodID     string                      `json:"periodID"`
	FiscalYear   int                         `json:"fiscalYear"`
	PeriodNumber int                         `json:"periodNumber"`
	Name         string                      `json:"name"`
	StartDate    string                      `json:"startDate"`
	EndDate      string                      `json:"endDate"`
	Status       domain.PeriodStatus         `json:"status"`
	TotalDebits  string                      `json:"totalDebits"`
	TotalCredits string                      `json:"totalCredits"`
	Restrictions []domain.PostingRestriction `json:"postingRestrictions"`
	OpenedBy     string                      `json:"openedBy,omitempty"`
	OpenedAt     *time.Time                  `json:"openedAt,omitempty"`
	ClosedBy     string                      `json:"closedBy,omitempty"`
	ClosedAt     *time.Time                  `json:"closedAt,omitempty"`
	CloseNotes   string                      `json:"closeNotes,omitempty"`
	ReopenedBy   string                      `json:"reopenedBy,omitempty"`
	ReopenedAt   *time.Time                  `json:"reopenedAt,omitempty"`
	ReopenReason string                      `json:"reopenReason,omitempty"`
	ReopenCount  int                         `json:"reopenCount"`
	Version      int64                       `json:"version"`
}

// ToFiscalPeriodResponse converts a domain.FiscalPeriod to its DTO.
func ToFiscalPeriodResponse(p *domain.FiscalPeriod) FiscalPeriodResponse {
	return FiscalPeriodResponse{
		PeriodID:     p.PeriodID,
		FiscalYear:   p.FiscalYear,
		PeriodNumber: p.PeriodNumber,
		Name:         p.Name,
		StartDate:    p.StartDate.Format(time.DateOnly),
		EndDate:      p.EndDate.Format(time.DateOnly),
		Status:       p.Status,
		TotalDebits:  p.TotalDebits.String(),
		TotalCredits: p.TotalCredits.String(),
		Restrictions: p.Restrictions,
		OpenedBy:     p.OpenedBy,
		OpenedAt:     p.OpenedAt,
		ClosedBy:     p.ClosedBy,
		ClosedAt:     p.ClosedAt,
		CloseNotes:   p.CloseNotes,
		ReopenedBy:   p.ReopenedBy,
		ReopenedAt:   p.ReopenedAt,
		ReopenReason: p.ReopenReason,
		ReopenCount:  p.ReopenCount,
		Version:      p.Version,
	}
}

// ToFiscalPeriodResponses converts a slice of periods.
func ToFiscalPeriodResponses(periods []domain.FiscalPeriod) []FiscalPeriodResponse {
	res := make([]FiscalPeriodResponse, len(periods))
	for i, p := range periods {
		res[i] = ToFiscalPeriodResponse(&p)
	}
	return res
}
