package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line. Currency defaults to the account currency.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency" binding:"omitempty,len=3,uppercase"`
	Side      domain.Side     `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Memo      string          `json:"memo"`
}

// CreateJournalEntryRequest creates a draft entry, optionally with its lines.
type CreateJournalEntryRequest struct {
	ReferenceNumber  string               `json:"referenceNumber"` // Optional, generated when empty
	EntryDate        time.Time            `json:"entryDate" binding:"required"`
	EntryType        domain.EntryType     `json:"entryType" binding:"omitempty,oneof=STANDARD ADJUSTING REVERSING CLOSING"`
	Description      string               `json:"description"`
	SourceSystem     string               `json:"sourceSystem"`
	RequiresApproval *bool                `json:"requiresApproval"` // Optional, falls back to the ledger policy
	Lines            []JournalLineRequest `json:"lines" binding:"dive"`
}

// UpdateJournalEntryRequest changes the header of a draft. Nil fields are left as they are.
type UpdateJournalEntryRequest struct {
	EntryDate   *time.Time        `json:"entryDate"`
	Description *string           `json:"description"`
	EntryType   *domain.EntryType `json:"entryType" binding:"omitempty,oneof=STANDARD ADJUSTING REVERSING CLOSING"`
}

// ReverseJournalEntryRequest carries the mandatory reversal reason.
type ReverseJournalEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListJournalEntriesParams defines query parameters for listing entries.
type ListJournalEntriesParams struct {
	Limit          int        `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken      *string    `form:"nextToken"`
	Status         string     `form:"status" binding:"omitempty,oneof=DRAFT PENDING_APPROVAL POSTED REVERSED CANCELLED"`
	EntryType      string     `form:"entryType" binding:"omitempty,oneof=STANDARD ADJUSTING REVERSING CLOSING"`
	FiscalPeriodID string     `form:"fiscalPeriodID"`
	AccountID      string     `form:"accountID"`
	From           *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To             *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID    string       `json:"lineID"`
	AccountID string       `json:"accountID"`
	Amount    domain.Money `json:"amount"`
	Side      domain.Side  `json:"side"`
	Memo      string       `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID          string                `json:"entryID"`
	ReferenceNumber  string                `json:"referenceNumber"`
	EntryDate        string                `json:"entryDate"`
	EntryType        domain.EntryType      `json:"entryType"`
	Description      string                `json:"description"`
	Status           domain.EntryStatus    `json:"status"`
	FiscalPeriodID   string                `json:"fiscalPeriodID,omitempty"`
	SourceSystem     string                `json:"sourceSystem"`
	RequiresApproval bool                  `json:"requiresApproval"`
	Lines            []JournalLineResponse `json:"lines"`
	TotalDebits      decimal.Decimal       `json:"totalDebits"`
	TotalCredits     decimal.Decimal       `json:"totalCredits"`
	SubmittedBy      string                `json:"submittedBy,omitempty"`
	PostedBy         string                `json:"postedBy,omitempty"`
	PostedAt         *time.Time            `json:"postedAt,omitempty"`
	ReversalOfID     string                `json:"reversalOfID,omitempty"`
	ReversedByID     string                `json:"reversedByID,omitempty"`
	ReversalReason   string                `json:"reversalReason,omitempty"`
	CancelledBy      string                `json:"cancelledBy,omitempty"`
	Version          int64                 `json:"version"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
	LastUpdatedAt    time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy    string                `json:"lastUpdatedBy"`
}

// ReverseJournalEntryResponse returns both sides of a reversal.
type ReverseJournalEntryResponse struct {
	Original JournalEntryResponse `json:"original"`
	Reversal JournalEntryResponse `json:"reversal"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debits, credits := e.Totals()
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:    l.LineID,
			AccountID: l.AccountID,
			Amount:    l.Amount,
			Side:      l.Side,
			Memo:      l.Memo,
		}
	}
	return JournalEntryResponse{
		EntryID:          e.EntryID,
		ReferenceNumber:  e.ReferenceNumber,
		EntryDate:        e.EntryDate.Format(time.DateOnly),
		EntryType:        e.EntryType,
		Description:      e.Description,
		Status:           e.Status,
		FiscalPeriodID:   e.FiscalPeriodID,
		SourceSystem:     e.SourceSystem,
		RequiresApproval: e.RequiresApproval,
		Lines:            lines,
		TotalDebits:      debits,
		TotalCredits:     credits,
		SubmittedBy:      e.SubmittedBy,
		PostedBy:         e.PostedBy,
		PostedAt:         e.PostedAt,
		ReversalOfID:     e.ReversalOfID,
		ReversedByID:     e.ReversedByID,
		ReversalReason:   e.ReversalReason,
		CancelledBy:      e.CancelledBy,
		Version:          e.Version,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
		LastUpdatedAt:    e.LastUpdatedAt,
		LastUpdatedBy:    e.LastUpdatedBy,
	}
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToJournalEntryResponse(&e)
	}
	return res
}
