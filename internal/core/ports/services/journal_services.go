package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// JournalEntryReaderSvc defines read operations for journal entries
type JournalEntryReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries, newest first, and the token of the next page.
	ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error)
}

// JournalEntryDraftSvc defines operations on entries that are still drafts
type JournalEntryDraftSvc interface {
	// CreateJournalEntry creates a draft, adding any lines in the request.
	CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error)

	// UpdateJournalEntry changes the header of a draft.
	UpdateJournalEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, actor string) (*domain.JournalEntry, error)

	// AddJournalLine appends a line to a draft.
	AddJournalLine(ctx context.Context, entryID string, req dto.JournalLineRequest, actor string) (*domain.JournalEntry, error)

	// RemoveJournalLine removes a line from a draft.
	RemoveJournalLine(ctx context.Context, entryID string, lineID string, actor string) (*domain.JournalEntry, error)
}

// JournalEntryLifecycleSvc defines status transitions of an entry
type JournalEntryLifecycleSvc interface {
	// SubmitJournalEntry sends a draft for approval when the entry requires it.
	SubmitJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// PostJournalEntry posts an entry, updating account balances and period totals atomically.
	PostJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// RecordJournalEntry creates and posts an entry in one step. Entries that
	// require approval are submitted instead of posted.
	RecordJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error)

	// ReverseJournalEntry reverses a posted entry, returning the original and the posted reversal.
	ReverseJournalEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, actor string) (*domain.JournalEntry, *domain.JournalEntry, error)

	// CancelJournalEntry abandons an entry that was never posted.
	CancelJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)
}

// JournalEntrySvcFacade combines all journal-entry service interfaces
type JournalEntrySvcFacade interface {
	JournalEntryReaderSvc
	JournalEntryDraftSvc
	JournalEntryLifecycleSvc
}
