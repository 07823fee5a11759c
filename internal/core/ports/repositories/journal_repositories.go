package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// JournalEntryFilter narrows ListJournalEntries. Zero fields match everything.
type JournalEntryFilter struct {
	Status         domain.EntryStatus
	EntryType      domain.EntryType
	FiscalPeriodID string
	AccountID      string
	From           *time.Time
	To             *time.Time
}

// JournalEntryReader defines read operations for journal entry data
type JournalEntryReader interface {
	// FindJournalEntryByID retrieves a specific entry, lines included.
	FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindJournalEntryByReference retrieves an entry by its reference number.
	FindJournalEntryByReference(ctx context.Context, referenceNumber string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries, newest entry date first, using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListJournalEntries(ctx context.Context, filter JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// ListJournalEntriesInRange lists entries dated within [from, to] whose status is one of statuses.
	ListJournalEntriesInRange(ctx context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.JournalEntry, error)
}

// JournalEntryWriter defines write operations for journal entry data
type JournalEntryWriter interface {
	// SaveJournalEntry inserts the entry when expectedVersion is 0, otherwise
	// replaces it, lines included, only if the stored version equals expectedVersion.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error
}

// JournalEntryTransactionSupport defines operations that support posting transactions
type JournalEntryTransactionSupport interface {
	// FindJournalEntryByIDForUpdate retrieves an entry and locks its row until
	// the transaction ends. It is the first lock a posting takes.
	FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error)
}

// JournalEntryRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalEntryRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
	JournalEntryTransactionSupport
}
