package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

type journalEntryTx struct {
	uow *unitOfWork
}

var _ repositories.JournalEntryRepositoryFacade = journalEntryTx{}

func (r journalEntryTx) lookup(id string) (domain.JournalEntry, bool) {
	if st, ok := r.uow.entries[id]; ok {
		return cloneEntry(st.value), true
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	e, ok := r.uow.store.entries[id]
	return cloneEntry(e), ok
}

func (r journalEntryTx) all() []domain.JournalEntry {
	r.uow.store.mu.RLock()
	merged := make(map[string]domain.JournalEntry, len(r.uow.store.entries)+len(r.uow.entries))
	for id, e := range r.uow.store.entries {
		merged[id] = e
	}
	r.uow.store.mu.RUnlock()
	for id, st := range r.uow.entries {
		merged[id] = st.value
	}
	out := make([]domain.JournalEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, cloneEntry(e))
	}
	return out
}

func (r journalEntryTx) FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	e, ok := r.lookup(entryID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownJournalEntry, entryID)
	}
	return &e, nil
}

func (r journalEntryTx) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.FindJournalEntryByID(ctx, entryID)
}

func (r journalEntryTx) FindJournalEntryByReference(ctx context.Context, referenceNumber string) (*domain.JournalEntry, error) {
	for _, e := range r.all() {
		if e.ReferenceNumber == referenceNumber {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: reference %s", apperrors.ErrUnknownJournalEntry, referenceNumber)
}

func matchesEntry(e domain.JournalEntry, f repositories.JournalEntryFilter) bool {
	switch {
	case f.Status != "" && e.Status != f.Status:
		return false
	case f.EntryType != "" && e.EntryType != f.EntryType:
		return false
	case f.FiscalPeriodID != "" && e.FiscalPeriodID != f.FiscalPeriodID:
		return false
	case f.From != nil && e.EntryDate.Before(domain.DateOnly(*f.From)):
		return false
	case f.To != nil && e.EntryDate.After(domain.DateOnly(*f.To)):
		return false
	}
	if f.AccountID == "" {
		return true
	}
	return slices.ContainsFunc(e.Lines, func(l domain.JournalLine) bool { return l.AccountID == f.AccountID })
}

// ListJournalEntries orders entries by entry date, creation time and id, all
// descending, and resumes after the cursor in nextToken.
func (r journalEntryTx) ListJournalEntries(ctx context.Context, filter repositories.JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		cursor = &c
	}

	entries := make([]domain.JournalEntry, 0)
	for _, e := range r.all() {
		if !matchesEntry(e, filter) {
			continue
		}
		if cursor != nil && !cursor.After(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		c := pagination.Cursor{EntryDate: a.EntryDate, CreatedAt: a.CreatedAt, ID: a.EntryID}
		return c.After(b.EntryDate, b.CreatedAt, b.EntryID)
	})

	if limit <= 0 || len(entries) <= limit {
		return entries, nil, nil
	}
	entries = entries[:limit]
	last := entries[limit-1]
	token := pagination.EncodeCursor(pagination.Cursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
	return entries, &token, nil
}

func (r journalEntryTx) ListJournalEntriesInRange(ctx context.Context, from, to time.Time, statuses []domain.EntryStatus) ([]domain.JournalEntry, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	out := make([]domain.JournalEntry, 0)
	for _, e := range r.all() {
		if e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, e.Status) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ReferenceNumber < out[j].ReferenceNumber
	})
	return out, nil
}

func (r journalEntryTx) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	current, exists := r.lookup(entry.EntryID)
	if other, err := r.FindJournalEntryByReference(ctx, entry.ReferenceNumber); err == nil && other.EntryID != entry.EntryID {
		return fmt.Errorf("%w: reference number %s", apperrors.ErrDuplicate, entry.ReferenceNumber)
	}
	return stageSave(r.uow.entries, current, exists, entry.EntryID, cloneEntry(entry), expectedVersion, entryVersion, "journal entry")
}

type journalEntryRepository struct {
	journalEntryTx
	store *Store
}

func (r *journalEntryRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		return uow.JournalEntries().SaveJournalEntry(ctx, entry, expectedVersion)
	})
}
