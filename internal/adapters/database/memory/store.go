// Package memory is an in-process implementation of the repository ports.
// Write units of work are serialized; their changes are staged and applied
// atomically on commit, so readers never observe a partial write.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/google/uuid"
)

// Store holds committed ledger state.
type Store struct {
	writeMu sync.Mutex   // one write unit of work at a time
	mu      sync.RWMutex // guards the committed maps below

	accounts    map[string]domain.Account
	entries     map[string]domain.JournalEntry
	periods     map[string]domain.FiscalPeriod
	events      map[uuid.UUID]outbox.Event
	eventsOrder []uuid.UUID

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for outbox bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts: make(map[string]domain.Account),
		entries:  make(map[string]domain.JournalEntry),
		periods:  make(map[string]domain.FiscalPeriod),
		events:   make(map[uuid.UUID]outbox.Event),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repositories.TransactionManager = (*Store)(nil)

// Repositories returns auto-committing repositories for use outside WithinTx.
// They must not be called from inside a WithinTx callback.
func (s *Store) Repositories() repositories.RepositoryProvider {
	return repositories.RepositoryProvider{
		AccountRepo:      &accountRepository{accountTx: accountTx{uow: s.bare()}, store: s},
		JournalEntryRepo: &journalEntryRepository{journalEntryTx: journalEntryTx{uow: s.bare()}, store: s},
		FiscalPeriodRepo: &fiscalPeriodRepository{fiscalPeriodTx: fiscalPeriodTx{uow: s.bare()}, store: s},
		TxManager:        s,
	}
}

// WithinTx runs fn in a serialized unit of work. Staged changes are applied
// only when fn returns nil; an error or a panic discards them.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repositories.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	uow := s.bare()
	if err := fn(ctx, uow); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(uow)
}

// ReadSnapshot runs fn while commits are held off.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, reader repositories.LedgerReader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, snapshotReader{store: s})
}

func (s *Store) bare() *unitOfWork {
	return &unitOfWork{
		store:    s,
		accounts: make(map[string]*staged[domain.Account]),
		entries:  make(map[string]*staged[domain.JournalEntry]),
		periods:  make(map[string]*staged[domain.FiscalPeriod]),
	}
}

// commit re-checks every expected version against committed state and
// applies all staged values, or none of them.
func (s *Store) commit(u *unitOfWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := verify(s.accounts, u.accounts, accountVersion, "account"); err != nil {
		return err
	}
	if err := verify(s.entries, u.entries, entryVersion, "journal entry"); err != nil {
		return err
	}
	if err := verify(s.periods, u.periods, periodVersion, "fiscal period"); err != nil {
		return err
	}

	for id, st := range u.accounts {
		s.accounts[id] = st.value
	}
	for id, st := range u.entries {
		s.entries[id] = cloneEntry(st.value)
	}
	for id, st := range u.periods {
		s.periods[id] = st.value
	}
	for _, ev := range u.events {
		s.events[ev.ID] = *ev
		s.eventsOrder = append(s.eventsOrder, ev.ID)
	}
	return nil
}

func verify[T any](committed map[string]T, pending map[string]*staged[T], versionOf func(T) int64, kind string) error {
	for id, st := range pending {
		current, exists := committed[id]
		switch {
		case st.expected == 0 && exists:
			return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, kind, id)
		case st.expected != 0 && (!exists || versionOf(current) != st.expected):
			return fmt.Errorf("%w: %s %s", apperrors.ErrStaleVersion, kind, id)
		}
	}
	return nil
}

// staged is a pending write. expected is the committed version the write was
// based on, 0 for inserts.
type staged[T any] struct {
	value    T
	expected int64
}

// unitOfWork overlays staged writes on committed state.
type unitOfWork struct {
	store    *Store
	accounts map[string]*staged[domain.Account]
	entries  map[string]*staged[domain.JournalEntry]
	periods  map[string]*staged[domain.FiscalPeriod]
	events   []*outbox.Event
}

var _ repositories.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) Accounts() repositories.AccountRepositoryFacade {
	return accountTx{uow: u}
}

func (u *unitOfWork) JournalEntries() repositories.JournalEntryRepositoryFacade {
	return journalEntryTx{uow: u}
}

func (u *unitOfWork) FiscalPeriods() repositories.FiscalPeriodRepositoryFacade {
	return fiscalPeriodTx{uow: u}
}

func (u *unitOfWork) Outbox() repositories.OutboxWriter {
	return outboxTx{uow: u}
}

// stageSave records value when expectedVersion matches the version visible to
// the unit of work. Inserts use expectedVersion 0.
func stageSave[T any](pending map[string]*staged[T], current T, exists bool, id string, value T, expectedVersion int64, versionOf func(T) int64, kind string) error {
	if expectedVersion == 0 {
		if exists {
			return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, kind, id)
		}
		pending[id] = &staged[T]{value: value}
		return nil
	}
	if !exists || versionOf(current) != expectedVersion {
		return fmt.Errorf("%w: %s %s expected version %d", apperrors.ErrStaleVersion, kind, id, expectedVersion)
	}
	if st, ok := pending[id]; ok {
		st.value = value
		return nil
	}
	pending[id] = &staged[T]{value: value, expected: expectedVersion}
	return nil
}

func accountVersion(a domain.Account) int64 { return a.Version }

func entryVersion(e domain.JournalEntry) int64 { return e.Version }

func periodVersion(p domain.FiscalPeriod) int64 { return p.Version }

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}
