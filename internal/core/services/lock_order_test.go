package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// lockRecorder wraps a TransactionManager and records every row lock a unit
// of work asks for, in order.
type lockRecorder struct {
	portsrepo.TransactionManager
	mu    sync.Mutex
	locks []string
}

func (m *lockRecorder) record(lock string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks = append(m.locks, lock)
}

func (m *lockRecorder) taken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.locks...)
}

func (m *lockRecorder) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks = nil
}

func (m *lockRecorder) WithinTx(ctx context.Context, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	return m.TransactionManager.WithinTx(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return fn(ctx, recordingUnitOfWork{UnitOfWork: uow, rec: m})
	})
}

type recordingUnitOfWork struct {
	portsrepo.UnitOfWork
	rec *lockRecorder
}

func (u recordingUnitOfWork) Accounts() portsrepo.AccountRepositoryFacade {
	return recordingAccounts{AccountRepositoryFacade: u.UnitOfWork.Accounts(), rec: u.rec}
}

func (u recordingUnitOfWork) JournalEntries() portsrepo.JournalEntryRepositoryFacade {
	return recordingEntries{JournalEntryRepositoryFacade: u.UnitOfWork.JournalEntries(), rec: u.rec}
}

func (u recordingUnitOfWork) FiscalPeriods() portsrepo.FiscalPeriodRepositoryFacade {
	return recordingPeriods{FiscalPeriodRepositoryFacade: u.UnitOfWork.FiscalPeriods(), rec: u.rec}
}

type recordingAccounts struct {
	portsrepo.AccountRepositoryFacade
	rec *lockRecorder
}

func (r recordingAccounts) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.rec.record("accounts:" + strings.Join(accountIDs, ","))
	return r.AccountRepositoryFacade.FindAccountsByIDsForUpdate(ctx, accountIDs)
}

type recordingEntries struct {
	portsrepo.JournalEntryRepositoryFacade
	rec *lockRecorder
}

func (r recordingEntries) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	r.rec.record("entry:" + entryID)
	return r.JournalEntryRepositoryFacade.FindJournalEntryByIDForUpdate(ctx, entryID)
}

type recordingPeriods struct {
	portsrepo.FiscalPeriodRepositoryFacade
	rec *lockRecorder
}

func (r recordingPeriods) FindFiscalPeriodByDateForUpdate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	r.rec.record("period:" + date.Format(time.DateOnly))
	return r.FiscalPeriodRepositoryFacade.FindFiscalPeriodByDateForUpdate(ctx, date)
}

func (suite *JournalEntryServiceTestSuite) TestPostingLocksEntryThenPeriodThenAccounts() {
	rec := &lockRecorder{TransactionManager: suite.store}
	repos := suite.store.Repositories()
	repos.TxManager = rec
	journal := services.NewJournalEntryService(repos,
		services.WithPolicy(suite.policy),
		services.WithClock(func() time.Time { return fixedNow }))

	accountIDs := []string{suite.cash.AccountID, suite.sales.AccountID}
	sort.Strings(accountIDs)
	accountsLock := "accounts:" + strings.Join(accountIDs, ",")

	draft, err := journal.CreateJournalEntry(suite.ctx, entryRequest(march(10),
		line(suite.cash, domain.Debit, "30.00"),
		line(suite.sales, domain.Credit, "30.00"),
	), "clerk")
	suite.Require().NoError(err)
	suite.Empty(rec.taken(), "drafts take no posting locks")

	_, err = journal.PostJournalEntry(suite.ctx, draft.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal([]string{"entry:" + draft.EntryID, "period:2024-03-10", accountsLock}, rec.taken())

	rec.reset()
	_, _, err = journal.ReverseJournalEntry(suite.ctx, draft.EntryID, dto.ReverseJournalEntryRequest{Reason: "keyed twice"}, "clerk")
	suite.Require().NoError(err)
	suite.Equal([]string{"entry:" + draft.EntryID, "period:2024-03-15", "period:2024-03-15", accountsLock}, rec.taken())

	rec.reset()
	suite.record(march(12), suite.cash, suite.sales, "5.00")
	suite.Empty(rec.taken(), "the suite's own services are not recorded")

	_, err = journal.RecordJournalEntry(suite.ctx, entryRequest(march(12),
		line(suite.sales, domain.Debit, "5.00"),
		line(suite.cash, domain.Credit, "5.00"),
	), "clerk")
	suite.Require().NoError(err)
	suite.Equal([]string{"period:2024-03-12", accountsLock}, rec.taken())
}
