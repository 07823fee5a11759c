package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/suite"
)

type JournalEntryServiceTestSuite struct {
	ledgerSuite
}

func TestJournalEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalEntryServiceTestSuite))
}

func (suite *JournalEntryServiceTestSuite) TestRecord_PostsBalancedEntry() {
	entry := suite.record(march(10), suite.cash, suite.sales, "100.00")

	suite.Equal(domain.EntryPosted, entry.Status)
	suite.Equal(suite.periods[time.March].PeriodID, entry.FiscalPeriodID)
	suite.Equal("clerk", entry.PostedBy)
	suite.Regexp(`^JE-[0-9A-Z]{26}$`, entry.ReferenceNumber)

	suite.Equal("100.00 USD", suite.balance(suite.cash))
	suite.Equal("100.00 USD", suite.storedBalance(suite.cash))
	suite.Equal("100.00 USD", suite.storedBalance(suite.sales))

	tb, err := suite.svc.LedgerQuery.TrialBalance(suite.ctx, march(31))
	suite.Require().NoError(err)
	suite.Require().Len(tb.Totals, 1)
	suite.Equal("100", tb.Totals[0].DebitTotal.String())
	suite.Equal("100", tb.Totals[0].CreditTotal.String())
	suite.True(tb.IsBalanced())

	period, err := suite.svc.FiscalPeriod.GetFiscalPeriod(suite.ctx, entry.FiscalPeriodID)
	suite.Require().NoError(err)
	suite.Equal("100", period.TotalDebits.String())
	suite.True(period.IsBalanced())

	suite.Contains(suite.eventTypes(), domain.EventJournalEntryPosted)
	suite.Contains(suite.eventTypes(), domain.EventAccountBalanceChanged)
}

func (suite *JournalEntryServiceTestSuite) TestRecord_UnbalancedChangesNothing() {
	before := len(suite.store.OutboxEvents())

	_, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, entryRequest(march(10),
		line(suite.cash, domain.Debit, "100.00"),
		line(suite.sales, domain.Credit, "90.00"),
	), "clerk")

	var ub *apperrors.UnbalancedError
	suite.Require().ErrorAs(err, &ub)
	suite.Equal("10", ub.Difference.String())
	suite.Equal("USD", ub.Currency)
	suite.Equal(apperrors.KindStructural, apperrors.KindOf(err))

	suite.Equal("0.00 USD", suite.storedBalance(suite.cash))
	suite.Equal("0.00 USD", suite.storedBalance(suite.sales))
	suite.Len(suite.store.OutboxEvents(), before)

	entries, _, err := suite.svc.JournalEntry.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Empty(entries, "the rejected entry must not be stored")
}

func (suite *JournalEntryServiceTestSuite) TestPost_UnbalancedDraftStaysDraft() {
	draft, err := suite.svc.JournalEntry.CreateJournalEntry(suite.ctx, entryRequest(march(10),
		line(suite.cash, domain.Debit, "100.00"),
		line(suite.sales, domain.Credit, "90.00"),
	), "clerk")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryDraft, draft.Status)

	_, err = suite.svc.JournalEntry.PostJournalEntry(suite.ctx, draft.EntryID, "clerk")
	suite.ErrorIs(err, apperrors.ErrUnbalanced)

	stored, err := suite.svc.JournalEntry.GetJournalEntry(suite.ctx, draft.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.EntryDraft, stored.Status)
	suite.Equal(draft.Version, stored.Version)
	suite.Equal("0.00 USD", suite.storedBalance(suite.cash))
}

func (suite *JournalEntryServiceTestSuite) TestDraftEditing() {
	draft, err := suite.svc.JournalEntry.CreateJournalEntry(suite.ctx, entryRequest(march(10),
		line(suite.cash, domain.Debit, "40.00"),
	), "clerk")
	suite.Require().NoError(err)

	withCredit, err := suite.svc.JournalEntry.AddJournalLine(suite.ctx, draft.EntryID, line(suite.sales, domain.Credit, "40.00"), "clerk")
	suite.Require().NoError(err)
	suite.Len(withCredit.Lines, 2)
	suite.Equal(draft.Version+1, withCredit.Version)

	extra, err := suite.svc.JournalEntry.AddJournalLine(suite.ctx, draft.EntryID, line(suite.rent, domain.Debit, "5.00"), "clerk")
	suite.Require().NoError(err)
	trimmed, err := suite.svc.JournalEntry.RemoveJournalLine(suite.ctx, draft.EntryID, extra.Lines[2].LineID, "clerk")
	suite.Require().NoError(err)
	suite.Len(trimmed.Lines, 2)

	newDate := march(12)
	memo := "cash sale"
	updated, err := suite.svc.JournalEntry.UpdateJournalEntry(suite.ctx, draft.EntryID, dto.UpdateJournalEntryRequest{
		EntryDate:   &newDate,
		Description: &memo,
	}, "clerk")
	suite.Require().NoError(err)
	suite.Equal(newDate, updated.EntryDate)
	suite.Equal("cash sale", updated.Description)
	suite.Equal(domain.StandardEntry, updated.EntryType)

	_, err = suite.svc.JournalEntry.AddJournalLine(suite.ctx, draft.EntryID, dto.JournalLineRequest{
		AccountID: suite.cash.AccountID, Amount: line(suite.cash, domain.Debit, "1.00").Amount, Currency: "EUR", Side: domain.Debit,
	}, "clerk")
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	_, err = suite.svc.JournalEntry.AddJournalLine(suite.ctx, draft.EntryID, dto.JournalLineRequest{
		AccountID: "missing", Amount: line(suite.cash, domain.Debit, "1.00").Amount, Side: domain.Debit,
	}, "clerk")
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)

	posted, err := suite.svc.JournalEntry.PostJournalEntry(suite.ctx, draft.EntryID, "clerk")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryPosted, posted.Status)

	_, err = suite.svc.JournalEntry.AddJournalLine(suite.ctx, draft.EntryID, line(suite.rent, domain.Debit, "5.00"), "clerk")
	suite.ErrorIs(err, apperrors.ErrIllegalEntryTransition)
}

func (suite *JournalEntryServiceTestSuite) TestPost_ClosedPeriodRejects() {
	suite.record(march(10), suite.cash, suite.sales, "100.00")

	closed, err := suite.svc.FiscalPeriod.CloseFiscalPeriod(suite.ctx, suite.periods[time.March].PeriodID, dto.CloseFiscalPeriodRequest{Notes: "March books"}, "controller")
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, closed.Status)

	draft, err := suite.svc.JournalEntry.CreateJournalEntry(suite.ctx, entryRequest(march(20),
		line(suite.cash, domain.Debit, "10.00"),
		line(suite.sales, domain.Credit, "10.00"),
	), "clerk")
	suite.Require().NoError(err)

	_, err = suite.svc.JournalEntry.PostJournalEntry(suite.ctx, draft.EntryID, "clerk")
	suite.ErrorIs(err, apperrors.ErrPostingNotAllowed)
	suite.Equal("100.00 USD", suite.storedBalance(suite.cash))
}

func (suite *JournalEntryServiceTestSuite) TestPost_FuturePeriodAndNoPeriodReject() {
	_, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, entryRequest(time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
		line(suite.cash, domain.Debit, "10.00"),
		line(suite.sales, domain.Credit, "10.00"),
	), "clerk")
	suite.ErrorIs(err, apperrors.ErrPostingNotAllowed, "April has not been opened")

	_, err = suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, entryRequest(time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		line(suite.cash, domain.Debit, "10.00"),
		line(suite.sales, domain.Credit, "10.00"),
	), "clerk")
	suite.ErrorIs(err, apperrors.ErrPostingNotAllowed, "no period covers 2025")
}

func (suite *JournalEntryServiceTestSuite) TestReverse_NetsToZero() {
	original := suite.record(march(5), suite.cash, suite.sales, "50.00")

	_, _, err := suite.svc.JournalEntry.ReverseJournalEntry(suite.ctx, original.EntryID, dto.ReverseJournalEntryRequest{Reason: " "}, "clerk")
	suite.ErrorIs(err, apperrors.ErrValidation)

	reversed, reversal, err := suite.svc.JournalEntry.ReverseJournalEntry(suite.ctx, original.EntryID, dto.ReverseJournalEntryRequest{Reason: "wrong customer"}, "clerk")
	suite.Require().NoError(err)

	suite.Equal(domain.EntryReversed, reversed.Status)
	suite.Equal(reversal.EntryID, reversed.ReversedByID)
	suite.Equal(domain.EntryPosted, reversal.Status)
	suite.Equal(domain.ReversingEntry, reversal.EntryType)
	suite.Equal(original.EntryID, reversal.ReversalOfID)
	suite.Equal(domain.DateOnly(fixedNow), reversal.EntryDate)
	suite.Equal(suite.periods[time.March].PeriodID, reversal.FiscalPeriodID)

	suite.Require().Len(reversal.Lines, 2)
	suite.Equal(suite.cash.AccountID, reversal.Lines[0].AccountID)
	suite.Equal(domain.Credit, reversal.Lines[0].Side)
	suite.Equal(suite.sales.AccountID, reversal.Lines[1].AccountID)
	suite.Equal(domain.Debit, reversal.Lines[1].Side)

	suite.Equal("0.00 USD", suite.balance(suite.cash))
	suite.Equal("0.00 USD", suite.balance(suite.sales))
	suite.Equal("0.00 USD", suite.storedBalance(suite.cash))
	suite.Contains(suite.eventTypes(), domain.EventJournalEntryReversed)
	suite.trialBalanceBalanced(march(31))

	_, _, err = suite.svc.JournalEntry.ReverseJournalEntry(suite.ctx, original.EntryID, dto.ReverseJournalEntryRequest{Reason: "again"}, "clerk")
	suite.ErrorIs(err, apperrors.ErrIllegalEntryTransition)
}

func (suite *JournalEntryServiceTestSuite) TestReverse_RespectsNoReversals() {
	original := suite.record(march(5), suite.cash, suite.sales, "50.00")
	_, err := suite.svc.FiscalPeriod.SetPeriodRestrictions(suite.ctx, suite.periods[time.March].PeriodID, dto.SetPeriodRestrictionsRequest{
		Restrictions: []domain.PostingRestriction{domain.NoReversals},
	}, "controller")
	suite.Require().NoError(err)

	_, _, err = suite.svc.JournalEntry.ReverseJournalEntry(suite.ctx, original.EntryID, dto.ReverseJournalEntryRequest{Reason: "wrong customer"}, "clerk")
	suite.ErrorIs(err, apperrors.ErrPostingNotAllowed)

	stored, err := suite.svc.JournalEntry.GetJournalEntry(suite.ctx, original.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.EntryPosted, stored.Status, "a failed reversal leaves the original untouched")
}

func (suite *JournalEntryServiceTestSuite) TestApprovalFlow() {
	approval := true
	req := entryRequest(march(10),
		line(suite.cash, domain.Debit, "75.00"),
		line(suite.sales, domain.Credit, "75.00"),
	)
	req.RequiresApproval = &approval

	pending, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, req, "clerk")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryPendingApproval, pending.Status)
	suite.Equal("clerk", pending.SubmittedBy)
	suite.Equal("0.00 USD", suite.storedBalance(suite.cash))

	posted, err := suite.svc.JournalEntry.PostJournalEntry(suite.ctx, pending.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryPosted, posted.Status)
	suite.Equal("approver", posted.PostedBy)
	suite.Equal("75.00 USD", suite.storedBalance(suite.cash))

	draft, err := suite.svc.JournalEntry.CreateJournalEntry(suite.ctx, req, "clerk")
	suite.Require().NoError(err)
	_, err = suite.svc.JournalEntry.PostJournalEntry(suite.ctx, draft.EntryID, "approver")
	suite.ErrorIs(err, apperrors.ErrIllegalEntryTransition, "entries requiring approval are submitted first")

	submitted, err := suite.svc.JournalEntry.SubmitJournalEntry(suite.ctx, draft.EntryID, "clerk")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryPendingApproval, submitted.Status)

	cancelled, err := suite.svc.JournalEntry.CancelJournalEntry(suite.ctx, draft.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal(domain.EntryCancelled, cancelled.Status)
	suite.Contains(suite.eventTypes(), domain.EventJournalEntryCancelled)
}

func (suite *JournalEntryServiceTestSuite) TestPolicyRequiresApproval() {
	svc := suite.newContainer(services.Policy{RequireApproval: true})

	entry, err := svc.JournalEntry.RecordJournalEntry(suite.ctx, entryRequest(march(10),
		line(suite.cash, domain.Debit, "5.00"),
		line(suite.sales, domain.Credit, "5.00"),
	), "clerk")
	suite.Require().NoError(err)
	suite.True(entry.RequiresApproval)
	suite.Equal(domain.EntryPendingApproval, entry.Status)
}

func (suite *JournalEntryServiceTestSuite) TestRecord_DuplicateReference() {
	req := entryRequest(march(10),
		line(suite.cash, domain.Debit, "5.00"),
		line(suite.sales, domain.Credit, "5.00"),
	)
	req.ReferenceNumber = "INV-42"
	_, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, req, "clerk")
	suite.Require().NoError(err)

	_, err = suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, req, "clerk")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Equal("5.00 USD", suite.storedBalance(suite.cash))
}

func (suite *JournalEntryServiceTestSuite) TestConcurrentPostingsKeepBalances() {
	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx, entryRequest(march(10),
				line(suite.cash, domain.Debit, "1.00"),
				line(suite.sales, domain.Credit, "1.00"),
			), "clerk")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.NoError(err)
	}

	suite.Equal("20.00 USD", suite.storedBalance(suite.cash))
	suite.Equal("20.00 USD", suite.balance(suite.sales))
	period, err := suite.svc.FiscalPeriod.GetFiscalPeriod(suite.ctx, suite.periods[time.March].PeriodID)
	suite.Require().NoError(err)
	suite.Equal("20", period.TotalCredits.String())
	suite.True(period.IsBalanced())
	tb := suite.trialBalanceBalanced(march(31))
	suite.Require().Len(tb.Totals, 1)
	suite.Equal("20", tb.Totals[0].DebitTotal.String())
}

func (suite *JournalEntryServiceTestSuite) TestListJournalEntries() {
	first := suite.record(march(1), suite.cash, suite.capital, "1000.00")
	second := suite.record(march(3), suite.cash, suite.sales, "10.00")
	third := suite.record(march(5), suite.rent, suite.cash, "20.00")

	page, next, err := suite.svc.JournalEntry.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(page, 2)
	suite.Equal(third.EntryID, page[0].EntryID)
	suite.Equal(second.EntryID, page[1].EntryID)
	suite.Require().NotNil(next)

	rest, next, err := suite.svc.JournalEntry.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Limit: 2, NextToken: next})
	suite.Require().NoError(err)
	suite.Require().Len(rest, 1)
	suite.Equal(first.EntryID, rest[0].EntryID)
	suite.Nil(next)

	bySales, _, err := suite.svc.JournalEntry.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Limit: 10, AccountID: suite.sales.AccountID})
	suite.Require().NoError(err)
	suite.Require().Len(bySales, 1)
	suite.Equal(second.EntryID, bySales[0].EntryID)

	from, to := march(5), march(1)
	_, _, err = suite.svc.JournalEntry.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Limit: 10, From: &from, To: &to})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.JournalEntry.GetJournalEntry(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrUnknownJournalEntry)
}
