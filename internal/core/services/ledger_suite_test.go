package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/adapters/database/memory"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func march(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

// ledgerSuite wires every service to a fresh in-memory store with a
// fiscal year 2024 whose March period is open.
type ledgerSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	svc     *portssvc.ServiceContainer
	policy  services.Policy
	periods map[time.Month]domain.FiscalPeriod
	cash    *domain.Account
	sales   *domain.Account
	rent    *domain.Account
	capital *domain.Account
}

func (suite *ledgerSuite) SetupTest() {
	suite.ctx = context.Background()
	if suite.policy == (services.Policy{}) {
		suite.policy = services.DefaultPolicy()
	}
	suite.store = memory.NewStore(memory.WithClock(func() time.Time { return fixedNow }))
	suite.svc = suite.newContainer(suite.policy)

	periods, err := suite.svc.FiscalPeriod.CreateMonthlyPeriods(suite.ctx, dto.CreateFiscalYearRequest{
		FiscalYear: 2024,
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}, "controller")
	suite.Require().NoError(err)
	suite.periods = make(map[time.Month]domain.FiscalPeriod, len(periods))
	for _, p := range periods {
		suite.periods[p.StartDate.Month()] = p
	}
	opened, err := suite.svc.FiscalPeriod.OpenFiscalPeriod(suite.ctx, suite.periods[time.March].PeriodID, dto.OpenFiscalPeriodRequest{}, "controller")
	suite.Require().NoError(err)
	suite.periods[time.March] = *opened

	suite.cash = suite.createAccount("1000", "Cash", domain.Cash)
	suite.sales = suite.createAccount("4000", "Sales Revenue", domain.SalesRevenue)
	suite.rent = suite.createAccount("5000", "Rent", domain.RentExpense)
	suite.capital = suite.createAccount("3000", "Owner's Capital", domain.OwnersCapital)
}

func (suite *ledgerSuite) newContainer(policy services.Policy, options ...services.ServiceOption) *portssvc.ServiceContainer {
	opts := append([]services.ServiceOption{
		services.WithPolicy(policy),
		services.WithClock(func() time.Time { return fixedNow }),
	}, options...)
	repos := suite.store.Repositories()
	return &portssvc.ServiceContainer{
		Account:      services.NewAccountService(repos, opts...),
		JournalEntry: services.NewJournalEntryService(repos, opts...),
		FiscalPeriod: services.NewFiscalPeriodService(repos, opts...),
		LedgerQuery:  services.NewLedgerQueryService(repos, opts...),
		Reporting:    services.NewReportingService(repos, opts...),
	}
}

func (suite *ledgerSuite) createAccount(code, name string, accountType domain.AccountType) *domain.Account {
	acc, err := suite.svc.Account.CreateAccount(suite.ctx, dto.CreateAccountRequest{
		Code:         code,
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: "USD",
	}, "controller")
	suite.Require().NoError(err)
	return acc
}

func line(acc *domain.Account, side domain.Side, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{
		AccountID: acc.AccountID,
		Amount:    decimal.RequireFromString(amount),
		Side:      side,
	}
}

func entryRequest(date time.Time, lines ...dto.JournalLineRequest) dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:   date,
		Description: "test entry",
		Lines:       lines,
	}
}

// record posts a balanced two-line entry in one call.
func (suite *ledgerSuite) record(date time.Time, debit, credit *domain.Account, amount string) *domain.JournalEntry {
	entry, err := suite.svc.JournalEntry.RecordJournalEntry(suite.ctx,
		entryRequest(date, line(debit, domain.Debit, amount), line(credit, domain.Credit, amount)), "clerk")
	suite.Require().NoError(err)
	return entry
}

func (suite *ledgerSuite) balance(acc *domain.Account) string {
	bal, err := suite.svc.Account.GetAccountBalance(suite.ctx, acc.AccountID, march(31))
	suite.Require().NoError(err)
	return bal.String()
}

func (suite *ledgerSuite) storedBalance(acc *domain.Account) string {
	stored, err := suite.svc.Account.GetAccountByID(suite.ctx, acc.AccountID)
	suite.Require().NoError(err)
	return stored.Balance.String()
}

// trialBalanceBalanced asserts that debits equal credits across the chart as of asOf.
func (suite *ledgerSuite) trialBalanceBalanced(asOf time.Time) *domain.TrialBalance {
	tb, err := suite.svc.LedgerQuery.TrialBalance(suite.ctx, asOf)
	suite.Require().NoError(err)
	suite.True(tb.IsBalanced(), "trial balance out of balance: %+v", tb.Totals)
	return tb
}

func (suite *ledgerSuite) eventTypes() []string {
	var types []string
	for _, ev := range suite.store.OutboxEvents() {
		types = append(types, ev.EventType)
	}
	return types
}
