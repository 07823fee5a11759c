package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) account(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID))
}
func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return m.account(m.Called(ctx, code))
}
func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, req, actor))
}
func (m *MockAccountService) ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) ReparentAccount(ctx context.Context, accountID string, req dto.ReparentAccountRequest, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, req, actor))
}
func (m *MockAccountService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(domain.Money), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalEntryService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) entry(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID))
}
func (m *MockJournalService) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}
func (m *MockJournalService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, req, actor))
}
func (m *MockJournalService) UpdateJournalEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, req, actor))
}
func (m *MockJournalService) AddJournalLine(ctx context.Context, entryID string, req dto.JournalLineRequest, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, req, actor))
}
func (m *MockJournalService) RemoveJournalLine(ctx context.Context, entryID string, lineID string, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, lineID, actor))
}
func (m *MockJournalService) SubmitJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, actor))
}
func (m *MockJournalService) PostJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, actor))
}
func (m *MockJournalService) RecordJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, req, actor))
}
func (m *MockJournalService) ReverseJournalEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, actor string) (*domain.JournalEntry, *domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.JournalEntry), args.Get(1).(*domain.JournalEntry), args.Error(2)
}
func (m *MockJournalService) CancelJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, actor))
}

var _ portssvc.JournalEntrySvcFacade = (*MockJournalService)(nil)

// --- Mock FiscalPeriodService ---
type MockFiscalPeriodService struct {
	mock.Mock
}

func (m *MockFiscalPeriodService) period(args mock.Arguments) (*domain.FiscalPeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodService) periods(args mock.Arguments) ([]domain.FiscalPeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodService) GetFiscalPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID))
}
func (m *MockFiscalPeriodService) ListFiscalPeriods(ctx context.Context, params dto.ListFiscalPeriodsParams) ([]domain.FiscalPeriod, error) {
	return m.periods(m.Called(ctx, params))
}
func (m *MockFiscalPeriodService) CreateFiscalPeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, req, actor))
}
func (m *MockFiscalPeriodService) CreateMonthlyPeriods(ctx context.Context, req dto.CreateFiscalYearRequest, actor string) ([]domain.FiscalPeriod, error) {
	return m.periods(m.Called(ctx, req, actor))
}
func (m *MockFiscalPeriodService) OpenFiscalPeriod(ctx context.Context, periodID string, req dto.OpenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID, req, actor))
}
func (m *MockFiscalPeriodService) SoftCloseFiscalPeriod(ctx context.Context, periodID string, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID, actor))
}
func (m *MockFiscalPeriodService) CloseFiscalPeriod(ctx context.Context, periodID string, req dto.CloseFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID, req, actor))
}
func (m *MockFiscalPeriodService) ReopenFiscalPeriod(ctx context.Context, periodID string, req dto.ReopenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID, req, actor))
}
func (m *MockFiscalPeriodService) SetPeriodRestrictions(ctx context.Context, periodID string, req dto.SetPeriodRestrictionsRequest, actor string) (*domain.FiscalPeriod, error) {
	return m.period(m.Called(ctx, periodID, req, actor))
}
func (m *MockFiscalPeriodService) OpenDuePeriods(ctx context.Context, today time.Time) ([]domain.FiscalPeriod, error) {
	return m.periods(m.Called(ctx, today))
}

var _ portssvc.FiscalPeriodSvcFacade = (*MockFiscalPeriodService)(nil)

// --- Mock LedgerQueryService ---
type MockLedgerQueryService struct {
	mock.Mock
}

func (m *MockLedgerQueryService) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(domain.Money), args.Error(1)
}
func (m *MockLedgerQueryService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockLedgerQueryService) GeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralLedger), args.Error(1)
}

var _ portssvc.LedgerQuerySvc = (*MockLedgerQueryService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) IncomeStatement(ctx context.Context, from, to time.Time) ([]domain.IncomeStatement, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncomeStatement), args.Error(1)
}
func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time) ([]domain.BalanceSheet, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceSheet), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)
