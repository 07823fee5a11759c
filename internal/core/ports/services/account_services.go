package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its chart code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves a filtered, paginated list of accounts ordered by code.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount validates and persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)

	// ActivateAccount moves an inactive account back to active.
	ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)

	// DeactivateAccount stops an account from accepting postings.
	DeactivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)

	// CloseAccount permanently closes an account with a zero balance.
	CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)

	// ReparentAccount moves an account in the hierarchy.
	ReparentAccount(ctx context.Context, accountID string, req dto.ReparentAccountRequest, actor string) (*domain.Account, error)
}

// AccountCalculatorSvc defines calculation operations for account data
type AccountCalculatorSvc interface {
	// GetAccountBalance derives the balance of an account from posted lines up to asOf.
	GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
