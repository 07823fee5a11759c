package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(repos.TxManager, options...),
		accountRepo: repos.AccountRepo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// accountLookup adapts a repository to domain.AccountLookup. Failures other
// than not-found are kept in *lookupErr.
func accountLookup(ctx context.Context, repo portsrepo.AccountReader, lookupErr *error) domain.AccountLookup {
	return func(accountID string) (domain.Account, bool) {
		acc, err := repo.FindAccountByID(ctx, accountID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) && *lookupErr == nil {
				*lookupErr = err
			}
			return domain.Account{}, false
		}
		return *acc, true
	}
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	params := domain.NewAccountParams{
		AccountID:           newID(),
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		AccountType:         req.AccountType,
		CurrencyCode:        req.CurrencyCode,
		IsControlAccount:    req.IsControlAccount,
		AllowsDirectPosting: req.AllowsDirectPosting,
		Actor:               actor,
	}
	if req.ParentAccountID != nil {
		params.ParentAccountID = *req.ParentAccountID
	}

	var created domain.Account
	err := s.withRetry(ctx, "CreateAccount", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		params.Now = s.now()
		var lookupErr error
		account, err := domain.NewAccount(params, accountLookup(ctx, uow.Accounts(), &lookupErr))
		if lookupErr != nil {
			return fmt.Errorf("failed to look up parent account: %w", lookupErr)
		}
		if err != nil {
			return err
		}
		if err := uow.Accounts().SaveAccount(ctx, account, 0); err != nil {
			return err
		}
		created = account
		return uow.Outbox().Enqueue(ctx, domain.AccountCreated{
			AccountID:   account.AccountID,
			Code:        account.Code,
			AccountType: account.AccountType,
			OccurredAt:  params.Now,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account",
			slog.String("code", req.Code),
			slog.String("account_type", string(req.AccountType)))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", created.AccountID),
		slog.String("code", created.Code))
	return &created, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	filter := portsrepo.AccountFilter{
		Category:        domain.AccountCategory(params.Category),
		AccountType:     domain.AccountType(params.AccountType),
		Status:          domain.AccountStatus(params.Status),
		ParentAccountID: params.ParentAccountID,
	}
	if filter.AccountType != "" && !filter.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, params.AccountType)
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, filter, params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)))
	return accounts, nil
}

// transition loads an account, applies change and saves the result under the loaded version.
func (s *accountService) transition(ctx context.Context, op, accountID string, change func(acc domain.Account, uow portsrepo.UnitOfWork) (domain.Account, error)) (*domain.Account, error) {
	var updated domain.Account
	err := s.withRetry(ctx, op, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		current, err := uow.Accounts().FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		next, err := change(*current, uow)
		if err != nil {
			return err
		}
		if err := uow.Accounts().SaveAccount(ctx, next, current.Version); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Account transition failed",
			slog.String("operation", op),
			slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account updated",
		slog.String("operation", op),
		slog.String("account_id", accountID),
		slog.String("status", string(updated.Status)))
	return &updated, nil
}

func (s *accountService) ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.transition(ctx, "ActivateAccount", accountID, func(acc domain.Account, _ portsrepo.UnitOfWork) (domain.Account, error) {
		return acc.Activate(actor, s.now())
	})
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.transition(ctx, "DeactivateAccount", accountID, func(acc domain.Account, _ portsrepo.UnitOfWork) (domain.Account, error) {
		return acc.Deactivate(actor, s.now())
	})
}

func (s *accountService) CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return s.transition(ctx, "CloseAccount", accountID, func(acc domain.Account, _ portsrepo.UnitOfWork) (domain.Account, error) {
		return acc.Close(actor, s.now())
	})
}

func (s *accountService) ReparentAccount(ctx context.Context, accountID string, req dto.ReparentAccountRequest, actor string) (*domain.Account, error) {
	parentID := ""
	if req.ParentAccountID != nil {
		parentID = *req.ParentAccountID
	}
	return s.transition(ctx, "ReparentAccount", accountID, func(acc domain.Account, uow portsrepo.UnitOfWork) (domain.Account, error) {
		var lookupErr error
		next, err := acc.Reparent(parentID, accountLookup(ctx, uow.Accounts(), &lookupErr), actor, s.now())
		if lookupErr != nil {
			return domain.Account{}, fmt.Errorf("failed to look up parent account: %w", lookupErr)
		}
		return next, err
	})
}

func (s *accountService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	var balance domain.Money
	err := s.readSnapshot(ctx, func(ctx context.Context, reader portsrepo.LedgerReader) error {
		var err error
		balance, err = accountBalance(ctx, reader, accountID, asOf)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to compute account balance", slog.String("account_id", accountID))
		}
		return domain.Money{}, err
	}
	return balance, nil
}
