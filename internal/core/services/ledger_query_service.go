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
)

// ledgerQueryService derives balances from posted journal lines. Every query
// reads one consistent snapshot.
type ledgerQueryService struct {
	BaseService
}

// NewLedgerQueryService creates the ledger query engine.
func NewLedgerQueryService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.LedgerQuerySvc {
	return &ledgerQueryService{BaseService: newBaseService(repos.TxManager, options...)}
}

var _ portssvc.LedgerQuerySvc = (*ledgerQueryService)(nil)

func accountBalance(ctx context.Context, reader portsrepo.LedgerReader, accountID string, asOf time.Time) (domain.Money, error) {
	account, err := reader.Account(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}
	lines, err := reader.PostedLines(ctx, portsrepo.PostedLineFilter{AccountIDs: []string{accountID}, To: asOf})
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to read posted lines: %w", err)
	}
	return domain.AccountBalance(*account, lines, asOf), nil
}

func (s *ledgerQueryService) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
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

func (s *ledgerQueryService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	var tb domain.TrialBalance
	err := s.readSnapshot(ctx, func(ctx context.Context, reader portsrepo.LedgerReader) error {
		accounts, err := reader.Accounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to read accounts: %w", err)
		}
		lines, err := reader.PostedLines(ctx, portsrepo.PostedLineFilter{To: asOf})
		if err != nil {
			return fmt.Errorf("failed to read posted lines: %w", err)
		}
		tb = domain.BuildTrialBalance(accounts, lines, asOf)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}
	if !tb.IsBalanced() {
		// Only reachable through a storage defect; posting never commits an unbalanced entry.
		s.LogError(ctx, apperrors.ErrUnbalanced, "Trial balance does not balance", slog.String("asOf", asOf.Format(time.DateOnly)))
	}
	s.LogInfo(ctx, "Trial balance generated successfully",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(tb.Rows)))
	return &tb, nil
}

func (s *ledgerQueryService) GeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'from' date cannot be after 'to' date", apperrors.ErrValidation)
	}
	var gl domain.GeneralLedger
	err := s.readSnapshot(ctx, func(ctx context.Context, reader portsrepo.LedgerReader) error {
		account, err := reader.Account(ctx, accountID)
		if err != nil {
			return err
		}
		lines, err := reader.PostedLines(ctx, portsrepo.PostedLineFilter{AccountIDs: []string{accountID}, To: to})
		if err != nil {
			return fmt.Errorf("failed to read posted lines: %w", err)
		}
		gl = domain.BuildGeneralLedger(*account, lines, from, to)
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to build general ledger", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return &gl, nil
}
