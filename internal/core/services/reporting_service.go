package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// reportingService implements the ReportingSvc interface
type reportingService struct {
	BaseService
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.ReportingSvc {
	return &reportingService{BaseService: newBaseService(repos.TxManager, options...)}
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

// snapshot reads every account and the posted lines dated up to to.
func (s *reportingService) snapshot(ctx context.Context, to time.Time) ([]domain.Account, []domain.PostedLine, error) {
	var (
		accounts []domain.Account
		lines    []domain.PostedLine
	)
	err := s.readSnapshot(ctx, func(ctx context.Context, reader portsrepo.LedgerReader) error {
		var err error
		if accounts, err = reader.Accounts(ctx); err != nil {
			return fmt.Errorf("failed to read accounts: %w", err)
		}
		if lines, err = reader.PostedLines(ctx, portsrepo.PostedLineFilter{To: to}); err != nil {
			return fmt.Errorf("failed to read posted lines: %w", err)
		}
		return nil
	})
	return accounts, lines, err
}

// IncomeStatement generates a profit and loss report for a specific period
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) ([]domain.IncomeStatement, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'from' date cannot be after 'to' date", apperrors.ErrValidation)
	}
	accounts, lines, err := s.snapshot(ctx, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income statement data",
			slog.String("from", from.Format(time.DateOnly)),
			slog.String("to", to.Format(time.DateOnly)))
		return nil, err
	}

	statements := domain.BuildIncomeStatements(accounts, lines, from, to)
	s.LogInfo(ctx, "Income statement generated successfully",
		slog.String("from", from.Format(time.DateOnly)),
		slog.String("to", to.Format(time.DateOnly)),
		slog.Int("currencies", len(statements)))
	return statements, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) ([]domain.BalanceSheet, error) {
	accounts, lines, err := s.snapshot(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}

	sheets := domain.BuildBalanceSheets(accounts, lines, asOf)
	for _, sheet := range sheets {
		if !sheet.IsBalanced() {
			s.LogError(ctx, apperrors.ErrUnbalanced, "Balance sheet does not balance",
				slog.String("currency", sheet.Currency),
				slog.String("asOf", asOf.Format(time.DateOnly)))
		}
	}
	s.LogInfo(ctx, "Balance sheet generated successfully",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("currencies", len(sheets)))
	return sheets, nil
}
