package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/cenkalti/backoff/v5"
)

// withRetry runs fn in a unit of work, retrying it with exponential backoff when
// a concurrent writer moved an aggregate version. Every other error is returned
// at once. fn must be safe to run again from scratch.
func (s *BaseService) withRetry(ctx context.Context, op string, fn func(ctx context.Context, uow portsrepo.UnitOfWork) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.RetryInitialInterval

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := s.txManager.WithinTx(ctx, fn)
		switch {
		case err == nil:
			return struct{}{}, nil
		case apperrors.IsRetryable(err):
			s.LogDebug(ctx, "Concurrent modification, retrying",
				slog.String("operation", op),
				slog.Int("attempt", attempt))
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(s.policy.MaxRetries)+1))
	return err
}

// readSnapshot runs fn against a consistent view of posted entries.
func (s *BaseService) readSnapshot(ctx context.Context, fn func(ctx context.Context, reader portsrepo.LedgerReader) error) error {
	return s.txManager.ReadSnapshot(ctx, fn)
}
