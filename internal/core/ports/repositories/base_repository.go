package repositories

import (
	"context"
)

// UnitOfWork exposes the repositories bound to one atomic transaction.
// Everything written through it commits or rolls back together.
type UnitOfWork interface {
	Accounts() AccountRepositoryFacade
	JournalEntries() JournalEntryRepositoryFacade
	FiscalPeriods() FiscalPeriodRepositoryFacade
	Outbox() OutboxWriter
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn in a new transaction. A nil return commits; any error,
	// or a panic, rolls back. Optimistic version conflicts surface as
	// apperrors.ErrStaleVersion.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error

	// ReadSnapshot runs fn against a consistent read-only view of the ledger.
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, reader LedgerReader) error) error
}
