package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager implements repositories.TransactionManager on a pgx pool.
//
// Writes run at READ COMMITTED. Accounts are locked with SELECT ... FOR UPDATE
// and every other aggregate is protected by its version column, so a lost
// race surfaces as apperrors.ErrStaleVersion and is retried by the services.
type TxManager struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ repositories.TransactionManager = (*TxManager)(nil)

// NewTxManager creates a transaction manager for pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

type unitOfWork struct {
	accounts *PgxAccountRepository
	entries  *PgxJournalEntryRepository
	periods  *PgxFiscalPeriodRepository
	outbox   *outboxWriter
}

func newUnitOfWork(tx pgx.Tx, now func() time.Time) *unitOfWork {
	return &unitOfWork{
		accounts: newPgxAccountRepository(tx),
		entries:  newPgxJournalEntryRepository(tx),
		periods:  newPgxFiscalPeriodRepository(tx),
		outbox:   &outboxWriter{db: tx, now: now},
	}
}

func (u *unitOfWork) Accounts() repositories.AccountRepositoryFacade           { return u.accounts }
func (u *unitOfWork) JournalEntries() repositories.JournalEntryRepositoryFacade { return u.entries }
func (u *unitOfWork) FiscalPeriods() repositories.FiscalPeriodRepositoryFacade  { return u.periods }
func (u *unitOfWork) Outbox() repositories.OutboxWriter                         { return u.outbox }

// run begins a transaction with opts, hands it to fn and commits on success.
func (m *TxManager) run(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				middleware.GetLoggerFromCtx(ctx).Error("failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return mapPgError(err, "failed to commit transaction")
	}
	return nil
}

// WithinTx runs fn in a read-write transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repositories.UnitOfWork) error) error {
	return m.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, newUnitOfWork(tx, m.now))
	})
}

// ReadSnapshot runs fn in a REPEATABLE READ, READ ONLY transaction so every
// query in a report sees the same committed state.
func (m *TxManager) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, reader repositories.LedgerReader) error) error {
	return m.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(ctx, newLedgerReader(tx))
	})
}
