package pgsql

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// journalEntryRepository saves header and lines in their own transaction when
// used outside a unit of work.
type journalEntryRepository struct {
	*PgxJournalEntryRepository
	txm *TxManager
}

func (r *journalEntryRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64) error {
	return r.txm.WithinTx(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		return uow.JournalEntries().SaveJournalEntry(ctx, entry, expectedVersion)
	})
}

// NewRepositoryProvider wires the Postgres repositories. The standalone
// repositories run each call on the pool; multi-row changes go through TxManager.
func NewRepositoryProvider(dbPool *pgxpool.Pool) repositories.RepositoryProvider {
	txm := NewTxManager(dbPool)
	return repositories.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		JournalEntryRepo: &journalEntryRepository{PgxJournalEntryRepository: newPgxJournalEntryRepository(dbPool), txm: txm},
		FiscalPeriodRepo: newPgxFiscalPeriodRepository(dbPool),
		TxManager:        txm,
	}
}
