package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// FiscalPeriodReader defines read operations for fiscal period data
type FiscalPeriodReader interface {
	// FindFiscalPeriodByID retrieves a specific period.
	FindFiscalPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// FindFiscalPeriodByDate retrieves the period containing date.
	FindFiscalPeriodByDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)

	// ListFiscalPeriods lists periods ordered by start date. A zero fiscalYear lists every year.
	ListFiscalPeriods(ctx context.Context, fiscalYear int) ([]domain.FiscalPeriod, error)

	// ListFiscalPeriodsByStatus lists periods in status ordered by start date.
	ListFiscalPeriodsByStatus(ctx context.Context, status domain.PeriodStatus) ([]domain.FiscalPeriod, error)
}

// FiscalPeriodWriter defines write operations for fiscal period data
type FiscalPeriodWriter interface {
	// SaveFiscalPeriod inserts the period when expectedVersion is 0, otherwise
	// updates it only if the stored version still equals expectedVersion.
	SaveFiscalPeriod(ctx context.Context, period domain.FiscalPeriod, expectedVersion int64) error
}

// FiscalPeriodTransactionSupport defines operations that support posting transactions
type FiscalPeriodTransactionSupport interface {
	// FindFiscalPeriodByDateForUpdate retrieves the period containing date and
	// locks it until the transaction ends. Postings take this lock before any
	// account lock.
	FindFiscalPeriodByDateForUpdate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)
}

// FiscalPeriodRepositoryFacade combines all fiscal-period repository interfaces
type FiscalPeriodRepositoryFacade interface {
	FiscalPeriodReader
	FiscalPeriodWriter
	FiscalPeriodTransactionSupport
}
