package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

type fiscalPeriodTx struct {
	uow *unitOfWork
}

var _ repositories.FiscalPeriodRepositoryFacade = fiscalPeriodTx{}

func (r fiscalPeriodTx) lookup(id string) (domain.FiscalPeriod, bool) {
	if st, ok := r.uow.periods[id]; ok {
		return st.value, true
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	p, ok := r.uow.store.periods[id]
	return p, ok
}

// all returns committed and staged periods ordered by start date.
func (r fiscalPeriodTx) all() []domain.FiscalPeriod {
	r.uow.store.mu.RLock()
	merged := make(map[string]domain.FiscalPeriod, len(r.uow.store.periods)+len(r.uow.periods))
	for id, p := range r.uow.store.periods {
		merged[id] = p
	}
	r.uow.store.mu.RUnlock()
	for id, st := range r.uow.periods {
		merged[id] = st.value
	}
	out := make([]domain.FiscalPeriod, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r fiscalPeriodTx) FindFiscalPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	p, ok := r.lookup(periodID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownFiscalPeriod, periodID)
	}
	return &p, nil
}

func (r fiscalPeriodTx) FindFiscalPeriodByDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	for _, p := range r.all() {
		if p.Contains(date) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: no period contains %s", apperrors.ErrUnknownFiscalPeriod, date.Format(time.DateOnly))
}

// FindFiscalPeriodByDateForUpdate needs no locking here: the unit of work
// already excludes every other writer.
func (r fiscalPeriodTx) FindFiscalPeriodByDateForUpdate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	return r.FindFiscalPeriodByDate(ctx, date)
}

func (r fiscalPeriodTx) ListFiscalPeriods(ctx context.Context, fiscalYear int) ([]domain.FiscalPeriod, error) {
	out := make([]domain.FiscalPeriod, 0)
	for _, p := range r.all() {
		if fiscalYear == 0 || p.FiscalYear == fiscalYear {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fiscalPeriodTx) ListFiscalPeriodsByStatus(ctx context.Context, status domain.PeriodStatus) ([]domain.FiscalPeriod, error) {
	out := make([]domain.FiscalPeriod, 0)
	for _, p := range r.all() {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fiscalPeriodTx) SaveFiscalPeriod(ctx context.Context, period domain.FiscalPeriod, expectedVersion int64) error {
	current, exists := r.lookup(period.PeriodID)
	for _, other := range r.all() {
		if other.PeriodID != period.PeriodID && other.FiscalYear == period.FiscalYear && other.PeriodNumber == period.PeriodNumber {
			return fmt.Errorf("%w: period %d of fiscal year %d", apperrors.ErrDuplicate, period.PeriodNumber, period.FiscalYear)
		}
	}
	return stageSave(r.uow.periods, current, exists, period.PeriodID, period, expectedVersion, periodVersion, "fiscal period")
}

type fiscalPeriodRepository struct {
	fiscalPeriodTx
	store *Store
}

func (r *fiscalPeriodRepository) SaveFiscalPeriod(ctx context.Context, period domain.FiscalPeriod, expectedVersion int64) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		return uow.FiscalPeriods().SaveFiscalPeriod(ctx, period, expectedVersion)
	})
}
