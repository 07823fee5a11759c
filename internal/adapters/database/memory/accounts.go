package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// accountTx is the account repository bound to one unit of work.
type accountTx struct {
	uow *unitOfWork
}

var _ repositories.AccountRepositoryFacade = accountTx{}

func (r accountTx) lookup(id string) (domain.Account, bool) {
	if st, ok := r.uow.accounts[id]; ok {
		return st.value, true
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	acc, ok := r.uow.store.accounts[id]
	return acc, ok
}

// all merges committed and staged accounts.
func (r accountTx) all() []domain.Account {
	r.uow.store.mu.RLock()
	merged := make(map[string]domain.Account, len(r.uow.store.accounts)+len(r.uow.accounts))
	for id, acc := range r.uow.store.accounts {
		merged[id] = acc
	}
	r.uow.store.mu.RUnlock()
	for id, st := range r.uow.accounts {
		merged[id] = st.value
	}
	out := make([]domain.Account, 0, len(merged))
	for _, acc := range merged {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r accountTx) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, ok := r.lookup(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
	}
	return &acc, nil
}

func (r accountTx) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	for _, acc := range r.all() {
		if acc.Code == code {
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("%w: code %s", apperrors.ErrUnknownAccount, code)
}

func (r accountTx) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := r.lookup(id); ok {
			out[id] = acc
		}
	}
	return out, nil
}

// FindAccountsByIDsForUpdate needs no locking here: the unit of work already
// excludes every other writer.
func (r accountTx) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.FindAccountsByIDs(ctx, accountIDs)
}

func (r accountTx) ListAccounts(ctx context.Context, filter repositories.AccountFilter, limit int, offset int) ([]domain.Account, error) {
	matched := make([]domain.Account, 0)
	for _, acc := range r.all() {
		switch {
		case filter.Category != "" && acc.AccountType.Category() != filter.Category:
		case filter.AccountType != "" && acc.AccountType != filter.AccountType:
		case filter.Status != "" && acc.Status != filter.Status:
		case filter.ParentAccountID != "" && acc.ParentAccountID != filter.ParentAccountID:
		default:
			matched = append(matched, acc)
		}
	}
	return page(matched, limit, offset), nil
}

func (r accountTx) SaveAccount(ctx context.Context, account domain.Account, expectedVersion int64) error {
	current, exists := r.lookup(account.AccountID)
	if other, err := r.FindAccountByCode(ctx, account.Code); err == nil && other.AccountID != account.AccountID {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	return stageSave(r.uow.accounts, current, exists, account.AccountID, account, expectedVersion, accountVersion, "account")
}

// accountRepository commits every write on its own.
type accountRepository struct {
	accountTx
	store *Store
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account, expectedVersion int64) error {
	return r.store.WithinTx(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		return uow.Accounts().SaveAccount(ctx, account, expectedVersion)
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
