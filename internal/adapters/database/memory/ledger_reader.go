package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// snapshotReader reads committed state directly. It is only handed out by
// ReadSnapshot, which holds the read lock for its lifetime.
type snapshotReader struct {
	store *Store
}

var _ repositories.LedgerReader = snapshotReader{}

func (r snapshotReader) Accounts(ctx context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r snapshotReader) Account(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, ok := r.store.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, accountID)
	}
	return &acc, nil
}

func (r snapshotReader) PostedLines(ctx context.Context, filter repositories.PostedLineFilter) ([]domain.PostedLine, error) {
	var to time.Time
	if !filter.To.IsZero() {
		to = domain.DateOnly(filter.To)
	}
	out := make([]domain.PostedLine, 0)
	for _, e := range r.store.entries {
		if !e.IsPosted() {
			continue
		}
		if !to.IsZero() && e.EntryDate.After(to) {
			continue
		}
		for _, line := range domain.PostedLinesOf(e) {
			if len(filter.AccountIDs) > 0 && !slices.Contains(filter.AccountIDs, line.AccountID) {
				continue
			}
			out = append(out, line)
		}
	}
	domain.SortPostedLines(out)
	return out, nil
}
