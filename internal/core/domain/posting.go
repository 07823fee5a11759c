package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// BalanceChange is the net effect of one entry on one account.
type BalanceChange struct {
	AccountID       string
	PreviousBalance Money
	NewBalance      Money
}

// PostingResult holds the next value of every aggregate a posting touches.
type PostingResult struct {
	Entry    JournalEntry
	Period   FiscalPeriod
	Accounts []Account
	Changes  []BalanceChange
}

// PostEntry posts entry into period against accounts. It is pure: nothing is
// persisted, and on error no aggregate has changed.
func PostEntry(entry JournalEntry, period FiscalPeriod, accounts map[string]Account, actor string, now time.Time) (PostingResult, error) {
	posted, err := entry.Post(period, actor, now)
	if err != nil {
		return PostingResult{}, err
	}

	updated := make(map[string]Account, len(accounts))
	order := make([]string, 0, len(accounts))
	for _, line := range posted.Lines {
		acc, ok := updated[line.AccountID]
		if !ok {
			acc, ok = accounts[line.AccountID]
			if !ok {
				return PostingResult{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, line.AccountID)
			}
			order = append(order, line.AccountID)
		}
		next, err := acc.ApplyPosting(line.Amount, line.Side, actor, now)
		if err != nil {
			return PostingResult{}, err
		}
		updated[line.AccountID] = next
	}

	debits, credits := posted.Totals()
	nextPeriod, err := period.RecordPosting(debits, credits, posted.EntryType, posted.SourceSystem, actor, now)
	if err != nil {
		return PostingResult{}, err
	}

	result := PostingResult{
		Entry:    posted,
		Period:   nextPeriod,
		Accounts: make([]Account, 0, len(order)),
		Changes:  make([]BalanceChange, 0, len(order)),
	}
	for _, id := range order {
		result.Accounts = append(result.Accounts, updated[id])
		result.Changes = append(result.Changes, BalanceChange{
			AccountID:       id,
			PreviousBalance: accounts[id].Balance,
			NewBalance:      updated[id].Balance,
		})
	}
	return result, nil
}
