package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"wrapped structural", fmt.Errorf("%w: line 2", ErrEmptyEntry), KindStructural},
		{"state", ErrPostingNotAllowed, KindState},
		{"stale", fmt.Errorf("save account: %w", ErrStaleVersion), KindConcurrency},
		{"unknown account", ErrUnknownAccount, KindNotFound},
		{"generic not found", fmt.Errorf("%w: row", ErrNotFound), KindNotFound},
		{"generic validation", ErrValidation, KindValidation},
		{"duplicate", fmt.Errorf("%w: code 1000", ErrDuplicate), KindConflict},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestLedgerErrorMatchesGenericSentinels(t *testing.T) {
	assert.ErrorIs(t, fmt.Errorf("%w: id", ErrUnknownJournalEntry), ErrNotFound)
	assert.ErrorIs(t, ErrCyclicHierarchy, ErrValidation)
	assert.NotErrorIs(t, ErrAccountClosed, ErrValidation)
	assert.NotErrorIs(t, ErrStaleVersion, ErrNotFound)
}

func TestUnbalancedError(t *testing.T) {
	err := error(&UnbalancedError{
		Currency:   "USD",
		Scale:      2,
		Debits:     decimal.RequireFromString("100"),
		Credits:    decimal.RequireFromString("90.00"),
		Difference: decimal.RequireFromString("10.00"),
	})

	assert.ErrorIs(t, err, ErrUnbalanced)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, KindStructural, KindOf(err))
	assert.Equal(t, "UNBALANCED", CodeOf(err))
	assert.Contains(t, err.Error(), "debits 100.00, credits 90.00, difference 10.00 USD")

	yen := &UnbalancedError{Currency: "JPY", Debits: decimal.NewFromInt(500), Credits: decimal.NewFromInt(450), Difference: decimal.NewFromInt(50)}
	assert.Contains(t, yen.Error(), "difference 50 JPY")

	var ue *UnbalancedError
	assert.True(t, errors.As(fmt.Errorf("post: %w", err), &ue))
	assert.Equal(t, "USD", ue.Currency)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: account 1", ErrStaleVersion)))
	assert.False(t, IsRetryable(ErrUnbalancedPeriod))
	assert.False(t, IsRetryable(errors.New("db down")))
}
