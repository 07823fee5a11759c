package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Generic sentinels shared by adapters and handlers.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("resource already exists")
)

// Kind classifies a failure so callers can branch without string matching.
type Kind string

const (
	KindStructural  Kind = "STRUCTURAL"
	KindState       Kind = "STATE"
	KindConcurrency Kind = "CONCURRENCY"
	KindNotFound    Kind = "NOT_FOUND"
	KindValidation  Kind = "VALIDATION"
	KindConflict    Kind = "CONFLICT"
	KindInternal    Kind = "INTERNAL"
)

// LedgerError is a typed ledger failure. Instances are sentinels; context is
// added by wrapping with fmt.Errorf("%w: ...").
type LedgerError struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

// Is lets typed errors also match the generic sentinels used by handlers.
func (e *LedgerError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindStructural, KindValidation:
		return target == ErrValidation
	case KindConflict:
		return target == ErrDuplicate
	}
	return false
}

func newLedgerError(code string, kind Kind, msg string) *LedgerError {
	return &LedgerError{Code: code, Kind: kind, Message: msg}
}

// Structural violations are rejected before any persistence attempt.
var (
	ErrUnbalanced           = newLedgerError("UNBALANCED", KindStructural, "journal entry is unbalanced")
	ErrEmptyEntry           = newLedgerError("EMPTY_ENTRY", KindStructural, "journal entry has no lines")
	ErrSingleSidedEntry     = newLedgerError("SINGLE_SIDED_ENTRY", KindStructural, "journal entry needs at least one debit and one credit line")
	ErrCurrencyMismatch     = newLedgerError("CURRENCY_MISMATCH", KindStructural, "currency mismatch")
	ErrInvalidAccountCode   = newLedgerError("INVALID_ACCOUNT_CODE", KindStructural, "invalid account code")
	ErrCyclicHierarchy      = newLedgerError("CYCLIC_HIERARCHY", KindStructural, "account hierarchy would contain a cycle")
	ErrInvalidParentAccount = newLedgerError("INVALID_PARENT_ACCOUNT", KindStructural, "invalid parent account")
	ErrExcessPrecision      = newLedgerError("EXCESS_PRECISION", KindStructural, "amount exceeds currency precision")
	ErrDivisionByZero       = newLedgerError("DIVISION_BY_ZERO", KindStructural, "division by zero")
	ErrInvalidAmount        = newLedgerError("INVALID_AMOUNT", KindStructural, "invalid amount")
)

// State and lifecycle violations.
var (
	ErrIllegalAccountTransition = newLedgerError("ILLEGAL_ACCOUNT_TRANSITION", KindState, "illegal account status transition")
	ErrIllegalEntryTransition   = newLedgerError("ILLEGAL_ENTRY_TRANSITION", KindState, "illegal journal entry status transition")
	ErrIllegalPeriodTransition  = newLedgerError("ILLEGAL_PERIOD_TRANSITION", KindState, "illegal fiscal period status transition")
	ErrAccountClosed            = newLedgerError("ACCOUNT_CLOSED", KindState, "account is closed")
	ErrAccountInactive          = newLedgerError("ACCOUNT_INACTIVE", KindState, "account is inactive")
	ErrAccountHasBalance        = newLedgerError("ACCOUNT_HAS_BALANCE", KindState, "account balance is not zero")
	ErrDirectPostingNotAllowed  = newLedgerError("DIRECT_POSTING_NOT_ALLOWED", KindState, "account does not accept direct postings")
	ErrAccountNotPostable       = newLedgerError("ACCOUNT_NOT_POSTABLE", KindState, "account cannot receive postings")
	ErrPostingNotAllowed        = newLedgerError("POSTING_NOT_ALLOWED", KindState, "fiscal period does not allow this posting")
	ErrPeriodNotYetStarted      = newLedgerError("PERIOD_NOT_YET_STARTED", KindState, "fiscal period has not started")
	ErrUnbalancedPeriod         = newLedgerError("UNBALANCED_PERIOD", KindState, "fiscal period debits and credits differ")
	ErrOverlappingPeriod        = newLedgerError("OVERLAPPING_PERIOD", KindState, "fiscal period overlaps an existing period")
	ErrPeriodHasDraftEntries    = newLedgerError("PERIOD_HAS_DRAFT_ENTRIES", KindState, "fiscal period still has unposted entries")
)

// Concurrency violations. The only class retried automatically.
var (
	ErrStaleVersion = newLedgerError("STALE_VERSION", KindConcurrency, "aggregate was modified concurrently")
)

// Not-found failures.
var (
	ErrUnknownAccount      = newLedgerError("UNKNOWN_ACCOUNT", KindNotFound, "account not found")
	ErrUnknownJournalEntry = newLedgerError("UNKNOWN_JOURNAL_ENTRY", KindNotFound, "journal entry not found")
	ErrUnknownFiscalPeriod = newLedgerError("UNKNOWN_FISCAL_PERIOD", KindNotFound, "fiscal period not found")
)

// UnbalancedError carries the per-currency difference of an unbalanced entry.
// Scale is the currency's minor-unit count; amounts are printed at that scale.
type UnbalancedError struct {
	Currency   string
	Scale      int32
	Debits     decimal.Decimal
	Credits    decimal.Decimal
	Difference decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%s: %s debits %s, credits %s, difference %s %s",
		ErrUnbalanced.Message, e.Currency,
		e.Debits.StringFixed(e.Scale), e.Credits.StringFixed(e.Scale), e.Difference.StringFixed(e.Scale), e.Currency)
}

func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}

// KindOf returns the classification of err, INTERNAL when it is not a known failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicate):
		return KindConflict
	}
	return KindInternal
}

// CodeOf returns the stable code of a typed failure, or "" for untyped errors.
func CodeOf(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// IsRetryable reports whether re-reading and retrying may succeed.
func IsRetryable(err error) bool {
	return KindOf(err) == KindConcurrency
}
