package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
	AccountClosed   AccountStatus = "CLOSED"
)

// Account is a chart-of-accounts node. Values are immutable: every transition
// returns a new Account with Version incremented.
type Account struct {
	AccountID           string        `json:"accountID"`
	Code                string        `json:"code"`
	Name                string        `json:"name"`
	Description         string        `json:"description,omitempty"`
	AccountType         AccountType   `json:"accountType"`
	NormalBalance       Side          `json:"normalBalance"`
	CurrencyCode        string        `json:"currencyCode"`
	ParentAccountID     string        `json:"parentAccountID,omitempty"`
	IsControlAccount    bool          `json:"isControlAccount"`
	AllowsDirectPosting bool          `json:"allowsDirectPosting"`
	Status              AccountStatus `json:"status"`
	Balance             Money         `json:"balance"`
	Version             int64         `json:"version"`
	AuditFields
}

// AccountLookup resolves another account of the same chart.
type AccountLookup func(accountID string) (Account, bool)

// NewAccountParams holds the inputs fixed at account creation.
type NewAccountParams struct {
	AccountID           string
	Code                string
	Name                string
	Description         string
	AccountType         AccountType
	CurrencyCode        string
	ParentAccountID     string
	IsControlAccount    bool
	AllowsDirectPosting bool
	Actor               string
	Now                 time.Time
}

var accountCodePattern = regexp.MustCompile(`^([0-9]{4})(-[0-9]{1,4})?$`)

// ValidateAccountCode checks the code format and that its base lies in the
// range reserved for the type's category.
func ValidateAccountCode(code string, accountType AccountType) error {
	if !accountType.IsValid() {
		return fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, accountType)
	}
	m := accountCodePattern.FindStringSubmatch(code)
	if m == nil {
		return fmt.Errorf("%w: %q must be four digits with an optional -suffix", apperrors.ErrInvalidAccountCode, code)
	}
	base, _ := strconv.Atoi(m[1])
	lo, hi := accountType.Category().CodeRange()
	if base < lo || base > hi {
		return fmt.Errorf("%w: %s is outside %d-%d reserved for %s", apperrors.ErrInvalidAccountCode, code, lo, hi, accountType.Category())
	}
	return nil
}

// NewAccount validates params and returns an Active account at version 1.
func NewAccount(p NewAccountParams, lookup AccountLookup) (Account, error) {
	if strings.TrimSpace(p.AccountID) == "" {
		return Account{}, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return Account{}, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if err := ValidateAccountCode(p.Code, p.AccountType); err != nil {
		return Account{}, err
	}
	if err := ValidateCurrencyCode(p.CurrencyCode); err != nil {
		return Account{}, err
	}

	acc := Account{
		AccountID:           p.AccountID,
		Code:                p.Code,
		Name:                strings.TrimSpace(p.Name),
		Description:         p.Description,
		AccountType:         p.AccountType,
		NormalBalance:       p.AccountType.NormalBalance(),
		CurrencyCode:        p.CurrencyCode,
		IsControlAccount:    p.IsControlAccount,
		AllowsDirectPosting: p.AllowsDirectPosting || !p.IsControlAccount,
		Status:              AccountActive,
		Balance:             Zero(p.CurrencyCode),
		Version:             1,
		AuditFields: AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.Actor,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.Actor,
		},
	}
	if p.AccountType.RequiresSubsidiary() {
		acc.IsControlAccount = true
		acc.AllowsDirectPosting = false
	}

	if p.ParentAccountID != "" {
		if err := acc.checkParent(p.ParentAccountID, lookup); err != nil {
			return Account{}, err
		}
		acc.ParentAccountID = p.ParentAccountID
	}
	return acc, nil
}

// checkParent validates that parentID can become the parent of a.
func (a Account) checkParent(parentID string, lookup AccountLookup) error {
	if parentID == a.AccountID {
		return fmt.Errorf("%w: account %s cannot be its own parent", apperrors.ErrCyclicHierarchy, a.Code)
	}
	if lookup == nil {
		return fmt.Errorf("%w: parent %s", apperrors.ErrUnknownAccount, parentID)
	}
	parent, ok := lookup(parentID)
	if !ok {
		return fmt.Errorf("%w: parent %s", apperrors.ErrUnknownAccount, parentID)
	}
	if parent.Status == AccountClosed {
		return fmt.Errorf("%w: parent %s is closed", apperrors.ErrInvalidParentAccount, parent.Code)
	}
	if parent.AccountType.Category() != a.AccountType.Category() {
		return fmt.Errorf("%w: parent %s is %s, child is %s", apperrors.ErrInvalidParentAccount,
			parent.Code, parent.AccountType.Category(), a.AccountType.Category())
	}

	// Walk the ancestors of the new parent; meeting a again means a cycle.
	seen := map[string]bool{parent.AccountID: true}
	for cur := parent; cur.ParentAccountID != ""; {
		if cur.ParentAccountID == a.AccountID {
			return fmt.Errorf("%w: %s is an ancestor of %s", apperrors.ErrCyclicHierarchy, a.Code, parent.Code)
		}
		if seen[cur.ParentAccountID] {
			return fmt.Errorf("%w: existing chain through %s loops", apperrors.ErrCyclicHierarchy, cur.Code)
		}
		seen[cur.ParentAccountID] = true
		next, ok := lookup(cur.ParentAccountID)
		if !ok {
			return fmt.Errorf("%w: ancestor %s", apperrors.ErrUnknownAccount, cur.ParentAccountID)
		}
		cur = next
	}
	return nil
}

func (a Account) touch(actor string, now time.Time) Account {
	a.Version++
	a.LastUpdatedAt = now
	a.LastUpdatedBy = actor
	return a
}

// Activate moves an Inactive account back to Active.
func (a Account) Activate(actor string, now time.Time) (Account, error) {
	if a.Status != AccountInactive {
		return Account{}, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalAccountTransition, a.Status, AccountActive)
	}
	a.Status = AccountActive
	return a.touch(actor, now), nil
}

// Deactivate moves an Active account to Inactive.
func (a Account) Deactivate(actor string, now time.Time) (Account, error) {
	if a.Status != AccountActive {
		return Account{}, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalAccountTransition, a.Status, AccountInactive)
	}
	a.Status = AccountInactive
	return a.touch(actor, now), nil
}

// Close retires the account. Closed is terminal and requires a zero balance.
func (a Account) Close(actor string, now time.Time) (Account, error) {
	if a.Status == AccountClosed {
		return Account{}, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalAccountTransition, a.Status, AccountClosed)
	}
	if !a.Balance.IsZero() {
		return Account{}, fmt.Errorf("%w: %s holds %s", apperrors.ErrAccountHasBalance, a.Code, a.Balance)
	}
	a.Status = AccountClosed
	return a.touch(actor, now), nil
}

// Reparent moves the account under newParentID, or to the root when it is empty.
func (a Account) Reparent(newParentID string, lookup AccountLookup, actor string, now time.Time) (Account, error) {
	if a.Status == AccountClosed {
		return Account{}, fmt.Errorf("%w: %s", apperrors.ErrAccountClosed, a.Code)
	}
	if newParentID != "" {
		if err := a.checkParent(newParentID, lookup); err != nil {
			return Account{}, err
		}
	}
	a.ParentAccountID = newParentID
	return a.touch(actor, now), nil
}

// CheckPostable reports whether lines may reference this account at all.
func (a Account) CheckPostable() error {
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: %s is closed", apperrors.ErrAccountNotPostable, a.Code)
	}
	if a.IsControlAccount && !a.AllowsDirectPosting {
		return fmt.Errorf("%w: %s is a control account", apperrors.ErrAccountNotPostable, a.Code)
	}
	return nil
}

// ApplyPosting returns the account with amount applied on side. A posting on
// the normal-balance side increases the balance.
func (a Account) ApplyPosting(amount Money, side Side, actor string, now time.Time) (Account, error) {
	switch a.Status {
	case AccountClosed:
		return Account{}, fmt.Errorf("%w: %s", apperrors.ErrAccountClosed, a.Code)
	case AccountInactive:
		return Account{}, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, a.Code)
	}
	if a.IsControlAccount && !a.AllowsDirectPosting {
		return Account{}, fmt.Errorf("%w: %s", apperrors.ErrDirectPostingNotAllowed, a.Code)
	}
	if !side.IsValid() {
		return Account{}, fmt.Errorf("%w: side %q", apperrors.ErrValidation, side)
	}
	if !amount.IsPositive() {
		return Account{}, fmt.Errorf("%w: posting amount %s must be positive", apperrors.ErrInvalidAmount, amount)
	}

	var (
		next Money
		err  error
	)
	if side == a.NormalBalance {
		next, err = a.Balance.Add(amount)
	} else {
		next, err = a.Balance.Subtract(amount)
	}
	if err != nil {
		return Account{}, fmt.Errorf("account %s: %w", a.Code, err)
	}
	a.Balance = next
	return a.touch(actor, now), nil
}
