package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
// ParentAccountID is empty for top-level accounts and stored as NULL.
type Account struct {
	AccountID           string          `db:"account_id"`
	Code                string          `db:"code"`
	Name                string          `db:"name"`
	Description         string          `db:"description"`
	AccountType         string          `db:"account_type"`
	NormalBalance       string          `db:"normal_balance"`
	CurrencyCode        string          `db:"currency_code"`
	ParentAccountID     string          `db:"parent_account_id"` // Nullable
	IsControlAccount    bool            `db:"is_control_account"`
	AllowsDirectPosting bool            `db:"allows_direct_posting"`
	Status              string          `db:"status"`
	Balance             decimal.Decimal `db:"balance"` // Persisted running balance in the account currency
	Version             int64           `db:"version"`
	AuditFields
}
