package dto

import (
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code                string             `json:"code" binding:"required,account_code"`
	Name                string             `json:"name" binding:"required"`
	AccountType         domain.AccountType `json:"accountType" binding:"required,account_type"`
	CurrencyCode        string             `json:"currencyCode" binding:"required,len=3,uppercase"`
	ParentAccountID     *string            `json:"parentAccountID"` // Optional
	Description         string             `json:"description"`
	IsControlAccount    bool               `json:"isControlAccount"`
	AllowsDirectPosting bool               `json:"allowsDirectPosting"`
}

// ReparentAccountRequest moves an account under another parent. A nil parent detaches it.
type ReparentAccountRequest struct {
	ParentAccountID *string `json:"parentAccountID"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID           string             `json:"accountID"`
	Code                string             `json:"code"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	AccountType         domain.AccountType `json:"accountType"`
	Category            string             `json:"category"`
	NormalBalance       domain.Side        `json:"normalBalance"`
	CurrencyCode        string             `json:"currencyCode"`
	ParentAccountID     string             `json:"parentAccountID"` // Empty when top level
	IsControlAccount    bool               `json:"isControlAccount"`
	AllowsDirectPosting bool               `json:"allowsDirectPosting"`
	Status              string             `json:"status"`
	Balance             domain.Money       `json:"balance"`
	Version             int64              `json:"version"`
	CreatedAt           time.Time          `json:"createdAt"`
	CreatedBy           string             `json:"createdBy"`
	LastUpdatedAt       time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy       string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:           acc.AccountID,
		Code:                acc.Code,
		Name:                acc.Name,
		Description:         acc.Description,
		AccountType:         acc.AccountType,
		Category:            string(acc.AccountType.Category()),
		NormalBalance:       acc.NormalBalance,
		CurrencyCode:        acc.CurrencyCode,
		ParentAccountID:     acc.ParentAccountID,
		IsControlAccount:    acc.IsControlAccount,
		AllowsDirectPosting: acc.AllowsDirectPosting,
		Status:              string(acc.Status),
		Balance:             acc.Balance,
		Version:             acc.Version,
		CreatedAt:           acc.CreatedAt,
		CreatedBy:           acc.CreatedBy,
		LastUpdatedAt:       acc.LastUpdatedAt,
		LastUpdatedBy:       acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit           int    `form:"limit,default=20" binding:"min=1,max=500"`
	Offset          int    `form:"offset,default=0" binding:"min=0"`
	Category        string `form:"category" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	AccountType     string `form:"accountType"`
	Status          string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE CLOSED"`
	ParentAccountID string `form:"parentAccountID"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string       `json:"accountID"`
	AsOf      string       `json:"asOf"`
	Balance   domain.Money `json:"balance"`
}
