package mapping

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:           d.AccountID,
		Code:                d.Code,
		Name:                d.Name,
		Description:         d.Description,
		AccountType:         string(d.AccountType),
		NormalBalance:       string(d.NormalBalance),
		CurrencyCode:        d.CurrencyCode,
		ParentAccountID:     d.ParentAccountID,
		IsControlAccount:    d.IsControlAccount,
		AllowsDirectPosting: d.AllowsDirectPosting,
		Status:              string(d.Status),
		Balance:             d.Balance.Amount(),
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) (domain.Account, error) {
	balance, err := domain.NewMoney(m.Balance, m.CurrencyCode)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s balance: %w", m.AccountID, err)
	}
	return domain.Account{
		AccountID:           m.AccountID,
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		AccountType:         domain.AccountType(m.AccountType),
		NormalBalance:       domain.Side(m.NormalBalance),
		CurrencyCode:        m.CurrencyCode,
		ParentAccountID:     m.ParentAccountID,
		IsControlAccount:    m.IsControlAccount,
		AllowsDirectPosting: m.AllowsDirectPosting,
		Status:              domain.AccountStatus(m.Status),
		Balance:             balance,
		Version:             m.Version,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}, nil
}
