package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatement represents a profit and loss report for one currency
type IncomeStatement struct {
	Currency      string          `json:"currency"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"` // Total revenue minus total expenses
}

// BalanceSheet represents a balance sheet for one currency. CurrentEarnings is
// revenue less expenses not yet closed into equity.
type BalanceSheet struct {
	Currency         string          `json:"currency"`
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	CurrentEarnings  decimal.Decimal `json:"currentEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// IsBalanced reports whether assets equal liabilities plus equity.
func (b BalanceSheet) IsBalanced() bool {
	return b.TotalAssets.Equal(b.TotalLiabilities.Add(b.TotalEquity))
}

// netByAccount sums lines per account, signed by the normal side of the account's category.
// Contra accounts therefore show negative amounts within their section.
func netByAccount(accounts map[string]Account, lines []PostedLine, keep func(PostedLine) bool) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal)
	for _, l := range lines {
		if !keep(l) {
			continue
		}
		acc, ok := accounts[l.AccountID]
		if !ok {
			continue
		}
		normal := acc.AccountType.Category().NormalBalance()
		net[l.AccountID] = net[l.AccountID].Add(SignedAmount(l.Side, normal, l.Amount.Amount()))
	}
	return net
}

func indexAccounts(accounts []Account) map[string]Account {
	byID := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}
	return byID
}

func sortAmounts(amounts []AccountAmount) {
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].Code < amounts[j].Code })
}

func sumAmounts(amounts []AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.NetAmount)
	}
	return total
}

// BuildIncomeStatements reports revenue and expenses between from and to, one
// statement per currency in use.
func BuildIncomeStatements(accounts []Account, lines []PostedLine, from, to time.Time) []IncomeStatement {
	from, to = DateOnly(from), DateOnly(to)
	byID := indexAccounts(accounts)
	net := netByAccount(byID, lines, func(l PostedLine) bool {
		return !l.EntryDate.Before(from) && !l.EntryDate.After(to)
	})

	statements := make(map[string]*IncomeStatement)
	for id, amount := range net {
		acc := byID[id]
		cat := acc.AccountType.Category()
		if cat != Revenue && cat != Expense {
			continue
		}
		st, ok := statements[acc.CurrencyCode]
		if !ok {
			st = &IncomeStatement{Currency: acc.CurrencyCode, From: from, To: to, Revenue: []AccountAmount{}, Expenses: []AccountAmount{}}
			statements[acc.CurrencyCode] = st
		}
		row := AccountAmount{AccountID: id, Code: acc.Code, Name: acc.Name, AccountType: acc.AccountType, NetAmount: amount}
		if cat == Revenue {
			st.Revenue = append(st.Revenue, row)
		} else {
			st.Expenses = append(st.Expenses, row)
		}
	}

	out := make([]IncomeStatement, 0, len(statements))
	for _, st := range statements {
		sortAmounts(st.Revenue)
		sortAmounts(st.Expenses)
		st.TotalRevenue = sumAmounts(st.Revenue)
		st.TotalExpenses = sumAmounts(st.Expenses)
		st.NetIncome = st.TotalRevenue.Sub(st.TotalExpenses)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// BuildBalanceSheets reports positions as of asOf, one sheet per currency in use.
func BuildBalanceSheets(accounts []Account, lines []PostedLine, asOf time.Time) []BalanceSheet {
	asOf = DateOnly(asOf)
	byID := indexAccounts(accounts)
	net := netByAccount(byID, lines, func(l PostedLine) bool { return !l.EntryDate.After(asOf) })

	sheets := make(map[string]*BalanceSheet)
	sheetFor := func(currency string) *BalanceSheet {
		s, ok := sheets[currency]
		if !ok {
			s = &BalanceSheet{Currency: currency, AsOf: asOf, Assets: []AccountAmount{}, Liabilities: []AccountAmount{}, Equity: []AccountAmount{}}
			sheets[currency] = s
		}
		return s
	}
	for id, amount := range net {
		acc := byID[id]
		s := sheetFor(acc.CurrencyCode)
		row := AccountAmount{AccountID: id, Code: acc.Code, Name: acc.Name, AccountType: acc.AccountType, NetAmount: amount}
		switch acc.AccountType.Category() {
		case Asset:
			s.Assets = append(s.Assets, row)
		case Liability:
			s.Liabilities = append(s.Liabilities, row)
		case Equity:
			s.Equity = append(s.Equity, row)
		case Revenue:
			s.CurrentEarnings = s.CurrentEarnings.Add(amount)
		case Expense:
			s.CurrentEarnings = s.CurrentEarnings.Sub(amount)
		}
	}

	out := make([]BalanceSheet, 0, len(sheets))
	for _, s := range sheets {
		sortAmounts(s.Assets)
		sortAmounts(s.Liabilities)
		sortAmounts(s.Equity)
		s.TotalAssets = sumAmounts(s.Assets)
		s.TotalLiabilities = sumAmounts(s.Liabilities)
		s.TotalEquity = sumAmounts(s.Equity).Add(s.CurrentEarnings)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
