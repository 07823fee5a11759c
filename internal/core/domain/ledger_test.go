package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	cash, sales, rent, capital, depreciation domain.Account
	lines                                     []domain.PostedLine
}

func postedLine(ref string, day int, acc domain.Account, side domain.Side, amount string) domain.PostedLine {
	return domain.PostedLine{
		EntryID:         ref,
		ReferenceNumber: ref,
		EntryDate:       time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		PostedAt:        time.Date(2024, time.March, day, 12, 0, 0, 0, time.UTC),
		EntryType:       domain.StandardEntry,
		AccountID:       acc.AccountID,
		Side:            side,
		Amount:          domain.MustMoney(amount, acc.CurrencyCode),
	}
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	f := ledgerFixture{
		cash:         newTestAccount(t, "cash", "1000", domain.Cash),
		depreciation: newTestAccount(t, "dep", "1510", domain.AccumulatedDepreciation),
		capital:      newTestAccount(t, "capital", "3000", domain.OwnersCapital),
		sales:        newTestAccount(t, "sales", "4000", domain.SalesRevenue),
		rent:         newTestAccount(t, "rent", "5000", domain.RentExpense),
	}
	f.lines = []domain.PostedLine{
		postedLine("JE-1", 1, f.cash, domain.Debit, "1000.00"),
		postedLine("JE-1", 1, f.capital, domain.Credit, "1000.00"),
		postedLine("JE-2", 5, f.cash, domain.Debit, "300.00"),
		postedLine("JE-2", 5, f.sales, domain.Credit, "300.00"),
		postedLine("JE-3", 10, f.rent, domain.Debit, "120.00"),
		postedLine("JE-3", 10, f.cash, domain.Credit, "120.00"),
		postedLine("JE-4", 20, f.rent, domain.Debit, "25.00"),
		postedLine("JE-4", 20, f.depreciation, domain.Credit, "25.00"),
	}
	return f
}

func (f ledgerFixture) accounts() []domain.Account {
	return []domain.Account{f.cash, f.sales, f.rent, f.capital, f.depreciation}
}

func TestAccountBalance(t *testing.T) {
	f := newLedgerFixture(t)

	assert.Equal(t, "1180.00 USD", domain.AccountBalance(f.cash, f.lines, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "1300.00 USD", domain.AccountBalance(f.cash, f.lines, time.Date(2024, time.March, 5, 18, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "300.00 USD", domain.AccountBalance(f.sales, f.lines, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)).String())
	assert.Equal(t, "25.00 USD", domain.AccountBalance(f.depreciation, f.lines, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)).String())
	assert.True(t, domain.AccountBalance(f.cash, f.lines, time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)).IsZero())
}

func TestBuildTrialBalance(t *testing.T) {
	f := newLedgerFixture(t)

	tb := domain.BuildTrialBalance(f.accounts(), f.lines, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC))
	require.Len(t, tb.Rows, 5)
	assert.Equal(t, "1000", tb.Rows[0].Code)
	assert.Equal(t, "1300", tb.Rows[0].DebitTotal.String())
	assert.Equal(t, "120", tb.Rows[0].CreditTotal.String())
	assert.Equal(t, "1180", tb.Rows[0].DebitBalance.String())
	assert.True(t, tb.Rows[0].CreditBalance.IsZero())

	require.Len(t, tb.Totals, 1)
	assert.Equal(t, "USD", tb.Totals[0].Currency)
	assert.Equal(t, "1445", tb.Totals[0].DebitTotal.String())
	assert.Equal(t, "1445", tb.Totals[0].CreditTotal.String())
	assert.True(t, tb.IsBalanced())

	early := domain.BuildTrialBalance(f.accounts(), f.lines, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
	assert.Len(t, early.Rows, 2, "only accounts with activity are listed")
	assert.True(t, early.IsBalanced())

	skewed := append([]domain.PostedLine{}, f.lines...)
	skewed = append(skewed, postedLine("JE-X", 3, f.cash, domain.Debit, "1.00"))
	assert.False(t, domain.BuildTrialBalance(f.accounts(), skewed, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)).IsBalanced())
}

func TestBuildGeneralLedger(t *testing.T) {
	f := newLedgerFixture(t)

	gl := domain.BuildGeneralLedger(f.cash, f.lines,
		time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "1000.00 USD", gl.OpeningBalance.String())
	require.Len(t, gl.Postings, 2)
	assert.Equal(t, "JE-2", gl.Postings[0].ReferenceNumber)
	assert.Equal(t, "1300.00 USD", gl.Postings[0].RunningBalance.String())
	assert.Equal(t, "1180.00 USD", gl.Postings[1].RunningBalance.String())
	assert.Equal(t, "300.00 USD", gl.TotalDebits.String())
	assert.Equal(t, "120.00 USD", gl.TotalCredits.String())
	assert.Equal(t, "1180.00 USD", gl.ClosingBalance.String())

	empty := domain.BuildGeneralLedger(f.sales, f.lines,
		time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, empty.Postings)
	assert.Equal(t, "300.00 USD", empty.OpeningBalance.String())
	assert.True(t, empty.OpeningBalance.Equal(empty.ClosingBalance))
}

func TestBuildIncomeStatementsAndBalanceSheets(t *testing.T) {
	f := newLedgerFixture(t)
	from := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	statements := domain.BuildIncomeStatements(f.accounts(), f.lines, from, to)
	require.Len(t, statements, 1)
	is := statements[0]
	assert.Equal(t, "300", is.TotalRevenue.String())
	assert.Equal(t, "145", is.TotalExpenses.String())
	assert.Equal(t, "155", is.NetIncome.String())

	sheets := domain.BuildBalanceSheets(f.accounts(), f.lines, to)
	require.Len(t, sheets, 1)
	bs := sheets[0]
	require.Len(t, bs.Assets, 2)
	assert.Equal(t, "-25", bs.Assets[1].NetAmount.String(), "contra asset reduces the section")
	assert.Equal(t, "1155", bs.TotalAssets.String())
	assert.Equal(t, "155", bs.CurrentEarnings.String())
	assert.Equal(t, "1155", bs.TotalEquity.String())
	assert.True(t, bs.IsBalanced())
}

func TestPostedLinesOf(t *testing.T) {
	cash := newTestAccount(t, "cash", "1000", domain.Cash)
	sales := newTestAccount(t, "sales", "4000", domain.SalesRevenue)
	e := addLine(t, addLine(t, newTestEntry(t, "e1", false), cash, "l1", "10.00", domain.Debit), sales, "l2", "10.00", domain.Credit)

	assert.Empty(t, domain.PostedLinesOf(e), "drafts do not affect balances")

	posted, err := e.Post(openMarch(t), "tester", testNow)
	require.NoError(t, err)
	lines := domain.PostedLinesOf(posted)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[1].LineNumber)
	assert.Equal(t, testNow, lines[0].PostedAt)
}
