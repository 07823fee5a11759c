package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PostedLine is a journal line of a Posted or Reversed entry, flattened for queries.
type PostedLine struct {
	EntryID         string    `json:"entryID"`
	ReferenceNumber string    `json:"referenceNumber"`
	EntryDate       time.Time `json:"entryDate"`
	PostedAt        time.Time `json:"postedAt"`
	EntryType       EntryType `json:"entryType"`
	Description     string    `json:"description,omitempty"`
	LineNumber      int       `json:"lineNumber"`
	LineID          string    `json:"lineID"`
	AccountID       string    `json:"accountID"`
	Side            Side      `json:"side"`
	Amount          Money     `json:"amount"`
	Memo            string    `json:"memo,omitempty"`
}

// PostedLinesOf flattens e; entries that never posted yield nothing.
func PostedLinesOf(e JournalEntry) []PostedLine {
	if !e.IsPosted() {
		return nil
	}
	var postedAt time.Time
	if e.PostedAt != nil {
		postedAt = *e.PostedAt
	}
	lines := make([]PostedLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = PostedLine{
			EntryID:         e.EntryID,
			ReferenceNumber: e.ReferenceNumber,
			EntryDate:       e.EntryDate,
			PostedAt:        postedAt,
			EntryType:       e.EntryType,
			Description:     e.Description,
			LineNumber:      i + 1,
			LineID:          l.LineID,
			AccountID:       l.AccountID,
			Side:            l.Side,
			Amount:          l.Amount,
			Memo:            l.Memo,
		}
	}
	return lines
}

// SortPostedLines orders lines by entry date, posting time, reference and line number.
func SortPostedLines(lines []PostedLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if !a.PostedAt.Equal(b.PostedAt) {
			return a.PostedAt.Before(b.PostedAt)
		}
		if a.ReferenceNumber != b.ReferenceNumber {
			return a.ReferenceNumber < b.ReferenceNumber
		}
		return a.LineNumber < b.LineNumber
	})
}

// SignedAmount is the line amount as it moves a balance whose normal side is normal.
func SignedAmount(side, normal Side, amount decimal.Decimal) decimal.Decimal {
	if side == normal {
		return amount
	}
	return amount.Neg()
}

// AccountBalance sums the lines of account dated on or before asOf, net of polarity.
func AccountBalance(account Account, lines []PostedLine, asOf time.Time) Money {
	cutoff := DateOnly(asOf)
	total := decimal.Zero
	for _, l := range lines {
		if l.AccountID != account.AccountID || l.EntryDate.After(cutoff) {
			continue
		}
		total = total.Add(SignedAmount(l.Side, account.NormalBalance, l.Amount.Amount()))
	}
	return Money{amount: total, currency: account.CurrencyCode}
}

// TrialBalanceRow holds gross and net activity of one account.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	Currency      string          `json:"currency"`
	DebitTotal    decimal.Decimal `json:"debitTotal"`
	CreditTotal   decimal.Decimal `json:"creditTotal"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalanceTotal sums the rows of one currency.
type TrialBalanceTotal struct {
	Currency      string          `json:"currency"`
	DebitTotal    decimal.Decimal `json:"debitTotal"`
	CreditTotal   decimal.Decimal `json:"creditTotal"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalance lists every account with activity up to AsOf.
type TrialBalance struct {
	AsOf   time.Time           `json:"asOf"`
	Rows   []TrialBalanceRow   `json:"rows"`
	Totals []TrialBalanceTotal `json:"totals"`
}

// IsBalanced reports whether debits equal credits in every currency.
func (tb TrialBalance) IsBalanced() bool {
	for _, t := range tb.Totals {
		if !t.DebitTotal.Equal(t.CreditTotal) || !t.DebitBalance.Equal(t.CreditBalance) {
			return false
		}
	}
	return true
}

// BuildTrialBalance derives the trial balance as of asOf.
func BuildTrialBalance(accounts []Account, lines []PostedLine, asOf time.Time) TrialBalance {
	cutoff := DateOnly(asOf)
	byID := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byID[a.AccountID] = a
	}

	rows := make(map[string]*TrialBalanceRow)
	for _, l := range lines {
		if l.EntryDate.After(cutoff) {
			continue
		}
		row, ok := rows[l.AccountID]
		if !ok {
			acc := byID[l.AccountID]
			row = &TrialBalanceRow{
				AccountID:   l.AccountID,
				Code:        acc.Code,
				AccountName: acc.Name,
				AccountType: acc.AccountType,
				Currency:    l.Amount.Currency(),
			}
			rows[l.AccountID] = row
		}
		if l.Side == Debit {
			row.DebitTotal = row.DebitTotal.Add(l.Amount.Amount())
		} else {
			row.CreditTotal = row.CreditTotal.Add(l.Amount.Amount())
		}
	}

	tb := TrialBalance{AsOf: cutoff, Rows: make([]TrialBalanceRow, 0, len(rows)), Totals: []TrialBalanceTotal{}}
	totals := make(map[string]*TrialBalanceTotal)
	for _, row := range rows {
		net := row.DebitTotal.Sub(row.CreditTotal)
		if net.IsPositive() {
			row.DebitBalance = net
		} else {
			row.CreditBalance = net.Neg()
		}
		t, ok := totals[row.Currency]
		if !ok {
			t = &TrialBalanceTotal{Currency: row.Currency}
			totals[row.Currency] = t
		}
		t.DebitTotal = t.DebitTotal.Add(row.DebitTotal)
		t.CreditTotal = t.CreditTotal.Add(row.CreditTotal)
		t.DebitBalance = t.DebitBalance.Add(row.DebitBalance)
		t.CreditBalance = t.CreditBalance.Add(row.CreditBalance)
		tb.Rows = append(tb.Rows, *row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool {
		if tb.Rows[i].Code != tb.Rows[j].Code {
			return tb.Rows[i].Code < tb.Rows[j].Code
		}
		return tb.Rows[i].AccountID < tb.Rows[j].AccountID
	})
	for _, t := range totals {
		tb.Totals = append(tb.Totals, *t)
	}
	sort.Slice(tb.Totals, func(i, j int) bool { return tb.Totals[i].Currency < tb.Totals[j].Currency })
	return tb
}

// LedgerPosting is one general-ledger line with the balance after it.
type LedgerPosting struct {
	EntryID         string    `json:"entryID"`
	ReferenceNumber string    `json:"referenceNumber"`
	EntryDate       time.Time `json:"entryDate"`
	EntryType       EntryType `json:"entryType"`
	Description     string    `json:"description,omitempty"`
	Memo            string    `json:"memo,omitempty"`
	Side            Side      `json:"side"`
	Amount          Money     `json:"amount"`
	RunningBalance  Money     `json:"runningBalance"`
}

// GeneralLedger is the activity of one account over a date range.
type GeneralLedger struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	AccountName    string          `json:"accountName"`
	NormalBalance  Side            `json:"normalBalance"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance Money           `json:"openingBalance"`
	Postings       []LedgerPosting `json:"postings"`
	TotalDebits    Money           `json:"totalDebits"`
	TotalCredits   Money           `json:"totalCredits"`
	ClosingBalance Money           `json:"closingBalance"`
}

// BuildGeneralLedger lists account's postings between from and to inclusive.
func BuildGeneralLedger(account Account, lines []PostedLine, from, to time.Time) GeneralLedger {
	from, to = DateOnly(from), DateOnly(to)
	own := make([]PostedLine, 0, len(lines))
	for _, l := range lines {
		if l.AccountID == account.AccountID && !l.EntryDate.After(to) {
			own = append(own, l)
		}
	}
	SortPostedLines(own)

	currency := account.CurrencyCode
	opening, debits, credits := decimal.Zero, decimal.Zero, decimal.Zero
	gl := GeneralLedger{
		AccountID:     account.AccountID,
		Code:          account.Code,
		AccountName:   account.Name,
		NormalBalance: account.NormalBalance,
		From:          from,
		To:            to,
		Postings:      []LedgerPosting{},
	}
	running := decimal.Zero
	for _, l := range own {
		delta := SignedAmount(l.Side, account.NormalBalance, l.Amount.Amount())
		if l.EntryDate.Before(from) {
			opening = opening.Add(delta)
			running = opening
			continue
		}
		running = running.Add(delta)
		if l.Side == Debit {
			debits = debits.Add(l.Amount.Amount())
		} else {
			credits = credits.Add(l.Amount.Amount())
		}
		gl.Postings = append(gl.Postings, LedgerPosting{
			EntryID:         l.EntryID,
			ReferenceNumber: l.ReferenceNumber,
			EntryDate:       l.EntryDate,
			EntryType:       l.EntryType,
			Description:     l.Description,
			Memo:            l.Memo,
			Side:            l.Side,
			Amount:          l.Amount,
			RunningBalance:  Money{amount: running, currency: currency},
		})
	}
	gl.OpeningBalance = Money{amount: opening, currency: currency}
	gl.ClosingBalance = Money{amount: running, currency: currency}
	gl.TotalDebits = Money{amount: debits, currency: currency}
	gl.TotalCredits = Money{amount: credits, currency: currency}
	return gl
}
