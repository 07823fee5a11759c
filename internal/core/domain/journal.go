package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft           EntryStatus = "DRAFT"
	EntryPendingApproval EntryStatus = "PENDING_APPROVAL"
	EntryPosted          EntryStatus = "POSTED"
	EntryReversed        EntryStatus = "REVERSED"
	EntryCancelled       EntryStatus = "CANCELLED"
)

// EntryType distinguishes ordinary entries from period-end corrections.
type EntryType string

const (
	StandardEntry  EntryType = "STANDARD"
	AdjustingEntry EntryType = "ADJUSTING"
	ReversingEntry EntryType = "REVERSING"
	ClosingEntry   EntryType = "CLOSING"
)

func (t EntryType) IsValid() bool {
	switch t {
	case StandardEntry, AdjustingEntry, ReversingEntry, ClosingEntry:
		return true
	}
	return false
}

// ManualSource marks entries keyed in by a person rather than a feeding system.
const ManualSource = "MANUAL"

// JournalLine is one debit or credit against an account.
type JournalLine struct {
	LineID    string `json:"lineID"`
	AccountID string `json:"accountID"`
	Amount    Money  `json:"amount"`
	Side      Side   `json:"side"`
	Memo      string `json:"memo,omitempty"`
}

// JournalEntry is an atomic set of lines. Values are immutable: transitions
// return a new JournalEntry with Version incremented.
type JournalEntry struct {
	EntryID          string        `json:"entryID"`
	ReferenceNumber  string        `json:"referenceNumber"`
	EntryDate        time.Time     `json:"entryDate"`
	EntryType        EntryType     `json:"entryType"`
	Description      string        `json:"description,omitempty"`
	Lines            []JournalLine `json:"lines"`
	Status           EntryStatus   `json:"status"`
	FiscalPeriodID   string        `json:"fiscalPeriodID,omitempty"`
	SourceSystem     string        `json:"sourceSystem"`
	RequiresApproval bool          `json:"requiresApproval"`
	SubmittedBy      string        `json:"submittedBy,omitempty"`
	PostedBy         string        `json:"postedBy,omitempty"`
	PostedAt         *time.Time    `json:"postedAt,omitempty"`
	ReversalOfID     string        `json:"reversalOfID,omitempty"`
	ReversedByID     string        `json:"reversedByID,omitempty"`
	ReversalReason   string        `json:"reversalReason,omitempty"`
	CancelledBy      string        `json:"cancelledBy,omitempty"`
	Version          int64         `json:"version"`
	AuditFields
}

// NewJournalEntryParams holds the header of a new entry.
type NewJournalEntryParams struct {
	EntryID          string
	ReferenceNumber  string
	EntryDate        time.Time
	EntryType        EntryType
	Description      string
	FiscalPeriodID   string
	SourceSystem     string
	RequiresApproval bool
	Actor            string
	Now              time.Time
}

// NewJournalEntry returns an empty Draft entry at version 1.
func NewJournalEntry(p NewJournalEntryParams) (JournalEntry, error) {
	if p.EntryID == "" || p.ReferenceNumber == "" {
		return JournalEntry{}, fmt.Errorf("%w: entry id and reference number are required", apperrors.ErrValidation)
	}
	if p.EntryDate.IsZero() {
		return JournalEntry{}, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if p.EntryType == "" {
		p.EntryType = StandardEntry
	}
	if !p.EntryType.IsValid() {
		return JournalEntry{}, fmt.Errorf("%w: entry type %q", apperrors.ErrValidation, p.EntryType)
	}
	if strings.TrimSpace(p.SourceSystem) == "" {
		p.SourceSystem = ManualSource
	}
	return JournalEntry{
		EntryID:          p.EntryID,
		ReferenceNumber:  p.ReferenceNumber,
		EntryDate:        DateOnly(p.EntryDate),
		EntryType:        p.EntryType,
		Description:      p.Description,
		Lines:            []JournalLine{},
		Status:           EntryDraft,
		FiscalPeriodID:   p.FiscalPeriodID,
		SourceSystem:     p.SourceSystem,
		RequiresApproval: p.RequiresApproval,
		Version:          1,
		AuditFields: AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.Actor,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.Actor,
		},
	}, nil
}

// clone copies e so the returned value does not share its line slice.
func (e JournalEntry) clone() JournalEntry {
	lines := make([]JournalLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	return e
}

func (e JournalEntry) touch(actor string, now time.Time) JournalEntry {
	e.Version++
	e.LastUpdatedAt = now
	e.LastUpdatedBy = actor
	return e
}

func (e JournalEntry) transitionError(to EntryStatus) error {
	return fmt.Errorf("%w: entry %s is %s, cannot become %s", apperrors.ErrIllegalEntryTransition, e.ReferenceNumber, e.Status, to)
}

func (e JournalEntry) requireDraft() error {
	if e.Status != EntryDraft {
		return fmt.Errorf("%w: entry %s is %s and can no longer be edited", apperrors.ErrIllegalEntryTransition, e.ReferenceNumber, e.Status)
	}
	return nil
}

// AddLine appends line after checking it against the referenced account.
func (e JournalEntry) AddLine(line JournalLine, account Account, actor string, now time.Time) (JournalEntry, error) {
	if err := e.requireDraft(); err != nil {
		return JournalEntry{}, err
	}
	if line.LineID == "" {
		return JournalEntry{}, fmt.Errorf("%w: line id is required", apperrors.ErrValidation)
	}
	if line.AccountID != account.AccountID {
		return JournalEntry{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, line.AccountID)
	}
	if err := account.CheckPostable(); err != nil {
		return JournalEntry{}, err
	}
	if !line.Side.IsValid() {
		return JournalEntry{}, fmt.Errorf("%w: side %q", apperrors.ErrValidation, line.Side)
	}
	if !line.Amount.IsPositive() {
		return JournalEntry{}, fmt.Errorf("%w: line amount %s must be positive", apperrors.ErrInvalidAmount, line.Amount)
	}
	if line.Amount.Currency() != account.CurrencyCode {
		return JournalEntry{}, fmt.Errorf("%w: line in %s, account %s is %s", apperrors.ErrCurrencyMismatch,
			line.Amount.Currency(), account.Code, account.CurrencyCode)
	}
	next := e.clone()
	next.Lines = append(next.Lines, line)
	return next.touch(actor, now), nil
}

// RemoveLine drops the line with lineID.
func (e JournalEntry) RemoveLine(lineID, actor string, now time.Time) (JournalEntry, error) {
	if err := e.requireDraft(); err != nil {
		return JournalEntry{}, err
	}
	next := e.clone()
	for i, l := range next.Lines {
		if l.LineID == lineID {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
			return next.touch(actor, now), nil
		}
	}
	return JournalEntry{}, fmt.Errorf("%w: line %s not in entry %s", apperrors.ErrNotFound, lineID, e.ReferenceNumber)
}

// UpdateHeader edits the descriptive fields of a Draft.
func (e JournalEntry) UpdateHeader(date time.Time, description string, entryType EntryType, actor string, now time.Time) (JournalEntry, error) {
	if err := e.requireDraft(); err != nil {
		return JournalEntry{}, err
	}
	if !date.IsZero() {
		e.EntryDate = DateOnly(date)
	}
	if entryType != "" {
		if !entryType.IsValid() {
			return JournalEntry{}, fmt.Errorf("%w: entry type %q", apperrors.ErrValidation, entryType)
		}
		e.EntryType = entryType
	}
	e.Description = description
	return e.clone().touch(actor, now), nil
}

// SideTotals are the debit and credit sums of one currency.
type SideTotals struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// CurrencyTotals sums lines per currency and side.
func (e JournalEntry) CurrencyTotals() map[string]SideTotals {
	totals := make(map[string]SideTotals)
	for _, l := range e.Lines {
		t := totals[l.Amount.Currency()]
		if l.Side == Debit {
			t.Debits = t.Debits.Add(l.Amount.Amount())
		} else {
			t.Credits = t.Credits.Add(l.Amount.Amount())
		}
		totals[l.Amount.Currency()] = t
	}
	return totals
}

// Totals sums every line regardless of currency.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	for _, t := range e.CurrencyTotals() {
		debits = debits.Add(t.Debits)
		credits = credits.Add(t.Credits)
	}
	return debits, credits
}

// Validate checks the structural rules every entry must meet before leaving Draft.
func (e JournalEntry) Validate() error {
	if len(e.Lines) == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEmptyEntry, e.ReferenceNumber)
	}
	hasDebit, hasCredit := false, false
	for _, l := range e.Lines {
		hasDebit = hasDebit || l.Side == Debit
		hasCredit = hasCredit || l.Side == Credit
	}
	if len(e.Lines) < 2 || !hasDebit || !hasCredit {
		return fmt.Errorf("%w: %s", apperrors.ErrSingleSidedEntry, e.ReferenceNumber)
	}

	totals := e.CurrencyTotals()
	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		t := totals[c]
		if !t.Debits.Equal(t.Credits) {
			return &apperrors.UnbalancedError{
				Currency:   c,
				Scale:      CurrencyScale(c),
				Debits:     t.Debits,
				Credits:    t.Credits,
				Difference: t.Debits.Sub(t.Credits),
			}
		}
	}
	return nil
}

// SubmitForApproval moves a Draft to PendingApproval. Entries that do not
// require approval are returned unchanged.
func (e JournalEntry) SubmitForApproval(actor string, now time.Time) (JournalEntry, error) {
	if e.Status != EntryDraft {
		return JournalEntry{}, e.transitionError(EntryPendingApproval)
	}
	if err := e.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if !e.RequiresApproval {
		return e, nil
	}
	next := e.clone()
	next.Status = EntryPendingApproval
	next.SubmittedBy = actor
	return next.touch(actor, now), nil
}

// Post marks the entry Posted in period. Balance effects are applied by PostEntry.
func (e JournalEntry) Post(period FiscalPeriod, actor string, now time.Time) (JournalEntry, error) {
	switch {
	case e.Status == EntryDraft && e.RequiresApproval:
		return JournalEntry{}, fmt.Errorf("%w: entry %s requires approval before posting", apperrors.ErrIllegalEntryTransition, e.ReferenceNumber)
	case e.Status != EntryDraft && e.Status != EntryPendingApproval:
		return JournalEntry{}, e.transitionError(EntryPosted)
	}
	if err := e.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if !period.Contains(e.EntryDate) {
		return JournalEntry{}, fmt.Errorf("%w: entry date %s is outside period %s", apperrors.ErrPostingNotAllowed,
			e.EntryDate.Format(time.DateOnly), period.Name)
	}
	if err := period.AllowsPosting(e.EntryType, e.SourceSystem); err != nil {
		return JournalEntry{}, err
	}

	next := e.clone()
	next.Status = EntryPosted
	next.FiscalPeriodID = period.PeriodID
	next.PostedBy = actor
	postedAt := now
	next.PostedAt = &postedAt
	return next.touch(actor, now), nil
}

// ReversalParams identifies the entry generated by Reverse.
type ReversalParams struct {
	ReversalID      string
	ReferenceNumber string
	EntryDate       time.Time
	FiscalPeriodID  string
	Reason          string
	NewLineID       func() string
	Actor           string
	Now             time.Time
}

// Reverse marks e Reversed and returns a Draft reversal whose lines mirror e
// with every side flipped. Posting the reversal is the caller's job.
func (e JournalEntry) Reverse(p ReversalParams) (JournalEntry, JournalEntry, error) {
	if e.Status != EntryPosted {
		return JournalEntry{}, JournalEntry{}, e.transitionError(EntryReversed)
	}
	if e.ReversalOfID != "" {
		return JournalEntry{}, JournalEntry{}, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrIllegalEntryTransition, e.ReferenceNumber)
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		return JournalEntry{}, JournalEntry{}, fmt.Errorf("%w: reversal reason is required", apperrors.ErrValidation)
	}

	reversal, err := NewJournalEntry(NewJournalEntryParams{
		EntryID:         p.ReversalID,
		ReferenceNumber: p.ReferenceNumber,
		EntryDate:       p.EntryDate,
		EntryType:       ReversingEntry,
		Description:     fmt.Sprintf("Reversal of %s: %s", e.ReferenceNumber, reason),
		FiscalPeriodID:  p.FiscalPeriodID,
		SourceSystem:    e.SourceSystem,
		Actor:           p.Actor,
		Now:             p.Now,
	})
	if err != nil {
		return JournalEntry{}, JournalEntry{}, err
	}
	reversal.ReversalOfID = e.EntryID
	reversal.Lines = make([]JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		reversal.Lines[i] = JournalLine{
			LineID:    p.NewLineID(),
			AccountID: l.AccountID,
			Amount:    l.Amount,
			Side:      l.Side.Opposite(),
			Memo:      l.Memo,
		}
	}

	original := e.clone()
	original.Status = EntryReversed
	original.ReversedByID = p.ReversalID
	original.ReversalReason = reason
	return original.touch(p.Actor, p.Now), reversal, nil
}

// Cancel abandons an entry that was never posted.
func (e JournalEntry) Cancel(actor string, now time.Time) (JournalEntry, error) {
	if e.Status != EntryDraft && e.Status != EntryPendingApproval {
		return JournalEntry{}, e.transitionError(EntryCancelled)
	}
	next := e.clone()
	next.Status = EntryCancelled
	next.CancelledBy = actor
	return next.touch(actor, now), nil
}

// IsPosted reports whether the entry's lines count towards balances.
func (e JournalEntry) IsPosted() bool {
	return e.Status == EntryPosted || e.Status == EntryReversed
}
