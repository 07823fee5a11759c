package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of a fiscal period.
type PeriodStatus string

const (
	PeriodFuture     PeriodStatus = "FUTURE"
	PeriodOpen       PeriodStatus = "OPEN"
	PeriodSoftClosed PeriodStatus = "SOFT_CLOSED"
	PeriodClosed     PeriodStatus = "CLOSED"
)

// PostingRestriction narrows which entries an open period accepts.
type PostingRestriction string

const (
	// AdjustmentOnly admits adjusting, reversing and closing entries.
	AdjustmentOnly PostingRestriction = "ADJUSTMENT_ONLY"
	// NoReversals blocks reversing entries.
	NoReversals PostingRestriction = "NO_REVERSALS"
	// SystemEntriesOnly blocks entries keyed in manually.
	SystemEntriesOnly PostingRestriction = "SYSTEM_ENTRIES_ONLY"
)

func (r PostingRestriction) IsValid() bool {
	switch r {
	case AdjustmentOnly, NoReversals, SystemEntriesOnly:
		return true
	}
	return false
}

// OpenTrigger records who asked for a period to open.
type OpenTrigger string

const (
	OpenManually  OpenTrigger = "MANUAL"
	OpenScheduled OpenTrigger = "SCHEDULED"
)

// FiscalPeriod is a window of days gating postings. StartDate and EndDate are
// inclusive UTC dates.
type FiscalPeriod struct {
	PeriodID     string               `json:"periodID"`
	FiscalYear   int                  `json:"fiscalYear"`
	PeriodNumber int                  `json:"periodNumber"`
	Name         string               `json:"name"`
	StartDate    time.Time            `json:"startDate"`
	EndDate      time.Time            `json:"endDate"`
	Status       PeriodStatus         `json:"status"`
	TotalDebits  decimal.Decimal      `json:"totalDebits"`
	TotalCredits decimal.Decimal      `json:"totalCredits"`
	Restrictions []PostingRestriction `json:"postingRestrictions"`
	OpenedBy     string               `json:"openedBy,omitempty"`
	OpenedAt     *time.Time           `json:"openedAt,omitempty"`
	ClosedBy     string               `json:"closedBy,omitempty"`
	ClosedAt     *time.Time           `json:"closedAt,omitempty"`
	CloseNotes   string               `json:"closeNotes,omitempty"`
	ReopenedBy   string               `json:"reopenedBy,omitempty"`
	ReopenedAt   *time.Time           `json:"reopenedAt,omitempty"`
	ReopenReason string               `json:"reopenReason,omitempty"`
	ReopenCount  int                  `json:"reopenCount"`
	Version      int64                `json:"version"`
	AuditFields
}

// NewFiscalPeriodParams describes one period.
type NewFiscalPeriodParams struct {
	PeriodID     string
	FiscalYear   int
	PeriodNumber int
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	Actor        string
	Now          time.Time
}

// NewFiscalPeriod returns a Future period at version 1.
func NewFiscalPeriod(p NewFiscalPeriodParams) (FiscalPeriod, error) {
	start, end := DateOnly(p.StartDate), DateOnly(p.EndDate)
	switch {
	case p.PeriodID == "":
		return FiscalPeriod{}, fmt.Errorf("%w: period id is required", apperrors.ErrValidation)
	case p.FiscalYear < 1:
		return FiscalPeriod{}, fmt.Errorf("%w: fiscal year %d", apperrors.ErrValidation, p.FiscalYear)
	case p.PeriodNumber < 1:
		return FiscalPeriod{}, fmt.Errorf("%w: period number %d", apperrors.ErrValidation, p.PeriodNumber)
	case p.StartDate.IsZero() || p.EndDate.IsZero() || end.Before(start):
		return FiscalPeriod{}, fmt.Errorf("%w: period must end on or after its start", apperrors.ErrValidation)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = fmt.Sprintf("FY%d-P%02d", p.FiscalYear, p.PeriodNumber)
	}
	return FiscalPeriod{
		PeriodID:     p.PeriodID,
		FiscalYear:   p.FiscalYear,
		PeriodNumber: p.PeriodNumber,
		Name:         name,
		StartDate:    start,
		EndDate:      end,
		Status:       PeriodFuture,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
		Restrictions: []PostingRestriction{},
		Version:      1,
		AuditFields: AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.Actor,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.Actor,
		},
	}, nil
}

// CreateMonthlyPeriods builds the twelve contiguous periods of a fiscal year
// starting on the first day of a month.
func CreateMonthlyPeriods(fiscalYear int, start time.Time, newID func() string, actor string, now time.Time) ([]FiscalPeriod, error) {
	start = DateOnly(start)
	if start.Day() != 1 {
		return nil, fmt.Errorf("%w: fiscal year must start on the first day of a month", apperrors.ErrValidation)
	}
	periods := make([]FiscalPeriod, 0, 12)
	for i := 0; i < 12; i++ {
		from := start.AddDate(0, i, 0)
		p, err := NewFiscalPeriod(NewFiscalPeriodParams{
			PeriodID:     newID(),
			FiscalYear:   fiscalYear,
			PeriodNumber: i + 1,
			Name:         fmt.Sprintf("FY%d-P%02d %s", fiscalYear, i+1, from.Format("Jan 2006")),
			StartDate:    from,
			EndDate:      from.AddDate(0, 1, -1),
			Actor:        actor,
			Now:          now,
		})
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// Contains reports whether date falls inside the period.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Overlaps reports whether the two periods share at least one day.
func (p FiscalPeriod) Overlaps(other FiscalPeriod) bool {
	return !p.EndDate.Before(other.StartDate) && !other.EndDate.Before(p.StartDate)
}

// HasRestriction reports whether r is in effect.
func (p FiscalPeriod) HasRestriction(r PostingRestriction) bool {
	for _, cur := range p.Restrictions {
		if cur == r {
			return true
		}
	}
	return false
}

func (p FiscalPeriod) clone() FiscalPeriod {
	r := make([]PostingRestriction, len(p.Restrictions))
	copy(r, p.Restrictions)
	p.Restrictions = r
	return p
}

func (p FiscalPeriod) touch(actor string, now time.Time) FiscalPeriod {
	p.Version++
	p.LastUpdatedAt = now
	p.LastUpdatedBy = actor
	return p
}

func (p FiscalPeriod) transitionError(to PeriodStatus) error {
	return fmt.Errorf("%w: period %s is %s, cannot become %s", apperrors.ErrIllegalPeriodTransition, p.Name, p.Status, to)
}

// AllowsPosting reports whether an entry of entryType from source may post here.
func (p FiscalPeriod) AllowsPosting(entryType EntryType, source string) error {
	if p.Status != PeriodOpen && p.Status != PeriodSoftClosed {
		return fmt.Errorf("%w: period %s is %s", apperrors.ErrPostingNotAllowed, p.Name, p.Status)
	}
	if p.HasRestriction(AdjustmentOnly) && entryType == StandardEntry {
		return fmt.Errorf("%w: period %s accepts adjustments only", apperrors.ErrPostingNotAllowed, p.Name)
	}
	if p.HasRestriction(NoReversals) && entryType == ReversingEntry {
		return fmt.Errorf("%w: period %s does not accept reversals", apperrors.ErrPostingNotAllowed, p.Name)
	}
	if p.HasRestriction(SystemEntriesOnly) && (source == "" || source == ManualSource) {
		return fmt.Errorf("%w: period %s accepts system entries only", apperrors.ErrPostingNotAllowed, p.Name)
	}
	return nil
}

// RecordPosting accumulates an entry's totals into the period.
func (p FiscalPeriod) RecordPosting(debitTotal, creditTotal decimal.Decimal, entryType EntryType, source, actor string, now time.Time) (FiscalPeriod, error) {
	if err := p.AllowsPosting(entryType, source); err != nil {
		return FiscalPeriod{}, err
	}
	next := p.clone()
	next.TotalDebits = next.TotalDebits.Add(debitTotal)
	next.TotalCredits = next.TotalCredits.Add(creditTotal)
	return next.touch(actor, now), nil
}

// Open makes a Future period accept postings. Scheduled opens compare today
// against the start date; now is the wall-clock time stamped on the period.
func (p FiscalPeriod) Open(actor string, today, now time.Time, trigger OpenTrigger) (FiscalPeriod, error) {
	if p.Status != PeriodFuture {
		return FiscalPeriod{}, p.transitionError(PeriodOpen)
	}
	if trigger == OpenScheduled && DateOnly(today).Before(p.StartDate) {
		return FiscalPeriod{}, fmt.Errorf("%w: %s starts %s", apperrors.ErrPeriodNotYetStarted, p.Name, p.StartDate.Format(time.DateOnly))
	}
	next := p.clone()
	next.Status = PeriodOpen
	next.OpenedBy = actor
	openedAt := now
	next.OpenedAt = &openedAt
	return next.touch(actor, now), nil
}

// SoftClose restricts an Open period to adjustments while books are closing.
func (p FiscalPeriod) SoftClose(actor string, now time.Time) (FiscalPeriod, error) {
	if p.Status != PeriodOpen {
		return FiscalPeriod{}, p.transitionError(PeriodSoftClosed)
	}
	next := p.clone()
	next.Status = PeriodSoftClosed
	if !next.HasRestriction(AdjustmentOnly) {
		next.Restrictions = append(next.Restrictions, AdjustmentOnly)
	}
	return next.touch(actor, now), nil
}

// Close locks the period. Debits and credits recorded in it must agree.
func (p FiscalPeriod) Close(actor, notes string, now time.Time) (FiscalPeriod, error) {
	if p.Status != PeriodOpen && p.Status != PeriodSoftClosed {
		return FiscalPeriod{}, p.transitionError(PeriodClosed)
	}
	if !p.TotalDebits.Equal(p.TotalCredits) {
		return FiscalPeriod{}, fmt.Errorf("%w: %s debits %s, credits %s", apperrors.ErrUnbalancedPeriod,
			p.Name, p.TotalDebits.String(), p.TotalCredits.String())
	}
	next := p.clone()
	next.Status = PeriodClosed
	next.ClosedBy = actor
	closedAt := now
	next.ClosedAt = &closedAt
	next.CloseNotes = notes
	return next.touch(actor, now), nil
}

// Reopen returns a Closed or SoftClosed period to Open. The reason is kept for audit.
func (p FiscalPeriod) Reopen(actor, reason string, now time.Time) (FiscalPeriod, error) {
	if p.Status != PeriodClosed && p.Status != PeriodSoftClosed {
		return FiscalPeriod{}, p.transitionError(PeriodOpen)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return FiscalPeriod{}, fmt.Errorf("%w: a reason is required to reopen %s", apperrors.ErrValidation, p.Name)
	}
	next := p.clone()
	next.Status = PeriodOpen
	next.Restrictions = []PostingRestriction{}
	next.ReopenedBy = actor
	reopenedAt := now
	next.ReopenedAt = &reopenedAt
	next.ReopenReason = reason
	next.ReopenCount++
	return next.touch(actor, now), nil
}

// SetRestrictions replaces the restriction set of a period that accepts postings.
func (p FiscalPeriod) SetRestrictions(restrictions []PostingRestriction, actor string, now time.Time) (FiscalPeriod, error) {
	if p.Status != PeriodOpen && p.Status != PeriodSoftClosed {
		return FiscalPeriod{}, fmt.Errorf("%w: restrictions apply to open periods only, %s is %s", apperrors.ErrIllegalPeriodTransition, p.Name, p.Status)
	}
	set := make(map[PostingRestriction]bool, len(restrictions))
	for _, r := range restrictions {
		if !r.IsValid() {
			return FiscalPeriod{}, fmt.Errorf("%w: posting restriction %q", apperrors.ErrValidation, r)
		}
		set[r] = true
	}
	if p.Status == PeriodSoftClosed && !set[AdjustmentOnly] {
		return FiscalPeriod{}, fmt.Errorf("%w: soft-closed period %s must keep %s", apperrors.ErrValidation, p.Name, AdjustmentOnly)
	}
	next := p.clone()
	next.Restrictions = make([]PostingRestriction, 0, len(set))
	for r := range set {
		next.Restrictions = append(next.Restrictions, r)
	}
	sort.Slice(next.Restrictions, func(i, j int) bool { return next.Restrictions[i] < next.Restrictions[j] })
	return next.touch(actor, now), nil
}

// IsBalanced reports whether the recorded debits equal the recorded credits.
func (p FiscalPeriod) IsBalanced() bool {
	return p.TotalDebits.Equal(p.TotalCredits)
}
