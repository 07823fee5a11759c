package domain

import "time"

// Event type names as published to consumers.
const (
	EventAccountCreated         = "ledger.account.created"
	EventAccountBalanceChanged  = "ledger.account.balance_changed"
	EventJournalEntryPosted     = "ledger.journal_entry.posted"
	EventJournalEntryReversed   = "ledger.journal_entry.reversed"
	EventJournalEntryCancelled  = "ledger.journal_entry.cancelled"
	EventFiscalPeriodOpened     = "ledger.fiscal_period.opened"
	EventFiscalPeriodSoftClosed = "ledger.fiscal_period.soft_closed"
	EventFiscalPeriodClosed     = "ledger.fiscal_period.closed"
	EventFiscalPeriodReopened   = "ledger.fiscal_period.reopened"
)

// DomainEvent is a fact produced by a committed state change.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

type AccountCreated struct {
	AccountID   string      `json:"accountID"`
	Code        string      `json:"code"`
	AccountType AccountType `json:"accountType"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

func (e AccountCreated) EventType() string   { return EventAccountCreated }
func (e AccountCreated) AggregateID() string { return e.AccountID }

type AccountBalanceChanged struct {
	AccountID       string    `json:"accountID"`
	PreviousBalance Money     `json:"previousBalance"`
	NewBalance      Money     `json:"newBalance"`
	CauseEntryID    string    `json:"causeEntryID"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (e AccountBalanceChanged) EventType() string   { return EventAccountBalanceChanged }
func (e AccountBalanceChanged) AggregateID() string { return e.AccountID }

type JournalEntryPosted struct {
	EntryID         string    `json:"entryID"`
	ReferenceNumber string    `json:"referenceNumber"`
	PeriodID        string    `json:"periodID"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (e JournalEntryPosted) EventType() string   { return EventJournalEntryPosted }
func (e JournalEntryPosted) AggregateID() string { return e.EntryID }

type JournalEntryReversed struct {
	EntryID         string    `json:"entryID"`
	ReversalEntryID string    `json:"reversalEntryID"`
	Reason          string    `json:"reason"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func (e JournalEntryReversed) EventType() string   { return EventJournalEntryReversed }
func (e JournalEntryReversed) AggregateID() string { return e.EntryID }

type JournalEntryCancelled struct {
	EntryID    string    `json:"entryID"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e JournalEntryCancelled) EventType() string   { return EventJournalEntryCancelled }
func (e JournalEntryCancelled) AggregateID() string { return e.EntryID }

// FiscalPeriodStatusChanged covers open, soft-close, close and reopen.
type FiscalPeriodStatusChanged struct {
	Type       string       `json:"-"`
	PeriodID   string       `json:"periodID"`
	Status     PeriodStatus `json:"status"`
	Actor      string       `json:"actor"`
	Reason     string       `json:"reason,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

func (e FiscalPeriodStatusChanged) EventType() string   { return e.Type }
func (e FiscalPeriodStatusChanged) AggregateID() string { return e.PeriodID }
