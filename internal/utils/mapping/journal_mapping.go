package mapping

import (
	"fmt"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its header row and line rows.
func ToModelJournalEntry(d domain.JournalEntry) (models.JournalEntry, []models.JournalLine) {
	entry := models.JournalEntry{
		EntryID:          d.EntryID,
		ReferenceNumber:  d.ReferenceNumber,
		EntryDate:        d.EntryDate,
		EntryType:        string(d.EntryType),
		Description:      d.Description,
		Status:           string(d.Status),
		FiscalPeriodID:   d.FiscalPeriodID,
		SourceSystem:     d.SourceSystem,
		RequiresApproval: d.RequiresApproval,
		SubmittedBy:      d.SubmittedBy,
		PostedBy:         d.PostedBy,
		PostedAt:         d.PostedAt,
		ReversalOfID:     d.ReversalOfID,
		ReversedByID:     d.ReversedByID,
		ReversalReason:   d.ReversalReason,
		CancelledBy:      d.CancelledBy,
		Version:          d.Version,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	lines := make([]models.JournalLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = models.JournalLine{
			LineID:       l.LineID,
			EntryID:      d.EntryID,
			LineNumber:   i + 1,
			AccountID:    l.AccountID,
			Amount:       l.Amount.Amount(),
			CurrencyCode: l.Amount.Currency(),
			Side:         string(l.Side),
			Memo:         l.Memo,
		}
	}
	return entry, lines
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) (domain.JournalLine, error) {
	amount, err := domain.NewMoney(m.Amount, m.CurrencyCode)
	if err != nil {
		return domain.JournalLine{}, fmt.Errorf("journal line %s amount: %w", m.LineID, err)
	}
	return domain.JournalLine{
		LineID:    m.LineID,
		AccountID: m.AccountID,
		Amount:    amount,
		Side:      domain.Side(m.Side),
		Memo:      m.Memo,
	}, nil
}

// ToDomainJournalEntry assembles a domain JournalEntry from its header and lines,
// which must already be in line number order.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) (domain.JournalEntry, error) {
	domainLines := make([]domain.JournalLine, 0, len(lines))
	for _, l := range lines {
		line, err := ToDomainJournalLine(l)
		if err != nil {
			return domain.JournalEntry{}, err
		}
		domainLines = append(domainLines, line)
	}
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		ReferenceNumber:  m.ReferenceNumber,
		EntryDate:        domain.DateOnly(m.EntryDate),
		EntryType:        domain.EntryType(m.EntryType),
		Description:      m.Description,
		Lines:            domainLines,
		Status:           domain.EntryStatus(m.Status),
		FiscalPeriodID:   m.FiscalPeriodID,
		SourceSystem:     m.SourceSystem,
		RequiresApproval: m.RequiresApproval,
		SubmittedBy:      m.SubmittedBy,
		PostedBy:         m.PostedBy,
		PostedAt:         m.PostedAt,
		ReversalOfID:     m.ReversalOfID,
		ReversedByID:     m.ReversedByID,
		ReversalReason:   m.ReversalReason,
		CancelledBy:      m.CancelledBy,
		Version:          m.Version,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}, nil
}
