package mapping

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
)

// ToModelFiscalPeriod converts a domain FiscalPeriod to a model FiscalPeriod
func ToModelFiscalPeriod(d domain.FiscalPeriod) models.FiscalPeriod {
	restrictions := make([]string, len(d.Restrictions))
	for i, r := range d.Restrictions {
		restrictions[i] = string(r)
	}
	return models.FiscalPeriod{
		PeriodID:     d.PeriodID,
		FiscalYear:   d.FiscalYear,
		PeriodNumber: d.PeriodNumber,
		Name:         d.Name,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Status:       string(d.Status),
		TotalDebits:  d.TotalDebits,
		TotalCredits: d.TotalCredits,
		Restrictions: restrictions,
		OpenedBy:     d.OpenedBy,
		OpenedAt:     d.OpenedAt,
		ClosedBy:     d.ClosedBy,
		ClosedAt:     d.ClosedAt,
		CloseNotes:   d.CloseNotes,
		ReopenedBy:   d.ReopenedBy,
		ReopenedAt:   d.ReopenedAt,
		ReopenReason: d.ReopenReason,
		ReopenCount:  d.ReopenCount,
		Version:      d.Version,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalPeriod converts a model FiscalPeriod to a domain FiscalPeriod
func ToDomainFiscalPeriod(m models.FiscalPeriod) domain.FiscalPeriod {
	restrictions := make([]domain.PostingRestriction, len(m.Restrictions))
	for i, r := range m.Restrictions {
		restrictions[i] = domain.PostingRestriction(r)
	}
	return domain.FiscalPeriod{
		PeriodID:     m.PeriodID,
		FiscalYear:   m.FiscalYear,
		PeriodNumber: m.PeriodNumber,
		Name:         m.Name,
		StartDate:    domain.DateOnly(m.StartDate),
		EndDate:      domain.DateOnly(m.EndDate),
		Status:       domain.PeriodStatus(m.Status),
		TotalDebits:  m.TotalDebits,
		TotalCredits: m.TotalCredits,
		Restrictions: restrictions,
		OpenedBy:     m.OpenedBy,
		OpenedAt:     m.OpenedAt,
		ClosedBy:     m.ClosedBy,
		ClosedAt:     m.ClosedAt,
		CloseNotes:   m.CloseNotes,
		ReopenedBy:   m.ReopenedBy,
		ReopenedAt:   m.ReopenedAt,
		ReopenReason: m.ReopenReason,
		ReopenCount:  m.ReopenCount,
		Version:      m.Version,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
