package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// PolicyFromConfig maps the ledger settings of cfg onto a service Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	policy := Policy{
		RequireApproval:      cfg.RequireApproval,
		DraftClosePolicy:     BlockOnDrafts,
		MaxRetries:           cfg.MaxRetries,
		RetryInitialInterval: cfg.RetryInitialInterval,
	}
	if cfg.DraftClosePolicy == config.DraftCloseCancel {
		policy.DraftClosePolicy = CancelDrafts
	}
	return policy
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Extra options are applied after the configured policy.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	opts := append([]ServiceOption{WithPolicy(PolicyFromConfig(cfg))}, options...)

	return &portssvc.ServiceContainer{
		Account:      NewAccountService(repos, opts...),
		JournalEntry: NewJournalEntryService(repos, opts...),
		FiscalPeriod: NewFiscalPeriodService(repos, opts...),
		LedgerQuery:  NewLedgerQueryService(repos, opts...),
		Reporting:    NewReportingService(repos, opts...),
	}
}
