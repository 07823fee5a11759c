package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// journalEntryService provides the journal entry lifecycle, including the
// atomic posting of an entry against its accounts and fiscal period.
type journalEntryService struct {
	BaseService
	entryRepo portsrepo.JournalEntryRepositoryFacade
}

// NewJournalEntryService creates a new journal entry service.
func NewJournalEntryService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.JournalEntrySvcFacade {
	return &journalEntryService{
		BaseService: newBaseService(repos.TxManager, options...),
		entryRepo:   repos.JournalEntryRepo,
	}
}

// Ensure journalEntryService implements the portssvc.JournalEntrySvcFacade interface
var _ portssvc.JournalEntrySvcFacade = (*journalEntryService)(nil)

func (s *journalEntryService) GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry by ID", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	s.LogDebug(ctx, "Journal entry retrieved successfully",
		slog.String("entry_id", entryID),
		slog.Int("line_count", len(entry.Lines)))
	return entry, nil
}

// ListJournalEntries retrieves a page of entries, newest first.
func (s *journalEntryService) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	filter := portsrepo.JournalEntryFilter{
		Status:         domain.EntryStatus(params.Status),
		EntryType:      domain.EntryType(params.EntryType),
		FiscalPeriodID: params.FiscalPeriodID,
		AccountID:      params.AccountID,
		From:           params.From,
		To:             params.To,
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, fmt.Errorf("%w: 'from' date cannot be after 'to' date", apperrors.ErrValidation)
	}

	entries, nextToken, err := s.entryRepo.ListJournalEntries(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list journal entries from repository")
		}
		return nil, nil, fmt.Errorf("failed to retrieve journal entries: %w", err)
	}
	s.LogInfo(ctx, "Journal entries listed successfully", slog.Int("count", len(entries)))
	return entries, nextToken, nil
}

// newLine resolves the account of a line request and builds the line amount in
// the requested currency, defaulting to the account currency.
func newLine(ctx context.Context, uow portsrepo.UnitOfWork, req dto.JournalLineRequest) (domain.JournalLine, domain.Account, error) {
	account, err := uow.Accounts().FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return domain.JournalLine{}, domain.Account{}, err
	}
	currency := req.Currency
	if currency == "" {
		currency = account.CurrencyCode
	}
	amount, err := domain.NewMoney(req.Amount, currency)
	if err != nil {
		return domain.JournalLine{}, domain.Account{}, err
	}
	return domain.JournalLine{
		LineID:    newID(),
		AccountID: account.AccountID,
		Amount:    amount,
		Side:      req.Side,
		Memo:      req.Memo,
	}, *account, nil
}

// newDraft builds a draft from req. Nothing is saved.
func (s *journalEntryService) newDraft(ctx context.Context, uow portsrepo.UnitOfWork, req dto.CreateJournalEntryRequest, actor string) (domain.JournalEntry, error) {
	reference := req.ReferenceNumber
	if reference == "" {
		reference = newReference()
	}
	requiresApproval := s.policy.RequireApproval
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	}
	now := s.now()

	entry, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		EntryID:          newID(),
		ReferenceNumber:  reference,
		EntryDate:        req.EntryDate,
		EntryType:        req.EntryType,
		Description:      req.Description,
		SourceSystem:     req.SourceSystem,
		RequiresApproval: requiresApproval,
		Actor:            actor,
		Now:              now,
	})
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if period, err := uow.FiscalPeriods().FindFiscalPeriodByDate(ctx, entry.EntryDate); err == nil {
		entry.FiscalPeriodID = period.PeriodID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.JournalEntry{}, err
	}

	for _, lineReq := range req.Lines {
		line, account, err := newLine(ctx, uow, lineReq)
		if err != nil {
			return domain.JournalEntry{}, err
		}
		if entry, err = entry.AddLine(line, account, actor, now); err != nil {
			return domain.JournalEntry{}, err
		}
	}
	return entry, nil
}

// CreateJournalEntry creates a draft, adding any lines in the request.
func (s *journalEntryService) CreateJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	var created domain.JournalEntry
	err := s.withRetry(ctx, "CreateJournalEntry", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		entry, err := s.newDraft(ctx, uow, req, actor)
		if err != nil {
			return err
		}
		if err := uow.JournalEntries().SaveJournalEntry(ctx, entry, 0); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create journal entry", slog.String("reference", req.ReferenceNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created successfully",
		slog.String("entry_id", created.EntryID),
		slog.String("reference", created.ReferenceNumber))
	return &created, nil
}

// modify loads an entry, applies change and saves the result under the loaded version.
func (s *journalEntryService) modify(ctx context.Context, op, entryID string, change func(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error)) (*domain.JournalEntry, error) {
	var updated domain.JournalEntry
	err := s.withRetry(ctx, op, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		current, err := uow.JournalEntries().FindJournalEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		next, err := change(ctx, uow, *current)
		if err != nil {
			return err
		}
		if err := uow.JournalEntries().SaveJournalEntry(ctx, next, current.Version); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Journal entry update failed",
			slog.String("operation", op),
			slog.String("entry_id", entryID))
		return nil, err
	}
	s.LogInfo(ctx, "Journal entry updated",
		slog.String("operation", op),
		slog.String("entry_id", entryID),
		slog.String("status", string(updated.Status)))
	return &updated, nil
}

func (s *journalEntryService) UpdateJournalEntry(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	return s.modify(ctx, "UpdateJournalEntry", entryID, func(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error) {
		date, description, entryType := entry.EntryDate, entry.Description, entry.EntryType
		if req.EntryDate != nil {
			date = *req.EntryDate
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.EntryType != nil {
			entryType = *req.EntryType
		}
		next, err := entry.UpdateHeader(date, description, entryType, actor, s.now())
		if err != nil {
			return domain.JournalEntry{}, err
		}
		if !next.EntryDate.Equal(entry.EntryDate) {
			next.FiscalPeriodID = ""
			if period, err := uow.FiscalPeriods().FindFiscalPeriodByDate(ctx, next.EntryDate); err == nil {
				next.FiscalPeriodID = period.PeriodID
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return domain.JournalEntry{}, err
			}
		}
		return next, nil
	})
}

func (s *journalEntryService) AddJournalLine(ctx context.Context, entryID string, req dto.JournalLineRequest, actor string) (*domain.JournalEntry, error) {
	return s.modify(ctx, "AddJournalLine", entryID, func(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error) {
		line, account, err := newLine(ctx, uow, req)
		if err != nil {
			return domain.JournalEntry{}, err
		}
		return entry.AddLine(line, account, actor, s.now())
	})
}

func (s *journalEntryService) RemoveJournalLine(ctx context.Context, entryID string, lineID string, actor string) (*domain.JournalEntry, error) {
	return s.modify(ctx, "RemoveJournalLine", entryID, func(_ context.Context, _ portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error) {
		return entry.RemoveLine(lineID, actor, s.now())
	})
}

func (s *journalEntryService) SubmitJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return s.modify(ctx, "SubmitJournalEntry", entryID, func(_ context.Context, _ portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error) {
		return entry.SubmitForApproval(actor, s.now())
	})
}

func (s *journalEntryService) CancelJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	return s.modify(ctx, "CancelJournalEntry", entryID, func(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry) (domain.JournalEntry, error) {
		cancelled, err := entry.Cancel(actor, s.now())
		if err != nil {
			return domain.JournalEntry{}, err
		}
		return cancelled, uow.Outbox().Enqueue(ctx, domain.JournalEntryCancelled{EntryID: entry.EntryID, OccurredAt: s.now()})
	})
}

// lineAccountIDs returns the distinct accounts of entry in id order, the order
// in which they are locked.
func lineAccountIDs(entry domain.JournalEntry) []string {
	seen := make(map[string]bool, len(entry.Lines))
	ids := make([]string, 0, len(entry.Lines))
	for _, l := range entry.Lines {
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}
	sort.Strings(ids)
	return ids
}

// periodFor locks and returns the period containing date. A date outside
// every period cannot be posted.
func periodFor(ctx context.Context, uow portsrepo.UnitOfWork, date time.Time) (domain.FiscalPeriod, error) {
	period, err := uow.FiscalPeriods().FindFiscalPeriodByDateForUpdate(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.FiscalPeriod{}, fmt.Errorf("%w: no fiscal period contains %s", apperrors.ErrPostingNotAllowed, date.Format(time.DateOnly))
		}
		return domain.FiscalPeriod{}, err
	}
	return *period, nil
}

// post applies entry to its accounts and period and stages every changed
// aggregate with its events. expectedVersion is the stored version of entry, 0
// when entry has not been saved yet.
//
// Locks are taken entry first (by the caller), then period, then accounts in
// id order, so concurrent postings queue instead of deadlocking.
func (s *journalEntryService) post(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry, expectedVersion int64, actor string) (domain.JournalEntry, error) {
	now := s.now()
	period, err := periodFor(ctx, uow, entry.EntryDate)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	accounts, err := uow.Accounts().FindAccountsByIDsForUpdate(ctx, lineAccountIDs(entry))
	if err != nil {
		return domain.JournalEntry{}, fmt.Errorf("failed to lock accounts: %w", err)
	}

	result, err := domain.PostEntry(entry, period, accounts, actor, now)
	if err != nil {
		return domain.JournalEntry{}, err
	}

	if err := uow.JournalEntries().SaveJournalEntry(ctx, result.Entry, expectedVersion); err != nil {
		return domain.JournalEntry{}, err
	}
	for _, acc := range result.Accounts {
		if err := uow.Accounts().SaveAccount(ctx, acc, accounts[acc.AccountID].Version); err != nil {
			return domain.JournalEntry{}, err
		}
	}
	if err := uow.FiscalPeriods().SaveFiscalPeriod(ctx, result.Period, period.Version); err != nil {
		return domain.JournalEntry{}, err
	}

	events := make([]domain.DomainEvent, 0, len(result.Changes)+1)
	events = append(events, domain.JournalEntryPosted{
		EntryID:         result.Entry.EntryID,
		ReferenceNumber: result.Entry.ReferenceNumber,
		PeriodID:        result.Period.PeriodID,
		OccurredAt:      now,
	})
	for _, change := range result.Changes {
		events = append(events, domain.AccountBalanceChanged{
			AccountID:       change.AccountID,
			PreviousBalance: change.PreviousBalance,
			NewBalance:      change.NewBalance,
			CauseEntryID:    result.Entry.EntryID,
			OccurredAt:      now,
		})
	}
	if err := uow.Outbox().Enqueue(ctx, events...); err != nil {
		return domain.JournalEntry{}, err
	}
	return result.Entry, nil
}

// PostJournalEntry posts an entry. The entry, its accounts, its period and the
// resulting events commit together or not at all.
func (s *journalEntryService) PostJournalEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	var posted domain.JournalEntry
	err := s.withRetry(ctx, "PostJournalEntry", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		entry, err := uow.JournalEntries().FindJournalEntryByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		posted, err = s.post(ctx, uow, *entry, entry.Version, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post journal entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted successfully",
		slog.String("entry_id", posted.EntryID),
		slog.String("reference", posted.ReferenceNumber),
		slog.String("period_id", posted.FiscalPeriodID))
	return &posted, nil
}

// RecordJournalEntry creates and posts an entry in one unit of work. Entries
// that require approval are saved as PendingApproval instead.
func (s *journalEntryService) RecordJournalEntry(ctx context.Context, req dto.CreateJournalEntryRequest, actor string) (*domain.JournalEntry, error) {
	var recorded domain.JournalEntry
	err := s.withRetry(ctx, "RecordJournalEntry", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		entry, err := s.newDraft(ctx, uow, req, actor)
		if err != nil {
			return err
		}
		if entry.RequiresApproval {
			if entry, err = entry.SubmitForApproval(actor, s.now()); err != nil {
				return err
			}
			recorded = entry
			return uow.JournalEntries().SaveJournalEntry(ctx, entry, 0)
		}
		recorded, err = s.post(ctx, uow, entry, 0, actor)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record journal entry", slog.String("reference", req.ReferenceNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry recorded successfully",
		slog.String("entry_id", recorded.EntryID),
		slog.String("reference", recorded.ReferenceNumber),
		slog.String("status", string(recorded.Status)))
	return &recorded, nil
}

// ReverseJournalEntry marks a posted entry Reversed and posts its mirror image,
// dated today in the period containing today.
func (s *journalEntryService) ReverseJournalEntry(ctx context.Context, entryID string, req dto.ReverseJournalEntryRequest, actor string) (*domain.JournalEntry, *domain.JournalEntry, error) {
	var original, reversal domain.JournalEntry
	err := s.withRetry(ctx, "ReverseJournalEntry", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		entry, err := uow.JournalEntries().FindJournalEntryByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		today := s.today()
		period, err := periodFor(ctx, uow, today)
		if err != nil {
			return err
		}

		reversed, draft, err := entry.Reverse(domain.ReversalParams{
			ReversalID:      newID(),
			ReferenceNumber: newReference(),
			EntryDate:       today,
			FiscalPeriodID:  period.PeriodID,
			Reason:          req.Reason,
			NewLineID:       newID,
			Actor:           actor,
			Now:             s.now(),
		})
		if err != nil {
			return err
		}
		if err := uow.JournalEntries().SaveJournalEntry(ctx, reversed, entry.Version); err != nil {
			return err
		}
		posted, err := s.post(ctx, uow, draft, 0, actor)
		if err != nil {
			return err
		}
		original, reversal = reversed, posted
		return uow.Outbox().Enqueue(ctx, domain.JournalEntryReversed{
			EntryID:         reversed.EntryID,
			ReversalEntryID: posted.EntryID,
			Reason:          reversed.ReversalReason,
			OccurredAt:      s.now(),
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse journal entry", slog.String("entry_id", entryID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed successfully",
		slog.String("entry_id", original.EntryID),
		slog.String("reversal_id", reversal.EntryID))
	return &original, &reversal, nil
}
