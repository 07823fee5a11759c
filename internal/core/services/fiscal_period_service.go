package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// SchedulerActor is recorded as the actor of periods opened by OpenDuePeriods.
const SchedulerActor = "system:period-opener"

// fiscalPeriodService manages fiscal periods and their lifecycle.
type fiscalPeriodService struct {
	BaseService
	periodRepo portsrepo.FiscalPeriodRepositoryFacade
}

// NewFiscalPeriodService creates a new fiscal period service.
func NewFiscalPeriodService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.FiscalPeriodSvcFacade {
	return &fiscalPeriodService{
		BaseService: newBaseService(repos.TxManager, options...),
		periodRepo:  repos.FiscalPeriodRepo,
	}
}

// Ensure fiscalPeriodService implements the portssvc.FiscalPeriodSvcFacade interface
var _ portssvc.FiscalPeriodSvcFacade = (*fiscalPeriodService)(nil)

func (s *fiscalPeriodService) GetFiscalPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindFiscalPeriodByID(ctx, periodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find fiscal period by ID", slog.String("period_id", periodID))
		}
		return nil, err
	}
	return period, nil
}

func (s *fiscalPeriodService) ListFiscalPeriods(ctx context.Context, params dto.ListFiscalPeriodsParams) ([]domain.FiscalPeriod, error) {
	var (
		periods []domain.FiscalPeriod
		err     error
	)
	if params.Status != "" {
		status := domain.PeriodStatus(params.Status)
		periods, err = s.periodRepo.ListFiscalPeriodsByStatus(ctx, status)
		if err == nil && params.FiscalYear > 0 {
			filtered := periods[:0]
			for _, p := range periods {
				if p.FiscalYear == params.FiscalYear {
					filtered = append(filtered, p)
				}
			}
			periods = filtered
		}
	} else {
		periods, err = s.periodRepo.ListFiscalPeriods(ctx, params.FiscalYear)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to list fiscal periods from repository")
		return nil, fmt.Errorf("failed to retrieve fiscal periods: %w", err)
	}
	return periods, nil
}

// checkOverlap rejects candidates that share a day with a stored period or with each other.
func checkOverlap(ctx context.Context, uow portsrepo.UnitOfWork, candidates ...domain.FiscalPeriod) error {
	existing, err := uow.FiscalPeriods().ListFiscalPeriods(ctx, 0)
	if err != nil {
		return err
	}
	for i, c := range candidates {
		for _, p := range existing {
			if c.Overlaps(p) {
				return fmt.Errorf("%w: %s overlaps %s", apperrors.ErrOverlappingPeriod, c.Name, p.Name)
			}
		}
		for _, other := range candidates[:i] {
			if c.Overlaps(other) {
				return fmt.Errorf("%w: %s overlaps %s", apperrors.ErrOverlappingPeriod, c.Name, other.Name)
			}
		}
	}
	return nil
}

func (s *fiscalPeriodService) CreateFiscalPeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	var created domain.FiscalPeriod
	err := s.withRetry(ctx, "CreateFiscalPeriod", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		period, err := domain.NewFiscalPeriod(domain.NewFiscalPeriodParams{
			PeriodID:     newID(),
			FiscalYear:   req.FiscalYear,
			PeriodNumber: req.PeriodNumber,
			Name:         req.Name,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			Actor:        actor,
			Now:          s.now(),
		})
		if err != nil {
			return err
		}
		if err := checkOverlap(ctx, uow, period); err != nil {
			return err
		}
		if err := uow.FiscalPeriods().SaveFiscalPeriod(ctx, period, 0); err != nil {
			return err
		}
		created = period
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create fiscal period",
			slog.Int("fiscal_year", req.FiscalYear),
			slog.Int("period_number", req.PeriodNumber))
		return nil, err
	}
	s.LogInfo(ctx, "Fiscal period created successfully",
		slog.String("period_id", created.PeriodID),
		slog.String("name", created.Name))
	return &created, nil
}

// CreateMonthlyPeriods generates the twelve periods of a fiscal year in one unit of work.
func (s *fiscalPeriodService) CreateMonthlyPeriods(ctx context.Context, req dto.CreateFiscalYearRequest, actor string) ([]domain.FiscalPeriod, error) {
	var created []domain.FiscalPeriod
	err := s.withRetry(ctx, "CreateMonthlyPeriods", func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		existing, err := uow.FiscalPeriods().ListFiscalPeriods(ctx, req.FiscalYear)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: fiscal year %d already has %d periods", apperrors.ErrOverlappingPeriod, req.FiscalYear, len(existing))
		}
		periods, err := domain.CreateMonthlyPeriods(req.FiscalYear, req.StartDate, newID, actor, s.now())
		if err != nil {
			return err
		}
		if err := checkOverlap(ctx, uow, periods...); err != nil {
			return err
		}
		for _, p := range periods {
			if err := uow.FiscalPeriods().SaveFiscalPeriod(ctx, p, 0); err != nil {
				return err
			}
		}
		created = periods
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create fiscal year", slog.Int("fiscal_year", req.FiscalYear))
		return nil, err
	}
	s.LogInfo(ctx, "Fiscal year created successfully",
		slog.Int("fiscal_year", req.FiscalYear),
		slog.Int("period_count", len(created)))
	return created, nil
}

// statusChanged builds the event published for a lifecycle transition.
func statusChanged(eventType string, p domain.FiscalPeriod, actor, reason string, at time.Time) domain.FiscalPeriodStatusChanged {
	return domain.FiscalPeriodStatusChanged{
		Type:       eventType,
		PeriodID:   p.PeriodID,
		Status:     p.Status,
		Actor:      actor,
		Reason:     reason,
		OccurredAt: at,
	}
}

// transition loads a period, applies change and saves it with the events change returns.
func (s *fiscalPeriodService) transition(ctx context.Context, op, periodID string, change func(ctx context.Context, uow portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error)) (*domain.FiscalPeriod, error) {
	var updated domain.FiscalPeriod
	err := s.withRetry(ctx, op, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		current, err := uow.FiscalPeriods().FindFiscalPeriodByID(ctx, periodID)
		if err != nil {
			return err
		}
		next, events, err := change(ctx, uow, *current)
		if err != nil {
			return err
		}
		if err := uow.FiscalPeriods().SaveFiscalPeriod(ctx, next, current.Version); err != nil {
			return err
		}
		if err := uow.Outbox().Enqueue(ctx, events...); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Fiscal period transition failed",
			slog.String("operation", op),
			slog.String("period_id", periodID))
		return nil, err
	}
	s.LogInfo(ctx, "Fiscal period transitioned",
		slog.String("operation", op),
		slog.String("period_id", periodID),
		slog.String("status", string(updated.Status)))
	return &updated, nil
}

// OpenFiscalPeriod opens a Future period. Closed and SoftClosed periods are reopened instead,
// which requires a reason.
func (s *fiscalPeriodService) OpenFiscalPeriod(ctx context.Context, periodID string, req dto.OpenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, "OpenFiscalPeriod", periodID, func(_ context.Context, _ portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
		now := s.now()
		if p.Status == domain.PeriodClosed || p.Status == domain.PeriodSoftClosed {
			next, err := p.Reopen(actor, req.Reason, now)
			if err != nil {
				return domain.FiscalPeriod{}, nil, err
			}
			return next, []domain.DomainEvent{statusChanged(domain.EventFiscalPeriodReopened, next, actor, next.ReopenReason, now)}, nil
		}
		next, err := p.Open(actor, now, now, domain.OpenManually)
		if err != nil {
			return domain.FiscalPeriod{}, nil, err
		}
		return next, []domain.DomainEvent{statusChanged(domain.EventFiscalPeriodOpened, next, actor, "", now)}, nil
	})
}

func (s *fiscalPeriodService) SoftCloseFiscalPeriod(ctx context.Context, periodID string, actor string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, "SoftCloseFiscalPeriod", periodID, func(_ context.Context, _ portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
		now := s.now()
		next, err := p.SoftClose(actor, now)
		if err != nil {
			return domain.FiscalPeriod{}, nil, err
		}
		return next, []domain.DomainEvent{statusChanged(domain.EventFiscalPeriodSoftClosed, next, actor, "", now)}, nil
	})
}

// CloseFiscalPeriod locks a period. Unposted entries dated inside it either block the
// close or are cancelled with it, depending on the draft close policy.
func (s *fiscalPeriodService) CloseFiscalPeriod(ctx context.Context, periodID string, req dto.CloseFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, "CloseFiscalPeriod", periodID, func(ctx context.Context, uow portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
		now := s.now()
		next, err := p.Close(actor, req.Notes, now)
		if err != nil {
			return domain.FiscalPeriod{}, nil, err
		}

		drafts, err := uow.JournalEntries().ListJournalEntriesInRange(ctx, p.StartDate, p.EndDate,
			[]domain.EntryStatus{domain.EntryDraft, domain.EntryPendingApproval})
		if err != nil {
			return domain.FiscalPeriod{}, nil, err
		}
		events := make([]domain.DomainEvent, 0, len(drafts)+1)
		if len(drafts) > 0 {
			if s.policy.DraftClosePolicy != CancelDrafts {
				return domain.FiscalPeriod{}, nil, fmt.Errorf("%w: %s has %d unposted entries", apperrors.ErrPeriodHasDraftEntries, p.Name, len(drafts))
			}
			for _, d := range drafts {
				cancelled, err := d.Cancel(actor, now)
				if err != nil {
					return domain.FiscalPeriod{}, nil, err
				}
				if err := uow.JournalEntries().SaveJournalEntry(ctx, cancelled, d.Version); err != nil {
					return domain.FiscalPeriod{}, nil, err
				}
				events = append(events, domain.JournalEntryCancelled{EntryID: d.EntryID, OccurredAt: now})
			}
			s.LogInfo(ctx, "Cancelled unposted entries on period close",
				slog.String("period_id", p.PeriodID),
				slog.Int("count", len(drafts)))
		}
		events = append(events, statusChanged(domain.EventFiscalPeriodClosed, next, actor, req.Notes, now))
		return next, events, nil
	})
}

func (s *fiscalPeriodService) ReopenFiscalPeriod(ctx context.Context, periodID string, req dto.ReopenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, "ReopenFiscalPeriod", periodID, func(_ context.Context, _ portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
		now := s.now()
		next, err := p.Reopen(actor, req.Reason, now)
		if err != nil {
			return domain.FiscalPeriod{}, nil, err
		}
		return next, []domain.DomainEvent{statusChanged(domain.EventFiscalPeriodReopened, next, actor, next.ReopenReason, now)}, nil
	})
}

func (s *fiscalPeriodService) SetPeriodRestrictions(ctx context.Context, periodID string, req dto.SetPeriodRestrictionsRequest, actor string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, "SetPeriodRestrictions", periodID, func(_ context.Context, _ portsrepo.UnitOfWork, p domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
		next, err := p.SetRestrictions(req.Restrictions, actor, s.now())
		return next, nil, err
	})
}

// OpenDuePeriods opens every Future period whose start date is on or before today.
// Each period opens in its own unit of work so one failure does not hold back the rest.
func (s *fiscalPeriodService) OpenDuePeriods(ctx context.Context, today time.Time) ([]domain.FiscalPeriod, error) {
	future, err := s.periodRepo.ListFiscalPeriodsByStatus(ctx, domain.PeriodFuture)
	if err != nil {
		s.LogError(ctx, err, "Failed to list future fiscal periods")
		return nil, err
	}

	today = domain.DateOnly(today)
	var (
		opened []domain.FiscalPeriod
		errs   []error
	)
	for _, p := range future {
		if p.StartDate.After(today) {
			continue
		}
		next, err := s.transition(ctx, "OpenDuePeriods", p.PeriodID, func(_ context.Context, _ portsrepo.UnitOfWork, current domain.FiscalPeriod) (domain.FiscalPeriod, []domain.DomainEvent, error) {
			now := s.now()
			next, err := current.Open(SchedulerActor, today, now, domain.OpenScheduled)
			if err != nil {
				return domain.FiscalPeriod{}, nil, err
			}
			return next, []domain.DomainEvent{statusChanged(domain.EventFiscalPeriodOpened, next, SchedulerActor, "", now)}, nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("open %s: %w", p.Name, err))
			continue
		}
		opened = append(opened, *next)
	}

	if len(opened) > 0 {
		s.LogInfo(ctx, "Opened due fiscal periods", slog.Int("count", len(opened)))
	}
	return opened, errors.Join(errs...)
}
