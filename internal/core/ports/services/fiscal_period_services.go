package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
)

// FiscalPeriodReaderSvc defines read operations for fiscal periods
type FiscalPeriodReaderSvc interface {
	// GetFiscalPeriod retrieves a period by id.
	GetFiscalPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// ListFiscalPeriods lists periods ordered by start date.
	ListFiscalPeriods(ctx context.Context, params dto.ListFiscalPeriodsParams) ([]domain.FiscalPeriod, error)
}

// FiscalPeriodWriterSvc defines creation of fiscal periods
type FiscalPeriodWriterSvc interface {
	// CreateFiscalPeriod creates a single future period that must not overlap any other.
	CreateFiscalPeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error)

	// CreateMonthlyPeriods creates the twelve monthly periods of a fiscal year.
	CreateMonthlyPeriods(ctx context.Context, req dto.CreateFiscalYearRequest, actor string) ([]domain.FiscalPeriod, error)
}

// FiscalPeriodLifecycleSvc defines status transitions of a fiscal period
type FiscalPeriodLifecycleSvc interface {
	// OpenFiscalPeriod opens a future period, or reopens a closed one when a reason is given.
	OpenFiscalPeriod(ctx context.Context, periodID string, req dto.OpenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error)

	// SoftCloseFiscalPeriod restricts an open period to adjustments.
	SoftCloseFiscalPeriod(ctx context.Context, periodID string, actor string) (*domain.FiscalPeriod, error)

	// CloseFiscalPeriod closes a period, applying the configured policy to unposted entries.
	CloseFiscalPeriod(ctx context.Context, periodID string, req dto.CloseFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error)

	// ReopenFiscalPeriod reopens a closed or soft-closed period.
	ReopenFiscalPeriod(ctx context.Context, periodID string, req dto.ReopenFiscalPeriodRequest, actor string) (*domain.FiscalPeriod, error)

	// SetPeriodRestrictions replaces the posting restrictions of an open period.
	SetPeriodRestrictions(ctx context.Context, periodID string, req dto.SetPeriodRestrictionsRequest, actor string) (*domain.FiscalPeriod, error)

	// OpenDuePeriods opens every future period whose start date is on or before today.
	OpenDuePeriods(ctx context.Context, today time.Time) ([]domain.FiscalPeriod, error)
}

// FiscalPeriodSvcFacade combines all fiscal-period service interfaces
type FiscalPeriodSvcFacade interface {
	FiscalPeriodReaderSvc
	FiscalPeriodWriterSvc
	FiscalPeriodLifecycleSvc
}
