package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// DuePeriodOpener is the part of the fiscal period service the worker drives.
type DuePeriodOpener interface {
	OpenDuePeriods(ctx context.Context, today time.Time) ([]domain.FiscalPeriod, error)
}

// PeriodOpener moves Future fiscal periods to Open once their start date arrives.
type PeriodOpener struct {
	periods  DuePeriodOpener
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewPeriodOpener(periods DuePeriodOpener, interval time.Duration, logger *slog.Logger) *PeriodOpener {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PeriodOpener{
		periods:  periods,
		interval: interval,
		logger:   logger.With(slog.String("worker", "period_opener")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start runs one pass immediately, then one per interval until ctx is done.
func (w *PeriodOpener) Start(ctx context.Context) {
	w.logger.Info("Starting period opener", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			w.logger.Info("Context cancelled, stopping period opener")
			return
		}
	}
}

// RunOnce opens every due period and reports how many were opened.
func (w *PeriodOpener) RunOnce(ctx context.Context) int {
	opened, err := w.periods.OpenDuePeriods(ctx, w.now())
	for _, p := range opened {
		w.logger.InfoContext(ctx, "Fiscal period opened",
			slog.String("period_id", p.PeriodID),
			slog.String("name", p.Name))
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to open due fiscal periods", slog.String("error", err.Error()))
	}
	return len(opened)
}
