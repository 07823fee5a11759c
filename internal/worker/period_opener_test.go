package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) OpenDuePeriods(ctx context.Context, today time.Time) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, today)
	periods, _ := args.Get(0).([]domain.FiscalPeriod)
	return periods, args.Error(1)
}

var today = time.Date(2024, time.April, 1, 6, 0, 0, 0, time.UTC)

func newTestOpener(m *mockOpener) *PeriodOpener {
	w := NewPeriodOpener(m, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.now = func() time.Time { return today }
	return w
}

func TestPeriodOpener_RunOnce(t *testing.T) {
	m := new(mockOpener)
	m.On("OpenDuePeriods", mock.Anything, today).
		Return([]domain.FiscalPeriod{{PeriodID: "p4", Name: "FY2024-P04"}}, nil).Once()

	assert.Equal(t, 1, newTestOpener(m).RunOnce(context.Background()))
	m.AssertExpectations(t)
}

func TestPeriodOpener_RunOncePartialFailure(t *testing.T) {
	m := new(mockOpener)
	m.On("OpenDuePeriods", mock.Anything, today).
		Return([]domain.FiscalPeriod{{PeriodID: "p4"}}, errors.New("open FY2024-P05: stale version")).Once()

	assert.Equal(t, 1, newTestOpener(m).RunOnce(context.Background()))
	m.AssertExpectations(t)
}

func TestPeriodOpener_StartStopsOnCancel(t *testing.T) {
	m := new(mockOpener)
	ctx, cancel := context.WithCancel(context.Background())
	m.On("OpenDuePeriods", mock.Anything, today).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, nil).Once()

	done := make(chan struct{})
	go func() {
		newTestOpener(m).Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("period opener did not stop after cancellation")
	}
	m.AssertExpectations(t)
}
