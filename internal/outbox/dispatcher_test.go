package outbox_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) events(args mock.Arguments) ([]*outbox.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Event), args.Error(1)
}

func (m *MockRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return m.events(m.Called(ctx, limit))
}

func (m *MockRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	return m.Called(ctx, id, publishedAt).Error(0)
}

func (m *MockRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxAttempts int) error {
	return m.Called(ctx, id, errMsg, maxAttempts).Error(0)
}

func (m *MockRepository) MarkInvalid(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.Called(ctx, id, errMsg).Error(0)
}

func (m *MockRepository) ResetForRetry(ctx context.Context, limit int, failedBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	return m.events(m.Called(ctx, limit, failedBefore, maxAttempts))
}

func (m *MockRepository) ResetStuckProcessing(ctx context.Context, limit int, processingBefore time.Time, maxAttempts int) ([]*outbox.Event, error) {
	return m.events(m.Called(ctx, limit, processingBefore, maxAttempts))
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event *outbox.Event) error {
	return m.Called(ctx, event).Error(0)
}

type DispatcherTestSuite struct {
	suite.Suite
	repo       *MockRepository
	publisher  *MockPublisher
	dispatcher *outbox.Dispatcher
	now        time.Time
}

func (suite *DispatcherTestSuite) SetupTest() {
	suite.repo = new(MockRepository)
	suite.publisher = new(MockPublisher)
	suite.now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	d, err := outbox.NewDispatcher(suite.repo, suite.publisher, slog.New(slog.NewTextHandler(io.Discard, nil)),
		outbox.WithBatchSize(10),
		outbox.WithMaxDispatchAttempts(3),
		outbox.WithPublishBackoff(time.Millisecond, 2),
		outbox.WithClock(func() time.Time { return suite.now }),
	)
	suite.Require().NoError(err)
	suite.dispatcher = d
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (suite *DispatcherTestSuite) newEvent(eventType string) *outbox.Event {
	ev, err := outbox.NewEvent(eventType, "agg", []byte(`{}`), suite.now)
	suite.Require().NoError(err)
	ev.Status = outbox.StatusProcessingRaw
	return ev
}

func (suite *DispatcherTestSuite) TestDispatchOnce_PublishesInCollectOrder() {
	ctx := context.Background()
	stuck := suite.newEvent("stuck")
	failed := suite.newEvent("failed")
	pending := suite.newEvent("pending")

	suite.repo.On("ResetStuckProcessing", ctx, 10, mock.AnythingOfType("time.Time"), 3).Return([]*outbox.Event{stuck}, nil).Once()
	suite.repo.On("ResetForRetry", ctx, 9, mock.AnythingOfType("time.Time"), 3).Return([]*outbox.Event{failed}, nil).Once()
	suite.repo.On("ListPending", ctx, 8).Return([]*outbox.Event{pending, stuck}, nil).Once()

	var order []string
	suite.publisher.On("Publish", ctx, mock.AnythingOfType("*outbox.Event")).
		Run(func(args mock.Arguments) { order = append(order, args.Get(1).(*outbox.Event).EventType) }).
		Return(nil)
	suite.repo.On("MarkPublished", ctx, mock.AnythingOfType("uuid.UUID"), suite.now).Return(nil)

	res := suite.dispatcher.DispatchOnce(ctx)

	suite.Equal(outbox.DispatchResult{Processed: 3, Published: 3}, res)
	suite.Equal([]string{"stuck", "failed", "pending"}, order, "duplicates are dropped")
	suite.repo.AssertNumberOfCalls(suite.T(), "MarkPublished", 3)
}

func (suite *DispatcherTestSuite) TestDispatchOnce_FailedPublishIsRecorded() {
	ctx := context.Background()
	ev := suite.newEvent("ledger.journal_entry.posted")

	suite.repo.On("ResetStuckProcessing", ctx, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ResetForRetry", ctx, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ListPending", ctx, 10).Return([]*outbox.Event{ev}, nil)
	suite.publisher.On("Publish", ctx, ev).Return(errors.New("broker down"))
	suite.repo.On("MarkFailed", ctx, ev.ID, mock.AnythingOfType("string"), 3).Return(nil).Once()

	res := suite.dispatcher.DispatchOnce(ctx)

	suite.Equal(1, res.Failed)
	suite.Zero(res.Published)
	suite.publisher.AssertNumberOfCalls(suite.T(), "Publish", 2)
	suite.repo.AssertNotCalled(suite.T(), "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
	suite.repo.AssertExpectations(suite.T())
}

func (suite *DispatcherTestSuite) TestDispatchOnce_NonRetryableGoesInvalid() {
	ctx := context.Background()
	ev := suite.newEvent("ledger.unknown")

	suite.repo.On("ResetStuckProcessing", ctx, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ResetForRetry", ctx, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ListPending", ctx, 10).Return([]*outbox.Event{ev}, nil)
	suite.publisher.On("Publish", ctx, ev).Return(fmt.Errorf("%w: no route", outbox.ErrNonRetryablePublishErr)).Once()
	suite.repo.On("MarkInvalid", ctx, ev.ID, mock.AnythingOfType("string")).Return(nil).Once()

	res := suite.dispatcher.DispatchOnce(ctx)

	suite.Equal(1, res.Failed)
	suite.repo.AssertNotCalled(suite.T(), "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.publisher.AssertExpectations(suite.T())
	suite.repo.AssertExpectations(suite.T())
}

func (suite *DispatcherTestSuite) TestDispatchOnce_StateUpdateFailureCounted() {
	ctx := context.Background()
	ev := suite.newEvent("ledger.account.created")

	suite.repo.On("ResetStuckProcessing", ctx, 10, mock.Anything, 3).Return(nil, errors.New("db gone"))
	suite.repo.On("ResetForRetry", ctx, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ListPending", ctx, 10).Return([]*outbox.Event{ev}, nil)
	suite.publisher.On("Publish", ctx, ev).Return(nil)
	suite.repo.On("MarkPublished", ctx, ev.ID, suite.now).Return(errors.New("db gone"))

	res := suite.dispatcher.DispatchOnce(ctx)

	suite.Equal(outbox.DispatchResult{Processed: 1, Published: 1, StateUpdateFailed: 1}, res)
}

func (suite *DispatcherTestSuite) TestRun_StopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	suite.repo.On("ResetStuckProcessing", mock.Anything, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ResetForRetry", mock.Anything, 10, mock.Anything, 3).Return(nil, nil)
	suite.repo.On("ListPending", mock.Anything, 10).Return(nil, nil).Run(func(mock.Arguments) { cancel() })

	suite.NoError(suite.dispatcher.Run(ctx))
}

func (suite *DispatcherTestSuite) TestNewDispatcher_RequiresDependencies() {
	_, err := outbox.NewDispatcher(nil, suite.publisher, nil)
	suite.ErrorIs(err, outbox.ErrRepositoryRequired)
	_, err = outbox.NewDispatcher(suite.repo, nil, nil)
	suite.ErrorIs(err, outbox.ErrPublisherRequired)
}
