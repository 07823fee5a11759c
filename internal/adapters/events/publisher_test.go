package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestEvent(t *testing.T) *outbox.Event {
	t.Helper()
	ev, err := outbox.NewEvent("JournalEntryPosted", "entry-1", []byte(`{"entryID":"entry-1"}`), testNow)
	require.NoError(t, err)
	return ev
}

type mockRedis struct {
	mock.Mock
}

func (m *mockRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	args := m.Called(ctx, channel, message)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestEncode(t *testing.T) {
	ev := newTestEvent(t)
	ev.Attempts = 2

	body, err := encode(ev)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, ev.ID.String(), env.ID)
	assert.Equal(t, "JournalEntryPosted", env.EventType)
	assert.Equal(t, "entry-1", env.AggregateID)
	assert.Equal(t, 3, env.Attempt)
	assert.JSONEq(t, `{"entryID":"entry-1"}`, string(env.Payload))

	ev.Payload = []byte("not json")
	_, err = encode(ev)
	assert.ErrorIs(t, err, outbox.ErrNonRetryablePublishErr)
}

func TestRedisPublisher(t *testing.T) {
	ev := newTestEvent(t)
	rdb := new(mockRedis)
	rdb.On("Publish", mock.Anything, "ledger_events", mock.MatchedBy(func(msg interface{}) bool {
		b, ok := msg.([]byte)
		return ok && bytes.Contains(b, []byte(ev.ID.String()))
	})).Return(0, nil).Once()
	rdb.On("Publish", mock.Anything, "ledger_events", mock.Anything).Return(0, errors.New("connection refused")).Once()

	p := NewRedisPublisher(rdb, "", slog.Default())

	assert.NoError(t, p.Publish(context.Background(), ev))
	err := p.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.NotErrorIs(t, err, outbox.ErrNonRetryablePublishErr, "broker outages are retried")
	rdb.AssertExpectations(t)
}

func TestKafkaPublisher(t *testing.T) {
	ev := newTestEvent(t)
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == "entry-1" && len(msgs[0].Headers) == 2
	})).Return(nil).Once()
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(kafka.MessageTooLargeError{}).Once()
	w.On("Close").Return(nil).Once()

	p := NewKafkaPublisher(w)

	assert.NoError(t, p.Publish(context.Background(), ev))
	assert.ErrorIs(t, p.Publish(context.Background(), ev), outbox.ErrNonRetryablePublishErr)
	assert.NoError(t, p.Close())
	w.AssertExpectations(t)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, NewLogPublisher(logger).Publish(context.Background(), newTestEvent(t)))
	assert.Contains(t, buf.String(), `"event_type":"JournalEntryPosted"`)
	assert.Contains(t, buf.String(), `"publisher":"log"`)
}

func TestNewPublisher(t *testing.T) {
	p, closeFn, err := NewPublisher(context.Background(), &config.Config{OutboxPublisher: config.PublisherLog}, slog.Default())
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.NoError(t, closeFn())

	_, _, err = NewPublisher(context.Background(), &config.Config{OutboxPublisher: config.PublisherKafka}, slog.Default())
	assert.Error(t, err)

	_, _, err = NewPublisher(context.Background(), &config.Config{OutboxPublisher: "carrier-pigeon"}, slog.Default())
	assert.Error(t, err)
}
