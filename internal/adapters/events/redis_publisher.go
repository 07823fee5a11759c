package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is used when no channel is configured.
const DefaultRedisChannel = "ledger_events"

// redisPublisherClient is the part of the go-redis client the publisher needs.
type redisPublisherClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher fans events out over Redis pub/sub.
type RedisPublisher struct {
	rdb     redisPublisherClient
	channel string
	logger  *slog.Logger
}

var _ outbox.Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(rdb redisPublisherClient, channel string, logger *slog.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With(slog.String("publisher", "redis"), slog.String("channel", channel)),
	}
}

// Publish sends the event envelope to the channel. Pub/sub has no
// persistence, so an event with no subscribers is still considered delivered.
func (p *RedisPublisher) Publish(ctx context.Context, event *outbox.Event) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}

	receivers, err := p.rdb.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	if receivers == 0 {
		p.logger.DebugContext(ctx, "Event published without subscribers", slog.String("event_id", event.ID.String()))
	}
	return nil
}
