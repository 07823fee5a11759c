package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/outbox"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// NewPublisher builds the broker publisher selected by cfg.OutboxPublisher.
// The returned close function releases broker connections.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (outbox.Publisher, func() error, error) {
	switch cfg.OutboxPublisher {
	case config.PublisherRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("Redis publisher initialized", slog.String("addr", cfg.RedisAddr), slog.String("channel", cfg.RedisChannel))
		return NewRedisPublisher(rdb, cfg.RedisChannel, logger), rdb.Close, nil

	case config.PublisherKafka:
		if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
			return nil, nil, fmt.Errorf("kafka publisher needs brokers and a topic")
		}
		publisher := NewKafkaPublisher(NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger))
		logger.Info("Kafka publisher initialized", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
		return publisher, publisher.Close, nil

	case config.PublisherLog, "":
		return NewLogPublisher(logger), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown outbox publisher %q", cfg.OutboxPublisher)
	}
}
