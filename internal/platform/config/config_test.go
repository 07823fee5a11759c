package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, DraftCloseBlock, cfg.DraftClosePolicy)
	assert.Equal(t, PublisherLog, cfg.OutboxPublisher)
	assert.Equal(t, 20*time.Millisecond, cfg.RetryInitialInterval)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("LEDGER_DRAFT_CLOSE_POLICY", "cancel")
	t.Setenv("OUTBOX_PUBLISHER", "carrier-pigeon")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("OUTBOX_DISPATCH_INTERVAL", "soon")
	t.Setenv("LEDGER_REQUIRE_APPROVAL", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, DraftCloseCancel, cfg.DraftClosePolicy)
	assert.Equal(t, PublisherLog, cfg.OutboxPublisher)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.OutboxDispatchInterval)
	assert.True(t, cfg.RequireApproval)
}
