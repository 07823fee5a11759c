package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	DraftCloseBlock  = "block"
	DraftCloseCancel = "cancel"

	PublisherLog   = "log"
	PublisherRedis = "redis"
	PublisherKafka = "kafka"
)

// Config holds application configuration.
type Config struct {
	Port               string
	IsProduction       bool
	LogLevel           string
	StoreDriver        string
	DatabaseURL        string
	EnableDBCheck      bool
	MigrationsPath     string
	JWTSecret          string
	JWTIssuer          string
	RateLimit          string
	CORSAllowedOrigins []string

	// Ledger policy
	RequireApproval      bool
	DraftClosePolicy     string
	MaxRetries           int
	RetryInitialInterval time.Duration
	PeriodOpenInterval   time.Duration

	// Outbox delivery
	OutboxPublisher        string
	OutboxDispatchInterval time.Duration
	OutboxBatchSize        int
	OutboxMaxAttempts      int
	RedisAddr              string
	RedisPassword          string
	RedisChannel           string
	KafkaBrokers           []string
	KafkaTopic             string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", StoreMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "ledger-core")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("LEDGER_REQUIRE_APPROVAL", false)
	viper.SetDefault("LEDGER_DRAFT_CLOSE_POLICY", DraftCloseBlock)
	viper.SetDefault("LEDGER_MAX_RETRIES", 3)
	viper.SetDefault("LEDGER_RETRY_INITIAL_INTERVAL", "20ms")
	viper.SetDefault("PERIOD_OPEN_INTERVAL", "1h")
	viper.SetDefault("OUTBOX_PUBLISHER", PublisherLog)
	viper.SetDefault("OUTBOX_DISPATCH_INTERVAL", "2s")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CHANNEL", "ledger-events")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_TOPIC", "ledger-events")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.LogLevel = strings.ToLower(viper.GetString("LOG_LEVEL"))
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.StoreDriver = strings.ToLower(viper.GetString("STORE_DRIVER"))
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StorePostgres {
		log.Printf("Warning: Invalid value for STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreMemory)
		cfg.StoreDriver = StoreMemory
	}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.RequireApproval = viper.GetBool("LEDGER_REQUIRE_APPROVAL")
	cfg.DraftClosePolicy = strings.ToLower(viper.GetString("LEDGER_DRAFT_CLOSE_POLICY"))
	if cfg.DraftClosePolicy != DraftCloseBlock && cfg.DraftClosePolicy != DraftCloseCancel {
		log.Printf("Warning: Invalid value for LEDGER_DRAFT_CLOSE_POLICY ('%s'). Defaulting to %s.\n", cfg.DraftClosePolicy, DraftCloseBlock)
		cfg.DraftClosePolicy = DraftCloseBlock
	}
	cfg.MaxRetries = viper.GetInt("LEDGER_MAX_RETRIES")
	cfg.RetryInitialInterval = durationOr("LEDGER_RETRY_INITIAL_INTERVAL", 20*time.Millisecond)
	cfg.PeriodOpenInterval = durationOr("PERIOD_OPEN_INTERVAL", time.Hour)

	cfg.OutboxPublisher = strings.ToLower(viper.GetString("OUTBOX_PUBLISHER"))
	switch cfg.OutboxPublisher {
	case PublisherLog, PublisherRedis, PublisherKafka:
	default:
		log.Printf("Warning: Invalid value for OUTBOX_PUBLISHER ('%s'). Defaulting to %s.\n", cfg.OutboxPublisher, PublisherLog)
		cfg.OutboxPublisher = PublisherLog
	}
	cfg.OutboxDispatchInterval = durationOr("OUTBOX_DISPATCH_INTERVAL", 2*time.Second)
	cfg.OutboxBatchSize = viper.GetInt("OUTBOX_BATCH_SIZE")
	cfg.OutboxMaxAttempts = viper.GetInt("OUTBOX_MAX_ATTEMPTS")
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisChannel = viper.GetString("REDIS_CHANNEL")
	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")

	return cfg, nil
}

// durationOr parses key as a duration (e.g. "60m", "1h"), falling back to def.
func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
