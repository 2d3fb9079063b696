// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for all major
// components: HTTP server, snapshot persistence, the Kafka intake, and the
// Telegram session boundary.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents
// a major subsystem's configuration and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Snapshot    SnapshotConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	WorkerPool  WorkerPoolConfig
	Telegram    TelegramConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// SnapshotConfig controls where and how ledger snapshots are persisted
type SnapshotConfig struct {
	Driver           string        // "mongo", "postgres" or "memory"
	Key              string        // Name the snapshot is stored under
	SaveMaxAttempts  int           // Bounded retry for best-effort saves
	SaveRetryBackoff time.Duration // Initial backoff, doubled per attempt
	SaveTimeout      time.Duration // Per-attempt save deadline
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains the transaction-intake consumer configuration.
// An empty Brokers value disables the intake entirely.
type KafkaConfig struct {
	Brokers           string
	IntakeTopic       string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string // Topic for rejected intake drafts
}

// Enabled reports whether the Kafka intake should run
func (c *KafkaConfig) Enabled() bool {
	return c.Brokers != ""
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// TelegramConfig contains the Mini-App session boundary configuration
type TelegramConfig struct {
	BotToken      string        // Bot token the initData signature is verified against
	SessionSecret string        // HS256 signing secret for issued session tokens
	SessionTTL    time.Duration // Lifetime of issued session tokens
	RequireAuth   bool          // Require a session token on ledger routes
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Snapshot config
	switch c.Snapshot.Driver {
	case "mongo", "postgres", "memory":
	default:
		validationErrors = append(validationErrors, "SNAPSHOT_DRIVER must be one of mongo, postgres, memory")
	}
	if c.Snapshot.Key == "" {
		validationErrors = append(validationErrors, "SNAPSHOT_KEY must not be empty")
	}
	if c.Snapshot.SaveMaxAttempts <= 0 {
		validationErrors = append(validationErrors, "SNAPSHOT_SAVE_MAX_ATTEMPTS must be greater than 0")
	}
	if c.Snapshot.SaveRetryBackoff <= 0 {
		validationErrors = append(validationErrors, "SNAPSHOT_SAVE_RETRY_BACKOFF must be greater than 0")
	}
	if c.Snapshot.SaveTimeout <= 0 {
		validationErrors = append(validationErrors, "SNAPSHOT_SAVE_TIMEOUT must be greater than 0")
	}

	// Validate driver-specific persistence config
	if c.Snapshot.Driver == "postgres" && c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL must not be empty when SNAPSHOT_DRIVER is postgres")
	}
	if c.Snapshot.Driver == "mongo" {
		if c.MongoDB.URI == "" {
			validationErrors = append(validationErrors, "MONGO_URI must not be empty when SNAPSHOT_DRIVER is mongo")
		}
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE must not be empty when SNAPSHOT_DRIVER is mongo")
		}
	}

	// Validate Kafka config (only when the intake is enabled)
	if c.Kafka.Enabled() {
		if c.Kafka.IntakeTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_INTAKE_TOPIC must not be empty when KAFKA_BROKERS is set")
		}
		if c.Kafka.ConsumerGroup == "" {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP must not be empty when KAFKA_BROKERS is set")
		}
	}

	// Validate worker pool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Telegram config
	if c.Telegram.RequireAuth && c.Telegram.BotToken == "" {
		validationErrors = append(validationErrors, "TELEGRAM_BOT_TOKEN must not be empty when TELEGRAM_REQUIRE_AUTH is set")
	}
	if c.Telegram.BotToken != "" && c.Telegram.SessionSecret == "" {
		validationErrors = append(validationErrors, "TELEGRAM_SESSION_SECRET must not be empty when TELEGRAM_BOT_TOKEN is set")
	}
	if c.Telegram.SessionTTL <= 0 {
		validationErrors = append(validationErrors, "TELEGRAM_SESSION_TTL must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(validationErrors, "; "))
	}

	return nil
}
