// Package config defines the configuration structures of the molsmarts
// service.  No I/O or parsing logic lives here, only plain data types,
// conversions to component configs and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/molsmarts/internal/infrastructure/auth/keycloak"
	"github.com/turtacn/molsmarts/internal/infrastructure/chemio/smarts"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/redis"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/search/opensearch"
	"github.com/turtacn/molsmarts/internal/infrastructure/storage/minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	Mode            string          `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration   `mapstructure:"request_timeout"`
	MaxBodySize     int64           `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	CORS            CORSConfig      `mapstructure:"cors"`
	GRPC            GRPCConfig      `mapstructure:"grpc"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// GRPCConfig configures the gRPC listener of the API server.  It carries the
// standard health service, and reflection when Debug is set.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`
	// HealthInterval is how often dependency checks refresh the served
	// status.
	HealthInterval time.Duration `mapstructure:"health_interval"`
}

// Addr returns host:port.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EncoderConfig holds encoder defaults and request limits.
type EncoderConfig struct {
	// Options are turned on for every request in addition to its own.
	Options          smarts.Options `mapstructure:"options"`
	MaxBatchSize     int            `mapstructure:"max_batch_size"`
	BatchConcurrency int            `mapstructure:"batch_concurrency"`
	MaxJobBytes      int64          `mapstructure:"max_job_bytes"`
	JobLockTTL       time.Duration  `mapstructure:"job_lock_ttl"`
}

// CacheConfig sizes the encoded result cache.  The shared level lives in
// redis when redis is enabled.
type CacheConfig struct {
	L1Size    int           `mapstructure:"l1_size"`
	TTL       time.Duration `mapstructure:"ttl"`
	TTLJitter float64       `mapstructure:"ttl_jitter"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer and consumer parameters.
type KafkaConfig struct {
	Enabled           bool                 `mapstructure:"enabled"`
	Brokers           []string             `mapstructure:"brokers"`
	GroupID           string               `mapstructure:"group_id"`
	AutoOffsetReset   string               `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	Acks              string               `mapstructure:"acks"`
	ProducerRetries   int                  `mapstructure:"producer_retries"`
	BatchSize         int                  `mapstructure:"batch_size"`
	BatchTimeout      time.Duration        `mapstructure:"batch_timeout"`
	Compression       string               `mapstructure:"compression"`
	MaxRetries        int                  `mapstructure:"max_retries"`
	RetryBackoff      time.Duration        `mapstructure:"retry_backoff"`
	MaxRetryBackoff   time.Duration        `mapstructure:"max_retry_backoff"`
	DeadLetter        bool                 `mapstructure:"dead_letter"`
	AutoCreateTopics  bool                 `mapstructure:"auto_create_topics"`
	NumPartitions     int                  `mapstructure:"num_partitions"`
	ReplicationFactor int                  `mapstructure:"replication_factor"`
	Security          kafka.SecurityConfig `mapstructure:"security"`
}

// ProducerConfig converts k for kafka.NewProducer.
func (k KafkaConfig) ProducerConfig() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:          k.Brokers,
		Acks:             k.Acks,
		MaxRetries:       k.ProducerRetries,
		BatchSize:        k.BatchSize,
		BatchTimeout:     k.BatchTimeout,
		CompressionCodec: k.Compression,
		Security:         k.Security,
	}
}

// ConsumerConfig converts k for kafka.NewConsumer.
func (k KafkaConfig) ConsumerConfig(topics ...string) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:         k.Brokers,
		GroupID:         k.GroupID,
		Topics:          topics,
		AutoOffsetReset: k.AutoOffsetReset,
		Security:        k.Security,
		Retry: kafka.RetryConfig{
			MaxRetries:      k.MaxRetries,
			RetryBackoff:    k.RetryBackoff,
			MaxRetryBackoff: k.MaxRetryBackoff,
			DeadLetter:      k.DeadLetter,
		},
	}
}

// MetricsConfig controls the Prometheus registry.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Path                 string `mapstructure:"path"`
	Namespace            string `mapstructure:"namespace"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// WorkerConfig holds job worker parameters.
type WorkerConfig struct {
	// Concurrency is the number of consumers in the group run by one process.
	Concurrency     int           `mapstructure:"concurrency"`
	HandlerTimeout  time.Duration `mapstructure:"handler_timeout"`
	HealthPort      int           `mapstructure:"health_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and the application service read their settings from the relevant section.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Encoder  EncoderConfig     `mapstructure:"encoder"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Database postgres.Config   `mapstructure:"database"`
	Redis    redis.Config      `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    minio.Config      `mapstructure:"minio"`
	Search   opensearch.Config `mapstructure:"search"`
	Auth     keycloak.Config   `mapstructure:"auth"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Worker   WorkerConfig      `mapstructure:"worker"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.  Sections of disabled components are skipped.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 1 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 1, got %d", c.Server.MaxBodySize)
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RequestsPerSecond <= 0 || c.Server.RateLimit.Burst < 1) {
		return fmt.Errorf("config: server.rate_limit needs a positive rate and burst")
	}
	if g := c.Server.GRPC; g.Enabled {
		if g.Port < 1 || g.Port > 65535 {
			return fmt.Errorf("config: server.grpc.port %d is out of range [1, 65535]", g.Port)
		}
		if g.Port == c.Server.Port {
			return fmt.Errorf("config: server.grpc.port %d collides with server.port", g.Port)
		}
		if g.HealthInterval <= 0 {
			return fmt.Errorf("config: server.grpc.health_interval must be positive")
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Encoder
	if c.Encoder.MaxBatchSize < 1 {
		return fmt.Errorf("config: encoder.max_batch_size must be ≥ 1, got %d", c.Encoder.MaxBatchSize)
	}
	if c.Encoder.BatchConcurrency < 1 {
		return fmt.Errorf("config: encoder.batch_concurrency must be ≥ 1, got %d", c.Encoder.BatchConcurrency)
	}
	if c.Encoder.MaxJobBytes < 1 {
		return fmt.Errorf("config: encoder.max_job_bytes must be ≥ 1, got %d", c.Encoder.MaxJobBytes)
	}

	// Cache
	if c.Cache.L1Size < 1 {
		return fmt.Errorf("config: cache.l1_size must be ≥ 1, got %d", c.Cache.L1Size)
	}
	if c.Cache.TTLJitter < 0 || c.Cache.TTLJitter >= 1 {
		return fmt.Errorf("config: cache.ttl_jitter must be in [0, 1), got %g", c.Cache.TTLJitter)
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.Username == "" {
			return fmt.Errorf("config: database.username is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("config: database.database is required")
		}
	}

	// Redis
	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case "", "standalone":
			if c.Redis.Addr == "" {
				return fmt.Errorf("config: redis.addr is required")
			}
		case "sentinel":
			if c.Redis.MasterName == "" || len(c.Redis.SentinelAddrs) == 0 {
				return fmt.Errorf("config: redis sentinel mode needs master_name and sentinel_addrs")
			}
		case "cluster":
			if len(c.Redis.ClusterAddrs) == 0 {
				return fmt.Errorf("config: redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
		switch c.Kafka.AutoOffsetReset {
		case "earliest", "latest":
		default:
			return fmt.Errorf("config: kafka.auto_offset_reset %q is invalid; expected earliest|latest", c.Kafka.AutoOffsetReset)
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
	}

	// Search
	if c.Search.Enabled {
		if err := opensearch.ValidateConfig(c.Search); err != nil {
			return fmt.Errorf("config: search: %w", err)
		}
	}

	// Auth
	if c.Auth.Enabled {
		if c.Auth.BaseURL == "" || c.Auth.Realm == "" || c.Auth.ClientID == "" {
			return fmt.Errorf("config: auth needs base_url, realm and client_id")
		}
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	return nil
}

//Personal.AI order the ending
