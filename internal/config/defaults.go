package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost        = "0.0.0.0"
	DefaultServerPort        = 8080
	DefaultServerMode        = "release"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxBodySize       = 8 << 20
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultRequestsPerSecond = 50
	DefaultRateBurst         = 100
	DefaultGRPCPort          = 9090
	DefaultGRPCHealthCheck   = 15 * time.Second

	DefaultMaxBatchSize     = 1000
	DefaultBatchConcurrency = 8
	DefaultMaxJobBytes      = 64 << 20
	DefaultJobLockTTL       = 10 * time.Minute

	DefaultCacheL1Size    = 4096
	DefaultCacheTTL       = 24 * time.Hour
	DefaultCacheJitter    = 0.1
	DefaultCacheKeyPrefix = "molsmarts:"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "molsmarts"
	DefaultDBMaxConns = 25

	DefaultRedisAddr = "localhost:6379"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "molsmarts-worker"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "molsmarts"

	DefaultSearchAddress = "http://localhost:9200"
	DefaultSearchIndex   = "molsmarts-patterns"

	DefaultAuthRealm           = "molsmarts"
	DefaultAuthClientID        = "molsmarts-api"
	DefaultAuthRefreshInterval = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "molsmarts"

	DefaultWorkerConcurrency    = 4
	DefaultWorkerHandlerTimeout = 10 * time.Minute
	DefaultWorkerHealthPort     = 8081
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  Booleans cannot be
// told apart from "unset" and keep whatever was loaded.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	s := &cfg.Server
	if s.Host == "" {
		s.Host = DefaultServerHost
	}
	if s.Port == 0 {
		s.Port = DefaultServerPort
	}
	if s.Mode == "" {
		s.Mode = DefaultServerMode
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.MaxBodySize == 0 {
		s.MaxBodySize = DefaultMaxBodySize
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.RateLimit.RequestsPerSecond == 0 {
		s.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if s.RateLimit.Burst == 0 {
		s.RateLimit.Burst = DefaultRateBurst
	}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"*"}
	}
	if s.GRPC.Host == "" {
		s.GRPC.Host = s.Host
	}
	if s.GRPC.Port == 0 {
		s.GRPC.Port = DefaultGRPCPort
	}
	if s.GRPC.HealthInterval == 0 {
		s.GRPC.HealthInterval = DefaultGRPCHealthCheck
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Encoder ───────────────────────────────────────────────────────────────
	if cfg.Encoder.MaxBatchSize == 0 {
		cfg.Encoder.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Encoder.BatchConcurrency == 0 {
		cfg.Encoder.BatchConcurrency = DefaultBatchConcurrency
	}
	if cfg.Encoder.MaxJobBytes == 0 {
		cfg.Encoder.MaxJobBytes = DefaultMaxJobBytes
	}
	if cfg.Encoder.JobLockTTL == 0 {
		cfg.Encoder.JobLockTTL = DefaultJobLockTTL
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.L1Size == 0 {
		cfg.Cache.L1Size = DefaultCacheL1Size
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.TTLJitter == 0 {
		cfg.Cache.TTLJitter = DefaultCacheJitter
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = DefaultDBName
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.NumPartitions == 0 {
		cfg.Kafka.NumPartitions = 6
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Search ────────────────────────────────────────────────────────────────
	if len(cfg.Search.Addresses) == 0 {
		cfg.Search.Addresses = []string{DefaultSearchAddress}
	}
	if cfg.Search.Index == "" {
		cfg.Search.Index = DefaultSearchIndex
	}

	// ── Auth ──────────────────────────────────────────────────────────────────
	if cfg.Auth.Realm == "" {
		cfg.Auth.Realm = DefaultAuthRealm
	}
	if cfg.Auth.ClientID == "" {
		cfg.Auth.ClientID = DefaultAuthClientID
	}
	if cfg.Auth.JWKSRefreshInterval == 0 {
		cfg.Auth.JWKSRefreshInterval = DefaultAuthRefreshInterval
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.HandlerTimeout == 0 {
		cfg.Worker.HandlerTimeout = DefaultWorkerHandlerTimeout
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
	if cfg.Worker.ShutdownTimeout == 0 {
		cfg.Worker.ShutdownTimeout = DefaultShutdownTimeout
	}
}

//Personal.AI order the ending
