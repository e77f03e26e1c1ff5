package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/config"
)

// validConfig returns a Config that passes Validate() with every optional
// component enabled.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Database.Enabled = true
	cfg.Database.Username = "molsmarts"
	cfg.Database.Password = "secret"
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.MinIO.Enabled = true
	cfg.Search.Enabled = true
	cfg.Auth.Enabled = true
	cfg.Auth.BaseURL = "https://sso.example.org"
	cfg.Server.GRPC.Enabled = true
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_DefaultsOnlyIsValid(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port zero", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *config.Config) { c.Server.Port = 65536 }, "server.port"},
		{"server mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"body size", func(c *config.Config) { c.Server.MaxBodySize = -1 }, "server.max_body_size"},
		{"rate limit", func(c *config.Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.Burst = -1
		}, "server.rate_limit"},
		{"grpc port", func(c *config.Config) { c.Server.GRPC.Port = 70000 }, "server.grpc.port"},
		{"grpc port collision", func(c *config.Config) { c.Server.GRPC.Port = c.Server.Port }, "collides"},
		{"grpc health interval", func(c *config.Config) { c.Server.GRPC.HealthInterval = -time.Second }, "server.grpc.health_interval"},
		{"log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"batch size", func(c *config.Config) { c.Encoder.MaxBatchSize = -1 }, "encoder.max_batch_size"},
		{"batch concurrency", func(c *config.Config) { c.Encoder.BatchConcurrency = -1 }, "encoder.batch_concurrency"},
		{"job bytes", func(c *config.Config) { c.Encoder.MaxJobBytes = -1 }, "encoder.max_job_bytes"},
		{"l1 size", func(c *config.Config) { c.Cache.L1Size = -1 }, "cache.l1_size"},
		{"jitter", func(c *config.Config) { c.Cache.TTLJitter = 1 }, "cache.ttl_jitter"},
		{"database host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"database user", func(c *config.Config) { c.Database.Username = "" }, "database.username"},
		{"database name", func(c *config.Config) { c.Database.Database = "" }, "database.database"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"redis mode", func(c *config.Config) { c.Redis.Mode = "ring" }, "redis.mode"},
		{"redis sentinel", func(c *config.Config) { c.Redis.Mode = "sentinel" }, "sentinel"},
		{"redis cluster", func(c *config.Config) { c.Redis.Mode = "cluster" }, "redis.cluster_addrs"},
		{"kafka brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka group", func(c *config.Config) { c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"kafka offset", func(c *config.Config) { c.Kafka.AutoOffsetReset = "middle" }, "kafka.auto_offset_reset"},
		{"minio endpoint", func(c *config.Config) { c.MinIO.Endpoint = "" }, "minio.endpoint"},
		{"minio bucket", func(c *config.Config) { c.MinIO.Bucket = "" }, "minio.bucket"},
		{"search addresses", func(c *config.Config) { c.Search.Addresses = nil }, "search"},
		{"search refresh", func(c *config.Config) { c.Search.Refresh = "later" }, "refresh"},
		{"auth base url", func(c *config.Config) { c.Auth.BaseURL = "" }, "auth"},
		{"auth client", func(c *config.Config) { c.Auth.ClientID = "" }, "client_id"},
		{"worker concurrency", func(c *config.Config) { c.Worker.Concurrency = -2 }, "worker.concurrency"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_SkipsDisabledComponents(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Database.Enabled = false
	cfg.Database.Username = ""
	cfg.Redis.Enabled = false
	cfg.Redis.Addr = ""
	cfg.Kafka.Enabled = false
	cfg.Kafka.Brokers = nil
	cfg.MinIO.Enabled = false
	cfg.MinIO.Endpoint = ""
	cfg.Search.Enabled = false
	cfg.Search.Addresses = nil
	cfg.Auth.Enabled = false
	cfg.Auth.BaseURL = ""
	cfg.Server.GRPC.Enabled = false
	cfg.Server.GRPC.Port = 0
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	s := config.ServerConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", s.Addr())
}

func TestKafkaConfig_Conversions(t *testing.T) {
	t.Parallel()
	k := validConfig().Kafka
	k.Acks = "all"
	k.Compression = "snappy"
	k.MaxRetries = 5
	k.DeadLetter = true
	k.Security.SASLEnabled = true

	p := k.ProducerConfig()
	assert.Equal(t, k.Brokers, p.Brokers)
	assert.Equal(t, "all", p.Acks)
	assert.Equal(t, "snappy", p.CompressionCodec)
	assert.True(t, p.Security.SASLEnabled)

	c := k.ConsumerConfig("a", "b")
	assert.Equal(t, []string{"a", "b"}, c.Topics)
	assert.Equal(t, config.DefaultKafkaGroupID, c.GroupID)
	assert.Equal(t, "earliest", c.AutoOffsetReset)
	assert.Equal(t, 5, c.Retry.MaxRetries)
	assert.True(t, c.Retry.DeadLetter)
}

//Personal.AI order the ending
