// Package bootstrap builds the infrastructure shared by the molsmarts
// binaries from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/auth/keycloak"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/redis"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molsmarts/internal/infrastructure/search/opensearch"
	"github.com/turtacn/molsmarts/internal/infrastructure/storage/minio"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
)

const topicSetupTimeout = 30 * time.Second

// Infrastructure holds the clients of every enabled backing service.  A
// disabled service leaves its field nil and the encoding service falls back
// to in-memory storage for it.
type Infrastructure struct {
	Config *config.Config
	Logger logging.Logger

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.EncoderMetrics

	DB       *postgres.Connection
	Redis    *redis.Client
	MinIO    *minio.MinIOClient
	Objects  minio.ObjectStore
	Producer *kafka.Producer
	Search   *opensearch.Client
	Index    *opensearch.PatternIndex
	Verifier *keycloak.Verifier
}

// New connects to the services enabled in cfg.  Anything opened before a
// failure is closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{Config: cfg, Logger: logger}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		infra.Collector = collector
		infra.Metrics = prometheus.NewEncoderMetrics(collector)
	}

	if err := infra.initPostgres(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := infra.initRedis(); err != nil {
		infra.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if err := infra.initMinIO(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("minio: %w", err)
	}
	if err := infra.initKafka(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("kafka: %w", err)
	}
	if err := infra.initSearch(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("opensearch: %w", err)
	}
	if err := infra.initAuth(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("keycloak: %w", err)
	}

	logger.Info("infrastructure initialized",
		logging.Bool("postgres", infra.DB != nil),
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("kafka", infra.Producer != nil),
		logging.Bool("opensearch", infra.Search != nil),
		logging.Bool("auth", infra.Verifier != nil),
	)
	return infra, nil
}

func (i *Infrastructure) initPostgres(ctx context.Context) error {
	dbCfg := i.Config.Database
	if !dbCfg.Enabled {
		return nil
	}
	conn, err := postgres.NewConnection(ctx, dbCfg, i.Logger)
	if err != nil {
		return err
	}
	i.DB = conn

	if dbCfg.AutoMigrate {
		mg, err := postgres.NewMigrator(conn.DB(), i.Logger)
		if err != nil {
			return err
		}
		if err := mg.Up(); err != nil {
			return err
		}
	}
	return nil
}

func (i *Infrastructure) initRedis() error {
	if !i.Config.Redis.Enabled {
		return nil
	}
	client, err := redis.NewClient(i.Config.Redis, i.Logger)
	if err != nil {
		return err
	}
	i.Redis = client
	return nil
}

func (i *Infrastructure) initMinIO(ctx context.Context) error {
	if !i.Config.MinIO.Enabled {
		return nil
	}
	client, err := minio.NewMinIOClient(ctx, i.Config.MinIO, i.Logger)
	if err != nil {
		return err
	}
	i.MinIO = client
	if err := client.EnsureBucket(ctx); err != nil {
		return err
	}
	client.SetupLifecycleRules(ctx)
	i.Objects = minio.NewMinIORepository(client, i.Logger)
	return nil
}

func (i *Infrastructure) initKafka(ctx context.Context) error {
	kcfg := i.Config.Kafka
	if !kcfg.Enabled {
		return nil
	}
	if kcfg.AutoCreateTopics {
		if err := ensureTopics(ctx, kcfg, i.Logger); err != nil {
			return err
		}
	}
	producer, err := kafka.NewProducer(kcfg.ProducerConfig(), i.Logger)
	if err != nil {
		return err
	}
	i.Producer = producer
	return nil
}

func (i *Infrastructure) initSearch(ctx context.Context) error {
	if !i.Config.Search.Enabled {
		return nil
	}
	client, err := opensearch.NewClient(ctx, i.Config.Search, i.Logger)
	if err != nil {
		return err
	}
	i.Search = client
	idx := opensearch.NewPatternIndex(client)
	if err := idx.EnsureIndex(ctx); err != nil {
		return err
	}
	i.Index = idx
	return nil
}

func (i *Infrastructure) initAuth(ctx context.Context) error {
	if !i.Config.Auth.Enabled {
		return nil
	}
	v, err := keycloak.NewVerifier(ctx, i.Config.Auth, i.Logger.Named("auth"))
	if err != nil {
		return err
	}
	i.Verifier = v
	return nil
}

// TokenVerifier returns the bearer token verifier, or nil when auth is off.
func (i *Infrastructure) TokenVerifier() keycloak.TokenVerifier {
	if i.Verifier == nil {
		return nil
	}
	return i.Verifier
}

func ensureTopics(ctx context.Context, kcfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(kcfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(kcfg.NumPartitions, kcfg.ReplicationFactor))
}

// EncodingService wires the encoding service onto the available backends.
// source names the process in published job messages.
func (i *Infrastructure) EncodingService(source string) (encoding.Service, error) {
	cfg := i.Config
	deps := encoding.Dependencies{
		Metrics: i.Metrics,
		Logger:  i.Logger.Named("encoding"),
	}
	if i.DB != nil {
		deps.Patterns = repositories.NewPostgresPatternRepo(i.DB, i.Logger)
		deps.Jobs = repositories.NewPostgresJobRepo(i.DB, i.Logger)
	}
	if i.Redis != nil {
		deps.Cache = redis.NewCache(i.Redis, i.Logger,
			redis.WithPrefix(cfg.Cache.KeyPrefix),
			redis.WithDefaultTTL(cfg.Cache.TTL),
			redis.WithTTLJitter(cfg.Cache.TTLJitter),
		)
		deps.Locks = i.lockFactory()
	}
	if i.Objects != nil {
		deps.Objects = i.Objects
	}
	if i.Producer != nil {
		deps.Publisher = i.Producer
	}
	if i.Index != nil {
		deps.Search = i.Index
	}

	return encoding.NewService(encoding.Config{
		DefaultOptions:   cfg.Encoder.Options,
		L1Size:           cfg.Cache.L1Size,
		CacheTTL:         cfg.Cache.TTL,
		BatchConcurrency: cfg.Encoder.BatchConcurrency,
		MaxBatchSize:     cfg.Encoder.MaxBatchSize,
		MaxJobBytes:      cfg.Encoder.MaxJobBytes,
		JobLockTTL:       cfg.Encoder.JobLockTTL,
		Source:           source,
	}, deps)
}

// lockFactory hands out redis mutexes under the cache key prefix.
func (i *Infrastructure) lockFactory() encoding.LockFactory {
	prefix := i.Config.Cache.KeyPrefix
	return func(name string, ttl time.Duration) encoding.Locker {
		return redis.NewMutex(i.Redis, prefix+name, ttl)
	}
}

// HealthCheckers returns one checker per connected service.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var checkers []handlers.HealthChecker
	if i.DB != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "postgres", Fn: i.DB.HealthCheck})
	}
	if i.Redis != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "redis", Fn: i.Redis.Ping})
	}
	if i.MinIO != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "minio", Fn: i.MinIO.HealthCheck})
	}
	if i.Search != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "opensearch", Fn: i.Search.Ping})
	}
	if i.Verifier != nil {
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "keycloak", Fn: i.Verifier.Health})
	}
	return checkers
}

// HealthObserver feeds check outcomes into the health gauge.
func (i *Infrastructure) HealthObserver() handlers.HealthObserver {
	return i.Metrics.SetHealth
}

// Close releases every client, in reverse order of creation.
func (i *Infrastructure) Close() {
	if i.Verifier != nil {
		i.Verifier.Close()
	}
	if i.Search != nil {
		if err := i.Search.Close(); err != nil {
			i.Logger.Warn("opensearch close failed", logging.Err(err))
		}
	}
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.Logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if i.MinIO != nil {
		if err := i.MinIO.Close(); err != nil {
			i.Logger.Warn("minio close failed", logging.Err(err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.Logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			i.Logger.Warn("postgres close failed", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
