// Command worker consumes encode job requests from Kafka and writes their
// results to object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/bootstrap"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	apihttp "github.com/turtacn/molsmarts/internal/interfaces/http"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
)

const sourceName = "molsmarts-worker"

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	workers := flag.Int("workers", 0, "number of consumers in this process (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Worker.Concurrency = *workers
	}
	if err := checkWorkerConfig(cfg); err != nil {
		return err
	}
	// The worker serves no API, only probes.
	cfg.Auth.Enabled = false

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc, err := infra.EncodingService(sourceName)
	if err != nil {
		return fmt.Errorf("encoding service: %w", err)
	}

	handler := withTimeout(encoding.NewJobHandler(svc), cfg.Worker.HandlerTimeout)
	pool, err := newConsumerPool(cfg, infra, handler, encoding.NewJobExhaustedHandler(svc, logger), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	health, err := newHealthServer(cfg, infra)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- health.Start() }()

	if err := pool.Start(ctx); err != nil {
		return err
	}
	logger.Info("molsmarts worker started",
		logging.String("version", version),
		logging.Int("consumers", cfg.Worker.Concurrency),
		logging.String("topic", kafka.TopicEncodeRequest),
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("health server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal, waiting for in-flight jobs")
	pool.Close()
	if err := health.Stop(context.Background()); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	logger.Info("molsmarts worker stopped")
	return nil
}

// checkWorkerConfig rejects configurations under which no job could ever
// complete.
func checkWorkerConfig(cfg *config.Config) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled for the worker")
	}
	if !cfg.MinIO.Enabled {
		return fmt.Errorf("minio must be enabled for the worker")
	}
	if cfg.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be ≥ 1, got %d", cfg.Worker.Concurrency)
	}
	return nil
}

// newHealthServer serves liveness, readiness and metrics on the worker's
// health port.
func newHealthServer(cfg *config.Config, infra *bootstrap.Infrastructure) (*apihttp.Server, error) {
	srvCfg := cfg.Server
	srvCfg.Port = cfg.Worker.HealthPort
	srvCfg.RateLimit.Enabled = false
	srvCfg.CORS.AllowedOrigins = nil

	rc := apihttp.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, infra.HealthObserver(), infra.HealthCheckers()...),
		Server:        srvCfg,
		Logger:        infra.Logger,
		Metrics:       infra.Metrics,
	}
	if infra.Collector != nil {
		rc.MetricsCollector = infra.Collector
		rc.MetricsPath = cfg.Metrics.Path
	}
	router, err := apihttp.NewRouter(rc)
	if err != nil {
		return nil, fmt.Errorf("health router: %w", err)
	}
	return apihttp.NewServer(srvCfg, router, infra.Logger), nil
}

//Personal.AI order the ending
