package main

import (
	"github.com/samber/lo"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/bootstrap"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	apigrpc "github.com/turtacn/molsmarts/internal/interfaces/grpc"
	apihttp "github.com/turtacn/molsmarts/internal/interfaces/http"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
)

// routerConfig binds the handlers to the encoding service and the health
// checks to whatever infrastructure is connected.
func routerConfig(cfg *config.Config, infra *bootstrap.Infrastructure, svc encoding.Service, version string) apihttp.RouterConfig {
	rc := apihttp.RouterConfig{
		EncodeHandler:  handlers.NewEncodeHandler(svc),
		JobHandler:     handlers.NewJobHandler(svc),
		PatternHandler: handlers.NewPatternHandler(svc),
		HealthHandler:  handlers.NewHealthHandler(version, infra.HealthObserver(), infra.HealthCheckers()...),
		Server:         cfg.Server,
		MaxJobBytes:    cfg.Encoder.MaxJobBytes,
		Auth:           infra.TokenVerifier(),
		Logger:         infra.Logger,
		Metrics:        infra.Metrics,
	}
	if infra.Collector != nil {
		rc.MetricsCollector = infra.Collector
		rc.MetricsPath = cfg.Metrics.Path
	}
	return rc
}

// grpcServer builds the gRPC listener.  The encoder's health status follows
// the same dependency checks as /readyz.
func grpcServer(cfg *config.Config, infra *bootstrap.Infrastructure) (*apigrpc.Server, error) {
	checkers := lo.Map(infra.HealthCheckers(), func(c handlers.HealthChecker, _ int) apigrpc.Checker {
		return c
	})
	opts := []apigrpc.Option{
		apigrpc.WithLogger(infra.Logger),
		apigrpc.WithCheckers(checkers...),
	}
	if infra.Metrics != nil {
		opts = append(opts, apigrpc.WithMetrics(infra.Metrics))
	}
	return apigrpc.NewServer(&cfg.Server.GRPC, opts...)
}

// watchConfig applies log level changes without a restart.  Other settings
// are read once at startup.
func watchConfig(path string, logger logging.Logger) {
	config.Watch(path, func(cfg *config.Config) {
		if logging.SetLevel(logger, cfg.Log.Level) {
			logger.Info("log level changed", logging.String("level", cfg.Log.Level))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid configuration change", logging.Err(err))
	})
}

//Personal.AI order the ending
