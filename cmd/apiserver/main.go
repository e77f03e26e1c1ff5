// Command apiserver serves the molsmarts HTTP API, and gRPC health when
// server.grpc.enabled is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/molsmarts/internal/bootstrap"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	apigrpc "github.com/turtacn/molsmarts/internal/interfaces/grpc"
	apihttp "github.com/turtacn/molsmarts/internal/interfaces/http"
)

const sourceName = "molsmarts-apiserver"

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC port (overrides config and enables gRPC)")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *grpcPort > 0 {
		cfg.Server.GRPC.Enabled = true
		cfg.Server.GRPC.Port = *grpcPort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	if *configPath != "" {
		watchConfig(*configPath, logger)
	}

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

	router, err := apihttp.NewRouter(routerConfig(cfg, infra, svc, version))
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := apihttp.NewServer(cfg.Server, router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	var gsrv *apigrpc.Server
	grpcErrCh := make(chan error, 1)
	if cfg.Server.GRPC.Enabled {
		gsrv, err = grpcServer(cfg, infra)
		if err != nil {
			_ = srv.Stop(context.Background())
			return fmt.Errorf("grpc: %w", err)
		}
		go func() { grpcErrCh <- gsrv.Start() }()
	}

	logger.Info("molsmarts API server started",
		logging.String("version", version),
		logging.String("addr", srv.Addr()),
		logging.Bool("grpc", gsrv != nil),
	)

	select {
	case err := <-errCh:
		if gsrv != nil {
			_ = gsrv.Stop(context.Background())
		}
		return err
	case err := <-grpcErrCh:
		_ = srv.Stop(context.Background())
		return fmt.Errorf("grpc server: %w", err)
	case <-ctx.Done():
	}

	// gRPC first, so its health turns NOT_SERVING while HTTP drains.
	if gsrv != nil {
		if err := gsrv.Stop(context.Background()); err != nil {
			logger.Error("gRPC server shutdown error", logging.Err(err))
		}
	}
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("API server shutdown error", logging.Err(err))
	}
	return <-errCh
}

//Personal.AI order the ending
