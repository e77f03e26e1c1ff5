//go:build integration

// Package integration runs the storage and encoding stack against real
// PostgreSQL, Redis and MinIO containers.  Tests require Docker and are gated
// behind the "integration" build tag.
package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/molsmarts/internal/bootstrap"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsmarts/internal/infrastructure/database/redis"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/infrastructure/storage/minio"
)

const (
	startupTimeout = 90 * time.Second

	minioAccessKey = "molsmarts"
	minioSecretKey = "molsmarts-secret"
)

// startContainer launches req and terminates it when the test ends.
func startContainer(t *testing.T, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })
	return container
}

// endpoint returns the host and the mapped port number of port.
func endpoint(t *testing.T, c testcontainers.Container, port string) (string, int) {
	t.Helper()
	ctx := context.Background()

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	n, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)
	return host, n
}

// startPostgres launches PostgreSQL 16 with an empty molsmarts database.
func startPostgres(t *testing.T) postgres.Config {
	t.Helper()
	c := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "molsmarts_test",
		},
		// The server restarts once after initdb; wait for the second start.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startupTimeout),
	})
	host, port := endpoint(t, c, "5432/tcp")
	return postgres.Config{
		Enabled:  true,
		Host:     host,
		Port:     port,
		Database: "molsmarts_test",
		Username: "test",
		Password: "test",
		SSLMode:  "disable",
	}
}

// startRedis launches a standalone Redis 7.
func startRedis(t *testing.T) redis.Config {
	t.Helper()
	c := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupTimeout),
	})
	host, port := endpoint(t, c, "6379/tcp")
	return redis.Config{
		Enabled: true,
		Mode:    "standalone",
		Addr:    fmt.Sprintf("%s:%d", host, port),
	}
}

// startMinIO launches a single node MinIO server.
func startMinIO(t *testing.T) minio.Config {
	t.Helper()
	c := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioAccessKey,
			"MINIO_ROOT_PASSWORD": minioSecretKey,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startupTimeout),
	})
	host, port := endpoint(t, c, "9000/tcp")
	return minio.Config{
		Enabled:         true,
		Endpoint:        fmt.Sprintf("%s:%d", host, port),
		AccessKeyID:     minioAccessKey,
		SecretAccessKey: minioSecretKey,
		Bucket:          "molsmarts-test",
	}
}

// newInfrastructure bootstraps every backend except Kafka, so that jobs run
// inline.
func newInfrastructure(t *testing.T) *bootstrap.Infrastructure {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Metrics.Enabled = false
	cfg.Kafka.Enabled = false
	cfg.Search.Enabled = false
	cfg.Auth.Enabled = false

	cfg.Database = startPostgres(t)
	cfg.Database.AutoMigrate = true
	cfg.Redis = startRedis(t)
	cfg.MinIO = startMinIO(t)

	infra, err := bootstrap.New(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(infra.Close)
	return infra
}

func molfileText(name string, symbols []string, bonds [][3]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  integration\n\n", name)
	fmt.Fprintf(&sb, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(symbols), len(bonds))
	for i, s := range symbols {
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", float64(i)*1.3, 0.0, 0.0, s)
	}
	for _, b := range bonds {
		fmt.Fprintf(&sb, "%3d%3d%3d  0\n", b[0], b[1], b[2])
	}
	sb.WriteString("M  END\n")
	return sb.String()
}

func ethanol() string {
	return molfileText("ethanol", []string{"C", "C", "O"}, [][3]int{{1, 2, 1}, {2, 3, 1}})
}

func water() string {
	return molfileText("water", []string{"O"}, nil)
}

func sdf(records ...string) []byte {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r)
		sb.WriteString("$$$$\n")
	}
	return []byte(sb.String())
}

//Personal.AI order the ending
