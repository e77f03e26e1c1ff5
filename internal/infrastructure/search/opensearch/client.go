// Package opensearch keeps a full-text index of stored patterns in
// OpenSearch so they can be found by name or SMARTS fragment.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBackoff   = 100 * time.Millisecond
	defaultRequestTimeout = 10 * time.Second
	defaultIndex          = "molsmarts-patterns"
)

var (
	ErrInvalidConfig    = errors.New(errors.ErrCodeValidation, "invalid opensearch configuration")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "opensearch connection failed")
)

// Config holds the connection and index settings.
type Config struct {
	Enabled            bool          `mapstructure:"enabled"`
	Addresses          []string      `mapstructure:"addresses"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryBackoff       time.Duration `mapstructure:"retry_backoff"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	Index              string        `mapstructure:"index"`
	// Refresh is passed to index requests: "true", "false" or "wait_for".
	Refresh string `mapstructure:"refresh"`
}

// ValidateConfig checks cfg before defaults are applied.
func ValidateConfig(cfg Config) error {
	if len(cfg.Addresses) == 0 {
		return ErrInvalidConfig
	}
	if cfg.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "opensearch: max_retries must be >= 0")
	}
	if cfg.RequestTimeout < 0 {
		return errors.New(errors.ErrCodeValidation, "opensearch: request_timeout must be >= 0")
	}
	switch cfg.Refresh {
	case "", "true", "false", "wait_for":
	default:
		return errors.Newf(errors.ErrCodeValidation, "opensearch: refresh %q is invalid", cfg.Refresh)
	}
	return nil
}

// Client wraps the OpenSearch client and remembers the last ping result.
type Client struct {
	client    *opensearch.Client
	transport *http.Transport
	config    Config
	logger    logging.Logger
	healthy   atomic.Bool
}

// NewClient connects and pings the cluster.
func NewClient(ctx context.Context, cfg Config, logger logging.Logger) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Index == "" {
		cfg.Index = defaultIndex
	}
	if cfg.Refresh == "" {
		cfg.Refresh = "false"
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for dev clusters
	}

	backoff := cfg.RetryBackoff
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  func(int) time.Duration { return backoff },
		RetryOnStatus: []int{502, 503, 504, 429},
		Transport:     transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create opensearch client")
	}

	c := &Client{client: osClient, transport: transport, config: cfg, logger: logger.Named("opensearch")}
	if err := c.Ping(ctx); err != nil {
		return nil, ErrConnectionFailed.WithCause(err)
	}
	c.logger.Info("opensearch connected",
		logging.Any("addresses", cfg.Addresses),
		logging.String("index", cfg.Index),
	)
	return c, nil
}

// Ping checks the connection to the cluster.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		c.healthy.Store(false)
		c.logger.Warn("opensearch ping failed", logging.Err(err))
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.healthy.Store(false)
		c.logger.Warn("opensearch ping returned error status", logging.Int("status", resp.StatusCode))
		return errors.Newf(errors.ErrCodeServiceUnavailable, "opensearch ping returned %d", resp.StatusCode)
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the result of the last ping.
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// Index returns the pattern index name.
func (c *Client) Index() string {
	return c.config.Index
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

//Personal.AI order the ending
