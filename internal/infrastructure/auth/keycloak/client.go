// Package keycloak verifies bearer tokens issued by a Keycloak realm against
// the realm's published signing keys.
package keycloak

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
)

const (
	defaultRequestTimeout      = 10 * time.Second
	defaultJWKSRefreshInterval = 5 * time.Minute
	// minRefreshGap limits refreshes triggered by tokens with unknown key ids.
	minRefreshGap = 10 * time.Second
	clockLeeway   = 30 * time.Second
)

// Config selects the realm whose tokens are accepted.  A token is accepted
// when it is signed by a realm key, issued by the realm, unexpired, and
// names ClientID in its audience or as its authorized party.
type Config struct {
	Enabled               bool          `mapstructure:"enabled"`
	BaseURL               string        `mapstructure:"base_url"`
	Realm                 string        `mapstructure:"realm"`
	ClientID              string        `mapstructure:"client_id"`
	JWKSRefreshInterval   time.Duration `mapstructure:"jwks_refresh_interval"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	TLSInsecureSkipVerify bool          `mapstructure:"tls_insecure_skip_verify"`
}

// Issuer returns the expected "iss" claim.
func (c Config) Issuer() string {
	return strings.TrimRight(c.BaseURL, "/") + "/realms/" + c.Realm
}

// JWKSURL returns the realm's key set endpoint.
func (c Config) JWKSURL() string {
	return c.Issuer() + "/protocol/openid-connect/certs"
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New(errors.ErrCodeValidation, "keycloak: base_url is required")
	case c.Realm == "":
		return errors.New(errors.ErrCodeValidation, "keycloak: realm is required")
	case c.ClientID == "":
		return errors.New(errors.ErrCodeValidation, "keycloak: client_id is required")
	}
	return nil
}

// TokenVerifier checks a raw bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, rawToken string) (*Claims, error)
}

var (
	ErrTokenExpired          = errors.New(errors.ErrCodeUnauthorized, "token expired")
	ErrTokenInvalidSignature = errors.New(errors.ErrCodeUnauthorized, "invalid token signature")
	ErrTokenInvalidIssuer    = errors.New(errors.ErrCodeUnauthorized, "invalid token issuer")
	ErrTokenInvalidAudience  = errors.New(errors.ErrCodeUnauthorized, "invalid token audience")
	ErrTokenMalformed        = errors.New(errors.ErrCodeUnauthorized, "malformed token")
	ErrKeysUnavailable       = errors.New(errors.ErrCodeServiceUnavailable, "signing keys unavailable")
)

var errUnknownKey = stderrors.New("no signing key for kid")

// tokenClaims is the subset of a Keycloak access token that is read.
type tokenClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty   string `json:"azp"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Scope             string `json:"scope"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// Verifier validates tokens offline against a cached key set, refreshed
// periodically and whenever a token names an unknown key.
type Verifier struct {
	cfg    Config
	keys   *jwksCache
	parser *jwt.Parser
	logger logging.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Verifier.
type Option func(*verifierOptions)

type verifierOptions struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the client used to fetch keys.
func WithHTTPClient(c *http.Client) Option {
	return func(o *verifierOptions) { o.httpClient = c }
}

// NewVerifier fetches the realm keys and starts the background refresh.
// Close stops it.
func NewVerifier(ctx context.Context, cfg Config, logger logging.Logger, opts ...Option) (*Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.JWKSRefreshInterval <= 0 {
		cfg.JWKSRefreshInterval = defaultJWKSRefreshInterval
	}

	o := verifierOptions{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.TLSInsecureSkipVerify}, //nolint:gosec // opt-in for dev realms
			},
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	v := &Verifier{
		cfg:  cfg,
		keys: &jwksCache{client: o.httpClient, url: cfg.JWKSURL(), logger: logger},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithIssuer(cfg.Issuer()),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockLeeway),
		),
		logger: logger,
		stop:   make(chan struct{}),
	}
	if err := v.keys.refresh(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to fetch realm keys")
	}

	v.wg.Add(1)
	go v.refreshLoop()

	logger.Info("keycloak token verifier ready",
		logging.String("issuer", cfg.Issuer()),
		logging.Int("keys", v.keys.len()),
	)
	return v, nil
}

func (v *Verifier) refreshLoop() {
	defer v.wg.Done()
	ticker := time.NewTicker(v.cfg.JWKSRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-v.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), v.cfg.RequestTimeout)
			if err := v.keys.refresh(ctx); err != nil {
				v.logger.Warn("realm key refresh failed", logging.Err(err))
			}
			cancel()
		}
	}
}

// Close stops the background refresh.
func (v *Verifier) Close() {
	v.stopOnce.Do(func() { close(v.stop) })
	v.wg.Wait()
}

// Health fetches the key set once.
func (v *Verifier) Health(ctx context.Context) error {
	return v.keys.refresh(ctx)
}

// VerifyToken validates rawToken and returns its claims.
func (v *Verifier) VerifyToken(ctx context.Context, rawToken string) (*Claims, error) {
	tc := &tokenClaims{}
	_, err := v.parser.ParseWithClaims(rawToken, tc, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errUnknownKey
		}
		return v.keys.key(ctx, kid)
	})
	if err != nil {
		return nil, classify(err)
	}

	if !containsString(tc.Audience, v.cfg.ClientID) && tc.AuthorizedParty != v.cfg.ClientID {
		return nil, ErrTokenInvalidAudience
	}

	claims := &Claims{
		Subject:  tc.Subject,
		Username: tc.PreferredUsername,
		Email:    tc.Email,
		Scope:    tc.Scope,
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	claims.Roles = append(claims.Roles, tc.RealmAccess.Roles...)
	if client, ok := tc.ResourceAccess[v.cfg.ClientID]; ok {
		claims.Roles = append(claims.Roles, client.Roles...)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case stderrors.Is(err, ErrKeysUnavailable):
		return ErrKeysUnavailable
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case stderrors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrTokenInvalidIssuer
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case stderrors.Is(err, errUnknownKey), stderrors.Is(err, jwt.ErrTokenSignatureInvalid),
		stderrors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenInvalidSignature
	}
	return errors.Wrap(err, errors.ErrCodeUnauthorized, "token verification failed")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// jwksCache holds the RSA signing keys of the realm by key id.
type jwksCache struct {
	client *http.Client
	url    string
	logger logging.Logger

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (c *jwksCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

func (c *jwksCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", c.url, resp.Status)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			c.logger.Warn("skipping undecodable signing key", logging.String("kid", k.Kid), logging.Err(err))
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.lastRefresh = time.Now()
	c.mu.Unlock()
	return nil
}

func (k jsonWebKey) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("modulus: %w", err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("exponent: %w", err)
	}
	exp := 0
	for _, b := range e {
		exp = exp<<8 | int(b)
	}
	if exp == 0 {
		return nil, stderrors.New("zero exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: exp}, nil
}

// key returns the key for kid, refreshing once when it is unknown.  Only one
// such refresh is attempted per minRefreshGap.
func (c *jwksCache) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	if k, ok := c.keys[kid]; ok {
		c.mu.Unlock()
		return k, nil
	}
	if time.Since(c.lastRefresh) < minRefreshGap {
		c.mu.Unlock()
		return nil, errUnknownKey
	}
	c.lastRefresh = time.Now()
	c.mu.Unlock()

	if err := c.refresh(ctx); err != nil {
		c.logger.Warn("realm key refresh failed", logging.Err(err))
		return nil, ErrKeysUnavailable
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if k, ok := c.keys[kid]; ok {
		return k, nil
	}
	return nil, errUnknownKey
}

//Personal.AI order the ending
