package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/application/encoding"
	"github.com/turtacn/molsmarts/internal/config"
	"github.com/turtacn/molsmarts/internal/testutil"
)

const ethanol = `ethanol
  test

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.3000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.0000    1.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  2  3  1  0
M  END
`

func baseConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestNew_NothingEnabled(t *testing.T) {
	logger := testutil.NewMockLogger()
	infra, err := New(context.Background(), baseConfig(), logger)
	require.NoError(t, err)
	defer infra.Close()

	entry, ok := logger.Find("info", "infrastructure initialized")
	require.True(t, ok)
	up, _ := entry.Field("redis")
	assert.Equal(t, false, up)

	assert.Nil(t, infra.DB)
	assert.Nil(t, infra.Redis)
	assert.Nil(t, infra.MinIO)
	assert.Nil(t, infra.Objects)
	assert.Nil(t, infra.Producer)
	assert.Nil(t, infra.Collector)
	assert.Nil(t, infra.Search)
	assert.Nil(t, infra.TokenVerifier())
	assert.Empty(t, infra.HealthCheckers())

	svc, err := infra.EncodingService("test")
	require.NoError(t, err)
	res, err := svc.Encode(context.Background(), &encoding.EncodeRequest{Molfile: ethanol})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SMARTS)
	assert.Equal(t, 3, res.AtomCount)
}

func TestNew_MetricsEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Metrics.Enabled = true

	infra, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()

	require.NotNil(t, infra.Collector)
	require.NotNil(t, infra.Metrics)
	assert.NotPanics(t, func() { infra.HealthObserver()("redis", true) })
}

func TestHealthObserver_WithoutMetrics(t *testing.T) {
	infra, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { infra.HealthObserver()("redis", false) })
}

func TestNew_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	infra, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()
	require.NotNil(t, infra.Redis)
	assert.Len(t, infra.HealthCheckers(), 1)

	t.Run("results reach the shared cache", func(t *testing.T) {
		svc, err := infra.EncodingService("test")
		require.NoError(t, err)
		_, err = svc.Encode(context.Background(), &encoding.EncodeRequest{Molfile: ethanol})
		require.NoError(t, err)

		var found bool
		for _, k := range mr.Keys() {
			if strings.HasPrefix(k, cfg.Cache.KeyPrefix+"smarts:") {
				found = true
			}
		}
		assert.True(t, found, "keys: %v", mr.Keys())
	})

	t.Run("locks are namespaced", func(t *testing.T) {
		lock := infra.lockFactory()("job:42", time.Minute)
		ok, err := lock.TryLock(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("lock:"+cfg.Cache.KeyPrefix+"job:42"))

		other := infra.lockFactory()("job:42", time.Minute)
		ok, err = other.TryLock(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, lock.Unlock(context.Background()))
		assert.False(t, mr.Exists("lock:"+cfg.Cache.KeyPrefix+"job:42"))
	})

	t.Run("health follows the server", func(t *testing.T) {
		checkers := infra.HealthCheckers()
		require.Len(t, checkers, 1)
		assert.Equal(t, "redis", checkers[0].Name())
		assert.NoError(t, checkers[0].Check(context.Background()))

		mr.Close()
		assert.Error(t, checkers[0].Check(context.Background()))
	})
}

func TestNew_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := baseConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

// fakeBackends serves an OpenSearch cluster without the pattern index and a
// Keycloak realm with an empty key set.
func fakeBackends(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/protocol/openid-connect/certs"):
			_, _ = io.WriteString(w, `{"keys":[]}`)
		case r.URL.Path == "/":
			_, _ = io.WriteString(w, `{"version":{"number":"2.11.0"}}`)
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			_, _ = io.WriteString(w, `{"acknowledged":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_SearchAndAuth(t *testing.T) {
	srv := fakeBackends(t)
	cfg := baseConfig()
	cfg.Search.Enabled = true
	cfg.Search.Addresses = []string{srv.URL}
	cfg.Search.MaxRetries = 1
	cfg.Auth.Enabled = true
	cfg.Auth.BaseURL = srv.URL

	infra, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()

	require.NotNil(t, infra.Search)
	require.NotNil(t, infra.Index)
	require.NotNil(t, infra.TokenVerifier())

	var names []string
	for _, c := range infra.HealthCheckers() {
		names = append(names, c.Name())
		assert.NoError(t, c.Check(context.Background()), c.Name())
	}
	assert.Equal(t, []string{"opensearch", "keycloak"}, names)

	svc, err := infra.EncodingService("test")
	require.NoError(t, err)
	_, err = svc.SearchPatterns(context.Background(), &encoding.PatternQuery{Text: "OCC"})
	// The fake cluster has no search endpoint; the request reaches it.
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "not enabled")
}

func TestNew_SearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	cfg := baseConfig()
	cfg.Search.Enabled = true
	cfg.Search.Addresses = []string{srv.URL}
	cfg.Search.MaxRetries = 1
	cfg.Search.RetryBackoff = time.Millisecond

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opensearch")
}

func TestNew_AuthKeysUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	cfg := baseConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.BaseURL = srv.URL

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keycloak")
}

//Personal.AI order the ending
