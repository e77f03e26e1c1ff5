package keycloak

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/pkg/errors"
)

const (
	testRealm  = "chem"
	testClient = "molsmarts-api"
)

type realmKey struct {
	kid string
	key *rsa.PrivateKey
}

// fakeRealm serves a JWKS document for a set of keys that tests can rotate.
type fakeRealm struct {
	server *httptest.Server
	hits   atomic.Int32

	mu     sync.Mutex
	keys   []realmKey
	status int
}

func newFakeRealm(t *testing.T) *fakeRealm {
	t.Helper()
	r := &fakeRealm{status: http.StatusOK}
	r.keys = []realmKey{newRealmKey(t, "k1")}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/realms/"+testRealm+"/protocol/openid-connect/certs" {
			http.NotFound(w, req)
			return
		}
		r.hits.Add(1)
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.status != http.StatusOK {
			w.WriteHeader(r.status)
			return
		}
		var set []map[string]string
		for _, k := range r.keys {
			pub := k.key.PublicKey
			set = append(set, map[string]string{
				"kid": k.kid,
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			})
		}
		// Encryption keys are ignored.
		set = append(set, map[string]string{"kid": "enc", "kty": "RSA", "use": "enc", "n": "AQAB", "e": "AQAB"})
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"keys": set})
	}))
	t.Cleanup(r.server.Close)
	return r
}

func newRealmKey(t *testing.T, kid string) realmKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return realmKey{kid: kid, key: key}
}

func (r *fakeRealm) setKeys(keys ...realmKey) {
	r.mu.Lock()
	r.keys = keys
	r.mu.Unlock()
}

func (r *fakeRealm) setStatus(code int) {
	r.mu.Lock()
	r.status = code
	r.mu.Unlock()
}

func (r *fakeRealm) config() Config {
	return Config{
		Enabled:             true,
		BaseURL:             r.server.URL + "/",
		Realm:               testRealm,
		ClientID:            testClient,
		JWKSRefreshInterval: time.Hour,
		RequestTimeout:      2 * time.Second,
	}
}

func (r *fakeRealm) issuer() string { return r.server.URL + "/realms/" + testRealm }

func (r *fakeRealm) claims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":                r.issuer(),
		"sub":                "user-1",
		"aud":                []string{testClient, "account"},
		"azp":                testClient,
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
		"preferred_username": "ada",
		"email":              "ada@example.org",
		"scope":              "openid profile",
		"realm_access":       map[string]interface{}{"roles": []string{RoleReader}},
		"resource_access": map[string]interface{}{
			testClient: map[string]interface{}{"roles": []string{RoleUser}},
			"other":    map[string]interface{}{"roles": []string{"ignored"}},
		},
	}
}

func sign(t *testing.T, k realmKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = k.kid
	s, err := tok.SignedString(k.key)
	require.NoError(t, err)
	return s
}

func newTestVerifier(t *testing.T, r *fakeRealm) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), r.config(), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestConfig_URLs(t *testing.T) {
	cfg := Config{BaseURL: "https://sso.example.org/", Realm: "chem"}
	assert.Equal(t, "https://sso.example.org/realms/chem", cfg.Issuer())
	assert.Equal(t, "https://sso.example.org/realms/chem/protocol/openid-connect/certs", cfg.JWKSURL())
}

func TestNewVerifier_Validation(t *testing.T) {
	for name, cfg := range map[string]Config{
		"base_url":  {Realm: "r", ClientID: "c"},
		"realm":     {BaseURL: "http://x", ClientID: "c"},
		"client_id": {BaseURL: "http://x", Realm: "r"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewVerifier(context.Background(), cfg, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestNewVerifier_KeysUnavailable(t *testing.T) {
	r := newFakeRealm(t)
	r.setStatus(http.StatusInternalServerError)

	_, err := NewVerifier(context.Background(), r.config(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestVerifyToken_Valid(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)

	claims, err := v.VerifyToken(context.Background(), sign(t, r.keys[0], r.claims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "ada@example.org", claims.Email)
	assert.Equal(t, "openid profile", claims.Scope)
	assert.ElementsMatch(t, []string{RoleReader, RoleUser}, claims.Roles)
	assert.False(t, claims.HasRole("ignored"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestVerifyToken_AuthorizedPartySatisfiesAudience(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)

	c := r.claims()
	c["aud"] = "account"
	_, err := v.VerifyToken(context.Background(), sign(t, r.keys[0], c))
	assert.NoError(t, err)
}

func TestVerifyToken_Rejections(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)
	stranger := newRealmKey(t, "k1")

	tests := []struct {
		name   string
		token  func() string
		expect error
	}{
		{"expired", func() string {
			c := r.claims()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return sign(t, r.keys[0], c)
		}, ErrTokenExpired},
		{"issuer", func() string {
			c := r.claims()
			c["iss"] = "https://elsewhere/realms/chem"
			return sign(t, r.keys[0], c)
		}, ErrTokenInvalidIssuer},
		{"audience", func() string {
			c := r.claims()
			c["aud"] = "account"
			c["azp"] = "some-frontend"
			return sign(t, r.keys[0], c)
		}, ErrTokenInvalidAudience},
		{"foreign key", func() string {
			return sign(t, stranger, r.claims())
		}, ErrTokenInvalidSignature},
		{"hmac", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, r.claims())
			tok.Header["kid"] = "k1"
			s, err := tok.SignedString([]byte("secret"))
			require.NoError(t, err)
			return s
		}, ErrTokenInvalidSignature},
		{"no kid", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodRS256, r.claims())
			s, err := tok.SignedString(r.keys[0].key)
			require.NoError(t, err)
			return s
		}, ErrTokenInvalidSignature},
		{"garbage", func() string { return "not-a-token" }, ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(context.Background(), tt.token())
			assert.Same(t, tt.expect, err)
		})
	}
}

func TestVerifyToken_MissingExpiry(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)

	c := r.claims()
	delete(c, "exp")
	_, err := v.VerifyToken(context.Background(), sign(t, r.keys[0], c))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

func TestVerifyToken_UnknownKidRefreshesKeys(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)
	rotated := newRealmKey(t, "k2")
	r.setKeys(rotated)
	token := sign(t, rotated, r.claims())

	// Within the refresh gap the new key is not looked up.
	before := r.hits.Load()
	_, err := v.VerifyToken(context.Background(), token)
	assert.Same(t, ErrTokenInvalidSignature, err)
	assert.Equal(t, before, r.hits.Load())

	v.keys.mu.Lock()
	v.keys.lastRefresh = time.Time{}
	v.keys.mu.Unlock()

	claims, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, before+1, r.hits.Load())
}

func TestVerifyToken_RefreshFailure(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)
	r.setStatus(http.StatusBadGateway)

	v.keys.mu.Lock()
	v.keys.lastRefresh = time.Time{}
	v.keys.mu.Unlock()

	_, err := v.VerifyToken(context.Background(), sign(t, newRealmKey(t, "k9"), r.claims()))
	assert.Same(t, ErrKeysUnavailable, err)

	// Known keys keep working.
	_, err = v.VerifyToken(context.Background(), sign(t, r.keys[0], r.claims()))
	assert.NoError(t, err)
}

func TestVerifier_Health(t *testing.T) {
	r := newFakeRealm(t)
	v := newTestVerifier(t, r)
	assert.NoError(t, v.Health(context.Background()))

	r.setStatus(http.StatusServiceUnavailable)
	assert.Error(t, v.Health(context.Background()))
}

func TestVerifier_CloseIsIdempotent(t *testing.T) {
	r := newFakeRealm(t)
	v, err := NewVerifier(context.Background(), r.config(), nil)
	require.NoError(t, err)
	v.Close()
	assert.NotPanics(t, v.Close)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	c := &Claims{Subject: "s", Roles: []string{RoleAdmin}}
	got, ok := ClaimsFromContext(WithClaims(context.Background(), c))
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.True(t, got.HasRole(RoleAdmin))

	var nilClaims *Claims
	assert.False(t, nilClaims.HasRole(RoleAdmin))
}

//Personal.AI order the ending
