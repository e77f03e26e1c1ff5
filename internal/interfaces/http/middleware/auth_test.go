package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsmarts/internal/infrastructure/auth/keycloak"
	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

type stubVerifier map[string]*keycloak.Claims

func (s stubVerifier) VerifyToken(_ context.Context, raw string) (*keycloak.Claims, error) {
	switch raw {
	case "down":
		return nil, keycloak.ErrKeysUnavailable
	}
	if c, ok := s[raw]; ok {
		return c, nil
	}
	return nil, keycloak.ErrTokenExpired
}

func authEngine() *gin.Engine {
	verifier := stubVerifier{
		"reader": {Subject: "r", Roles: []string{keycloak.RoleReader}},
		"user":   {Subject: "u", Roles: []string{keycloak.RoleUser}},
	}
	rbac := keycloak.NewRBAC(nil)

	e := gin.New()
	g := e.Group("/", Auth(verifier, nil))
	g.POST("/encode", RequirePermission(rbac, keycloak.PermSmartsEncode), func(c *gin.Context) {
		claims, _ := keycloak.ClaimsFromContext(c.Request.Context())
		c.String(http.StatusOK, claims.Subject)
	})
	g.GET("/patterns", RequirePermission(rbac, keycloak.PermPatternsRead), func(c *gin.Context) {
		v, _ := c.Get(ClaimsKey)
		c.String(http.StatusOK, v.(*keycloak.Claims).Subject)
	})
	return e
}

func call(e *gin.Engine, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp common.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestAuth_MissingToken(t *testing.T) {
	e := authEngine()
	for _, h := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "Bearer"} {
		w := call(e, http.MethodGet, "/patterns", h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Equal(t, `Bearer realm="molsmarts"`, w.Header().Get("WWW-Authenticate"))
		assert.Equal(t, errors.ErrCodeUnauthorized.String(), errorCode(t, w))
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	w := call(authEngine(), http.MethodGet, "/patterns", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
}

func TestAuth_VerifierUnavailable(t *testing.T) {
	w := call(authEngine(), http.MethodGet, "/patterns", "Bearer down")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
}

func TestAuth_SchemeIsCaseInsensitive(t *testing.T) {
	w := call(authEngine(), http.MethodGet, "/patterns", "bearer reader")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r", w.Body.String())
}

func TestRequirePermission(t *testing.T) {
	e := authEngine()

	w := call(e, http.MethodPost, "/encode", "Bearer reader")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, errors.ErrCodeForbidden.String(), errorCode(t, w))

	w = call(e, http.MethodPost, "/encode", "Bearer user")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u", w.Body.String())
}

func TestRequirePermission_WithoutAuth(t *testing.T) {
	e := gin.New()
	e.GET("/x", RequirePermission(keycloak.NewRBAC(nil), keycloak.PermJobsRead), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := call(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

//Personal.AI order the ending
