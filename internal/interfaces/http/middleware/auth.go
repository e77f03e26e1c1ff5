package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/infrastructure/auth/keycloak"
	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// ClaimsKey is the gin context key holding the verified *keycloak.Claims.
const ClaimsKey = "auth_claims"

const bearerChallenge = `Bearer realm="molsmarts"`

// Auth requires a valid bearer token on every request it guards.  The
// verified claims are stored on the gin context and the request context.
func Auth(verifier keycloak.TokenVerifier, logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", bearerChallenge)
			handlers.RespondError(c, errors.New(errors.ErrCodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeUnauthorized) {
				c.Header("WWW-Authenticate", bearerChallenge+`, error="invalid_token"`)
			}
			logger.Debug("bearer token rejected",
				logging.String("request_id", c.GetString(handlers.RequestIDKey)),
				logging.Err(err),
			)
			handlers.RespondError(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(keycloak.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequirePermission rejects requests whose claims do not grant perm.  It
// must run after Auth.
func RequirePermission(rbac *keycloak.RBAC, perm keycloak.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := keycloak.ClaimsFromContext(c.Request.Context())
		if !ok {
			handlers.RespondError(c, errors.New(errors.ErrCodeUnauthorized, "not authenticated"))
			return
		}
		if !rbac.Allowed(claims, perm) {
			handlers.RespondError(c, errors.New(errors.ErrCodeForbidden, "missing permission").WithDetail(string(perm)))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

//Personal.AI order the ending
