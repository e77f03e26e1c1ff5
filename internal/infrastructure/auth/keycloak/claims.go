package keycloak

import (
	"context"
	"time"
)

// Claims is the verified identity carried by a request.
type Claims struct {
	Subject   string
	Username  string
	Email     string
	Scope     string
	Roles     []string
	ExpiresAt time.Time
}

// HasRole reports whether role was granted in the realm or on the client.
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	return containsString(c.Roles, role)
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

//Personal.AI order the ending
