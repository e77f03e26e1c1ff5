package keycloak

import (
	"sync"

	"github.com/samber/lo"
)

// Permission names one guarded API operation.
type Permission string

const (
	PermSmartsEncode Permission = "smarts:encode"
	PermJobsSubmit   Permission = "jobs:submit"
	PermJobsRead     Permission = "jobs:read"
	PermPatternsRead Permission = "patterns:read"
)

// Realm or client roles understood by the service.
const (
	RoleAdmin  = "molsmarts-admin"
	RoleUser   = "molsmarts-user"
	RoleReader = "molsmarts-reader"
)

// RolePermissions maps a role name to the permissions it grants.
type RolePermissions map[string][]Permission

// DefaultRolePermissions returns the built-in mapping.  Admins hold every
// permission, users can encode and submit jobs, readers only read.
func DefaultRolePermissions() RolePermissions {
	return RolePermissions{
		RoleAdmin:  {PermSmartsEncode, PermJobsSubmit, PermJobsRead, PermPatternsRead},
		RoleUser:   {PermSmartsEncode, PermJobsSubmit, PermJobsRead, PermPatternsRead},
		RoleReader: {PermJobsRead, PermPatternsRead},
	}
}

// RBAC decides whether a set of claims grants a permission.
type RBAC struct {
	mu      sync.RWMutex
	mapping RolePermissions
}

// NewRBAC builds an enforcer over mapping, or DefaultRolePermissions when
// mapping is nil.
func NewRBAC(mapping RolePermissions) *RBAC {
	if mapping == nil {
		mapping = DefaultRolePermissions()
	}
	return &RBAC{mapping: mapping}
}

// Allowed reports whether any role in claims grants perm.
func (r *RBAC) Allowed(claims *Claims, perm Permission) bool {
	if claims == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, role := range claims.Roles {
		if lo.Contains(r.mapping[role], perm) {
			return true
		}
	}
	return false
}

// Permissions lists the distinct permissions granted to claims.
func (r *RBAC) Permissions(claims *Claims) []Permission {
	if claims == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Uniq(lo.FlatMap(claims.Roles, func(role string, _ int) []Permission {
		return r.mapping[role]
	}))
}

// Update swaps the mapping.
func (r *RBAC) Update(mapping RolePermissions) {
	r.mu.Lock()
	r.mapping = mapping
	r.mu.Unlock()
}

//Personal.AI order the ending
