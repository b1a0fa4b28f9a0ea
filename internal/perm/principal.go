// Package perm is the policy decision point for the platform. It decides,
// given a principal, a target entity (or an entity reference) and a requested
// permission, whether the operation is allowed. Decisions are pure functions
// of the snapshots handed in; entity resolution for reference-based checks
// goes through injected lookups so rule logic stays testable with fakes.
package perm

import "context"

// Authority is a capability marker assigned to a principal by the
// authentication layer. The set is closed; free-form strings are not
// accepted anywhere, which keeps a typo from ever granting access.
type Authority string

const (
	// AuthoritySystem marks trusted internal callers.
	AuthoritySystem Authority = "SYSTEM"
	// AuthorityAdmin marks global administrators.
	AuthorityAdmin Authority = "ADMIN"
	// AuthorityAccountManagement marks account-provisioning services.
	AuthorityAccountManagement Authority = "ACCOUNT_MANAGEMENT"
)

// Principal is the resolved identity of the caller. The zero value is the
// anonymous principal: empty id, no authorities.
type Principal struct {
	ID          string
	Authorities []Authority
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return p.ID == ""
}

// Has reports whether the principal carries the given authority.
func (p Principal) Has(authority Authority) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// Capabilities are the flags derived from a principal's authorities.
// System and Admin short-circuit every check to allow; AccountManagement
// grants unconditional access to user profile checks only.
type Capabilities struct {
	System            bool
	Admin             bool
	AccountManagement bool
}

// Classify derives capability flags from the principal's authorities.
// It performs no lookups and must run before any entity resolution.
func Classify(p Principal) Capabilities {
	return Capabilities{
		System:            p.Has(AuthoritySystem),
		Admin:             p.Has(AuthorityAdmin),
		AccountManagement: p.Has(AuthorityAccountManagement),
	}
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. A request
// without one yields the anonymous principal, never a nil dereference.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}
