// Package authz implements the authorization gate: a Permissions value
// derived from the caller's validated token (or AllowAll when
// authorization is disabled) is checked against the scope an operation
// requires. The gate is applied by callers; the store and broker APIs
// do not take a Permissions value.
//
// Generalized from the teacher's fixed Role enum plus
// HasRole/HasAnyRole/HasAllRoles methods: here the fixed role set is
// replaced by path-glob rules per scope, since the broker's access
// control is per-signal-path rather than per-application-role.
package authz

import (
	"path"
	"strings"
	"time"
)

// Scope is one of the four operations Permissions can grant or deny.
type Scope int

const (
	Read Scope = iota
	WriteValue
	WriteActuatorTarget
	Register
)

type rule struct {
	scope   Scope
	pattern string
}

// Permissions is the decoded form of a caller's access token (or the
// unrestricted value used when authorization is disabled).
type Permissions struct {
	rules     []rule
	expiresAt time.Time
	allowAll  bool
}

// AllowAll returns a Permissions value that grants every scope on every
// path and never expires, used when the broker runs without
// authorization enabled.
func AllowAll() Permissions {
	return Permissions{allowAll: true}
}

// New builds a Permissions value from a scope-to-path-glob-pattern map
// and an optional expiry (the zero time.Time means "never expires").
func New(grants map[Scope][]string, expiresAt time.Time) Permissions {
	p := Permissions{expiresAt: expiresAt}
	for scope, patterns := range grants {
		for _, pattern := range patterns {
			p.rules = append(p.rules, rule{scope: scope, pattern: pattern})
		}
	}
	return p
}

// Allows reports whether p grants scope on signalPath.
func (p Permissions) Allows(scope Scope, signalPath string) bool {
	if p.allowAll {
		return true
	}
	for _, r := range p.rules {
		if r.scope != scope {
			continue
		}
		if matchPath(r.pattern, signalPath) {
			return true
		}
	}
	return false
}

// Expired reports whether p's token has passed its expiry as of now.
func (p Permissions) Expired(now time.Time) bool {
	if p.allowAll || p.expiresAt.IsZero() {
		return false
	}
	return now.After(p.expiresAt)
}

// matchPath matches a dot-separated signal path against a glob pattern
// using the same '*'/'?'/'[...]' syntax as path.Match; dots carry no
// special meaning to the matcher, so "Vehicle.*" matches every path
// under Vehicle at any depth.
func matchPath(pattern, signalPath string) bool {
	ok, err := path.Match(pattern, signalPath)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	return strings.EqualFold(pattern, signalPath)
}
