package domain

import "strings"

// Role differentiates company users from support staff.
type Role string

const (
	RoleClient  Role = "client"
	RoleSupport Role = "support"
)

// Roles lists every accepted role in canonical form.
var Roles = []Role{RoleClient, RoleSupport}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleSupport
}

// ParseRole returns the canonical role for raw input, defaulting to client when empty.
func ParseRole(raw string) (Role, bool) {
	clean := Role(strings.ToLower(strings.TrimSpace(raw)))
	if clean == "" {
		return RoleClient, true
	}
	if !clean.IsValid() {
		return "", false
	}
	return clean, true
}
