package domain

import (
	"sort"
	"time"
)

// Role is an authorization role carried in access-token claims.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleClient, RoleAdmin:
		return true
	}
	return false
}

// Principal is an identity, guest or authenticated, that can own cart lines.
type Principal struct {
	ID        string
	Roles     []Role
	CreatedAt time.Time
}

// IsGuest reports whether the principal holds only the guest role.
func (p Principal) IsGuest() bool {
	return len(p.Roles) == 1 && p.Roles[0] == RoleGuest
}

// HasRole reports membership of role in the principal's role set.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRoles removes duplicates and unknown values and sorts the set.
func NormalizeRoles(roles []Role) []Role {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleStrings converts roles to their string form for storage.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings parses stored role names, dropping unknown ones.
func RolesFromStrings(values []string) []Role {
	roles := make([]Role, len(values))
	for i, v := range values {
		roles[i] = Role(v)
	}
	return NormalizeRoles(roles)
}
