package domain

import (
	"strings"
	"time"
)

// RolePrefix is prepended to bare role names when they are surfaced as
// granted authorities, e.g. "ADMIN" becomes "ROLE_ADMIN".
const RolePrefix = "ROLE_"

// Well-known role names, stored without the prefix.
const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Role groups authorities. Names are stored bare ("ADMIN") and prefixed only
// when exposed to authorization checks.
type Role struct {
	ID          int64
	Name        string
	Description string
	Authorities []Authority
	CreatedAt   time.Time
}

// PrefixedName returns the role name with RolePrefix applied exactly once.
func (r Role) PrefixedName() string {
	if strings.HasPrefix(r.Name, RolePrefix) {
		return r.Name
	}
	return RolePrefix + r.Name
}

// Authority is a fine-grained permission attached to roles.
type Authority struct {
	ID          int64
	Name        string
	Description string
}
