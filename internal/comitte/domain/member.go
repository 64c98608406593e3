package domain

import "time"

// Member is an account in the identity store. Committee membership and bid
// records hang off the same numeric id but live outside this service.
type Member struct {
	ID       int64
	Username string
	Email    string
	Mobile   string
	Name     string

	// PasswordHash is the PHC-encoded argon2id hash. Never serialized out.
	PasswordHash string

	Roles []Role

	CreatedAt time.Time
	UpdatedAt time.Time

	// CreatedBy / UpdatedBy carry audit attribution: the member id of the
	// actor that performed the write, zero for self-service writes.
	CreatedBy int64
	UpdatedBy int64
}

// RoleIDs collects the ids of all granted roles.
func (m Member) RoleIDs() []int64 {
	ids := make([]int64, 0, len(m.Roles))
	for _, r := range m.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// RoleNames collects the prefixed names ("ROLE_ADMIN") of all granted roles.
func (m Member) RoleNames() []string {
	names := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		names = append(names, r.PrefixedName())
	}
	return names
}

// AuthorityNames collects the distinct authorities mapped through the
// member's roles.
func (m Member) AuthorityNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range m.Roles {
		for _, a := range r.Authorities {
			if _, dup := seen[a.Name]; dup {
				continue
			}
			seen[a.Name] = struct{}{}
			names = append(names, a.Name)
		}
	}
	return names
}
