package httpx

import (
	"context"
	"slices"

	"github.com/ls-softworks/comitte/pkg/jwtx"
)

// Identity is the per-request identity context populated by the
// authentication gate from decoded token claims. It lives only for the
// request and is never persisted.
type Identity struct {
	MemberID       int64
	Username       string
	Name           string
	Email          string
	Mobile         string
	RoleIDs        []int64
	RoleNames      []string
	AuthorityNames []string
}

// HasAny reports whether the identity holds at least one of the named roles
// or authorities.
func (id Identity) HasAny(names ...string) bool {
	for _, want := range names {
		if slices.Contains(id.RoleNames, want) || slices.Contains(id.AuthorityNames, want) {
			return true
		}
	}
	return false
}

// IdentityFromClaims builds the request identity from decoded claims. This
// is the claims-only reconstruction: no identity-store lookup happens on the
// request path, so role changes become visible at the member's next login.
func IdentityFromClaims(c jwtx.Claims) Identity {
	return Identity{
		MemberID:       c.MemberID,
		Username:       c.Subject,
		Name:           c.Name,
		Email:          c.Email,
		Mobile:         c.Mobile,
		RoleIDs:        c.RoleIDs,
		RoleNames:      c.RoleNames,
		AuthorityNames: c.AuthorityNames,
	}
}

type identityCtxKey struct{}

// WithIdentity attaches the request identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the request identity, if an authenticated one
// exists.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// ActorID answers "who is performing this write" for audit attribution. It
// reads the identity already resolved for this request; there is no
// identity-store round trip. The false return covers anonymous and
// system-triggered work, and the caller decides whether that is acceptable.
func ActorID(ctx context.Context) (int64, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.MemberID == 0 {
		return 0, false
	}
	return id.MemberID, true
}
