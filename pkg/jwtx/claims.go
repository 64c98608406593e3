package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
// Sessions are bounded by the inactivity window well before this, so the
// token-level expiry is a backstop rather than the primary control.
const DefaultAccessTokenTTL = 1 * time.Hour

// Claims are the access-token claims for the comitte service. The claim set
// is fixed on purpose: everything the request path needs to reconstruct the
// caller's identity is embedded at issue time, so no claim is ever read out
// of an open-ended map.
type Claims struct {
	jwt.RegisteredClaims

	// MemberID is the numeric identity id of the subject.
	MemberID int64 `json:"member_id,omitempty"`

	// Name is the display name for the member.
	Name string `json:"name,omitempty"`

	// Email and Mobile are contact fields carried for downstream display.
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`

	// RoleIDs and RoleNames are the roles granted at login. RoleNames carry
	// the "ROLE_" prefix the authorization layer matches on.
	RoleIDs   []int64  `json:"role_ids,omitempty"`
	RoleNames []string `json:"role_names,omitempty"`

	// AuthorityNames are the fine-grained authorities mapped through the
	// member's roles.
	AuthorityNames []string `json:"authority_names,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for a member login.
func NewAccessClaims(
	subject string,
	memberID int64,
	name, email, mobile string,
	roleIDs []int64,
	roleNames, authorityNames []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		MemberID:       memberID,
		Name:           name,
		Email:          email,
		Mobile:         mobile,
		RoleIDs:        roleIDs,
		RoleNames:      roleNames,
		AuthorityNames: authorityNames,
	}
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}
