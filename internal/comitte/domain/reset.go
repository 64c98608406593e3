package domain

import "time"

// PasswordResetToken is a single-use credential for the password reset flow.
// Token is the url-safe secret delivered by link, OTP the short numeric code
// delivered in the same message for clients that cannot follow links.
type PasswordResetToken struct {
	ID        int64
	MemberID  int64
	Token     string
	OTP       string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
