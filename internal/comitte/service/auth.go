package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
	"github.com/ls-softworks/comitte/internal/comitte/store"
	"github.com/ls-softworks/comitte/pkg/cryptox"
	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAlreadyRegistered  = errors.New("already_registered")
	ErrMemberNotFound     = errors.New("member_not_found")
)

// PasswordHasher abstracts password hashing so tests can substitute a cheap
// implementation for the argon2id default.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) error
}

type argonHasher struct{}

func (argonHasher) Hash(password string) (string, error) { return cryptox.HashPassword(password) }
func (argonHasher) Verify(password, encoded string) error {
	return cryptox.VerifyPassword(password, encoded)
}

// DefaultHasher is the production argon2id hasher.
func DefaultHasher() PasswordHasher { return argonHasher{} }

// AuthService owns credential checks, token minting and session lifecycle.
type AuthService struct {
	Store    store.Store
	Codec    *jwtx.Codec
	Sessions *sessionx.Tracker
	Hasher   PasswordHasher
	TokenTTL time.Duration
}

func (s *AuthService) hasher() PasswordHasher {
	if s.Hasher != nil {
		return s.Hasher
	}
	return argonHasher{}
}

// TokenLifetime reports the lifetime stamped on issued tokens, falling back
// to the jwtx default when no TTL was configured.
func (s *AuthService) TokenLifetime() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// Login verifies the credential against the stored hash and mints an access
// token. The identifier is tried as a username first, then as an email
// address. Failures collapse into ErrInvalidCredentials so callers cannot
// learn which part was wrong.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (string, domain.Member, error) {
	l := slogx.FromContext(ctx)

	member, err := s.Store.Members().GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, store.ErrNotFound) {
		member, err = s.Store.Members().GetByEmail(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed: unknown identifier")
			return "", domain.Member{}, ErrInvalidCredentials
		}
		return "", domain.Member{}, err
	}

	if err := s.hasher().Verify(password, member.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed: password mismatch", slog.Int64("member_id", member.ID))
			return "", domain.Member{}, ErrInvalidCredentials
		}
		return "", domain.Member{}, err
	}

	roles, err := s.Store.Roles().ListForMember(ctx, member.ID)
	if err != nil {
		return "", domain.Member{}, err
	}
	member.Roles = roles

	claims := jwtx.NewAccessClaims(
		member.Username,
		member.ID,
		member.Name,
		member.Email,
		member.Mobile,
		member.RoleIDs(),
		member.RoleNames(),
		member.AuthorityNames(),
		s.TokenLifetime(),
		s.Codec.Issuer(),
		time.Now(),
	)

	token, err := s.Codec.Issue(claims)
	if err != nil {
		return "", domain.Member{}, err
	}

	// Seed the activity record so the inactivity window starts at login.
	s.Sessions.Touch(token)

	l.Info("login succeeded",
		slog.Int64("member_id", member.ID),
		slog.String("username", member.Username),
	)
	return token, member, nil
}

// Logout revokes the presented token. It is idempotent: revoking an already
// revoked, expired or never-seen token succeeds the same way, so a retried
// logout never surfaces an error.
func (s *AuthService) Logout(ctx context.Context, rawToken string) time.Time {
	if rawToken != "" {
		s.Sessions.Revoke(rawToken)
		slogx.FromContext(ctx).Info("token revoked on logout")
	}
	return time.Now()
}

// SessionStatus reports whether the presented token still maps to a live
// session and how many seconds remain before the inactivity window lapses.
// Probing the status counts as activity, so an active session is refreshed.
func (s *AuthService) SessionStatus(ctx context.Context, rawToken string) (active bool, remainingSeconds int64) {
	if rawToken == "" {
		return false, 0
	}
	if _, err := s.Codec.Decode(rawToken); err != nil {
		return false, 0
	}
	if s.Sessions.IsExpired(rawToken) {
		return false, 0
	}
	s.Sessions.Touch(rawToken)
	return true, s.Sessions.Remaining(rawToken)
}

// Register creates a member account with the default MEMBER role.
func (s *AuthService) Register(ctx context.Context, username, email, mobile, name, password string) (domain.Member, error) {
	hash, err := s.hasher().Hash(password)
	if err != nil {
		return domain.Member{}, err
	}

	member := domain.Member{
		Username:     username,
		Email:        email,
		Mobile:       mobile,
		Name:         name,
		PasswordHash: hash,
	}

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Members().Create(ctx, &member); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyRegistered
			}
			return err
		}

		role, err := tx.Roles().GetByName(ctx, domain.RoleMember)
		if err != nil {
			return err
		}
		if err := tx.Members().AssignRole(ctx, member.ID, role.ID, member.ID); err != nil {
			return err
		}
		member.Roles = []domain.Role{role}
		return nil
	})
	if err != nil {
		return domain.Member{}, err
	}

	slogx.FromContext(ctx).Info("member registered",
		slog.Int64("member_id", member.ID),
		slog.String("username", member.Username),
	)
	return member, nil
}

// Profile loads a member with roles, mapping missing rows to
// ErrMemberNotFound.
func (s *AuthService) Profile(ctx context.Context, memberID int64) (domain.Member, error) {
	member, err := s.Store.Members().GetByIDWithRoles(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Member{}, ErrMemberNotFound
	}
	return member, err
}

// UpdateProfile changes the mutable profile fields, recording the acting
// member for audit. actorID is the authenticated member performing the
// change, which may differ from memberID for admin edits.
func (s *AuthService) UpdateProfile(ctx context.Context, memberID int64, name, email, mobile string, actorID int64) (domain.Member, error) {
	current, err := s.Profile(ctx, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if name == "" {
		name = current.Name
	}
	if email == "" {
		email = current.Email
	}
	if mobile == "" {
		mobile = current.Mobile
	}

	if err := s.Store.Members().UpdateProfile(ctx, memberID, name, email, mobile, actorID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Member{}, ErrAlreadyRegistered
		}
		return domain.Member{}, err
	}
	return s.Profile(ctx, memberID)
}

// AssignRole grants roleName to the member, recording the acting admin.
// Granting a role the member already holds is a no-op.
func (s *AuthService) AssignRole(ctx context.Context, memberID int64, roleName string, actorID int64) error {
	role, err := s.Store.Roles().GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if _, err := s.Profile(ctx, memberID); err != nil {
		return err
	}
	if err := s.Store.Members().AssignRole(ctx, memberID, role.ID, actorID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("role assigned",
		slog.Int64("member_id", memberID),
		slog.String("role", role.PrefixedName()),
		slog.Int64("actor_id", actorID),
	)
	return nil
}
