package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
	"github.com/ls-softworks/comitte/internal/comitte/store"
	"github.com/ls-softworks/comitte/pkg/cryptox"
	"github.com/ls-softworks/comitte/pkg/slogx"
)

var ErrResetTokenInvalid = errors.New("reset_token_invalid")

const (
	// ResetTokenTTL bounds how long a reset link or OTP stays usable.
	ResetTokenTTL = 15 * time.Minute

	resetOTPDigits = 6
)

// Mailer delivers reset credentials to a member. The production wiring can
// point this at an SMTP or SMS gateway; the default logs the delivery so the
// flow works end to end in development.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to domain.Member, token, otp string) error
}

// LogMailer writes the reset credential to the structured log instead of
// sending it anywhere. Development use only.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to domain.Member, token, otp string) error {
	slogx.FromContext(ctx).Info("password reset issued",
		slog.String("email", to.Email),
		slog.String("token", token),
		slog.String("otp", otp),
	)
	return nil
}

// PasswordResetService issues and redeems single-use reset credentials.
type PasswordResetService struct {
	Store    store.Store
	Mailer   Mailer
	Hasher   PasswordHasher
	TokenTTL time.Duration
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TokenTTL != 0 {
		return s.TokenTTL
	}
	return ResetTokenTTL
}

func (s *PasswordResetService) hasher() PasswordHasher {
	if s.Hasher != nil {
		return s.Hasher
	}
	return argonHasher{}
}

// Request issues a reset credential for the account matching the identifier
// and hands it to the Mailer. An unknown identifier is not an error: the
// caller always sees the same acknowledgement, so the endpoint cannot be
// used to probe which addresses exist.
func (s *PasswordResetService) Request(ctx context.Context, usernameOrEmail string) error {
	member, err := s.Store.Members().GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, store.ErrNotFound) {
		member, err = s.Store.Members().GetByEmail(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Info("password reset requested for unknown identifier")
			return nil
		}
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	otp, err := cryptox.GenerateOTP(resetOTPDigits)
	if err != nil {
		return err
	}

	reset := domain.PasswordResetToken{
		MemberID:  member.ID,
		Token:     token,
		OTP:       otp,
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}
	if err := s.Store.PasswordResetTokens().Create(ctx, &reset); err != nil {
		return err
	}

	return s.Mailer.SendPasswordReset(ctx, member, token, otp)
}

// Redeem consumes a reset credential and sets the new password. The caller
// supplies either the opaque token, or the identifier plus OTP. All failure
// modes collapse into ErrResetTokenInvalid.
func (s *PasswordResetService) Redeem(ctx context.Context, token, usernameOrEmail, otp, newPassword string) error {
	now := time.Now().UTC()

	var reset domain.PasswordResetToken
	var err error

	switch {
	case token != "":
		reset, err = s.Store.PasswordResetTokens().GetByToken(ctx, token)
	case usernameOrEmail != "" && otp != "":
		var member domain.Member
		member, err = s.Store.Members().GetByUsername(ctx, usernameOrEmail)
		if errors.Is(err, store.ErrNotFound) {
			member, err = s.Store.Members().GetByEmail(ctx, usernameOrEmail)
		}
		if err == nil {
			reset, err = s.Store.PasswordResetTokens().GetByMember(ctx, member.ID)
			if err == nil && reset.OTP != otp {
				err = store.ErrNotFound
			}
		}
	default:
		return ErrResetTokenInvalid
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if reset.Expired(now) {
		_ = s.Store.PasswordResetTokens().Delete(ctx, reset.ID)
		return ErrResetTokenInvalid
	}

	hash, err := s.hasher().Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Members().UpdatePassword(ctx, reset.MemberID, hash, reset.MemberID); err != nil {
			return err
		}
		return tx.PasswordResetTokens().Delete(ctx, reset.ID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset completed",
		slog.Int64("member_id", reset.MemberID))
	return nil
}
