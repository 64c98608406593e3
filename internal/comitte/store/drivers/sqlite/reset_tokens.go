package sqlite

import (
	"context"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
)

type resetTokensRepo struct {
	q dbtx
}

func (r *resetTokensRepo) Create(ctx context.Context, t *domain.PasswordResetToken) error {
	// One outstanding token per member; a new request supersedes the old one.
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE member_id = ?`, t.MemberID,
	); err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (member_id, token, otp, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.MemberID, t.Token, t.OTP, t.ExpiresAt, now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	t.CreatedAt = now
	return nil
}

func (r *resetTokensRepo) GetByToken(ctx context.Context, token string) (domain.PasswordResetToken, error) {
	return r.scanOne(r.q.QueryRowContext(ctx, `
		SELECT id, member_id, token, otp, expires_at, created_at
		FROM password_reset_tokens WHERE token = ?`, token))
}

func (r *resetTokensRepo) GetByMember(ctx context.Context, memberID int64) (domain.PasswordResetToken, error) {
	return r.scanOne(r.q.QueryRowContext(ctx, `
		SELECT id, member_id, token, otp, expires_at, created_at
		FROM password_reset_tokens WHERE member_id = ?`, memberID))
}

func (r *resetTokensRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE id = ?`, id)
	return err
}

func (r *resetTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *resetTokensRepo) scanOne(row rowScanner) (domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := row.Scan(&t.ID, &t.MemberID, &t.Token, &t.OTP, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return t, nil
}
