package sqlite

import (
	"context"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
)

type membersRepo struct {
	q dbtx
}

const memberColumns = `id, username, email, mobile, name, password_hash,
	created_at, updated_at, created_by, updated_by`

func (r *membersRepo) Create(ctx context.Context, m *domain.Member) error {
	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO members (username, email, mobile, name, password_hash,
			created_at, updated_at, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Username, m.Email, m.Mobile, m.Name, m.PasswordHash,
		now, now, m.CreatedBy, m.CreatedBy,
	)
	if err != nil {
		return mapConstraint(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

func (r *membersRepo) GetByID(ctx context.Context, id int64) (domain.Member, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
}

func (r *membersRepo) GetByUsername(ctx context.Context, username string) (domain.Member, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE username = ?`, username))
}

func (r *membersRepo) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email))
}

func (r *membersRepo) GetByIDWithRoles(ctx context.Context, id int64) (domain.Member, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	roles, err := (&rolesRepo{q: r.q}).ListForMember(ctx, id)
	if err != nil {
		return domain.Member{}, err
	}
	m.Roles = roles
	return m, nil
}

func (r *membersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, actorID int64) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE members
		SET password_hash = ?, updated_at = ?, updated_by = ?
		WHERE id = ?`,
		passwordHash, time.Now().UTC(), actorID, id,
	)
	return err
}

func (r *membersRepo) UpdateProfile(ctx context.Context, id int64, name, email, mobile string, actorID int64) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE members
		SET name = ?, email = ?, mobile = ?, updated_at = ?, updated_by = ?
		WHERE id = ?`,
		name, email, mobile, time.Now().UTC(), actorID, id,
	)
	return mapConstraint(err)
}

func (r *membersRepo) AssignRole(ctx context.Context, memberID, roleID, actorID int64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO member_roles (member_id, role_id, granted_at, granted_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (member_id, role_id) DO NOTHING`,
		memberID, roleID, time.Now().UTC(), actorID,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *membersRepo) scanOne(row rowScanner) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID, &m.Username, &m.Email, &m.Mobile, &m.Name, &m.PasswordHash,
		&m.CreatedAt, &m.UpdatedAt, &m.CreatedBy, &m.UpdatedBy,
	)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}
