package sqlite

import (
	"context"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
)

type rolesRepo struct {
	q dbtx
}

func (r *rolesRepo) GetByName(ctx context.Context, name string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = ?`,
		name,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	auths, err := r.authoritiesForRole(ctx, role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	role.Authorities = auths
	return role, nil
}

func (r *rolesRepo) ListForMember(ctx context.Context, memberID int64) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at
		FROM roles r
		JOIN member_roles mr ON mr.role_id = r.id
		WHERE mr.member_id = ?
		ORDER BY r.id`,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		auths, err := r.authoritiesForRole(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Authorities = auths
	}
	return roles, nil
}

func (r *rolesRepo) authoritiesForRole(ctx context.Context, roleID int64) ([]domain.Authority, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT a.id, a.name, a.description
		FROM authorities a
		JOIN role_authorities ra ON ra.authority_id = a.id
		WHERE ra.role_id = ?
		ORDER BY a.id`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auths []domain.Authority
	for rows.Next() {
		var a domain.Authority
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	return auths, rows.Err()
}
