package sqlite

import (
	"context"
	"strings"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
)

type membershipsRepo struct {
	db dbtx
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, business_id, user_id, role)
		 VALUES (?, ?, ?, ?)`,
		m.ID, m.BusinessID, m.UserID, string(m.Role))
	return mapConflict(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, businessID, userID string) (domain.Membership, error) {
	var m domain.Membership
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, business_id, user_id, role, created_at, updated_at
		 FROM memberships WHERE business_id = ? AND user_id = ?`,
		businessID, userID).
		Scan(&m.ID, &m.BusinessID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Role = domain.BusinessRole(role)
	return m, nil
}

func (r *membershipsRepo) ListMembers(ctx context.Context, businessID string, roles []domain.BusinessRole) ([]domain.Member, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(roles))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(roles)+1)
	args = append(args, businessID)
	for _, role := range roles {
		args = append(args, string(role))
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, m.role, m.created_at
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.business_id = ? AND m.role IN (`+placeholders+`)
		 ORDER BY m.created_at ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var mem domain.Member
		var role string
		if err := rows.Scan(&mem.UserID, &mem.Username, &mem.Email, &role, &mem.JoinedAt); err != nil {
			return nil, err
		}
		mem.Role = domain.BusinessRole(role)
		members = append(members, mem)
	}
	return members, rows.Err()
}

func (r *membershipsRepo) ListUserBusinesses(ctx context.Context, userID string) ([]domain.BusinessSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.business_id, b.name, m.role, m.created_at
		 FROM memberships m
		 JOIN businesses b ON b.id = m.business_id
		 WHERE m.user_id = ?
		 ORDER BY m.created_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BusinessSummary
	for rows.Next() {
		var s domain.BusinessSummary
		var role string
		if err := rows.Scan(&s.BusinessID, &s.Name, &role, &s.JoinedAt); err != nil {
			return nil, err
		}
		s.Role = domain.BusinessRole(role)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, businessID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE business_id = ? AND user_id = ?`,
		businessID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
