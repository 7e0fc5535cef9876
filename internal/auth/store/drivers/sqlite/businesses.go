package sqlite

import (
	"context"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
)

type businessesRepo struct {
	db dbtx
}

func (r *businessesRepo) GetBusinessByID(ctx context.Context, id string) (domain.Business, error) {
	var b domain.Business
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, category, description, address, phone, email, created_at, updated_at
		 FROM businesses WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Category, &b.Description,
			&b.Address, &b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Business{}, mapNotFound(err)
	}
	return b, nil
}

func (r *businessesRepo) CreateBusiness(ctx context.Context, b domain.Business) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, category, description, address, phone, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Category, b.Description, b.Address, b.Phone, b.Email)
	return mapConflict(err)
}

func (r *businessesRepo) UpdateBusiness(ctx context.Context, b domain.Business) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE businesses
		 SET name = ?, category = ?, description = ?, address = ?, phone = ?, email = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		b.Name, b.Category, b.Description, b.Address, b.Phone, b.Email, b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *businessesRepo) DeleteBusiness(ctx context.Context, businessID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM businesses WHERE id = ?`, businessID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
