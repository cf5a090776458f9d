package postgres

import (
	"context"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// SupplierRepo implements ports.SupplierRepository with pgx.
type SupplierRepo struct {
	db *DB
}

// NewSupplierRepo creates a new SupplierRepo.
func NewSupplierRepo(db *DB) *SupplierRepo {
	return &SupplierRepo{db: db}
}

// Upsert inserts or updates a supplier. An empty ID is assigned by the
// database and written back.
func (r *SupplierRepo) Upsert(ctx context.Context, s *domain.Supplier) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO suppliers (id, client_id, name, country, commodity)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, country = EXCLUDED.country, commodity = EXCLUDED.commodity
		RETURNING id, created_at
	`, s.ID, s.ClientID, s.Name, s.Country, s.Commodity).Scan(&s.ID, &s.CreatedAt)
}

// GetByID returns a supplier by UUID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	var s domain.Supplier
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, client_id, name, country, COALESCE(commodity, ''), created_at
		FROM suppliers WHERE id = $1
	`, id).Scan(&s.ID, &s.ClientID, &s.Name, &s.Country, &s.Commodity, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// ListByClient returns a client's suppliers ordered by name.
func (r *SupplierRepo) ListByClient(ctx context.Context, clientID string) ([]domain.Supplier, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, client_id, name, country, COALESCE(commodity, ''), created_at
		FROM suppliers WHERE client_id = $1
		ORDER BY name
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []domain.Supplier{}
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.ClientID, &s.Name, &s.Country, &s.Commodity, &s.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
