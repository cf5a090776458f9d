package postgres

import (
	"context"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// ExportRepo implements ports.ExportRepository with pgx.
type ExportRepo struct {
	db *DB
}

// NewExportRepo creates a new ExportRepo.
func NewExportRepo(db *DB) *ExportRepo {
	return &ExportRepo{db: db}
}

// Create inserts an export record.
func (r *ExportRepo) Create(ctx context.Context, e *domain.ExportRecord) error {
	supplierIDs := e.SupplierIDs
	if supplierIDs == nil {
		supplierIDs = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO exports (id, client_id, file_url, file_size_bytes, commodity, supplier_ids, validation_summary, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`, e.ID, e.ClientID, e.FileURL, e.FileSizeBytes, e.Commodity, supplierIDs, e.ValidationSummary, e.CreatedAt)
	return err
}

// GetByID returns an export record by UUID.
func (r *ExportRepo) GetByID(ctx context.Context, id string) (*domain.ExportRecord, error) {
	var e domain.ExportRecord
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, client_id, file_url, file_size_bytes, COALESCE(commodity, ''),
		       supplier_ids, validation_summary, created_at
		FROM exports WHERE id = $1
	`, id).Scan(
		&e.ID, &e.ClientID, &e.FileURL, &e.FileSizeBytes, &e.Commodity,
		&e.SupplierIDs, &e.ValidationSummary, &e.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// ListByClient returns a page of the client's export records, newest first.
func (r *ExportRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ExportRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, client_id, file_url, file_size_bytes, COALESCE(commodity, ''),
		       supplier_ids, validation_summary, created_at
		FROM exports WHERE client_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.ExportRecord{}
	for rows.Next() {
		var e domain.ExportRecord
		if err := rows.Scan(
			&e.ID, &e.ClientID, &e.FileURL, &e.FileSizeBytes, &e.Commodity,
			&e.SupplierIDs, &e.ValidationSummary, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

// CountByClient returns how many export records the client has.
func (r *ExportRepo) CountByClient(ctx context.Context, clientID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM exports WHERE client_id = $1`, clientID).Scan(&n)
	return n, err
}

// Delete removes an export record.
func (r *ExportRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM exports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
