package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// UpsertBatch inserts or updates many places using pgx.Batch.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.SourcePlace) error {
	if len(places) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range places {
		geom, err := encodeGeometry(p.Geometry)
		if err != nil {
			return fmt.Errorf("place %s: %w", p.ID, err)
		}
		var collected *time.Time
		if !p.CollectedAt.IsZero() {
			collected = &p.CollectedAt
		}
		batch.Queue(`
			INSERT INTO production_places (id, supplier_id, place_name, area_hectares, country, geometry, collected_at)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
			ON CONFLICT (id) DO UPDATE
			SET place_name = EXCLUDED.place_name, area_hectares = EXCLUDED.area_hectares,
			    country = EXCLUDED.country, geometry = EXCLUDED.geometry,
			    collected_at = EXCLUDED.collected_at, updated_at = now()
		`, p.ID, p.SupplierID, p.PlaceName, p.AreaHectares, p.Country, geom, collected)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Query returns the client's places matching filter, ordered by supplier
// name then place name.
func (r *PlaceRepo) Query(ctx context.Context, clientID string, filter domain.PlaceFilter) ([]domain.SourcePlace, error) {
	supplierIDs := filter.SupplierIDs
	if supplierIDs == nil {
		supplierIDs = []string{}
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT p.id, p.place_name, p.area_hectares, p.geometry, p.country,
		       s.id, s.name, COALESCE(s.commodity, ''), p.collected_at
		FROM production_places p
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE s.client_id = $1
		  AND (cardinality($2::uuid[]) = 0 OR s.id = ANY($2::uuid[]))
		  AND ($3 = '' OR s.commodity = $3)
		ORDER BY s.name, p.place_name, p.id
	`, clientID, supplierIDs, filter.Commodity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []domain.SourcePlace{}
	for rows.Next() {
		var (
			p         domain.SourcePlace
			geom      []byte
			collected *time.Time
		)
		if err := rows.Scan(
			&p.ID, &p.PlaceName, &p.AreaHectares, &geom, &p.Country,
			&p.SupplierID, &p.SupplierName, &p.Commodity, &collected,
		); err != nil {
			return nil, err
		}
		p.Geometry = geojson.DecodeGeometry(geom)
		if collected != nil {
			p.CollectedAt = *collected
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// encodeGeometry renders g for a jsonb parameter; a missing geometry is
// stored as SQL NULL.
func encodeGeometry(g domain.Geometry) (*string, error) {
	if g == nil {
		return nil, nil
	}
	raw, err := geojson.EncodeGeometry(g)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("geometry is not valid JSON")
	}
	s := string(raw)
	return &s, nil
}
