package ports

import (
	"context"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// SupplierRepository persists suppliers.
type SupplierRepository interface {
	Upsert(ctx context.Context, supplier *domain.Supplier) error
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Supplier, error)
}

// PlaceRepository persists production places.
type PlaceRepository interface {
	UpsertBatch(ctx context.Context, places []domain.SourcePlace) error
	// Query returns the client's places matching filter, ordered by supplier
	// name then place name so exports are reproducible.
	Query(ctx context.Context, clientID string, filter domain.PlaceFilter) ([]domain.SourcePlace, error)
}

// ExportRepository persists historical export records.
type ExportRepository interface {
	Create(ctx context.Context, record *domain.ExportRecord) error
	GetByID(ctx context.Context, id string) (*domain.ExportRecord, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.ExportRecord, error)
	CountByClient(ctx context.Context, clientID string) (int, error)
	Delete(ctx context.Context, id string) error
}
