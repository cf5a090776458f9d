package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/ports"
	"github.com/samirrijal/geoexport/internal/pkg/telemetry"
)

// placeNamespace seeds deterministic production place IDs, so re-importing
// a supplier's file updates rows instead of duplicating them.
var placeNamespace = uuid.MustParse("6f1c1b9e-4d0a-4c55-9a57-2f3c8e0b7d21")

// ImportSummary reports what an import stored.
type ImportSummary struct {
	SupplierID string                   `json:"supplier_id"`
	Places     int                      `json:"places"`
	Validation domain.ValidationOutcome `json:"validation"`
}

// SupplierService handles suppliers and their production places.
type SupplierService struct {
	suppliers ports.SupplierRepository
	places    ports.PlaceRepository
}

// NewSupplierService creates a new SupplierService.
func NewSupplierService(suppliers ports.SupplierRepository, places ports.PlaceRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers, places: places}
}

// List returns the client's suppliers.
func (s *SupplierService) List(ctx context.Context, clientID string) ([]domain.Supplier, error) {
	return s.suppliers.ListByClient(ctx, clientID)
}

// Get returns one of the client's suppliers.
func (s *SupplierService) Get(ctx context.Context, clientID, id string) (*domain.Supplier, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	sup, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	return sup, nil
}

// ImportPlaces repairs fc and upserts every feature as a production place
// of supplier. Invalid features are stored too; exports report them.
func (s *SupplierService) ImportPlaces(ctx context.Context, supplier *domain.Supplier, fc domain.FeatureCollection, collectedAt time.Time) (*ImportSummary, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanIngestSupplier)
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrClientID, supplier.ClientID),
		attribute.Int(telemetry.AttrFeatureCount, fc.Len()),
	)

	if err := s.suppliers.Upsert(ctx, supplier); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("upsert supplier: %w", err)
	}

	fixed := compliance.Fix(fc)
	places := PlacesFromFeatures(supplier, fixed, collectedAt)
	if err := s.places.UpsertBatch(ctx, places); err != nil {
		return nil, fmt.Errorf("upsert places: %w", err)
	}

	return &ImportSummary{
		SupplierID: supplier.ID,
		Places:     len(places),
		Validation: compliance.Validate(fixed),
	}, nil
}

// PlacesFromFeatures maps features to production places of supplier.
// Features without a country inherit the supplier's. Place ids derive from
// the supplier and place name; repeated names within one import are told
// apart by their occurrence number.
func PlacesFromFeatures(supplier *domain.Supplier, fc domain.FeatureCollection, collectedAt time.Time) []domain.SourcePlace {
	places := make([]domain.SourcePlace, 0, fc.Len())
	seen := make(map[string]int, fc.Len())
	for i, f := range fc.Features {
		name := f.Properties.PlaceName
		if name == "" {
			name = fmt.Sprintf("%s #%d", supplier.Name, i+1)
		}
		country := f.Properties.ProducerCountry
		if country == "" {
			country = supplier.Country
		}
		seed := supplier.ID + "/" + name
		if seen[name]++; seen[name] > 1 {
			seed = fmt.Sprintf("%s#%d", seed, seen[name])
		}
		places = append(places, domain.SourcePlace{
			ID:           uuid.NewSHA1(placeNamespace, []byte(seed)).String(),
			PlaceName:    name,
			AreaHectares: f.Properties.AreaHectares,
			Geometry:     f.Geometry,
			Country:      country,
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			Commodity:    supplier.Commodity,
			CollectedAt:  collectedAt,
		})
	}
	return places
}
