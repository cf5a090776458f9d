//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/samirrijal/geoexport/internal/adapters/postgres"
	"github.com/samirrijal/geoexport/internal/core/domain"
)

// setupTestDB starts a disposable Postgres and applies the migrations.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("geoexport"),
		tcpostgres.WithUsername("geoexport"),
		tcpostgres.WithPassword("geoexport"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgres.Migrate(ctx, db, "up"))
	return db
}

func TestRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	suppliers := postgres.NewSupplierRepo(db)
	places := postgres.NewPlaceRepo(db)
	exports := postgres.NewExportRepo(db)

	zeta := &domain.Supplier{ClientID: "client-1", Name: "Zeta Farms", Country: "CI", Commodity: "cocoa"}
	alpha := &domain.Supplier{ClientID: "client-1", Name: "Alpha Coop", Country: "BR", Commodity: "coffee"}
	other := &domain.Supplier{ClientID: "client-2", Name: "Other", Country: "BR"}
	for _, s := range []*domain.Supplier{zeta, alpha, other} {
		require.NoError(t, suppliers.Upsert(ctx, s))
		require.NotEmpty(t, s.ID)
	}

	t.Run("suppliers", func(t *testing.T) {
		got, err := suppliers.GetByID(ctx, alpha.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alpha Coop", got.Name)

		list, err := suppliers.ListByClient(ctx, "client-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Alpha Coop", list[0].Name)

		_, err = suppliers.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	collected := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	square := domain.Polygon{Rings: []domain.Ring{{
		{Lng: -5.1, Lat: 6.1}, {Lng: -5.0, Lat: 6.1}, {Lng: -5.0, Lat: 6.2}, {Lng: -5.1, Lat: 6.1},
	}}}
	batch := []domain.SourcePlace{
		{ID: "6f1c0e1a-0000-4000-8000-000000000001", SupplierID: zeta.ID, PlaceName: "Plot B", AreaHectares: 3, Country: "CI", Geometry: square, CollectedAt: collected},
		{ID: "6f1c0e1a-0000-4000-8000-000000000002", SupplierID: zeta.ID, PlaceName: "Plot A", AreaHectares: 1, Country: "CI", Geometry: domain.Point{Coord: domain.Coordinate{Lng: -5.05, Lat: 6.15}}},
		{ID: "6f1c0e1a-0000-4000-8000-000000000003", SupplierID: alpha.ID, PlaceName: "Fazenda", AreaHectares: 10, Country: "BR"},
		{ID: "6f1c0e1a-0000-4000-8000-000000000004", SupplierID: other.ID, PlaceName: "Hidden", AreaHectares: 1, Country: "BR"},
	}
	require.NoError(t, places.UpsertBatch(ctx, batch))

	t.Run("places ordered by supplier then name", func(t *testing.T) {
		got, err := places.Query(ctx, "client-1", domain.PlaceFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"Fazenda", "Plot A", "Plot B"}, []string{got[0].PlaceName, got[1].PlaceName, got[2].PlaceName})
		assert.Equal(t, "Alpha Coop", got[0].SupplierName)
		assert.Nil(t, got[0].Geometry)
		assert.Equal(t, square, got[2].Geometry)
		assert.True(t, got[2].CollectedAt.Equal(collected))
		assert.True(t, got[1].CollectedAt.IsZero())
	})

	t.Run("places filtered", func(t *testing.T) {
		got, err := places.Query(ctx, "client-1", domain.PlaceFilter{SupplierIDs: []string{alpha.ID}})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = places.Query(ctx, "client-1", domain.PlaceFilter{Commodity: "cocoa"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("exports", func(t *testing.T) {
		rec := &domain.ExportRecord{
			ID:            "1b4e28ba-2fa1-4d3b-a3f5-ef19b5a7633b",
			ClientID:      "client-1",
			FileURL:       "http://files/client-1/x.zip",
			FileSizeBytes: 2048,
			Commodity:     "cocoa",
			SupplierIDs:   []string{zeta.ID},
			ValidationSummary: domain.ValidationSummary{
				Valid: true, FeatureCount: 2, TotalAreaHectares: 4, CountryCounts: map[string]int{"CI": 2},
			},
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, exports.Create(ctx, rec))

		got, err := exports.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ValidationSummary, got.ValidationSummary)
		assert.Equal(t, rec.SupplierIDs, got.SupplierIDs)

		list, err := exports.ListByClient(ctx, "client-1", 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		n, err := exports.CountByClient(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		require.NoError(t, exports.Delete(ctx, rec.ID))
		assert.ErrorIs(t, exports.Delete(ctx, rec.ID), domain.ErrNotFound)
	})
}
