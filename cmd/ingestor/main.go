package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/geoexport/internal/adapters/postgres"
	"github.com/samirrijal/geoexport/internal/core/usecases"
	"github.com/samirrijal/geoexport/internal/pkg/config"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
	"github.com/samirrijal/geoexport/internal/pkg/logging"
	"github.com/samirrijal/geoexport/internal/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("geoexport-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("ingesting supplier places", "suppliers", len(manifest.Suppliers), "source", manifest.Source, "client_id", manifest.ClientID)

	// Filter suppliers (optional CLI arg: name list)
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.TrimSpace(s)] = true
		}
	}

	svc := usecases.NewSupplierService(postgres.NewSupplierRepo(db), postgres.NewPlaceRepo(db))
	client := &http.Client{Timeout: 120 * time.Second}
	baseDir := filepath.Dir(manifestPath)

	var g errgroup.Group
	g.SetLimit(cfg.Export.Workers)

	failed := 0
	results := make(chan error, len(manifest.Suppliers))
	for _, entry := range manifest.Suppliers {
		if len(nameFilter) > 0 && !nameFilter[entry.Name] {
			continue
		}
		g.Go(func() error {
			err := ingestSupplier(ctx, svc, client, baseDir, manifest.ClientID, entry)
			if err != nil {
				metrics.IngestErrors.WithLabelValues(entry.Name).Inc()
				slog.Error("supplier ingest failed", "supplier", entry.Name, "error", err)
			}
			results <- err
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for err := range results {
		if err != nil {
			failed++
		}
	}
	slog.Info("ingestion complete", "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func ingestSupplier(ctx context.Context, svc *usecases.SupplierService, client *http.Client, baseDir, clientID string, entry SupplierEntry) error {
	data, err := fetchPlaces(ctx, client, baseDir, entry.Places)
	if err != nil {
		return fmt.Errorf("fetch places: %w", err)
	}
	fc, err := geojson.Decode(data)
	if err != nil {
		return err
	}

	collected := time.Now().UTC()
	if entry.CollectedAt != nil {
		collected = entry.CollectedAt.UTC()
	}
	summary, err := svc.ImportPlaces(ctx, entry.Supplier(clientID), fc, collected)
	if err != nil {
		return err
	}

	metrics.PlacesIngested.WithLabelValues(entry.Name).Add(float64(summary.Places))
	slog.Info("supplier ingested",
		"supplier", entry.Name,
		"supplier_id", summary.SupplierID,
		"places", summary.Places,
		"errors", len(summary.Validation.Errors),
		"warnings", len(summary.Validation.Warnings),
	)
	return nil
}
