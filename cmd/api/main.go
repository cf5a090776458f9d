package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/geoexport/internal/adapters/filestore"
	"github.com/samirrijal/geoexport/internal/adapters/http"
	natsadapter "github.com/samirrijal/geoexport/internal/adapters/nats"
	"github.com/samirrijal/geoexport/internal/adapters/postgres"
	"github.com/samirrijal/geoexport/internal/adapters/valkey"
	"github.com/samirrijal/geoexport/internal/core/export"
	"github.com/samirrijal/geoexport/internal/core/ports"
	"github.com/samirrijal/geoexport/internal/core/usecases"
	"github.com/samirrijal/geoexport/internal/pkg/config"
	"github.com/samirrijal/geoexport/internal/pkg/logging"
	"github.com/samirrijal/geoexport/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load() // OK if missing

	cfg, err := config.Load("geoexport-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Archive storage
	store, err := filestore.New(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Cache
	var validationCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "geoexport:")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		validationCache = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, async exports disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	// Repos
	supplierRepo := postgres.NewSupplierRepo(db)
	placeRepo := postgres.NewPlaceRepo(db)
	exportRepo := postgres.NewExportRepo(db)

	// Use cases
	assembler := export.NewAssembler(
		export.WithParallelThreshold(cfg.Export.ParallelThreshold),
		export.WithLogger(slog.Default()),
	)
	deps := &http.Dependencies{
		Exports:       usecases.NewExportService(placeRepo, exportRepo, store, publisher, assembler),
		Validation:    usecases.NewValidationService(validationCache, cfg.Valkey.CacheTTL, cfg.Export.ParallelThreshold),
		Suppliers:     usecases.NewSupplierService(supplierRepo, placeRepo),
		NATS:          natsConn,
		DB:            db,
		Cache:         cache,
		ExportTimeout: time.Duration(cfg.Export.TimeoutSeconds) * time.Second,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "Geoexport API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, " + http.HeaderClientID,
		ExposeHeaders:    "Location, Link, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	// Archives are served from the store when no CDN fronts it.
	app.Static("/files", store.Root(), fiber.Static{Download: true})

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight exports time to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), deps.ExportTimeout+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
