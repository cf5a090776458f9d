package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/geoexport/internal/adapters/filestore"
	natsadapter "github.com/samirrijal/geoexport/internal/adapters/nats"
	"github.com/samirrijal/geoexport/internal/adapters/postgres"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/export"
	"github.com/samirrijal/geoexport/internal/core/usecases"
	"github.com/samirrijal/geoexport/internal/pkg/config"
	"github.com/samirrijal/geoexport/internal/pkg/logging"
	"github.com/samirrijal/geoexport/internal/pkg/telemetry"
	"github.com/samirrijal/geoexport/internal/workflows"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("geoexport-exporter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store, err := filestore.New(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	exports := usecases.NewExportService(
		postgres.NewPlaceRepo(db),
		postgres.NewExportRepo(db),
		store,
		pub,
		export.NewAssembler(
			export.WithParallelThreshold(cfg.Export.ParallelThreshold),
			export.WithLogger(logger),
		),
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.Export.Workers,
	})
	w.RegisterWorkflow(workflows.ExportWorkflow)
	w.RegisterActivity(&workflows.ExportActivities{Exports: exports})

	if err := w.Start(); err != nil {
		log.Fatalf("worker: %v", err)
	}
	defer w.Stop()

	// Queued requests start workflows; JetStream redelivers until started.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	starter := &workflows.Starter{Client: c, TaskQueue: cfg.Temporal.TaskQueue}
	err = sub.SubscribeExportRequests(ctx, func(ctx context.Context, req *domain.ExportRequest) error {
		slog.InfoContext(ctx, "export requested", "request_id", req.RequestID, "client_id", req.ClientID)
		return starter.Start(ctx, req)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("exporter worker started", "task_queue", cfg.Temporal.TaskQueue)
	<-ctx.Done()
	slog.Info("exporter stopping")
}
