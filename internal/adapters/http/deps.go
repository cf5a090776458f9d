package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoexport/internal/adapters/postgres"
	"github.com/samirrijal/geoexport/internal/adapters/valkey"
	"github.com/samirrijal/geoexport/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Exports    *usecases.ExportService
	Validation *usecases.ValidationService
	Suppliers  *usecases.SupplierService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache

	// ExportTimeout bounds a synchronous export; zero uses the default.
	ExportTimeout time.Duration
}

func (d *Dependencies) exportTimeout() time.Duration {
	if d.ExportTimeout <= 0 {
		return 60 * time.Second
	}
	return d.ExportTimeout
}
