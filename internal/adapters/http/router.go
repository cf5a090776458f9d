package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geoexport/internal/pkg/metrics"
)

// geometryTimeout bounds the document endpoints; exports use
// Dependencies.ExportTimeout.
const geometryTimeout = 30 * time.Second

// deprecatedRoutes are kept for older clients.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/validate",
		SunsetDate:  time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/geometry/validate",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", APIVersion)
		return c.Next()
	})

	app.Use(DeprecationMiddleware(deprecatedRoutes))
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout; fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Stateless document endpoints
	v1.Post("/geometry/validate", timeout.NewWithContext(ValidateGeometryHandler(deps), geometryTimeout))
	v1.Post("/geometry/fix", timeout.NewWithContext(FixGeometryHandler(deps), geometryTimeout))
	v1.Post("/geometry/optimize", timeout.NewWithContext(OptimizeGeometryHandler(deps), geometryTimeout))
	v1.Post("/validate", timeout.NewWithContext(ValidateGeometryHandler(deps), geometryTimeout))

	// Client-scoped endpoints
	client := ClientMiddleware()
	v1.Post("/exports", client, timeout.NewWithContext(CreateExportHandler(deps), deps.exportTimeout()))
	v1.Post("/exports/async", client, timeout.NewWithContext(RequestExportHandler(deps), geometryTimeout))
	v1.Get("/exports", client, timeout.NewWithContext(ListExportsHandler(deps), geometryTimeout))
	v1.Get("/exports/:id", client, timeout.NewWithContext(GetExportHandler(deps), geometryTimeout))
	v1.Get("/suppliers", client, timeout.NewWithContext(ListSuppliersHandler(deps), geometryTimeout))
	v1.Post("/suppliers", client, timeout.NewWithContext(ImportSupplierHandler(deps), deps.exportTimeout()))
	v1.Get("/suppliers/:id", client, timeout.NewWithContext(GetSupplierHandler(deps), geometryTimeout))

	// GraphQL
	app.Post("/graphql", client, GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket: export completion events for the calling client
	app.Use("/ws", client, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
