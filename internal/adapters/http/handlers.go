package http

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geoexport/internal/core/compliance"
	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/core/usecases"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

// ValidateGeometryHandler checks an uploaded feature collection. An invalid
// document still answers 200; only a body that is not a feature
// collection is rejected.
func ValidateGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return errBadRequest(c, "request body must be a GeoJSON FeatureCollection")
		}
		report, err := deps.Validation.Validate(c.UserContext(), c.Body())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(report)
	}
}

// FixGeometryHandler closes rings and rounds coordinates.
func FixGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return errBadRequest(c, "request body must be a GeoJSON FeatureCollection")
		}
		result, err := deps.Validation.Fix(c.UserContext(), c.Body())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(result)
	}
}

// OptimizeGeometryHandler applies the export optimizations. Options come
// from the query string: convert_small_to_points, small_plot_threshold,
// simplify_tolerance and strategy (centroid | bbox).
func OptimizeGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return errBadRequest(c, "request body must be a GeoJSON FeatureCollection")
		}

		opts := compliance.OptimizeOptions{
			ConvertSmallToPoints:       c.QueryBool("convert_small_to_points", false),
			SmallPlotThresholdHectares: c.QueryFloat("small_plot_threshold", domain.DefaultSmallPlotThresholdHectares),
		}
		if opts.SmallPlotThresholdHectares <= 0 {
			return errBadRequest(c, "small_plot_threshold must be positive")
		}
		if c.Query("simplify_tolerance") != "" {
			tol := c.QueryFloat("simplify_tolerance", -1)
			opts.SimplifyTolerance = &tol
		}
		switch strings.ToLower(c.Query("strategy", "centroid")) {
		case "centroid":
			opts.Strategy = compliance.StrategyCentroid
		case "bbox":
			opts.Strategy = compliance.StrategyBoundingBox
		default:
			return errBadRequest(c, "strategy must be centroid or bbox")
		}

		result, err := deps.Validation.Optimize(c.UserContext(), c.Body(), opts)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(result)
	}
}

func parseExportOptions(c *fiber.Ctx) (domain.ExportOptions, error) {
	var opts domain.ExportOptions
	if len(c.Body()) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(c.Body(), &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// CreateExportHandler produces, stores and records an export synchronously.
func CreateExportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := parseExportOptions(c)
		if err != nil {
			return errBadRequest(c, "invalid export options: "+err.Error())
		}

		result, err := deps.Exports.Run(c.UserContext(), clientID(c), opts)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Location("/v1/exports/" + result.Record.ID)
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

// RequestExportHandler queues an export; completion is announced on the
// event stream.
func RequestExportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := parseExportOptions(c)
		if err != nil {
			return errBadRequest(c, "invalid export options: "+err.Error())
		}

		requestID, err := deps.Exports.Request(c.UserContext(), clientID(c), opts)
		if err != nil {
			if errors.Is(err, usecases.ErrAsyncUnavailable) {
				return errUnavailable(c, err.Error())
			}
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"request_id": requestID,
			"status":     "queued",
		})
	}
}

// ListExportsHandler returns the client's export history, newest first.
func ListExportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := deps.Exports.List(c.UserContext(), clientID(c), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
		if err != nil {
			return errFromDomain(c, err)
		}

		pg := Pagination{Offset: page.Offset, Limit: page.Limit, Total: page.Total}
		SetLinkHeaders(c, pg)
		return c.JSON(Page[domain.ExportRecord]{Data: page.Records, Pagination: pg})
	}
}

// GetExportHandler returns one export record.
func GetExportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Exports.Get(c.UserContext(), clientID(c), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(rec)
	}
}

// ListSuppliersHandler returns the client's suppliers.
func ListSuppliersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suppliers, err := deps.Suppliers.List(c.UserContext(), clientID(c))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(suppliers)
	}
}

// GetSupplierHandler returns one supplier.
func GetSupplierHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Suppliers.Get(c.UserContext(), clientID(c), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(s)
	}
}

type importRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	Commodity   string          `json:"commodity"`
	CollectedAt *time.Time      `json:"collected_at"`
	Places      json.RawMessage `json:"places"`
}

// ImportSupplierHandler creates or updates a supplier and stores its
// production places from an embedded feature collection.
func ImportSupplierHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req importRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(req.Name) == "" {
			return errBadRequest(c, "name is required")
		}
		if req.Commodity != "" && !domain.IsCommodity(req.Commodity) {
			return errBadRequest(c, "unknown commodity "+req.Commodity)
		}
		if req.ID != "" {
			if _, err := deps.Suppliers.Get(c.UserContext(), clientID(c), req.ID); err != nil {
				return errFromDomain(c, err)
			}
		}

		fc, err := geojson.Decode(req.Places)
		if err != nil {
			return errFromDomain(c, err)
		}

		collected := time.Now().UTC()
		if req.CollectedAt != nil {
			collected = req.CollectedAt.UTC()
		}
		supplier := &domain.Supplier{
			ID:        req.ID,
			ClientID:  clientID(c),
			Name:      strings.TrimSpace(req.Name),
			Country:   strings.ToUpper(req.Country),
			Commodity: req.Commodity,
		}
		summary, err := deps.Suppliers.ImportPlaces(c.UserContext(), supplier, fc, collected)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(summary)
	}
}
