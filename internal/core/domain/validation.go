package domain

// ErrorCode identifies a compliance rule violation.
type ErrorCode string

const (
	CodeInvalidGeometry        ErrorCode = "INVALID_GEOMETRY"
	CodeLineStringNotAllowed   ErrorCode = "LINESTRING_NOT_ALLOWED"
	CodeGeometryTypeNotAllowed ErrorCode = "GEOMETRY_TYPE_NOT_ALLOWED"
	CodeCoordinateOutOfBounds  ErrorCode = "COORDINATE_OUT_OF_BOUNDS"
	CodePrecisionTooLow        ErrorCode = "PRECISION_TOO_LOW"
	CodePolygonNotClosed       ErrorCode = "POLYGON_NOT_CLOSED"
	CodePolygonTooFewVertices  ErrorCode = "POLYGON_TOO_FEW_VERTICES"
	CodePolygonHasHoles        ErrorCode = "POLYGON_HAS_HOLES"
	CodeLargePlotNeedsPolygon  ErrorCode = "LARGE_PLOT_NEEDS_POLYGON"
)

// ValidationIssue is a single error or warning raised against a feature.
type ValidationIssue struct {
	Code         ErrorCode `json:"code"`
	Message      string    `json:"message"`
	FeatureIndex int       `json:"feature_index"`
	FeatureName  string    `json:"feature_name,omitempty"`
}

// ValidationOutcome is the result of validating a feature collection.
// Valid is true iff Errors is empty; warnings never affect it.
type ValidationOutcome struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// CountByCode tallies errors and warnings by code.
func (o ValidationOutcome) CountByCode() map[ErrorCode]int {
	out := make(map[ErrorCode]int)
	for _, e := range o.Errors {
		out[e.Code]++
	}
	for _, w := range o.Warnings {
		out[w.Code]++
	}
	return out
}
