package domain

// Properties are the typed feature attributes the pipeline reads. Extra
// carries any other member of the source properties object through the
// codec untouched; nothing in the validator looks at it.
type Properties struct {
	PlaceName       string
	AreaHectares    float64
	ProducerCountry string
	Extra           map[string]any
}

// Feature is a geometry with its properties. A nil Geometry means the
// source feature had none.
type Feature struct {
	Geometry   Geometry
	Properties Properties
}

// FeatureCollection is an ordered list of features. Order is preserved by
// every stage so output files diff cleanly.
type FeatureCollection struct {
	Features []Feature
}

// Len returns the number of features.
func (fc FeatureCollection) Len() int { return len(fc.Features) }
