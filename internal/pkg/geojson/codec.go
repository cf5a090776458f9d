// Package geojson reads and writes the feature-collection documents the
// compliance pipeline consumes and produces.
package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

const (
	typeFeatureCollection = "FeatureCollection"
	typeFeature           = "Feature"

	propPlaceName       = "place_name"
	propAreaHectares    = "area_hectares"
	propProducerCountry = "producer_country"
)

type wireCollection struct {
	Type     string          `json:"type"`
	Features json.RawMessage `json:"features"`
}

type wireFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

type wireGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Decode parses a feature-collection document. Only a document that is not
// a feature collection at all fails; a feature whose geometry cannot be
// read is kept as a MalformedGeometry so validation can report it.
func Decode(data []byte) (domain.FeatureCollection, error) {
	var wc wireCollection
	if err := json.Unmarshal(data, &wc); err != nil {
		return domain.FeatureCollection{}, &domain.StructuralError{Reason: "document is not a JSON object: " + err.Error()}
	}
	if wc.Type != typeFeatureCollection {
		return domain.FeatureCollection{}, &domain.StructuralError{Reason: fmt.Sprintf("expected type %q, got %q", typeFeatureCollection, wc.Type)}
	}

	var rawFeatures []json.RawMessage
	if len(wc.Features) == 0 || isNull(wc.Features) {
		return domain.FeatureCollection{}, &domain.StructuralError{Reason: "features must be an array"}
	}
	if err := json.Unmarshal(wc.Features, &rawFeatures); err != nil {
		return domain.FeatureCollection{}, &domain.StructuralError{Reason: "features must be an array"}
	}

	fc := domain.FeatureCollection{Features: make([]domain.Feature, 0, len(rawFeatures))}
	for i, raw := range rawFeatures {
		var wf wireFeature
		if err := json.Unmarshal(raw, &wf); err != nil {
			return domain.FeatureCollection{}, &domain.StructuralError{Reason: fmt.Sprintf("feature %d is not an object", i)}
		}
		props, err := decodeProperties(wf.Properties)
		if err != nil {
			return domain.FeatureCollection{}, &domain.StructuralError{Reason: fmt.Sprintf("feature %d: %v", i, err)}
		}
		fc.Features = append(fc.Features, domain.Feature{
			Geometry:   DecodeGeometry(wf.Geometry),
			Properties: props,
		})
	}
	return fc, nil
}

// DecodeGeometry parses a single geometry object. Empty input and JSON null
// yield nil.
func DecodeGeometry(raw json.RawMessage) domain.Geometry {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	keep := append(json.RawMessage(nil), raw...)

	var wg wireGeometry
	if err := json.Unmarshal(raw, &wg); err != nil {
		return domain.MalformedGeometry{Reason: "geometry is not an object", Raw: keep}
	}

	malformed := func(err error) domain.Geometry {
		return domain.MalformedGeometry{Kind: wg.Type, Reason: err.Error(), Raw: keep}
	}

	switch domain.GeometryKind(wg.Type) {
	case domain.KindPoint:
		c, err := decodePosition(wg.Coordinates)
		if err != nil {
			return malformed(err)
		}
		return domain.Point{Coord: c}
	case domain.KindMultiPoint:
		cs, err := decodePositions(wg.Coordinates)
		if err != nil {
			return malformed(err)
		}
		return domain.MultiPoint{Coords: cs}
	case domain.KindPolygon:
		p, err := decodePolygon(wg.Coordinates)
		if err != nil {
			return malformed(err)
		}
		return p
	case domain.KindMultiPolygon:
		var parts []json.RawMessage
		if err := json.Unmarshal(wg.Coordinates, &parts); err != nil {
			return malformed(fmt.Errorf("coordinates must be an array of polygons"))
		}
		mp := domain.MultiPolygon{Polygons: make([]domain.Polygon, 0, len(parts))}
		for _, part := range parts {
			p, err := decodePolygon(part)
			if err != nil {
				return malformed(err)
			}
			mp.Polygons = append(mp.Polygons, p)
		}
		return mp
	}
	if wg.Type == "" {
		return domain.MalformedGeometry{Reason: "geometry has no type", Raw: keep}
	}
	return domain.UnsupportedGeometry{Kind: wg.Type, Raw: keep}
}

func decodePosition(raw json.RawMessage) (domain.Coordinate, error) {
	var nums []float64
	if err := json.Unmarshal(raw, &nums); err != nil {
		return domain.Coordinate{}, fmt.Errorf("position must be an array of numbers")
	}
	if len(nums) < 2 {
		return domain.Coordinate{}, fmt.Errorf("position needs longitude and latitude, got %d values", len(nums))
	}
	return domain.Coordinate{Lng: nums[0], Lat: nums[1]}, nil
}

func decodePositions(raw json.RawMessage) ([]domain.Coordinate, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("coordinates must be an array of positions")
	}
	out := make([]domain.Coordinate, 0, len(parts))
	for _, p := range parts {
		c, err := decodePosition(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func decodePolygon(raw json.RawMessage) (domain.Polygon, error) {
	var rings []json.RawMessage
	if err := json.Unmarshal(raw, &rings); err != nil {
		return domain.Polygon{}, fmt.Errorf("coordinates must be an array of rings")
	}
	p := domain.Polygon{Rings: make([]domain.Ring, 0, len(rings))}
	for _, r := range rings {
		cs, err := decodePositions(r)
		if err != nil {
			return domain.Polygon{}, err
		}
		p.Rings = append(p.Rings, domain.Ring(cs))
	}
	return p, nil
}

func decodeProperties(raw json.RawMessage) (domain.Properties, error) {
	var props domain.Properties
	if len(raw) == 0 || isNull(raw) {
		return props, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return props, fmt.Errorf("properties must be an object")
	}
	for k, v := range m {
		switch k {
		case propPlaceName:
			props.PlaceName = stringValue(v)
		case propProducerCountry:
			props.ProducerCountry = stringValue(v)
		case propAreaHectares:
			props.AreaHectares = numberValue(v)
		default:
			if props.Extra == nil {
				props.Extra = make(map[string]any)
			}
			props.Extra[k] = v
		}
	}
	return props, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Encode renders a feature collection as an indented document with a
// stable member order: type, features; and per feature type, geometry,
// properties.
func Encode(fc domain.FeatureCollection) ([]byte, error) {
	features := make([]wireFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		geom, err := EncodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d geometry: %w", i, err)
		}
		props, err := encodeProperties(f.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %d properties: %w", i, err)
		}
		features = append(features, wireFeature{Type: typeFeature, Geometry: geom, Properties: props})
	}

	rawFeatures, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	return json.MarshalIndent(wireCollection{Type: typeFeatureCollection, Features: rawFeatures}, "", "  ")
}

type pointJSON struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type multiPointJSON struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

type polygonJSON struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type multiPolygonJSON struct {
	Type        string           `json:"type"`
	Coordinates [][][][2]float64 `json:"coordinates"`
}

// EncodeGeometry renders one geometry. Unsupported and malformed
// geometries are written back exactly as they were read.
func EncodeGeometry(g domain.Geometry) (json.RawMessage, error) {
	switch v := g.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case domain.Point:
		return json.Marshal(pointJSON{Type: v.Type(), Coordinates: position(v.Coord)})
	case domain.MultiPoint:
		return json.Marshal(multiPointJSON{Type: v.Type(), Coordinates: positions(v.Coords)})
	case domain.Polygon:
		return json.Marshal(polygonJSON{Type: v.Type(), Coordinates: polygonPositions(v)})
	case domain.MultiPolygon:
		coords := make([][][][2]float64, 0, len(v.Polygons))
		for _, p := range v.Polygons {
			coords = append(coords, polygonPositions(p))
		}
		return json.Marshal(multiPolygonJSON{Type: v.Type(), Coordinates: coords})
	case domain.UnsupportedGeometry:
		return v.Raw, nil
	case domain.MalformedGeometry:
		if len(v.Raw) == 0 {
			return json.RawMessage("null"), nil
		}
		return v.Raw, nil
	}
	return nil, fmt.Errorf("unknown geometry %T", g)
}

func position(c domain.Coordinate) [2]float64 { return [2]float64{c.Lng, c.Lat} }

func positions(cs []domain.Coordinate) [][2]float64 {
	out := make([][2]float64, 0, len(cs))
	for _, c := range cs {
		out = append(out, position(c))
	}
	return out
}

func polygonPositions(p domain.Polygon) [][][2]float64 {
	out := make([][][2]float64, 0, len(p.Rings))
	for _, r := range p.Rings {
		out = append(out, positions(r))
	}
	return out
}

func encodeProperties(p domain.Properties) (json.RawMessage, error) {
	m := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		m[k] = v
	}
	m[propPlaceName] = p.PlaceName
	m[propAreaHectares] = p.AreaHectares
	m[propProducerCountry] = p.ProducerCountry
	// encoding/json writes map keys sorted, which keeps output stable.
	return json.Marshal(m)
}
