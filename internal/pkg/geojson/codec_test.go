package geojson_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geoexport/internal/core/domain"
	"github.com/samirrijal/geoexport/internal/pkg/geojson"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[-60.1, -10.1], [-60.2, -10.1], [-60.2, -10.2], [-60.1, -10.1]]]},
      "properties": {"place_name": "Fazenda Boa Vista", "area_hectares": 12.5, "producer_country": "BR", "supplier_id": "s-1"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-60.123456, -10.654321]},
      "properties": {"place_name": "Sítio Pequeno", "area_hectares": "2.75"}
    },
    {
      "type": "Feature",
      "geometry": null,
      "properties": null
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
      "properties": {}
    }
  ]
}`

func TestDecode(t *testing.T) {
	fc, err := geojson.Decode([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, 4, fc.Len())

	poly, ok := fc.Features[0].Geometry.(domain.Polygon)
	require.True(t, ok)
	assert.Len(t, poly.Rings, 1)
	assert.Equal(t, domain.Coordinate{Lng: -60.1, Lat: -10.1}, poly.Rings[0][0])
	assert.Equal(t, "Fazenda Boa Vista", fc.Features[0].Properties.PlaceName)
	assert.Equal(t, 12.5, fc.Features[0].Properties.AreaHectares)
	assert.Equal(t, "BR", fc.Features[0].Properties.ProducerCountry)
	assert.Equal(t, map[string]any{"supplier_id": "s-1"}, fc.Features[0].Properties.Extra)

	assert.Equal(t, domain.Point{Coord: domain.Coordinate{Lng: -60.123456, Lat: -10.654321}}, fc.Features[1].Geometry)
	assert.Equal(t, 2.75, fc.Features[1].Properties.AreaHectares)

	assert.Nil(t, fc.Features[2].Geometry)
	assert.Equal(t, domain.Properties{}, fc.Features[2].Properties)

	line, ok := fc.Features[3].Geometry.(domain.UnsupportedGeometry)
	require.True(t, ok)
	assert.Equal(t, "LineString", line.Kind)
	assert.JSONEq(t, `{"type": "LineString", "coordinates": [[0, 0], [1, 1]]}`, string(line.Raw))
}

func TestDecode_StructuralErrors(t *testing.T) {
	cases := map[string]string{
		"not json":           `{"type":`,
		"array":              `[]`,
		"wrong type":         `{"type":"Feature","geometry":null}`,
		"missing features":   `{"type":"FeatureCollection"}`,
		"features not array": `{"type":"FeatureCollection","features":{}}`,
		"feature not object": `{"type":"FeatureCollection","features":[42]}`,
		"properties not obj": `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":[1]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := geojson.Decode([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrStructural), "got %v", err)

			var se *domain.StructuralError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestDecode_EmptyCollection(t *testing.T) {
	fc, err := geojson.Decode([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	assert.Zero(t, fc.Len())
}

func TestDecodeGeometry_Malformed(t *testing.T) {
	cases := map[string]string{
		"point with one value":    `{"type":"Point","coordinates":[1]}`,
		"point with strings":      `{"type":"Point","coordinates":["a","b"]}`,
		"polygon without rings":   `{"type":"Polygon","coordinates":5}`,
		"multipolygon flat":       `{"type":"MultiPolygon","coordinates":[[1,2]]}`,
		"multipoint nested wrong": `{"type":"MultiPoint","coordinates":[[[1,2]]]}`,
		"missing type":            `{"coordinates":[1,2]}`,
		"not an object":           `"Point"`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			g := geojson.DecodeGeometry(json.RawMessage(doc))
			m, ok := g.(domain.MalformedGeometry)
			require.True(t, ok, "got %T", g)
			assert.NotEmpty(t, m.Reason)
			assert.Equal(t, doc, string(m.Raw))
		})
	}
}

func TestDecodeGeometry_MultiPolygon(t *testing.T) {
	g := geojson.DecodeGeometry(json.RawMessage(`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]],[[5.1,5.1],[5.2,5.1],[5.2,5.2],[5.1,5.1]]]]}`))
	mp, ok := g.(domain.MultiPolygon)
	require.True(t, ok)
	require.Len(t, mp.Polygons, 2)
	assert.Len(t, mp.Polygons[1].Rings, 2)
}

func TestEncode_RoundTrip(t *testing.T) {
	fc, err := geojson.Decode([]byte(sample))
	require.NoError(t, err)

	data, err := geojson.Encode(fc)
	require.NoError(t, err)

	again, err := geojson.Decode(data)
	require.NoError(t, err)
	require.Equal(t, fc.Len(), again.Len())
	assert.Equal(t, fc.Features[:3], again.Features[:3])

	// Unsupported geometries keep their content; whitespace follows the
	// surrounding document.
	before := fc.Features[3].Geometry.(domain.UnsupportedGeometry)
	after := again.Features[3].Geometry.(domain.UnsupportedGeometry)
	assert.Equal(t, before.Kind, after.Kind)
	assert.JSONEq(t, string(before.Raw), string(after.Raw))
}

func TestEncode_Layout(t *testing.T) {
	fc := domain.FeatureCollection{Features: []domain.Feature{{
		Geometry: domain.Point{Coord: domain.Coordinate{Lng: -60.123456, Lat: -10.654321}},
		Properties: domain.Properties{
			PlaceName:       "Plot",
			AreaHectares:    1.5,
			ProducerCountry: "CI",
			Extra:           map[string]any{"commodity": "cocoa"},
		},
	}}}
	data, err := geojson.Encode(fc)
	require.NoError(t, err)

	want := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {
        "type": "Point",
        "coordinates": [
          -60.123456,
          -10.654321
        ]
      },
      "properties": {
        "area_hectares": 1.5,
        "commodity": "cocoa",
        "place_name": "Plot",
        "producer_country": "CI"
      }
    }
  ]
}`
	assert.Equal(t, want, string(data))
}

func TestEncode_UnsupportedIsVerbatim(t *testing.T) {
	raw := json.RawMessage(`{"type":"GeometryCollection","geometries":[]}`)
	out, err := geojson.EncodeGeometry(domain.UnsupportedGeometry{Kind: "GeometryCollection", Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	out, err = geojson.EncodeGeometry(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestEncode_Empty(t *testing.T) {
	data, err := geojson.Encode(domain.FeatureCollection{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}
