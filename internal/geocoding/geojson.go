package geocoding

import (
	"encoding/json"
	"fmt"

	"github.com/ctessum/geom"
)

// geoJSONFeatureCollection is the minimal GeoJSON shape the admin boundary
// endpoint returns: a FeatureCollection of Polygon/MultiPolygon features,
// one per pcode, each carrying an "ADM{lvl}_PCODE" property.
type geoJSONFeatureCollection struct {
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Properties map[string]json.RawMessage `json:"properties"`
	Geometry   geoJSONGeometry            `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadBoundaries parses a GeoJSON FeatureCollection and returns one
// Boundary per feature, keyed by the "ADM{admLevel}_PCODE" property.
func LoadBoundaries(data []byte, admLevel int) ([]Boundary, error) {
	var fc geoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("geocoding: decode feature collection: %w", err)
	}

	pcodeField := fmt.Sprintf("ADM%d_PCODE", admLevel)
	out := make([]Boundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		raw, ok := f.Properties[pcodeField]
		if !ok {
			return nil, fmt.Errorf("geocoding: feature missing property %s", pcodeField)
		}
		var pcode string
		if err := json.Unmarshal(raw, &pcode); err != nil {
			return nil, fmt.Errorf("geocoding: property %s not a string: %w", pcodeField, err)
		}

		poly, err := f.Geometry.toPolygon()
		if err != nil {
			return nil, fmt.Errorf("geocoding: geometry for %s: %w", pcode, err)
		}
		out = append(out, Boundary{Pcode: pcode, Polygon: poly})
	}
	return out, nil
}

// toPolygon converts a GeoJSON Polygon, or every polygon of a MultiPolygon,
// into one geom.Polygon holding all their rings in order (one ring per
// element); Boundary.Contains combines the rings with the even-odd rule.
func (g geoJSONGeometry) toPolygon() (geom.Polygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, err
		}
		return ringsToPolygon(rings), nil
	case "MultiPolygon":
		var polys [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, err
		}
		if len(polys) == 0 {
			return nil, fmt.Errorf("empty MultiPolygon")
		}
		merged := ringsToPolygon(polys[0])
		for _, p := range polys[1:] {
			merged = append(merged, ringsToPolygon(p)...)
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

func ringsToPolygon(rings [][][2]float64) geom.Polygon {
	poly := make(geom.Polygon, len(rings))
	for i, ring := range rings {
		path := make(geom.Path, len(ring))
		for j, pt := range ring {
			path[j] = geom.Point{X: pt[0], Y: pt[1]}
		}
		poly[i] = path
	}
	return poly
}
