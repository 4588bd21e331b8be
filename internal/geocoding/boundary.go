// Package geocoding wraps github.com/ctessum/geom for the admin boundary
// and coordinate reference system handling the pipeline needs: point-in-
// polygon containment for zonal operations and lon/lat reprojection when a
// source raster ships in a projected CRS.
package geocoding

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Boundary is one admin unit's polygon, labeled with its pcode.
type Boundary struct {
	Pcode   string
	Polygon geom.Polygon
}

// Bounds returns the lon/lat bounding box of the boundary.
func (b Boundary) Bounds() *geom.Bounds {
	return b.Polygon.Bounds()
}

// Contains reports whether (lon,lat) falls inside the boundary. Rings are
// combined with the even-odd rule: a point inside a hole of an exterior ring
// is outside, and a point inside any of the separate exterior rings merged
// from a MultiPolygon is inside.
func (b Boundary) Contains(lon, lat float64) bool {
	p := geom.Point{X: lon, Y: lat}
	inside := false
	for _, ring := range b.Polygon {
		if ringContains(ring, p) {
			inside = !inside
		}
	}
	return inside
}

// ringContains is a standard even-odd ray-casting test against one ring.
func ringContains(ring geom.Path, p geom.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xIntersect := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// Reprojector converts coordinates between a source spatial reference and
// WGS84 lon/lat, for rasters that ship in a projected CRS (e.g. the
// population grid).
type Reprojector struct {
	transform proj.Transform
}

// NewReprojector builds a reprojector from a PROJ4 definition string to
// WGS84 lon/lat.
func NewReprojector(srcProj4 string) (*Reprojector, error) {
	src, err := proj.Parse(srcProj4)
	if err != nil {
		return nil, fmt.Errorf("geocoding: parse source projection: %w", err)
	}
	dst, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("geocoding: parse wgs84 projection: %w", err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("geocoding: build transform: %w", err)
	}
	return &Reprojector{transform: t}, nil
}

// ToLonLat reprojects a source-CRS coordinate to WGS84 lon/lat.
func (r *Reprojector) ToLonLat(x, y float64) (lon, lat float64, err error) {
	transformed, err := (geom.Point{X: x, Y: y}).Transform(r.transform)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding: reproject point: %w", err)
	}
	p := transformed.(geom.Point)
	return p.X, p.Y, nil
}
