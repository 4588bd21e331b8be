package ingest

import (
	"math"
	"testing"

	"github.com/ctessum/geom"

	"floodpipe/internal/geocoding"
	"floodpipe/internal/model"
	"floodpipe/internal/netcdf"
)

func square(x0, y0, x1, y1 float64) geom.Path {
	return geom.Path{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}
}

// makeCube builds a 1-lead-time, len(lat) x len(lon) cube with
// value = r*len(lon)+c at each cell.
func makeCube(lat, lon []float64) netcdf.Cube {
	data := make([]float64, len(lat)*len(lon))
	for r := range lat {
		for c := range lon {
			data[r*len(lon)+c] = float64(r*len(lon) + c)
		}
	}
	return netcdf.Cube{Lat: lat, Lon: lon, LeadTimes: 1, NLat: len(lat), NLon: len(lon), Data: data}
}

func TestCropToBBoxAscending(t *testing.T) {
	cube := makeCube([]float64{0, 1, 2, 3}, []float64{10, 11, 12, 13})
	bbox := model.BoundingBox{MinLon: 11, MinLat: 1, MaxLon: 12, MaxLat: 2}
	out := cropToBBox(cube, bbox)
	if out.NLat != 2 || out.NLon != 2 {
		t.Fatalf("got %dx%d, want 2x2", out.NLat, out.NLon)
	}
	if out.At(0, 0, 0) != cube.At(0, 1, 1) {
		t.Fatalf("cropped origin mismatch: got %v, want %v", out.At(0, 0, 0), cube.At(0, 1, 1))
	}
}

func TestCropToBBoxNoOverlapYieldsEmptyCube(t *testing.T) {
	cube := makeCube([]float64{0, 1, 2}, []float64{0, 1, 2})
	bbox := model.BoundingBox{MinLon: 100, MinLat: 100, MaxLon: 101, MaxLat: 101}
	out := cropToBBox(cube, bbox)
	if out.NLat != 0 || out.NLon != 0 {
		t.Fatalf("got %dx%d, want empty cube for no overlap", out.NLat, out.NLon)
	}
}

func TestMaxInPolygonFindsLargestContainedValue(t *testing.T) {
	cube := makeCube([]float64{0, 1, 2}, []float64{0, 1, 2})
	boundary := geocoding.Boundary{Pcode: "KE0101", Polygon: geom.Polygon{square(-0.5, -0.5, 1.5, 1.5)}}

	got := maxInPolygon(cube, 0, boundary)
	if got != 4 {
		t.Fatalf("got %v, want 4 (max of the 2x2 contained sub-block)", got)
	}
}

func TestMaxInPolygonNoContainedPixelsIsZero(t *testing.T) {
	cube := makeCube([]float64{0, 1, 2}, []float64{0, 1, 2})
	boundary := geocoding.Boundary{Pcode: "KE0101", Polygon: geom.Polygon{square(100, 100, 101, 101)}}

	got := maxInPolygon(cube, 0, boundary)
	if got != 0 {
		t.Fatalf("got %v, want 0 when nothing is contained", got)
	}
}

func TestMaxInPolygonSubstitutesNaNWithZero(t *testing.T) {
	lat := []float64{0, 1}
	lon := []float64{0, 1}
	data := []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	cube := netcdf.Cube{Lat: lat, Lon: lon, LeadTimes: 1, NLat: 2, NLon: 2, Data: data}
	boundary := geocoding.Boundary{Pcode: "KE0101", Polygon: geom.Polygon{square(-0.5, -0.5, 1.5, 1.5)}}

	got := maxInPolygon(cube, 0, boundary)
	if got != 0 {
		t.Fatalf("got %v, want 0 (NaN substituted)", got)
	}
}

func TestNearestIndex(t *testing.T) {
	coords := []float64{0, 5, 10, 15}
	if got := nearestIndex(coords, 4); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := nearestIndex(coords, 16); got != 3 {
		t.Fatalf("got %d, want 3 (clamped to last)", got)
	}
}
