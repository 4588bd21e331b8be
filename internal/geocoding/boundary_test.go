package geocoding

import (
	"testing"

	"github.com/ctessum/geom"
)

func square(x0, y0, x1, y1 float64) geom.Path {
	return geom.Path{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}
}

func TestBoundaryContainsInsideOutside(t *testing.T) {
	b := Boundary{Pcode: "KE0101", Polygon: geom.Polygon{square(0, 0, 10, 10)}}
	if !b.Contains(5, 5) {
		t.Fatal("expected point inside square to be contained")
	}
	if b.Contains(20, 20) {
		t.Fatal("expected point outside square to not be contained")
	}
}

func TestBoundaryContainsExcludesHole(t *testing.T) {
	exterior := square(0, 0, 10, 10)
	hole := square(3, 3, 7, 7)
	b := Boundary{Pcode: "KE0101", Polygon: geom.Polygon{exterior, hole}}

	if !b.Contains(1, 1) {
		t.Fatal("expected point inside exterior but outside hole to be contained")
	}
	if b.Contains(5, 5) {
		t.Fatal("expected point inside hole to not be contained")
	}
}

func TestBoundaryContainsEmptyPolygon(t *testing.T) {
	b := Boundary{Pcode: "KE0101"}
	if b.Contains(1, 1) {
		t.Fatal("expected empty polygon to contain nothing")
	}
}
