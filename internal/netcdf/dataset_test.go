package netcdf

import "testing"

func TestSliceBBoxAscendingCoordinates(t *testing.T) {
	lat := []float64{-2, -1, 0, 1, 2, 3}
	lon := []float64{10, 11, 12, 13, 14}

	latLo, latHi, lonLo, lonHi := SliceBBox(lat, lon, 11, -1, 13, 2)
	if latLo != 1 || latHi != 5 {
		t.Fatalf("got lat range [%d,%d), want [1,5)", latLo, latHi)
	}
	if lonLo != 1 || lonHi != 4 {
		t.Fatalf("got lon range [%d,%d), want [1,4)", lonLo, lonHi)
	}
}

func TestSliceBBoxDescendingLat(t *testing.T) {
	lat := []float64{3, 2, 1, 0, -1, -2}
	lon := []float64{10, 11, 12, 13, 14}

	latLo, latHi, _, _ := SliceBBox(lat, lon, 11, -1, 13, 2)
	if latLo != 1 || latHi != 5 {
		t.Fatalf("got lat range [%d,%d), want [1,5) even when descending", latLo, latHi)
	}
}

func TestSliceBBoxNoOverlapReturnsEmptyRange(t *testing.T) {
	lat := []float64{0, 1, 2}
	lon := []float64{0, 1, 2}

	latLo, latHi, lonLo, lonHi := SliceBBox(lat, lon, 100, 100, 101, 101)
	if latLo != 0 || latHi != 0 || lonLo != 0 || lonHi != 0 {
		t.Fatalf("got [%d,%d) x [%d,%d), want empty ranges for no overlap", latLo, latHi, lonLo, lonHi)
	}
}

func TestLatDescending(t *testing.T) {
	if LatDescending([]float64{-1, 0, 1}) {
		t.Fatal("ascending axis reported as descending")
	}
	if !LatDescending([]float64{1, 0, -1}) {
		t.Fatal("descending axis not detected")
	}
	if LatDescending([]float64{5}) {
		t.Fatal("single-element axis should not be reported as descending")
	}
}
