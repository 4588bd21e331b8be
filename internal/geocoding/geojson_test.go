package geocoding

import "testing"

func TestLoadBoundariesPolygon(t *testing.T) {
	data := []byte(`{
		"features": [
			{
				"properties": {"ADM2_PCODE": "KE0101"},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
			}
		]
	}`)
	boundaries, err := LoadBoundaries(data, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boundaries) != 1 {
		t.Fatalf("got %d boundaries, want 1", len(boundaries))
	}
	if boundaries[0].Pcode != "KE0101" {
		t.Fatalf("got pcode %q, want KE0101", boundaries[0].Pcode)
	}
	if !boundaries[0].Contains(5, 5) {
		t.Fatal("expected parsed polygon to contain interior point")
	}
}

func TestLoadBoundariesMultiPolygonMergesRings(t *testing.T) {
	data := []byte(`{
		"features": [
			{
				"properties": {"ADM1_PCODE": "KE01"},
				"geometry": {
					"type": "MultiPolygon",
					"coordinates": [
						[[[0,0],[10,0],[10,10],[0,10],[0,0]]],
						[[[20,20],[30,20],[30,30],[20,30],[20,20]]]
					]
				}
			}
		]
	}`)
	boundaries, err := LoadBoundaries(data, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(boundaries) != 1 {
		t.Fatalf("got %d boundaries, want 1", len(boundaries))
	}
	if !boundaries[0].Contains(5, 5) {
		t.Fatal("expected first ring-set to be merged in")
	}
	if !boundaries[0].Contains(25, 25) {
		t.Fatal("expected second ring-set to be merged in")
	}
}

func TestLoadBoundariesMissingPcodeProperty(t *testing.T) {
	data := []byte(`{
		"features": [
			{
				"properties": {},
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
			}
		]
	}`)
	if _, err := LoadBoundaries(data, 2); err == nil {
		t.Fatal("expected error for missing ADM2_PCODE property")
	}
}

func TestLoadBoundariesUnsupportedGeometryType(t *testing.T) {
	data := []byte(`{
		"features": [
			{
				"properties": {"ADM2_PCODE": "KE0101"},
				"geometry": {"type": "Point", "coordinates": [0,0]}
			}
		]
	}`)
	if _, err := LoadBoundaries(data, 2); err == nil {
		t.Fatal("expected error for unsupported geometry type")
	}
}
