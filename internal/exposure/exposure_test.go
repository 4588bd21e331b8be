package exposure

import (
	"testing"

	"github.com/ctessum/geom"

	"floodpipe/internal/geocoding"
	"floodpipe/internal/model"
	"floodpipe/internal/raster"
)

func square(x0, y0, x1, y1 float64) geom.Path {
	return geom.Path{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0},
	}
}

func testTransform() raster.Transform {
	return raster.Transform{OriginLon: 0, OriginLat: 2, PixelWidth: 1, PixelHeight: -1}
}

func TestAffectedPopulationMasksToFloodedPixels(t *testing.T) {
	tr := testTransform()
	pop := raster.NewGrid(2, 2, tr, -1)
	pop.Set(0, 0, 100)
	pop.Set(1, 0, 200)
	pop.Set(0, 1, 300)
	pop.Set(1, 1, 400)

	extent := raster.NewGrid(2, 2, tr, -1)
	extent.Set(0, 0, 0.5) // above min depth
	// other three pixels left at NoData (not flooded)

	calc := New(pop, nil)
	affected := calc.AffectedPopulation(extent, 0.1)

	if v := affected.At(0, 0); v != 100 {
		t.Fatalf("got %v, want 100 for flooded pixel", v)
	}
	if v := affected.At(1, 0); v != affected.NoData {
		t.Fatalf("got %v, want NoData for unflooded pixel", v)
	}
}

func TestEnrichComputesPopAffectedAndPercentage(t *testing.T) {
	tr := testTransform()
	pop := raster.NewGrid(2, 2, tr, -1)
	pop.Set(0, 0, 100)
	pop.Set(1, 0, 300)

	affected := raster.NewGrid(2, 2, tr, -1)
	affected.Set(0, 0, 100)

	lon0, lat0 := tr.LonLat(0, 0)
	lon1, lat1 := tr.LonLat(1, 0)
	boundary := geocoding.Boundary{Pcode: "KE0101", Polygon: geom.Polygon{square(
		min(lon0, lon1)-0.5, min(lat0, lat1)-0.5, max(lon0, lon1)+0.5, max(lat0, lat1)+0.5,
	)}}

	admin := model.NewForecastAdminDataset("t", "KEN", []int{2})
	admin.Upsert(model.ForecastAdmin{AdmLevel: 2, Pcode: "KE0101", LeadTime: 1, Triggered: true})

	calc := New(pop, map[int]map[string]geocoding.Boundary{2: {"KE0101": boundary}})
	calc.Enrich(admin, 1, affected)

	f, ok := admin.Get("KE0101", 1)
	if !ok {
		t.Fatal("expected forecast to remain present after enrichment")
	}
	if f.PopAffected != 100 {
		t.Fatalf("got PopAffected %d, want 100", f.PopAffected)
	}
	wantPct := 100.0 * 100.0 / 400.0
	if f.PopAffectedPct != wantPct {
		t.Fatalf("got PopAffectedPct %v, want %v", f.PopAffectedPct, wantPct)
	}
}

func TestEnrichSkipsUntriggeredUnits(t *testing.T) {
	tr := testTransform()
	pop := raster.NewGrid(1, 1, tr, -1)
	affected := raster.NewGrid(1, 1, tr, -1)

	admin := model.NewForecastAdminDataset("t", "KEN", []int{2})
	admin.Upsert(model.ForecastAdmin{AdmLevel: 2, Pcode: "KE0101", LeadTime: 1, Triggered: false, PopAffected: -1})

	calc := New(pop, map[int]map[string]geocoding.Boundary{})
	calc.Enrich(admin, 1, affected)

	f, _ := admin.Get("KE0101", 1)
	if f.PopAffected != -1 {
		t.Fatalf("got PopAffected %d, want untouched sentinel -1", f.PopAffected)
	}
}
