// Package exposure computes population-affected numbers by clipping a
// population-density raster to the flood extent and summing per admin
// unit.
package exposure

import (
	"floodpipe/internal/geocoding"
	"floodpipe/internal/model"
	"floodpipe/internal/raster"
)

// Calc computes population exposure against a fixed population-density
// raster and admin boundary set.
type Calc struct {
	population *raster.Grid
	boundaries map[int]map[string]geocoding.Boundary // adm_level -> pcode -> boundary
}

// New builds a Calc. population must already be in the extent's CRS (the
// caller reprojects via internal/geocoding beforehand if it isn't).
func New(population *raster.Grid, boundaries map[int]map[string]geocoding.Boundary) *Calc {
	return &Calc{population: population, boundaries: boundaries}
}

// AffectedPopulation clips the population raster to the pixels of extent
// that meet or exceed minFloodDepth, yielding a raster of population
// exposed at that lead time.
func (c *Calc) AffectedPopulation(extent *raster.Grid, minFloodDepth float64) *raster.Grid {
	return c.population.MaskByContainment(extent.CoveredMask(minFloodDepth))
}

// Enrich fills in PopAffected/PopAffectedPct for every triggered unit in
// admin at leadTime, using the already-clipped affected-population raster
// for that lead time.
func (c *Calc) Enrich(admin *model.ForecastAdminDataset, leadTime int, affected *raster.Grid) {
	for _, f := range admin.ListByLeadTime(leadTime) {
		if !f.Triggered {
			continue
		}
		boundary, ok := c.boundaries[f.AdmLevel][f.Pcode]
		if !ok {
			continue
		}
		popAffected := zonalSumFloored(affected, boundary)
		totalPop := zonalSumFloored(c.population, boundary)

		f.PopAffected = int(popAffected)
		if totalPop > 0 {
			f.PopAffectedPct = 100 * popAffected / totalPop
		} else {
			f.PopAffectedPct = 0
		}
		admin.Upsert(f)
	}
}

// zonalSumFloored sums every valid pixel of g whose top-left corner falls within
// boundary, flooring negative pixel values to 0 before adding.
func zonalSumFloored(g *raster.Grid, boundary geocoding.Boundary) float64 {
	var sum float64
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v := g.At(col, row)
			if v == g.NoData {
				continue
			}
			lon, lat := g.Transform.LonLat(col, row)
			if !boundary.Contains(lon, lat) {
				continue
			}
			if v < 0 {
				v = 0
			}
			sum += v
		}
	}
	return sum
}
