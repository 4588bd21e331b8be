// Package extent assembles the per-lead-time flood-extent raster from the
// global per-return-period inundation maps and the triggered admin units.
package extent

import (
	"context"
	"fmt"
	"sort"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/geocoding"
	"floodpipe/internal/model"
	"floodpipe/internal/raster"
)

// ReturnPeriods are the return periods the global inundation map set
// ships, per spec.md §4.4.
var ReturnPeriods = []float64{10, 20, 50, 75, 100, 200, 500}

// Builder assembles flood-extent rasters for one country, holding the
// loaded per-rp maps and the admin boundaries at the deepest level.
type Builder struct {
	country    string
	maps       map[float64]*raster.Grid
	boundaries map[string]geocoding.Boundary // pcode -> boundary, deepest level
	empty      *raster.Grid
}

// Load fetches every available return-period map for country from blob,
// builds the empty template, and indexes the deepest-level boundaries by
// pcode.
func Load(ctx context.Context, blob blobstore.BlobStore, country string, deepestBoundaries []geocoding.Boundary) (*Builder, error) {
	maps := make(map[float64]*raster.Grid)
	for _, rp := range ReturnPeriods {
		key := fmt.Sprintf("flood-maps/%s/flood_map_%s_RP%.0f.tif", country, country, rp)
		exists, err := blob.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: check %s: %v", model.ErrRetryableIO, key, err)
		}
		if !exists {
			continue
		}
		r, err := blob.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", model.ErrRetryableIO, key, err)
		}
		g, err := raster.Decode(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("extent: decode %s: %w", key, err)
		}
		maps[rp] = g
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("%w: no flood maps for %s", model.ErrBoundaryMissing, country)
	}

	// Any available map's metadata defines the shared CRS/grid/bounds; all
	// rasters this builder emits share it, per the contract.
	var template *raster.Grid
	for _, g := range maps {
		template = g
		break
	}
	empty := raster.NewGrid(template.Width, template.Height, template.Transform, template.NoData)

	boundaries := make(map[string]geocoding.Boundary, len(deepestBoundaries))
	for _, b := range deepestBoundaries {
		boundaries[b.Pcode] = b
	}

	return &Builder{country: country, maps: maps, boundaries: boundaries, empty: empty}, nil
}

// Empty returns the raster template sharing the global maps' CRS/grid/bounds,
// with every pixel set to the maps' NoData value (not to zero).
func (b *Builder) Empty() *raster.Grid {
	return b.empty.Clone()
}

// smallestAvailableRP is the conservative fallback when a triggered unit's
// own return period has no map.
func (b *Builder) smallestAvailableRP() float64 {
	rps := make([]float64, 0, len(b.maps))
	for rp := range b.maps {
		rps = append(rps, rp)
	}
	sort.Float64s(rps)
	return rps[0]
}

// BuildLeadTime assembles the flood-extent raster for one lead time: the
// pixelwise maximum, over every triggered deepest-level admin unit, of that
// unit's return-period map clipped to its geometry; empty when nothing
// triggered.
func (b *Builder) BuildLeadTime(leadTime int, deepestLevel int, admin *model.ForecastAdminDataset) (*raster.Grid, error) {
	result := b.Empty()
	for _, f := range admin.ListByLeadTime(leadTime) {
		if f.AdmLevel != deepestLevel || !f.Triggered {
			continue
		}
		boundary, ok := b.boundaries[f.Pcode]
		if !ok {
			return nil, fmt.Errorf("%w: boundary for %s", model.ErrBoundaryMissing, f.Pcode)
		}
		grid, ok := b.maps[f.ReturnPeriod]
		if !ok {
			grid = b.maps[b.smallestAvailableRP()]
		}
		masked := grid.MaskByContainment(boundary.Contains)
		if err := result.MergeMax(masked); err != nil {
			return nil, fmt.Errorf("extent: merge %s: %w", f.Pcode, err)
		}
	}
	return result, nil
}

// BuildRun assembles the full per-run extent set keyed by lead_time 0..7,
// where lead_time 0 holds the empty template, checking for cancellation
// between lead-time emissions.
func (b *Builder) BuildRun(ctx context.Context, deepestLevel int, admin *model.ForecastAdminDataset) (map[int]*raster.Grid, error) {
	out := make(map[int]*raster.Grid, model.LeadTimeMax+2)
	out[0] = b.Empty()
	for lt := 1; lt <= model.LeadTimeMax; lt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := b.BuildLeadTime(lt, deepestLevel, admin)
		if err != nil {
			return nil, err
		}
		out[lt] = g
	}
	return out, nil
}
