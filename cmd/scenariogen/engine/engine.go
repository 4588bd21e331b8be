// Package engine generates a complete synthetic blob store and ensemble
// forecast source for one country, so the pipeline can be exercised
// locally without a real GloFAS FTP drop or admin-boundary/threshold feed.
// Adapted from the original mock-event generator: instead of synthetic
// Jira issue histories, it samples synthetic discharge ensembles over a
// country-sized grid and derives admin boundaries, thresholds, flood maps
// and a population raster to match.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/extent"
	"floodpipe/internal/model"
	"floodpipe/internal/raster"
)

// GeneratorConfig parameterizes one country's synthetic scenario.
type GeneratorConfig struct {
	Scenario  string // "calm", "surge", or "drought"
	ISO3      string
	Ensemble  int
	GridSize  int // lat/lon points per side of the country grid
	Now       time.Time
	Rand      *rand.Rand
}

// scenarioShape describes how a scenario biases the sampled discharge
// distribution relative to each admin/station unit's thresholds.
type scenarioShape struct {
	meanFactor   float64 // multiple of the 10-yr baseline the ensemble mean sits at
	spreadFactor float64 // ensemble member spread as a fraction of the mean
}

func shapeFor(scenario string) scenarioShape {
	switch scenario {
	case "surge":
		return scenarioShape{meanFactor: 1.35, spreadFactor: 0.35}
	case "drought":
		return scenarioShape{meanFactor: 0.15, spreadFactor: 0.10}
	default: // "calm"
		return scenarioShape{meanFactor: 0.55, spreadFactor: 0.20}
	}
}

// Generate builds a Country, the grid's lat and lon coordinates, and one
// discharge field per ensemble member for cfg's bounding box. It returns no
// thresholds, and each member's field carries no lead-time dimension.
func Generate(cfg GeneratorConfig) (model.Country, []float64, []float64, [][]float64) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	shape := shapeFor(cfg.Scenario)

	country := model.Country{
		ISO3: cfg.ISO3,
		BBox: model.BoundingBox{MinLon: 33.0, MinLat: -1.0, MaxLon: 35.0, MaxLat: 1.0},
		Policy: model.Policy{
			AdminLevels:        []int{2, 1},
			TriggerLeadTime:    3,
			TriggerRP:          10,
			TriggerMinProb:     0.6,
			ClassifyAlertOn:    model.ClassifyReturnPeriod,
			AlertOnRPByClass:   map[model.AlertClass]float64{model.AlertMin: 10, model.AlertMed: 20, model.AlertMax: 50},
			NoEnsembleMembers:  cfg.Ensemble,
			MinFloodDepth:      0.1,
		},
	}

	n := cfg.GridSize
	lat := make([]float64, n)
	lon := make([]float64, n)
	for i := 0; i < n; i++ {
		lat[i] = country.BBox.MinLat + (country.BBox.MaxLat-country.BBox.MinLat)*float64(i)/float64(n-1)
		lon[i] = country.BBox.MinLon + (country.BBox.MaxLon-country.BBox.MinLon)*float64(i)/float64(n-1)
	}

	// baseline10yr approximates the 10-year discharge at every grid cell,
	// the anchor the scenario's mean/spread factors scale against.
	baseline10yr := make([]float64, n*n)
	for i := range baseline10yr {
		baseline10yr[i] = 80.0 + 40.0*cfg.Rand.Float64()
	}

	members := make([][]float64, cfg.Ensemble)
	for e := 0; e < cfg.Ensemble; e++ {
		field := make([]float64, n*n)
		for i, b := range baseline10yr {
			mean := b * shape.meanFactor
			spread := mean * shape.spreadFactor
			field[i] = math.Max(0, mean+spread*(cfg.Rand.Float64()*2-1))
		}
		members[e] = field
	}

	return country, lat, lon, members
}

// WriteEnsemble writes one NetCDF file per ensemble member to
// <sourceRoot>/<date>/<ensemble>.nc, the layout LocalForecastSource
// expects, with the discharge variable broadcast unchanged across every
// lead time (a synthetic run has no lead-time-dependent skill decay).
func WriteEnsemble(sourceRoot string, date time.Time, lat, lon []float64, members [][]float64) error {
	dir := filepath.Join(sourceRoot, date.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("scenariogen: create source dir: %w", err)
	}
	for e, field := range members {
		path := filepath.Join(dir, fmt.Sprintf("%d.nc", e))
		if err := writeMemberFile(path, lat, lon, field); err != nil {
			return fmt.Errorf("scenariogen: write ensemble member %d: %w", e, err)
		}
	}
	return nil
}

func writeMemberFile(path string, lat, lon []float64, field []float64) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return err
	}
	defer ds.Close()

	latDim, err := ds.AddDim("lat", uint64(len(lat)))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(len(lon)))
	if err != nil {
		return err
	}
	leadDim, err := ds.AddDim("lead_time", uint64(model.LeadTimeMax))
	if err != nil {
		return err
	}

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	if err := latVar.WriteFloat64s(lat); err != nil {
		return err
	}

	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	if err := lonVar.WriteFloat64s(lon); err != nil {
		return err
	}

	disVar, err := ds.AddVar("dis24", netcdf.DOUBLE, []netcdf.Dim{leadDim, latDim, lonDim})
	if err != nil {
		return err
	}
	data := make([]float64, model.LeadTimeMax*len(lat)*len(lon))
	for l := 0; l < model.LeadTimeMax; l++ {
		copy(data[l*len(field):(l+1)*len(field)], field)
	}
	return disVar.WriteFloat64s(data)
}

// WriteConfig stores the country document, per-admin and per-station
// thresholds, admin boundaries, a population raster and flood-extent maps
// into blob, all keyed exactly as the pipeline's loaders expect.
func WriteConfig(ctx context.Context, blob blobstore.BlobStore, country model.Country, lat, lon []float64, baseline10yr []float64, boundaries map[int][]byte, admThresholds []model.AdminThreshold, staThresholds []model.StationThreshold) error {
	if err := putJSON(ctx, blob, fmt.Sprintf("config/%s/country.json", country.ISO3), country); err != nil {
		return err
	}
	if err := putJSON(ctx, blob, fmt.Sprintf("thresholds/%s/admin.json", country.ISO3), admThresholds); err != nil {
		return err
	}
	if err := putJSON(ctx, blob, fmt.Sprintf("thresholds/%s/stations.json", country.ISO3), staThresholds); err != nil {
		return err
	}
	for level, raw := range boundaries {
		key := fmt.Sprintf("admin-boundaries/%s/adm%d.json", country.ISO3, level)
		if err := blob.Put(ctx, key, bytesReader(raw)); err != nil {
			return fmt.Errorf("scenariogen: put %s: %w", key, err)
		}
	}

	n := len(lat)
	transform := raster.Transform{
		OriginLon:   country.BBox.MinLon,
		OriginLat:   country.BBox.MaxLat,
		PixelWidth:  (country.BBox.MaxLon - country.BBox.MinLon) / float64(n),
		PixelHeight: -(country.BBox.MaxLat - country.BBox.MinLat) / float64(n),
	}

	pop := raster.NewGrid(n, n, transform, -1)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			pop.Set(col, row, 500+float64(row*n+col)%1500)
		}
	}
	if err := putGrid(ctx, blob, "population_density.tif", pop); err != nil {
		return err
	}

	for _, rp := range extent.ReturnPeriods {
		g := raster.NewGrid(n, n, transform, -1)
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				i := row*n + col
				if i >= len(baseline10yr) {
					continue
				}
				depth := (rp / 10.0) * 0.3 * (baseline10yr[i] / 100.0)
				g.Set(col, row, depth)
			}
		}
		key := fmt.Sprintf("flood-maps/%s/flood_map_%s_RP%.0f.tif", country.ISO3, country.ISO3, rp)
		if err := putGrid(ctx, blob, key, g); err != nil {
			return err
		}
	}
	return nil
}

func putJSON(ctx context.Context, blob blobstore.BlobStore, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("scenariogen: marshal %s: %w", key, err)
	}
	if err := blob.Put(ctx, key, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("scenariogen: put %s: %w", key, err)
	}
	return nil
}

func putGrid(ctx context.Context, blob blobstore.BlobStore, key string, g *raster.Grid) error {
	raw, err := raster.Encode(g)
	if err != nil {
		return fmt.Errorf("scenariogen: encode %s: %w", key, err)
	}
	if err := blob.Put(ctx, key, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("scenariogen: put %s: %w", key, err)
	}
	return nil
}

func bytesReader(raw []byte) io.Reader {
	return bytes.NewReader(raw)
}
