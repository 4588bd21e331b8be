// Package pipeline wires ThresholdStore, Ingest, ForecastEngine,
// ExtentBuilder, ExposureCalc and Publisher into the per-country dataflow,
// running countries in parallel via golang.org/x/sync/errgroup while each
// country's own stages run sequentially.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/config"
	"floodpipe/internal/exposure"
	"floodpipe/internal/extent"
	"floodpipe/internal/forecast"
	"floodpipe/internal/geocoding"
	"floodpipe/internal/ingest"
	"floodpipe/internal/model"
	"floodpipe/internal/publish"
	"floodpipe/internal/raster"
	"floodpipe/internal/threshold"
)

// Pipeline holds the ambient collaborators every country's run shares.
type Pipeline struct {
	Blob      blobstore.BlobStore
	Source    blobstore.ForecastSource
	Publisher publish.Publisher
	Scratch   string
	Ensemble  int
	Log       zerolog.Logger
}

// New builds a Pipeline from an already-loaded AppConfig.
func New(cfg *config.AppConfig, blob blobstore.BlobStore, source blobstore.ForecastSource, pub publish.Publisher, log zerolog.Logger) *Pipeline {
	return &Pipeline{Blob: blob, Source: source, Publisher: pub, Scratch: cfg.CacheDir, Ensemble: cfg.EnsembleSize, Log: log}
}

// loadBoundaries fetches and parses the GeoJSON admin boundary layer for
// one level, keyed "admin-boundaries/<iso3>/adm<level>.json".
func (p *Pipeline) loadBoundaries(ctx context.Context, iso3 string, level int) ([]geocoding.Boundary, error) {
	key := fmt.Sprintf("admin-boundaries/%s/adm%d.json", iso3, level)
	r, err := p.Blob.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: boundaries %s: %v", model.ErrBoundaryMissing, key, err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read boundaries %s: %v", model.ErrBoundaryMissing, key, err)
	}
	boundaries, err := geocoding.LoadBoundaries(raw, level)
	if err != nil {
		return nil, fmt.Errorf("%w: parse boundaries %s: %v", model.ErrBoundaryMissing, key, err)
	}
	return boundaries, nil
}

func (p *Pipeline) loadPopulationRaster(ctx context.Context) (*raster.Grid, error) {
	r, err := p.Blob.Get(ctx, "population_density.tif")
	if err != nil {
		return nil, fmt.Errorf("%w: population raster: %v", model.ErrBoundaryMissing, err)
	}
	defer r.Close()
	return raster.Decode(r)
}

// RunCountry executes the full per-country dataflow and publishes its
// results. Any error returned is country-fatal; the caller (Supervisor)
// logs and continues to the next country rather than propagating it.
func (p *Pipeline) RunCountry(ctx context.Context, country model.Country, date time.Time) error {
	log := p.Log.With().Str("country", country.ISO3).Logger()

	policy := country.Policy
	thresholds := threshold.New(p.Blob)
	admThresholds, err := thresholds.GetAdminThresholds(ctx, country.ISO3)
	if err != nil {
		return err
	}
	staThresholds, err := thresholds.GetStationThresholds(ctx, country.ISO3)
	if err != nil {
		return err
	}

	admins := make(map[int][]geocoding.Boundary, len(policy.AdminLevels))
	for _, level := range policy.AdminLevels {
		boundaries, err := p.loadBoundaries(ctx, country.ISO3, level)
		if err != nil {
			if model.Recoverable(err) {
				log.Warn().Err(err).Int("adm_level", level).Msg("admin level missing, continuing with reduced data")
				continue
			}
			return err
		}
		admins[level] = boundaries
	}

	ensembleSize := policy.NoEnsembleMembers
	if ensembleSize <= 0 {
		ensembleSize = p.Ensemble
	}

	ing := ingest.New(p.Source, p.Blob, admins, p.Scratch, log)
	admDischarge, staDischarge, err := ing.Run(ctx, country, date, ensembleSize, staThresholds)
	if err != nil {
		return err
	}

	engine := forecast.New(policy)
	admForecast, err := engine.RunAdmin(ctx, admDischarge, admThresholds)
	if err != nil {
		return err
	}
	staForecast, err := engine.RunStations(ctx, staDischarge, staThresholds)
	if err != nil {
		return err
	}

	deepestLevel := deepestOf(policy.AdminLevels)
	extentBuilder, err := extent.Load(ctx, p.Blob, country.ISO3, admins[deepestLevel])
	if err != nil {
		return err
	}
	extents, err := extentBuilder.BuildRun(ctx, deepestLevel, admForecast)
	if err != nil {
		return err
	}

	if pop, err := p.loadPopulationRaster(ctx); err == nil {
		boundariesByLevel := make(map[int]map[string]geocoding.Boundary, len(admins))
		for level, bs := range admins {
			m := make(map[string]geocoding.Boundary, len(bs))
			for _, b := range bs {
				m[b.Pcode] = b
			}
			boundariesByLevel[level] = m
		}
		calc := exposure.New(pop, boundariesByLevel)
		for lt := 1; lt <= model.LeadTimeMax; lt++ {
			affected := calc.AffectedPopulation(extents[lt], policy.MinFloodDepth)
			calc.Enrich(admForecast, lt, affected)
		}
	} else {
		log.Warn().Err(err).Msg("population raster unavailable, skipping exposure enrichment")
	}

	pub := NewEmitter(p.Publisher, country.ISO3, date, policy, log)
	return pub.PublishRun(ctx, admForecast, staForecast, staDischarge, staThresholds, extents)
}

func deepestOf(levels []int) int {
	deepest := 0
	for _, l := range levels {
		if l > deepest {
			deepest = l
		}
	}
	return deepest
}
