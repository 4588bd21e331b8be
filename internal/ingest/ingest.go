// Package ingest slices the global ensemble discharge NetCDFs down to one
// country and reduces them to per-admin and per-station ensemble vectors.
package ingest

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/geocoding"
	"floodpipe/internal/model"
	"floodpipe/internal/netcdf"

	"github.com/rs/zerolog"
)

// DischargeVar is the GloFAS discharge variable name sliced files carry.
const DischargeVar = "dis24"

// Ingest slices per-country ensemble discharge and reduces it to admin and
// station datasets.
type Ingest struct {
	source  blobstore.ForecastSource
	blob    blobstore.BlobStore
	admins  map[int][]geocoding.Boundary // adm_level -> boundaries
	scratch string                       // local directory for downloaded NetCDFs
	log     zerolog.Logger
}

// New builds an Ingest for a fixed admin boundary set. scratch is the local
// directory sliced ensemble members are materialized into before decoding
// (go-netcdf requires a filesystem path, not a stream).
func New(source blobstore.ForecastSource, blob blobstore.BlobStore, admins map[int][]geocoding.Boundary, scratch string, log zerolog.Logger) *Ingest {
	return &Ingest{source: source, blob: blob, admins: admins, scratch: scratch, log: log}
}

// croppedMember is one ensemble member's cube, cropped to the country bbox.
type croppedMember struct {
	cube netcdf.Cube
	ok   bool // false when the member was dropped (EnsembleDropped)
}

// Run produces DischargeAdminDataset and DischargeStationDataset for one
// country, run date, and set of stations (lat/lon comes from the station
// threshold entries, per §9's "consumed as an input schema" note).
func (ig *Ingest) Run(ctx context.Context, country model.Country, date time.Time, ensembleSize int, stations *model.StationThresholdSet) (*model.DischargeAdminDataset, *model.DischargeStationDataset, error) {
	members, err := ig.slice(ctx, country, date, ensembleSize)
	if err != nil {
		return nil, nil, err
	}

	admDataset := model.NewDischargeAdminDataset(date.Format(time.RFC3339), country.ISO3, country.Policy.AdminLevels)
	if err := ig.reduceAdmin(ctx, members, admDataset); err != nil {
		return nil, nil, err
	}

	staDataset := model.NewDischargeStationDataset(date.Format(time.RFC3339), country.ISO3)
	ig.reduceStations(ctx, members, stations, staDataset)

	return admDataset, staDataset, nil
}

// slice performs step 1: fetch and crop every ensemble member to the
// country bounding box, in parallel across ensemble indices, converging
// into an index-ordered slice.
func (ig *Ingest) slice(ctx context.Context, country model.Country, date time.Time, ensembleSize int) ([]croppedMember, error) {
	members := make([]croppedMember, ensembleSize)

	g, gctx := errgroup.WithContext(ctx)
	for e := 0; e < ensembleSize; e++ {
		e := e
		g.Go(func() error {
			cube, ok, err := ig.sliceOne(gctx, country, date, e)
			if err != nil {
				return err
			}
			members[e] = croppedMember{cube: cube, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return members, nil
}

// sliceOne fetches, writes to scratch, decodes and crops one ensemble
// member. A second open failure after re-fetch is logged and the member is
// dropped (ok=false) rather than aborting the run.
func (ig *Ingest) sliceOne(ctx context.Context, country model.Country, date time.Time, ensemble int) (netcdf.Cube, bool, error) {
	path, err := ig.fetchToScratch(ctx, country, date, ensemble)
	if err != nil {
		ig.log.Warn().Err(err).Str("country", country.ISO3).Int("ensemble", ensemble).Msg("ensemble member dropped: fetch failed")
		return netcdf.Cube{}, false, nil
	}

	cube, err := netcdf.OpenCube(path, DischargeVar)
	if err != nil {
		// Retry once against a fresh fetch before giving up on this member.
		path2, ferr := ig.fetchToScratch(ctx, country, date, ensemble)
		if ferr != nil {
			ig.log.Warn().Err(err).Str("country", country.ISO3).Int("ensemble", ensemble).Msg("ensemble member dropped: decode failed twice")
			return netcdf.Cube{}, false, nil
		}
		cube, err = netcdf.OpenCube(path2, DischargeVar)
		if err != nil {
			ig.log.Warn().Err(err).Str("country", country.ISO3).Int("ensemble", ensemble).Msg("ensemble member dropped: decode failed twice")
			return netcdf.Cube{}, false, nil
		}
	}

	return cropToBBox(cube, country.BBox), true, nil
}

func (ig *Ingest) fetchToScratch(ctx context.Context, country model.Country, date time.Time, ensemble int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r, err := ig.source.FetchEnsembleMember(ctx, date, ensemble)
	if err != nil {
		return "", fmt.Errorf("%w: fetch ensemble %d for %s: %v", model.ErrSourceUnavailable, ensemble, country.ISO3, err)
	}
	defer r.Close()

	dir := filepath.Join(ig.scratch, country.ISO3, date.Format("20060102"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: scratch dir: %v", model.ErrRetryableIO, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("GloFAS_%s_%s_%d.nc", date.Format("20060102"), country.ISO3, ensemble))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: write scratch file: %v", model.ErrRetryableIO, err)
	}
	defer f.Close()
	if _, err := f.ReadFrom(r); err != nil {
		return "", fmt.Errorf("%w: write scratch file: %v", model.ErrRetryableIO, err)
	}
	return path, nil
}

// cropToBBox slices a cube's lat/lon axes to a country bounding box,
// correcting for a descending latitude axis.
func cropToBBox(cube netcdf.Cube, bbox model.BoundingBox) netcdf.Cube {
	// SliceBBox scans both axes linearly rather than assuming ascending
	// order, so a descending lat axis (GloFAS's usual orientation) still
	// yields the correct window.
	latLo, latHi, lonLo, lonHi := netcdf.SliceBBox(cube.Lat, cube.Lon, bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat)

	nLat := latHi - latLo
	nLon := lonHi - lonLo
	if nLat <= 0 || nLon <= 0 {
		return netcdf.Cube{LeadTimes: cube.LeadTimes, NLat: 0, NLon: 0}
	}

	out := netcdf.Cube{
		Lat:       append([]float64(nil), cube.Lat[latLo:latHi]...),
		Lon:       append([]float64(nil), cube.Lon[lonLo:lonHi]...),
		LeadTimes: cube.LeadTimes,
		NLat:      nLat,
		NLon:      nLon,
		Data:      make([]float64, cube.LeadTimes*nLat*nLon),
	}
	for lt := 0; lt < cube.LeadTimes; lt++ {
		for r := 0; r < nLat; r++ {
			for c := 0; c < nLon; c++ {
				out.Data[lt*nLat*nLon+r*nLon+c] = cube.At(lt, latLo+r, lonLo+c)
			}
		}
	}
	return out
}

// reduceAdmin implements step 2: for each (adm_level, pcode) and each lead
// time, the maximum cube value whose pixel center falls within the pcode's
// geometry (all-touched approximation), across ensembles in index order.
func (ig *Ingest) reduceAdmin(ctx context.Context, members []croppedMember, out *model.DischargeAdminDataset) error {
	for admLevel, boundaries := range ig.admins {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(boundaries) == 0 {
			ig.log.Warn().Int("adm_level", admLevel).Msg("admin level missing boundaries")
			continue
		}
		for _, b := range boundaries {
			for leadTime := 1; leadTime <= model.LeadTimeMax; leadTime++ {
				ensemble, err := ig.reduceAdminUnit(ctx, members, b, leadTime)
				if err != nil {
					return err
				}
				out.Upsert(model.DischargeAdmin{
					AdmLevel: admLevel,
					Pcode:    b.Pcode,
					LeadTime: leadTime,
					Ensemble: ensemble,
					Mean:     model.NewDischarge(ensemble),
				})
			}
		}
	}
	return nil
}

// reduceAdminUnit computes the ensemble vector for one pcode at one lead
// time, parallel across ensemble members, converging into an index-ordered
// slice regardless of goroutine completion order.
func (ig *Ingest) reduceAdminUnit(ctx context.Context, members []croppedMember, b geocoding.Boundary, leadTime int) ([]float64, error) {
	ensemble := make([]float64, 0, len(members))
	g, _ := errgroup.WithContext(ctx)
	values := make([]float64, len(members))
	present := make([]bool, len(members))

	for e, m := range members {
		e, m := e, m
		g.Go(func() error {
			if !m.ok {
				return nil // EnsembleDropped already logged at slice time
			}
			values[e] = maxInPolygon(m.cube, leadTime-1, b)
			present[e] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for e := range members {
		if present[e] {
			ensemble = append(ensemble, values[e])
		}
	}
	return ensemble, nil
}

// maxInPolygon returns the largest cube value at leadTime whose pixel
// center lies inside b's geometry, NaN substituted with 0, NoData=0 when
// no pixel falls inside.
func maxInPolygon(cube netcdf.Cube, leadTime int, b geocoding.Boundary) float64 {
	max := 0.0
	found := false
	for r := 0; r < cube.NLat; r++ {
		lat := cube.Lat[r]
		for c := 0; c < cube.NLon; c++ {
			lon := cube.Lon[c]
			if !b.Contains(lon, lat) {
				continue
			}
			v := cube.At(leadTime, r, c)
			if math.IsNaN(v) {
				v = 0
			}
			if !found || v > max {
				max = v
				found = true
			}
		}
	}
	return max
}

// reduceStations implements step 3: point-sample the nearest pixel to each
// station's (lon,lat) for every lead time, across ensembles.
func (ig *Ingest) reduceStations(ctx context.Context, members []croppedMember, stations *model.StationThresholdSet, out *model.DischargeStationDataset) {
	for _, code := range stations.StationCodes() {
		st, _ := stations.Get(code)
		for leadTime := 1; leadTime <= model.LeadTimeMax; leadTime++ {
			ensemble := make([]float64, 0, len(members))
			for _, m := range members {
				if !m.ok || m.cube.NLat == 0 || m.cube.NLon == 0 {
					continue
				}
				r := nearestIndex(m.cube.Lat, st.Lat)
				c := nearestIndex(m.cube.Lon, st.Lon)
				v := m.cube.At(leadTime-1, r, c)
				if math.IsNaN(v) {
					v = 0
				}
				ensemble = append(ensemble, v)
			}
			out.Upsert(model.DischargeStation{
				StationCode: code,
				LeadTime:    leadTime,
				Ensemble:    ensemble,
				Mean:        model.NewDischarge(ensemble),
			})
		}
	}
}

func nearestIndex(coords []float64, target float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, v := range coords {
		d := math.Abs(v - target)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
