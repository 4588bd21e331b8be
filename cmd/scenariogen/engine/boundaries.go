package engine

import (
	"encoding/json"
	"fmt"

	"floodpipe/internal/extent"
	"floodpipe/internal/model"
)

// adminCell is one rectangular admin unit carved out of the country's
// bounding box on a divisions x divisions grid.
type adminCell struct {
	pcode                     string
	minLon, minLat, maxLon, maxLat float64
	baseline10yr               float64
}

func cellsForLevel(country model.Country, lat, lon, baseline10yr []float64, divisions int) []adminCell {
	n := len(lat)
	lonStep := (country.BBox.MaxLon - country.BBox.MinLon) / float64(divisions)
	latStep := (country.BBox.MaxLat - country.BBox.MinLat) / float64(divisions)

	cells := make([]adminCell, 0, divisions*divisions)
	for r := 0; r < divisions; r++ {
		for c := 0; c < divisions; c++ {
			minLon := country.BBox.MinLon + float64(c)*lonStep
			maxLon := minLon + lonStep
			minLat := country.BBox.MinLat + float64(r)*latStep
			maxLat := minLat + latStep

			sum, count := 0.0, 0
			for i := 0; i < n; i++ {
				if lon[i] < minLon || lon[i] > maxLon {
					continue
				}
				for j := 0; j < n; j++ {
					if lat[j] < minLat || lat[j] > maxLat {
						continue
					}
					idx := j*n + i
					if idx < len(baseline10yr) {
						sum += baseline10yr[idx]
						count++
					}
				}
			}
			mean := 80.0
			if count > 0 {
				mean = sum / float64(count)
			}

			cells = append(cells, adminCell{
				pcode:        fmt.Sprintf("%s%02d%02d", country.ISO3, r, c),
				minLon:       minLon,
				minLat:       minLat,
				maxLon:       maxLon,
				maxLat:       maxLat,
				baseline10yr: mean,
			})
		}
	}
	return cells
}

// thresholdsFromBaseline derives a Thresholds set spanning every return
// period the flood-map set ships, anchored at the cell's approximate
// 10-year discharge and growing log-linearly with return period.
func thresholdsFromBaseline(baseline10yr float64) model.Thresholds {
	out := make(model.Thresholds, 0, len(extent.ReturnPeriods))
	for _, rp := range extent.ReturnPeriods {
		growth := 1.0
		for r := 10.0; r < rp; r *= 2 {
			growth *= 1.15
		}
		out = append(out, model.Threshold{ReturnPeriod: rp, Value: baseline10yr * growth})
	}
	return out
}

type geoJSONFeature struct {
	Type       string                     `json:"type"`
	Properties map[string]string          `json:"properties"`
	Geometry   geoJSONPolygon             `json:"geometry"`
}

type geoJSONPolygon struct {
	Type        string          `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func rectanglePolygon(minLon, minLat, maxLon, maxLat float64) geoJSONPolygon {
	ring := [][2]float64{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
	return geoJSONPolygon{Type: "Polygon", Coordinates: [][][2]float64{ring}}
}

// BuildAdminLayer renders one admin level's boundaries as GeoJSON and
// derives every cell's return-period thresholds.
func BuildAdminLayer(level int, divisions int, country model.Country, lat, lon, baseline10yr []float64) ([]byte, []model.AdminThreshold, []adminCell, error) {
	cells := cellsForLevel(country, lat, lon, baseline10yr, divisions)

	fc := geoJSONFeatureCollection{Type: "FeatureCollection"}
	thresholds := make([]model.AdminThreshold, 0, len(cells))
	pcodeKey := fmt.Sprintf("ADM%d_PCODE", level)

	for _, cell := range cells {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type:       "Feature",
			Properties: map[string]string{pcodeKey: cell.pcode},
			Geometry:   rectanglePolygon(cell.minLon, cell.minLat, cell.maxLon, cell.maxLat),
		})
		thresholds = append(thresholds, model.AdminThreshold{
			AdmLevel:   level,
			Pcode:      cell.pcode,
			Thresholds: thresholdsFromBaseline(cell.baseline10yr),
		})
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scenariogen: marshal adm%d boundaries: %w", level, err)
	}
	return raw, thresholds, cells, nil
}

// BuildStations places one gauge station at the centroid of every deepest
// level admin cell, each covering itself and its containing level-1
// parent (approximated by dividing deepest-level divisions evenly).
func BuildStations(country model.Country, deepestLevel, deepestDivisions, parentLevel, parentDivisions int, deepestCells []adminCell) []model.StationThreshold {
	parentDivisor := deepestDivisions / parentDivisions
	if parentDivisor < 1 {
		parentDivisor = 1
	}

	out := make([]model.StationThreshold, 0, len(deepestCells))
	for i, cell := range deepestCells {
		row, col := i/deepestDivisions, i%deepestDivisions
		parentPcode := fmt.Sprintf("%s%02d%02d", country.ISO3, row/parentDivisor, col/parentDivisor)

		out = append(out, model.StationThreshold{
			StationCode: fmt.Sprintf("STA-%s-%03d", country.ISO3, i+1),
			Name:        fmt.Sprintf("%s gauge %d", country.ISO3, i+1),
			Lat:         (cell.minLat + cell.maxLat) / 2,
			Lon:         (cell.minLon + cell.maxLon) / 2,
			Pcodes: map[int][]string{
				deepestLevel: {cell.pcode},
				parentLevel:  {parentPcode},
			},
			Thresholds: thresholdsFromBaseline(cell.baseline10yr),
		})
	}
	return out
}
