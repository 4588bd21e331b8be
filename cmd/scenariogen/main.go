package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"floodpipe/cmd/scenariogen/engine"
	"floodpipe/internal/blobstore"
)

func main() {
	scenario := flag.String("scenario", "calm", "Scenario to generate: calm, surge, drought")
	iso3 := flag.String("country", "KEN", "ISO3 country code to generate")
	ensemble := flag.Int("ensemble", 51, "Number of ensemble members")
	gridSize := flag.Int("grid", 20, "Lat/lon points per side of the synthetic country grid")
	blobRoot := flag.String("blobstore", "./.cache/blobstore", "Blob store root directory")
	sourceRoot := flag.String("source", "./.cache/source", "Ensemble forecast source root directory")
	dateStr := flag.String("date", "", "Run date YYYY-MM-DD, defaults to today (UTC)")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateStr != "" {
		parsed, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			fmt.Printf("invalid --date %q: %v\n", *dateStr, err)
			os.Exit(1)
		}
		date = parsed
	}

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		ISO3:     *iso3,
		Ensemble: *ensemble,
		GridSize: *gridSize,
		Now:      date,
		Rand:     rand.New(rand.NewSource(*seed)),
	}

	fmt.Printf("Generating scenario %q for %s (ensemble=%d, grid=%dx%d) into %s / %s...\n",
		cfg.Scenario, cfg.ISO3, cfg.Ensemble, cfg.GridSize, cfg.GridSize, *blobRoot, *sourceRoot)

	country, lat, lon, members := engine.Generate(cfg)

	// baseline10yr approximates each cell's 10-year discharge as the
	// ensemble mean divided by the scenario's mean factor.
	baseline10yr := make([]float64, cfg.GridSize*cfg.GridSize)
	for _, field := range members {
		for j, v := range field {
			baseline10yr[j] += v
		}
	}
	meanFactor := map[string]float64{"surge": 1.35, "drought": 0.15}[cfg.Scenario]
	if meanFactor == 0 {
		meanFactor = 0.55
	}
	for i := range baseline10yr {
		baseline10yr[i] = baseline10yr[i] / float64(len(members)) / meanFactor
	}

	if err := engine.WriteEnsemble(*sourceRoot, date, lat, lon, members); err != nil {
		fmt.Printf("failed to write ensemble: %v\n", err)
		os.Exit(1)
	}

	const (
		deepestLevel     = 2
		deepestDivisions = 4
		parentLevel      = 1
		parentDivisions  = 2
	)

	deepestGeoJSON, deepestThresholds, deepestCells, err := engine.BuildAdminLayer(deepestLevel, deepestDivisions, country, lat, lon, baseline10yr)
	if err != nil {
		fmt.Printf("failed to build adm%d layer: %v\n", deepestLevel, err)
		os.Exit(1)
	}
	parentGeoJSON, parentThresholds, _, err := engine.BuildAdminLayer(parentLevel, parentDivisions, country, lat, lon, baseline10yr)
	if err != nil {
		fmt.Printf("failed to build adm%d layer: %v\n", parentLevel, err)
		os.Exit(1)
	}

	admThresholds := append(deepestThresholds, parentThresholds...)
	staThresholds := engine.BuildStations(country, deepestLevel, deepestDivisions, parentLevel, parentDivisions, deepestCells)

	blob, err := blobstore.NewLocalStore(*blobRoot)
	if err != nil {
		fmt.Printf("failed to open blob store: %v\n", err)
		os.Exit(1)
	}

	boundaries := map[int][]byte{
		deepestLevel: deepestGeoJSON,
		parentLevel:  parentGeoJSON,
	}

	ctx := context.Background()
	if err := engine.WriteConfig(ctx, blob, country, lat, lon, baseline10yr, boundaries, admThresholds, staThresholds); err != nil {
		fmt.Printf("failed to write config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
