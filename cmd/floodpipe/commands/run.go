package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"floodpipe/internal/config"
	"floodpipe/internal/model"
	"floodpipe/internal/pipeline"
)

var (
	runCountries string
	runDate      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the forecast pipeline for one or more countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		iso3s := strings.Split(runCountries, ",")
		if len(iso3s) == 0 || runCountries == "" {
			return fmt.Errorf("--countries is required, e.g. --countries=KEN,ETH")
		}

		date, err := parseRunDate(runDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", runDate, err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		countries := make([]model.Country, 0, len(iso3s))
		for _, iso3 := range iso3s {
			iso3 = strings.TrimSpace(strings.ToUpper(iso3))
			country, err := config.LoadCountry(ctx, blob, iso3)
			if err != nil {
				log.Error().Err(err).Str("country", iso3).Msg("skipping country, failed to load configuration")
				continue
			}
			countries = append(countries, country)
		}
		if len(countries) == 0 {
			return fmt.Errorf("no country configuration could be loaded")
		}

		p := pipeline.New(cfg, blob, source, pub, log.Logger)
		sup := pipeline.NewSupervisor(p)
		results := sup.RunAll(ctx, countries, date)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				log.Error().Err(r.Err).Str("country", r.Country).Msg("country run failed")
			} else {
				log.Info().Str("country", r.Country).Msg("country run completed")
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d country runs failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCountries, "countries", "", "comma-separated ISO3 country codes, e.g. KEN,ETH")
	runCmd.Flags().StringVar(&runDate, "date", "", "run date YYYY-MM-DD, defaults to today (UTC)")
}
