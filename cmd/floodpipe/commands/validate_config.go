package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"floodpipe/internal/config"
	"floodpipe/internal/threshold"
)

var validateConfigCountry string

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "validate one country's policy, bounding box and threshold documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		iso3 := strings.TrimSpace(strings.ToUpper(validateConfigCountry))
		if iso3 == "" {
			return fmt.Errorf("--country is required, e.g. --country=KEN")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		country, err := config.LoadCountry(ctx, blob, iso3)
		if err != nil {
			return fmt.Errorf("country config: %w", err)
		}
		log.Info().Str("country", iso3).Ints("admin_levels", country.Policy.AdminLevels).Msg("policy valid")

		store := threshold.New(blob)
		admThresholds, err := store.GetAdminThresholds(ctx, iso3)
		if err != nil {
			return fmt.Errorf("admin thresholds: %w", err)
		}
		log.Info().Str("country", iso3).Int("admin_units", len(admThresholds.Pcodes())).Msg("admin thresholds valid")

		staThresholds, err := store.GetStationThresholds(ctx, iso3)
		if err != nil {
			return fmt.Errorf("station thresholds: %w", err)
		}
		log.Info().Str("country", iso3).Int("stations", len(staThresholds.StationCodes())).Msg("station thresholds valid")

		fmt.Printf("%s: configuration valid (%d admin units, %d stations)\n", iso3, len(admThresholds.Pcodes()), len(staThresholds.StationCodes()))
		return nil
	},
}

func init() {
	validateConfigCmd.Flags().StringVar(&validateConfigCountry, "country", "", "ISO3 country code, e.g. KEN")
}
