// Package commands is the floodpipe cobra command tree, mirroring the
// PersistentPreRun bootstrap pattern of the original MCS-MCP CLI: init
// logging, load configuration, construct the run's shared collaborators.
package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"floodpipe/internal/blobstore"
	"floodpipe/internal/config"
	"floodpipe/internal/logging"
	"floodpipe/internal/publish"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
	blob    blobstore.BlobStore
	source  blobstore.ForecastSource
	pub     publish.Publisher
)

var rootCmd = &cobra.Command{
	Use:   "floodpipe",
	Short: "floodpipe runs the river-flood early-warning forecast pipeline",
	Long: `floodpipe ingests ensemble river-discharge forecasts, reduces them to
per-admin-unit and per-station trigger/alert classifications, composes
flood-extent rasters and population exposure, and publishes the result
to the downstream early-action alerting API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		blob, err = blobstore.NewLocalStore(cfg.BlobStoreRoot)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open blob store")
		}
		source = blobstore.NewLocalForecastSource(cfg.SourceRoot)
		pub = publish.NewHTTPPublisher(cfg.PublisherBaseURL, cfg.PublisherToken, cfg.RequestTimeout, log.Logger)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("floodpipe starting")
	},
}

// Execute runs the command tree, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateConfigCmd)
}

func parseRunDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", s)
}
