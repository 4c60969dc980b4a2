package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/internal/logger"
	"github.com/williampepple1/swimtimes/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagVerbose bool
)

// newNavigator starts the browser session; replaced in tests
var newNavigator = func(ctx context.Context, cfg *config.AppConfig) (scraper.Navigator, error) {
	return scraper.NewBrowserNavigator(ctx, cfg)
}

// NewRootCmd creates the root command. Run without arguments it scrapes the roster.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swimtimes",
		Short: "Fetch swimming results for a roster of athletes",
		Long: `Fetches every roster athlete's meet results from the results portal
and writes them, sorted by surname and newest date, to times.json with a
companion times_metadata.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration file (YAML)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newReportCmd())

	return cmd
}

// loadConfig resolves the configuration and installs the logger
func loadConfig() (*config.AppConfig, error) {
	var cfg *config.AppConfig
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
