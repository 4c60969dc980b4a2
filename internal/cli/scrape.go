package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/internal/io"
	"github.com/williampepple1/swimtimes/internal/logger"
	"github.com/williampepple1/swimtimes/internal/results"
	"github.com/williampepple1/swimtimes/internal/scraper"
	"github.com/williampepple1/swimtimes/internal/worker"
	"github.com/williampepple1/swimtimes/pkg/models"
)

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	roster, err := io.NewRosterReader(cfg).GetRoster()
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}
	if len(roster) == 0 {
		return fmt.Errorf("roster is empty")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	nav, err := newNavigator(ctx, cfg)
	if err != nil {
		return err
	}
	defer nav.Close()

	summary, meta, err := scrapeRoster(ctx, cfg, nav, roster, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %d results for %d swimmers to %s\n", meta.TotalResults, len(roster), cfg.IO.OutputFile)
	for _, o := range summary.Outcomes {
		fmt.Fprintf(out, "  %-24s %-10s %d\n", o.Athlete.DisplayName(), o.Status, o.Records)
	}
	return nil
}

// scrapeRoster runs the whole roster, sorts the records and writes both output files.
// Nothing is written until every athlete has been attempted.
func scrapeRoster(ctx context.Context, cfg *config.AppConfig, nav scraper.Navigator, roster []models.Athlete, now time.Time) (worker.Summary, models.Metadata, error) {
	logger.Info("Starting run", logger.Fields{"swimmers": len(roster)})

	summary := worker.NewRunner(&cfg.Scraper, nav).Run(ctx, roster)

	results.Sort(summary.Records, roster)
	meta := results.NewMetadata(now, summary.Records, roster)

	if err := io.NewResultWriter(&cfg.IO).Save(summary.Records, meta); err != nil {
		return summary, meta, fmt.Errorf("saving results: %w", err)
	}

	logger.Info("Saved results", logger.Fields{
		"records":  meta.TotalResults,
		"output":   cfg.IO.OutputFile,
		"metadata": cfg.IO.MetadataFile,
	})
	return summary, meta, nil
}
