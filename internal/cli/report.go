package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/williampepple1/swimtimes/internal/analysis"
	"github.com/williampepple1/swimtimes/internal/config"
	resultio "github.com/williampepple1/swimtimes/internal/io"
	"github.com/williampepple1/swimtimes/internal/scraper"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// OutputFormat specifies the report format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

var (
	flagInput      string
	flagUnofficial string
	flagHighlights int
	flagFormat     string
	flagStandards  string
	flagGroup      string
	flagAgeGroup   string
)

// BestTime is an athlete's fastest swim in one event
type BestTime struct {
	models.ResultRecord
	Standard *analysis.Assessment `json:"standard,omitempty"`
}

// AthleteBests holds one athlete's fastest swim per event
type AthleteBests struct {
	Name  string     `json:"name"`
	Bests []BestTime `json:"bests"`
}

// Grading selects the standards best times are graded against
type Grading struct {
	Standards analysis.Standards
	Group     string
	AgeGroup  string
}

// Report summarises a times.json document
type Report struct {
	TotalResults int                   `json:"total_results"`
	Athletes     []AthleteBests        `json:"athletes"`
	Recent       []models.ResultRecord `json:"recent"`
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise personal bests and recent swims from times.json",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}

	cmd.Flags().StringVar(&flagInput, "input", "", "times.json path or http(s) URL (default: configured output file)")
	cmd.Flags().StringVar(&flagUnofficial, "unofficial", "", "Optional unofficial_times.json to merge")
	cmd.Flags().IntVar(&flagHighlights, "highlights", 5, "Number of recent results to show")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagStandards, "standards", "", "Optional motivational standards JSON to grade best times against")
	cmd.Flags().StringVar(&flagGroup, "group", "Girls", "Standards group")
	cmd.Flags().StringVar(&flagAgeGroup, "age-group", "11-12", "Standards age group")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := flagInput
	if input == "" {
		input = cfg.IO.OutputFile
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := loadRecords(ctx, cfg, input)
	if err != nil {
		return err
	}
	if flagUnofficial != "" {
		extra, err := resultio.ReadUnofficialFile(flagUnofficial)
		if err != nil {
			return err
		}
		records = append(records, extra...)
	}

	var grading *Grading
	if flagStandards != "" {
		standards, err := resultio.ReadStandardsFile(flagStandards)
		if err != nil {
			return err
		}
		grading = &Grading{Standards: standards, Group: flagGroup, AgeGroup: flagAgeGroup}
	}

	return WriteReport(cmd.OutOrStdout(), BuildReport(records, flagHighlights, grading), format)
}

// loadRecords reads times.json from disk or over HTTP
func loadRecords(ctx context.Context, cfg *config.AppConfig, input string) ([]models.ResultRecord, error) {
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return resultio.ReadRecordsFile(input)
	}

	fetcher, err := scraper.NewHTTPFetcher(cfg)
	if err != nil {
		return nil, err
	}
	body, _, err := fetcher.Fetch(ctx, input)
	if err != nil {
		return nil, err
	}
	return resultio.DecodeRecords(body)
}

// BuildReport computes bests per athlete and the most recent swims.
// When grading is set, each best time is placed against its event's standards.
func BuildReport(records []models.ResultRecord, highlights int, grading *Grading) Report {
	report := Report{
		TotalResults: len(records),
		Athletes:     []AthleteBests{},
		Recent:       analysis.Highlights(records, highlights),
	}
	for _, name := range analysis.Athletes(records) {
		bests := analysis.BestTimes(records, name)
		entry := AthleteBests{Name: name, Bests: make([]BestTime, 0, len(bests))}
		for _, r := range bests {
			entry.Bests = append(entry.Bests, BestTime{ResultRecord: r, Standard: grading.assess(r)})
		}
		report.Athletes = append(report.Athletes, entry)
	}
	return report
}

func (g *Grading) assess(r models.ResultRecord) *analysis.Assessment {
	if g == nil {
		return nil
	}
	sec, ok := analysis.TimeToSeconds(r.Time)
	if !ok {
		return nil
	}
	a, ok := g.Standards.Assess(sec, r.Event, g.Group, g.AgeGroup)
	if !ok {
		return nil
	}
	return &a
}

// standardNote renders "A, 0.71 to AA" for a graded best time
func standardNote(a *analysis.Assessment) string {
	if a == nil {
		return ""
	}
	if a.NextCut <= 0 {
		return "  [" + a.Achieved + "]"
	}
	return fmt.Sprintf("  [%s, %s to %s]", a.Achieved, analysis.FormatSeconds(a.Delta), a.Next)
}

// WriteReport writes the report in the specified format
func WriteReport(w io.Writer, report Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case FormatText:
		return writeText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeText(w io.Writer, report Report) error {
	if report.TotalResults == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	for _, a := range report.Athletes {
		fmt.Fprintf(w, "\n%s (%d events):\n", a.Name, len(a.Bests))
		for _, r := range a.Bests {
			fmt.Fprintf(w, "  %-14s %9s  %-4s %s  %s%s\n", r.Event, r.Time, r.TimeStandard, r.Date, r.Meet, standardNote(r.Standard))
		}
	}

	if len(report.Recent) > 0 {
		fmt.Fprintf(w, "\nMost recent:\n")
		for _, r := range report.Recent {
			fmt.Fprintf(w, "  %s  %-20s %-14s %s\n", r.Date, r.Name, r.Event, r.Time)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d results across %d swimmers\n", report.TotalResults, len(report.Athletes))
	return nil
}
