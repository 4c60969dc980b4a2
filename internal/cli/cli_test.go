package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/williampepple1/swimtimes/internal/config"
	resultio "github.com/williampepple1/swimtimes/internal/io"
	"github.com/williampepple1/swimtimes/internal/scraper"
	"github.com/williampepple1/swimtimes/pkg/models"
)

type tableNavigator struct {
	tables map[string][]models.Row
	closed bool
}

func (n *tableNavigator) Lookup(ctx context.Context, athlete models.Athlete, index int) (models.TableResult, error) {
	rows, ok := n.tables[athlete.Last]
	if !ok {
		return models.TableResult{Athlete: athlete, Status: models.StatusNoResults, Reason: "no reveal control"}, nil
	}
	return models.TableResult{Athlete: athlete, Status: models.StatusFound, Table: models.Table{Rows: rows}}, nil
}

func (n *tableNavigator) Close() { n.closed = true }

func resetFlags(t *testing.T) {
	t.Helper()
	prev := newNavigator
	t.Cleanup(func() {
		newNavigator = prev
		flagConfig, flagVerbose = "", false
		flagInput, flagUnofficial, flagHighlights, flagFormat = "", "", 5, "text"
		flagStandards, flagGroup, flagAgeGroup = "", "Girls", "11-12"
	})
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
scraper:
  pace_delay: 0s
io:
  output_file: %s
  metadata_file: %s
roster:
  - first: Anna
    last: Abdikeeva
  - first: Kexin
    last: Liu
log_level: error
`, filepath.Join(dir, "times.json"), filepath.Join(dir, "times_metadata.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScrapeWritesSortedResults(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	nav := &tableNavigator{tables: map[string][]models.Row{
		"Liu": {
			{"50 FR SCY", "29.55", "12", "", "A", "Fall Classic", "PC", "SCAR", "01/01/2023"},
			{"Event"},
			{"100 FR SCY", "1:05.00", "12", "", "BB", "Spring Open", "PC", "SCAR", "05/01/2024"},
		},
	}}
	newNavigator = func(ctx context.Context, cfg *config.AppConfig) (scraper.Navigator, error) {
		return nav, nil
	}

	out, err := execute(t, "--config", writeConfig(t, dir))
	require.NoError(t, err)
	require.Contains(t, out, "Saved 2 results for 2 swimmers")
	require.True(t, nav.closed)

	records, err := resultio.ReadRecordsFile(filepath.Join(dir, "times.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "05/01/2024", records[0].Date)
	require.Equal(t, "01/01/2023", records[1].Date)
	for _, r := range records {
		require.Equal(t, "Kexin Liu", r.Name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "times_metadata.json"))
	require.NoError(t, err)
	var meta models.Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	require.Equal(t, 2, meta.TotalResults)
	require.Equal(t, []string{"Anna Abdikeeva", "Kexin Liu"}, meta.Swimmers)
	require.NotEmpty(t, meta.ScrapedAt)
	require.NotEmpty(t, meta.ScrapedAtReadable)
}

func TestScrapeBrowserStartFailureWritesNothing(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	newNavigator = func(ctx context.Context, cfg *config.AppConfig) (scraper.Navigator, error) {
		return nil, fmt.Errorf("%w: exec: chrome not found", scraper.ErrBrowserStart)
	}

	_, err := execute(t, "--config", writeConfig(t, dir))
	require.ErrorIs(t, err, scraper.ErrBrowserStart)

	_, statErr := os.Stat(filepath.Join(dir, "times.json"))
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "times_metadata.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestScrapeRejectsArguments(t *testing.T) {
	resetFlags(t)
	_, err := execute(t, "extra")
	require.Error(t, err)
}

func sampleRecords() []models.ResultRecord {
	return []models.ResultRecord{
		{Name: "Kexin Liu", Event: "50 FR SCY", Time: "29.55", Date: "05/01/2024", Meet: "Spring Open", TimeStandard: "A"},
		{Name: "Kexin Liu", Event: "50 FR SCY", Time: "30.10", Date: "01/01/2023", Meet: "Fall Classic"},
		{Name: "Anna Abdikeeva", Event: "100 BK SCY", Time: "1:10.00", Date: "03/02/2024", Meet: "2024 Champs"},
	}
}

func writeRecords(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "times.json")
	data, err := json.Marshal(sampleRecords())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReportJSONFromFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	unofficial := filepath.Join(dir, "unofficial_times.json")
	require.NoError(t, os.WriteFile(unofficial,
		[]byte(`[{"name":"Kexin Liu","event":"50 FR SCY","time":"28.90","date":"09/01/2026","meet":"Time Trial","time_standard":"AA"}]`), 0644))

	out, err := execute(t, "report", "--input", writeRecords(t, dir), "--unofficial", unofficial, "--highlights", "2", "--format", "json")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 4, report.TotalResults)
	require.Len(t, report.Athletes, 2)
	require.Equal(t, "Kexin Liu", report.Athletes[0].Name)
	require.Equal(t, "28.90", report.Athletes[0].Bests[0].Time)
	require.Equal(t, "Unattached", report.Athletes[0].Bests[0].Team)
	require.Len(t, report.Recent, 2)
	require.Equal(t, "09/01/2026", report.Recent[0].Date)
	require.Equal(t, "05/01/2024", report.Recent[1].Date)
}

func TestReportTextFromURL(t *testing.T) {
	resetFlags(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sampleRecords())
	}))
	defer srv.Close()

	out, err := execute(t, "report", "--input", srv.URL+"/times.json")
	require.NoError(t, err)
	require.Contains(t, out, "Kexin Liu (1 events):")
	require.Contains(t, out, "Anna Abdikeeva (1 events):")
	require.Contains(t, out, "Most recent:")
	require.Contains(t, out, "Total: 3 results across 2 swimmers")
}

func writeStandards(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "motivational_standards.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Girls":{"11-12":{"SCY":{
		"FR":{"50":{"B":"33.99","BB":"31.59","A":"29.59","AA":"28.29","AAA":"27.09","AAAA":"26.09"}}
	}}}}`), 0644))
	return path
}

func TestReportGradesBestTimes(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	out, err := execute(t, "report", "--input", writeRecords(t, dir), "--standards", writeStandards(t, dir), "--format", "json")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Athletes, 2)

	kexin := report.Athletes[0].Bests[0]
	require.Equal(t, "29.55", kexin.Time)
	require.NotNil(t, kexin.Standard)
	require.Equal(t, "A", kexin.Standard.Achieved)
	require.Equal(t, "AA", kexin.Standard.Next)
	require.InDelta(t, 28.29, kexin.Standard.NextCut, 1e-9)
	require.InDelta(t, 1.26, kexin.Standard.Delta, 1e-9)

	// no 100 BK cuts in the document
	require.Nil(t, report.Athletes[1].Bests[0].Standard)
}

func TestReportTextShowsStandards(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	out, err := execute(t, "report", "--input", writeRecords(t, dir), "--standards", writeStandards(t, dir))
	require.NoError(t, err)
	require.Contains(t, out, "[A, 1.26 to AA]")
}

func TestReportStandardsOtherAgeGroup(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	out, err := execute(t, "report", "--input", writeRecords(t, dir), "--standards", writeStandards(t, dir), "--age-group", "13-14")
	require.NoError(t, err)
	require.NotContains(t, out, " to AA]")
}

func TestReportMissingStandardsFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	_, err := execute(t, "report", "--input", writeRecords(t, dir), "--standards", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	resetFlags(t)
	_, err := execute(t, "report", "--format", "xml")
	require.Error(t, err)
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, BuildReport(nil, 5, nil), FormatText))
	require.Equal(t, "No results found.\n", buf.String())
}
