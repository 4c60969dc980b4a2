package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, DefaultSearchURL, cfg.Portal.SearchURL)
	require.Equal(t, "See results", cfg.Portal.RevealButtonText)
	require.Equal(t, "No results found", cfg.Portal.NoResultsText)
	require.Equal(t, 10*time.Second, cfg.Portal.ElementTimeout)
	require.True(t, cfg.Browser.Headless)
	require.Equal(t, "times.json", cfg.IO.OutputFile)
	require.Equal(t, "times_metadata.json", cfg.IO.MetadataFile)
	require.Empty(t, cfg.Roster)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
portal:
  element_timeout: 5s
scraper:
  pace_delay: 1500ms
io:
  output_file: out/times.json
roster:
  - first: Kexin
    last: Liu
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 5*time.Second, cfg.Portal.ElementTimeout)
	require.Equal(t, 15*time.Second, cfg.Portal.ResultsTimeout)
	require.Equal(t, 1500*time.Millisecond, cfg.Scraper.PaceDelay)
	require.Equal(t, "out/times.json", cfg.IO.OutputFile)
	require.Equal(t, "times_metadata.json", cfg.IO.MetadataFile)
	require.Len(t, cfg.Roster, 1)
	require.Equal(t, "Kexin Liu", cfg.Roster[0].DisplayName())
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, DefaultUserAgents, cfg.Scraper.UserAgents)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SWIMTIMES_HEADLESS", "false")
	t.Setenv("SWIMTIMES_CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("SWIMTIMES_PROXY", "http://a:8080,http://b:8080")
	t.Setenv("SWIMTIMES_OUTPUT_DIR", "/tmp/swim")
	t.Setenv("SWIMTIMES_LOG_LEVEL", "warn")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	require.False(t, cfg.Browser.Headless)
	require.Equal(t, "/usr/bin/chromium", cfg.Browser.ExecPath)
	require.True(t, cfg.Proxies.Enabled)
	require.Equal(t, []string{"http://a:8080", "http://b:8080"}, cfg.Proxies.List)
	require.Equal(t, filepath.Join("/tmp/swim", "times.json"), cfg.IO.OutputFile)
	require.Equal(t, filepath.Join("/tmp/swim", "times_metadata.json"), cfg.IO.MetadataFile)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnvRejectsBadBool(t *testing.T) {
	t.Setenv("SWIMTIMES_HEADLESS", "sometimes")

	cfg := Default()
	require.Error(t, cfg.ApplyEnv())
}
