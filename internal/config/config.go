package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/williampepple1/swimtimes/pkg/models"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Portal   PortalConfig     `yaml:"portal"`
	Browser  BrowserConfig    `yaml:"browser"`
	Scraper  ScraperConfig    `yaml:"scraper"`
	IO       IOConfig         `yaml:"io"`
	Proxies  ProxyConfig      `yaml:"proxies"`
	Roster   []models.Athlete `yaml:"roster,omitempty"`
	LogLevel string           `yaml:"log_level"`
}

// PortalConfig describes the results portal's search flow
type PortalConfig struct {
	SearchURL         string        `yaml:"search_url"`
	OpenSearchButton  string        `yaml:"open_search_button"`
	FirstNameInput    string        `yaml:"first_name_input"`
	LastNameInput     string        `yaml:"last_name_input"`
	SearchResultRows  string        `yaml:"search_result_rows"`
	RevealButtonText  string        `yaml:"reveal_button_text"`
	NoResultsText     string        `yaml:"no_results_text"`
	ScopeSelector     string        `yaml:"scope_selector"`
	ScopeValue        string        `yaml:"scope_value"`
	ResultsTable      string        `yaml:"results_table"`
	ElementTimeout    time.Duration `yaml:"element_timeout"`
	ResultsTimeout    time.Duration `yaml:"results_timeout"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
}

// BrowserConfig holds the headless browser settings
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	UserAgent      string `yaml:"user_agent"`
	ExecPath       string `yaml:"exec_path"`
	NoSandbox      bool   `yaml:"no_sandbox"`
	Diagnostics    bool   `yaml:"diagnostics"`
	DiagnosticsDir string `yaml:"diagnostics_dir"`
}

// ScraperConfig holds pacing and HTTP fetch settings
type ScraperConfig struct {
	PaceDelay  time.Duration `yaml:"pace_delay"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	UserAgents []string      `yaml:"user_agents,omitempty"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	RosterFile   string `yaml:"roster_file"`
	OutputFile   string `yaml:"output_file"`
	MetadataFile string `yaml:"metadata_file"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// Load reads a YAML configuration file on top of the defaults
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(config.Scraper.UserAgents) == 0 {
		config.Scraper.UserAgents = DefaultUserAgents
	}
	if config.Browser.UserAgent == "" {
		config.Browser.UserAgent = DefaultUserAgents[0]
	}

	return config, nil
}

// Default creates the configuration used when no file is given
func Default() *AppConfig {
	return &AppConfig{
		Portal: PortalConfig{
			SearchURL:         DefaultSearchURL,
			OpenSearchButton:  "Individual Times Search",
			FirstNameInput:    "input#firstOrPreferredName",
			LastNameInput:     "input#lastName",
			SearchResultRows:  "table tbody tr",
			RevealButtonText:  "See results",
			NoResultsText:     "No results found",
			ScopeSelector:     "select#competitionYear",
			ScopeValue:        "All",
			ResultsTable:      "table",
			ElementTimeout:    10 * time.Second,
			ResultsTimeout:    15 * time.Second,
			NavigationTimeout: 30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			UserAgent:      DefaultUserAgents[0],
			Diagnostics:    true,
			DiagnosticsDir: ".",
		},
		Scraper: ScraperConfig{
			PaceDelay:  3 * time.Second,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			UserAgents: DefaultUserAgents,
		},
		IO: IOConfig{
			OutputFile:   "times.json",
			MetadataFile: "times_metadata.json",
		},
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		LogLevel: "info",
	}
}

// ApplyEnv loads a .env file if present and applies SWIMTIMES_* overrides
func (c *AppConfig) ApplyEnv() error {
	// a missing .env is normal
	_ = godotenv.Load()

	if v := os.Getenv("SWIMTIMES_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing SWIMTIMES_HEADLESS: %w", err)
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv("SWIMTIMES_CHROME_PATH"); v != "" {
		c.Browser.ExecPath = v
	}
	if v := os.Getenv("SWIMTIMES_PROXY"); v != "" {
		c.Proxies.Enabled = true
		c.Proxies.List = strings.Split(v, ",")
	}
	if v := os.Getenv("SWIMTIMES_OUTPUT_DIR"); v != "" {
		c.IO.OutputFile = filepath.Join(v, filepath.Base(c.IO.OutputFile))
		c.IO.MetadataFile = filepath.Join(v, filepath.Base(c.IO.MetadataFile))
	}
	if v := os.Getenv("SWIMTIMES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}
