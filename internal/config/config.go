package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"gridmix/internal/logger"
)

// ErrMissingAPIKey is returned when no Ember API key is configured
var ErrMissingAPIKey = errors.New("EMBER_API_KEY is not set")

// ConfigError wraps every failure to load or validate the configuration
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds all configuration for the dashboard
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8981"`

	// Ember API configuration
	EmberAPIKey  string        `env:"EMBER_API_KEY"` // required unless MOCKUP_MODE
	EmberBaseURL string        `env:"EMBER_BASE_URL,default=https://api.ember-energy.org"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT,default=30s"`

	// Query configuration
	EntityCode   string `env:"ENTITY_CODE,default=CHN"`
	MonthlyStart string `env:"MONTHLY_START,default=2000-01"`
	AnnualStart  string `env:"ANNUAL_START,default=2000"`
	ShareYear    int    `env:"SHARE_YEAR,default=2024"`
	ValueField   string `env:"VALUE_FIELD,default=generation_twh"`
	SummaryYears int    `env:"SUMMARY_YEARS,default=5"`

	// Local output and offline configuration
	LocalReportsDir string `env:"LOCAL_REPORTS_DIR,default=./reports"`
	MockupMode      bool   `env:"MOCKUP_MODE,default=false"`
	MocksDir        string `env:"MOCKS_DIR,default=internal/mocks/data"`

	// Snapshots go to this bucket instead of LOCAL_REPORTS_DIR when set
	GCSBucket string `env:"GCS_BUCKET"`
	GCSPrefix string `env:"GCS_PREFIX"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to process config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MockupMode {
		logger.For(logger.ComponentConfig).Warnf("MOCKUP_MODE is on, Ember data comes from fixtures in %s", cfg.MocksDir)
	}
	return &cfg, nil
}

// LoadStorage loads configuration for commands that only read stored
// snapshots. The Ember settings are left unvalidated, so no API key is needed.
func LoadStorage(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to process config: %w", err)}
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own
func (c *Config) Validate() error {
	var problems []string

	// fixtures stand in for the API in mockup mode
	if strings.TrimSpace(c.EmberAPIKey) == "" && !c.MockupMode {
		return &ConfigError{Err: ErrMissingAPIKey}
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.EmberBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid EMBER_BASE_URL '%s'", c.EmberBaseURL))
	}

	if strings.TrimSpace(c.EntityCode) == "" {
		problems = append(problems, "ENTITY_CODE cannot be empty")
	}

	if _, err := time.Parse("2006-01", c.MonthlyStart); err != nil {
		problems = append(problems, fmt.Sprintf("invalid MONTHLY_START '%s': expected YYYY-MM", c.MonthlyStart))
	}
	if _, err := time.Parse("2006", c.AnnualStart); err != nil {
		problems = append(problems, fmt.Sprintf("invalid ANNUAL_START '%s': expected YYYY", c.AnnualStart))
	}

	if c.ShareYear < 1900 || c.ShareYear > 2200 {
		problems = append(problems, fmt.Sprintf("invalid SHARE_YEAR %d", c.ShareYear))
	}

	if c.SummaryYears < 1 {
		problems = append(problems, fmt.Sprintf("invalid SUMMARY_YEARS %d: must be at least 1", c.SummaryYears))
	}

	if c.HTTPTimeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return &ConfigError{Err: errors.New(strings.Join(problems, "; "))}
	}
	return nil
}
