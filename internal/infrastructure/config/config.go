package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all client configuration.
type Config struct {
	Backend BackendConfig
	Browser BrowserConfig
	Storage StorageConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// BackendConfig holds FileFlex backend connection settings.
type BackendConfig struct {
	URL              string        `envconfig:"FILEFLEX_API_URL" default:"http://localhost:8080"`
	Token            string        `envconfig:"FILEFLEX_TOKEN"`
	Username         string        `envconfig:"FILEFLEX_USERNAME"`
	RequestTimeout   time.Duration `envconfig:"FILEFLEX_REQUEST_TIMEOUT" default:"15s"`
	UploadTimeout    time.Duration `envconfig:"FILEFLEX_UPLOAD_TIMEOUT" default:"5m"`
	SaveTimeout      time.Duration `envconfig:"FILEFLEX_SAVE_TIMEOUT" default:"30s"`
	RetryMax         int           `envconfig:"FILEFLEX_RETRY_MAX" default:"3"`
	RetryWaitMin     time.Duration `envconfig:"FILEFLEX_RETRY_WAIT_MIN" default:"500ms"`
	RetryWaitMax     time.Duration `envconfig:"FILEFLEX_RETRY_WAIT_MAX" default:"5s"`
	RateLimit        float64       `envconfig:"FILEFLEX_RATE_LIMIT" default:"20"`
	RateBurst        int           `envconfig:"FILEFLEX_RATE_BURST" default:"40"`
	BreakerThreshold int           `envconfig:"FILEFLEX_BREAKER_THRESHOLD" default:"5"`
	BreakerCooldown  time.Duration `envconfig:"FILEFLEX_BREAKER_COOLDOWN" default:"30s"`
}

// BrowserConfig holds listing and navigation settings.
type BrowserConfig struct {
	PageSize       int    `envconfig:"FILEFLEX_PAGE_SIZE" default:"20"`
	FolderPageSize int    `envconfig:"FILEFLEX_FOLDER_PAGE_SIZE" default:"1000"`
	HistoryLimit   int    `envconfig:"FILEFLEX_HISTORY_LIMIT" default:"10"`
	StartPath      string `envconfig:"FILEFLEX_START_PATH"`
}

// StorageConfig holds durable local state settings.
type StorageConfig struct {
	StateDir string `envconfig:"FILEFLEX_STATE_DIR"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"FILEFLEX_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"FILEFLEX_LOG_DEV" default:"false"`
	File        string `envconfig:"FILEFLEX_LOG_FILE"`
}

// MetricsConfig holds the optional metrics endpoint.
type MetricsConfig struct {
	Addr string `envconfig:"FILEFLEX_METRICS_ADDR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadWithProfile loads configuration from environment variables and fills
// every setting the environment leaves unset from the profile file at path.
func LoadWithProfile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	profile, err := ReadProfile(path)
	if err != nil {
		return nil, err
	}
	if err := profile.apply(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply profile %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:              "http://localhost:8080",
			RequestTimeout:   15 * time.Second,
			UploadTimeout:    5 * time.Minute,
			SaveTimeout:      30 * time.Second,
			RetryMax:         3,
			RetryWaitMin:     500 * time.Millisecond,
			RetryWaitMax:     5 * time.Second,
			RateLimit:        20,
			RateBurst:        40,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Browser: BrowserConfig{
			PageSize:       20,
			FolderPageSize: 1000,
			HistoryLimit:   10,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.Backend.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url %q must use http or https", c.Backend.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend url %q has no host", c.Backend.URL)
	}

	durations := map[string]time.Duration{
		"request timeout": c.Backend.RequestTimeout,
		"upload timeout":  c.Backend.UploadTimeout,
		"save timeout":    c.Backend.SaveTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if c.Browser.PageSize <= 0 || c.Browser.FolderPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.Browser.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.Browser.HistoryLimit)
	}
	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("retry max cannot be negative")
	}
	return nil
}

// StateDirectory resolves where durable state lives, defaulting to
// ~/.fileflex.
func (c *Config) StateDirectory() (string, error) {
	if c.Storage.StateDir != "" {
		return c.Storage.StateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".fileflex"), nil
}
