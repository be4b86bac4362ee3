package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
)

// Profile is the file form of the configuration. Empty fields are unset.
type Profile struct {
	APIURL         string  `yaml:"api_url" toml:"api_url" ini:"api_url"`
	Token          string  `yaml:"token" toml:"token" ini:"token"`
	Username       string  `yaml:"username" toml:"username" ini:"username"`
	RequestTimeout string  `yaml:"request_timeout" toml:"request_timeout" ini:"request_timeout"`
	UploadTimeout  string  `yaml:"upload_timeout" toml:"upload_timeout" ini:"upload_timeout"`
	SaveTimeout    string  `yaml:"save_timeout" toml:"save_timeout" ini:"save_timeout"`
	RetryMax       int     `yaml:"retry_max" toml:"retry_max" ini:"retry_max"`
	RateLimit      float64 `yaml:"rate_limit" toml:"rate_limit" ini:"rate_limit"`
	RateBurst      int     `yaml:"rate_burst" toml:"rate_burst" ini:"rate_burst"`
	PageSize       int     `yaml:"page_size" toml:"page_size" ini:"page_size"`
	FolderPageSize int     `yaml:"folder_page_size" toml:"folder_page_size" ini:"folder_page_size"`
	HistoryLimit   int     `yaml:"history_limit" toml:"history_limit" ini:"history_limit"`
	StartPath      string  `yaml:"start_path" toml:"start_path" ini:"start_path"`
	StateDir       string  `yaml:"state_dir" toml:"state_dir" ini:"state_dir"`
	LogLevel       string  `yaml:"log_level" toml:"log_level" ini:"log_level"`
	LogDev         string  `yaml:"log_dev" toml:"log_dev" ini:"log_dev"`
	LogFile        string  `yaml:"log_file" toml:"log_file" ini:"log_file"`
	MetricsAddr    string  `yaml:"metrics_addr" toml:"metrics_addr" ini:"metrics_addr"`
}

// ReadProfile parses a profile file, choosing the format by extension.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(filepath.Ext(path), data)
}

// ParseProfile decodes data in the format named by ext (".yaml", ".yml",
// ".toml" or ".ini").
func ParseProfile(ext string, data []byte) (*Profile, error) {
	var p Profile
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	case ".ini":
		err = ini.MapTo(&p, data)
	default:
		return nil, fmt.Errorf("unsupported profile format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s profile: %w", ext, err)
	}
	return &p, nil
}

// apply copies set profile values into cfg where the matching environment
// variable is absent.
func (p *Profile) apply(cfg *Config) error {
	unset := func(env string) bool {
		_, ok := os.LookupEnv(env)
		return !ok
	}
	str := func(env, value string, dst *string) {
		if value != "" && unset(env) {
			*dst = value
		}
	}
	num := func(env string, value int, dst *int) {
		if value != 0 && unset(env) {
			*dst = value
		}
	}
	dur := func(env, value string, dst *time.Duration) error {
		if value == "" || !unset(env) {
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(env), err)
		}
		*dst = d
		return nil
	}

	str("FILEFLEX_API_URL", p.APIURL, &cfg.Backend.URL)
	str("FILEFLEX_TOKEN", p.Token, &cfg.Backend.Token)
	str("FILEFLEX_USERNAME", p.Username, &cfg.Backend.Username)
	if err := dur("FILEFLEX_REQUEST_TIMEOUT", p.RequestTimeout, &cfg.Backend.RequestTimeout); err != nil {
		return err
	}
	if err := dur("FILEFLEX_UPLOAD_TIMEOUT", p.UploadTimeout, &cfg.Backend.UploadTimeout); err != nil {
		return err
	}
	if err := dur("FILEFLEX_SAVE_TIMEOUT", p.SaveTimeout, &cfg.Backend.SaveTimeout); err != nil {
		return err
	}
	num("FILEFLEX_RETRY_MAX", p.RetryMax, &cfg.Backend.RetryMax)
	if p.RateLimit != 0 && unset("FILEFLEX_RATE_LIMIT") {
		cfg.Backend.RateLimit = p.RateLimit
	}
	num("FILEFLEX_RATE_BURST", p.RateBurst, &cfg.Backend.RateBurst)
	num("FILEFLEX_PAGE_SIZE", p.PageSize, &cfg.Browser.PageSize)
	num("FILEFLEX_FOLDER_PAGE_SIZE", p.FolderPageSize, &cfg.Browser.FolderPageSize)
	num("FILEFLEX_HISTORY_LIMIT", p.HistoryLimit, &cfg.Browser.HistoryLimit)
	str("FILEFLEX_START_PATH", p.StartPath, &cfg.Browser.StartPath)
	str("FILEFLEX_STATE_DIR", p.StateDir, &cfg.Storage.StateDir)
	str("FILEFLEX_LOG_LEVEL", p.LogLevel, &cfg.Logging.Level)
	str("FILEFLEX_LOG_FILE", p.LogFile, &cfg.Logging.File)
	str("FILEFLEX_METRICS_ADDR", p.MetricsAddr, &cfg.Metrics.Addr)

	if p.LogDev != "" && unset("FILEFLEX_LOG_DEV") {
		dev, err := strconv.ParseBool(p.LogDev)
		if err != nil {
			return fmt.Errorf("log_dev: %w", err)
		}
		cfg.Logging.Development = dev
	}
	return nil
}
