// Package config provides 12-factor configuration for the FileFlex client.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional profile file (YAML, TOML or INI) fills in whatever the
// environment leaves unset, so a shared profile can be overridden per shell.
//
// Configuration Sections:
//   - Backend: base URL, credentials, timeouts, retries, rate limit, breaker
//   - Browser: page sizes, history cap, start path
//   - Storage: durable state directory
//   - Logging: level, format and output file
//   - Metrics: optional Prometheus endpoint
//
// Example Usage:
//
//	cfg, err := config.LoadWithProfile(profilePath)
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// Environment Variables:
//   - FILEFLEX_API_URL, FILEFLEX_TOKEN, FILEFLEX_USERNAME
//   - FILEFLEX_REQUEST_TIMEOUT, FILEFLEX_UPLOAD_TIMEOUT, FILEFLEX_SAVE_TIMEOUT
//   - FILEFLEX_RETRY_MAX, FILEFLEX_RATE_LIMIT, FILEFLEX_RATE_BURST
//   - FILEFLEX_PAGE_SIZE, FILEFLEX_FOLDER_PAGE_SIZE, FILEFLEX_HISTORY_LIMIT
//   - FILEFLEX_STATE_DIR, FILEFLEX_LOG_LEVEL, FILEFLEX_LOG_DEV, FILEFLEX_METRICS_ADDR
package config
