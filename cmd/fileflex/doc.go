// Package main is an interactive terminal client for a FileFlex backend.
//
// It browses the remote store page by page, builds per-file action menus
// from the operation catalogue the backend publishes and runs the chosen
// operations, asking for confirmation before anything destructive.
//
// Configuration:
//   - Environment variables prefixed FILEFLEX_ (see internal/infrastructure/config)
//   - An optional profile file (.yaml, .toml or .ini) given with -config
//   - CLI flags for the start path and browsing mode
//
// Usage:
//
//	# browse from the last visited folder
//	fileflex
//
//	# start in /data, picking folders only
//	fileflex -path /data -mode folder
//
//	# use a profile and expose /metrics
//	FILEFLEX_METRICS_ADDR=:9090 fileflex -config ~/.fileflex/work.yaml
//
// Logs go to fileflex.log in the state directory so they never interleave
// with the prompt.
package main
