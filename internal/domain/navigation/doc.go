// Package navigation tracks the current remote path, its breadcrumbs and a
// bounded, persisted history of visited paths.
//
// State that must survive restarts crosses the Store port:
//
//	currentFilePath  last path visited in NORMAL mode
//	path_history     most-recent-first list of distinct paths
package navigation
