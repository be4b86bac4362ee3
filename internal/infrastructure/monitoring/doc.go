/*
Package monitoring provides Prometheus metrics for the FileFlex client.

# Overview

Collectors register on a caller-supplied prometheus.Registerer, so several
clients (or tests) can live in one process. Every Record method is safe on
a nil *Metrics, which lets components take metrics as an optional
dependency.

# Metrics

- Backend calls and durations per endpoint
- Listing fetches per browsing mode and outcome, stale results dropped
- Operations per type and outcome, confirmation answers
- Upload outcomes and bytes
- Navigations

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	timer := monitoring.NewTimer(metrics, "queryFiles")
	// ... perform call ...
	timer.Stop("200")

	// Optional endpoint
	srv := monitoring.Serve(":9100", reg, logger)
	defer srv.Shutdown(ctx)
*/
package monitoring
