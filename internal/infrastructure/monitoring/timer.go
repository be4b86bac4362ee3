package monitoring

import "time"

// Timer measures a backend call.
type Timer struct {
	start    time.Time
	metrics  *Metrics
	endpoint string
}

// NewTimer starts a timer for endpoint.
func NewTimer(metrics *Metrics, endpoint string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		endpoint: endpoint,
	}
}

// Stop records the elapsed time under status.
func (t *Timer) Stop(status string) {
	t.metrics.RecordBackendCall(t.endpoint, status, time.Since(t.start))
}
