package models

import "time"

// MetricsSnapshot summarises console traffic for the JSON metrics view.
type MetricsSnapshot struct {
	RequestsTotal                uint64    `json:"requests_total"`
	AverageRequestDurationMs     float64   `json:"average_request_duration_ms"`
	BackendCallsTotal            uint64    `json:"backend_calls_total"`
	BackendFailuresTotal         uint64    `json:"backend_failures_total"`
	AverageBackendCallDurationMs float64   `json:"average_backend_call_duration_ms"`
	CacheHits                    uint64    `json:"cache_hits"`
	CacheMisses                  uint64    `json:"cache_misses"`
	CacheHitRatio                float64   `json:"cache_hit_ratio"`
	Goroutines                   int       `json:"goroutines"`
	GeneratedAt                  time.Time `json:"generated_at"`
}
