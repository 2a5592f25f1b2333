package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for the statistics
// endpoint. The full series lives in the Prometheus registry.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	DBQueryCount             uint64    `json:"dbQueryCount"`
	AverageDBQueryDurationMs float64   `json:"averageDbQueryDurationMs"`
	GenerationsTotal         uint64    `json:"generationsTotal"`
	FallbacksTotal           uint64    `json:"fallbacksTotal"`
	LastGenerationScore      float64   `json:"lastGenerationScore"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
