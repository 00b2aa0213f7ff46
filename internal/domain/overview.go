package domain

import "time"

// Overview bundles the three analytics results computed over the same
// inputs, plus the request-scoped computation ID.
type Overview struct {
	ComputationID string       `json:"computationId"`
	Forecast      *RiskForecast `json:"forecast"`
	Health        *HealthScore  `json:"health"`
	Suggestions   []Suggestion  `json:"suggestions"`
	ComputedAt    time.Time     `json:"computedAt"`
}

// EngineMetrics is a snapshot of engine-level counters for the
// GET /v1/metrics/engine endpoint.
type EngineMetrics struct {
	TotalComputations int64   `json:"totalComputations"`
	ErrorRate         float64 `json:"errorRate"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	EnhancedFallbacks int64   `json:"enhancedFallbacks"`
	Period            string  `json:"period"`
}
