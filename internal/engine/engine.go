// Package engine implements the personal-finance analytics core:
// transaction aggregation, cash-flow risk forecasting, health scoring and
// suggestion detection. Every entry point is a pure function of its inputs
// apart from the explicit result cache and the injectable random source.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"
	"github.com/mbittar/finsights-engine-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("engine")

const resultCache = "results"

// Engine is the analytics façade. It is safe for concurrent use: all
// shared state lives in the injected cache.
type Engine struct {
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger

	// seed != 0 pins the forecast noise, making forecasts reproducible
	// and cacheable. seed == 0 keeps the source behaviour: fresh noise
	// per call.
	seed int64
	now  func() time.Time
}

// Option configures optional Engine behaviour.
type Option func(*Engine)

// WithSeed pins the forecaster's random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithClock injects the simulation clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates the engine with all dependencies injected.
func New(cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) newRand() *rand.Rand {
	if e.seed != 0 {
		return rand.New(rand.NewSource(e.seed))
	}
	return rand.New(rand.NewSource(e.now().UnixNano()))
}

// ComputeRiskForecast simulates the forward balance trajectory, or adopts a
// valid enhanced cash-flow analysis. It never fails: garbage records are
// skipped and a malformed bundle falls back to local simulation.
func (e *Engine) ComputeRiskForecast(ctx context.Context, txns []domain.Transaction, timeframe string, ea *domain.EnhancedAnalytics) *domain.RiskForecast {
	_, span := tracer.Start(ctx, "Engine.ComputeRiskForecast")
	defer span.End()
	span.SetAttributes(attribute.String("timeframe", timeframe))

	start := time.Now()
	defer func() {
		e.metrics.RecordComputeDuration("forecast", time.Since(start))
	}()

	norm := normalize(txns, e.logger)

	// Forecast noise makes unseeded results uncacheable.
	cacheable := e.seed != 0
	key := ""
	if cacheable {
		key = fingerprint("forecast", timeframe, e.seed, norm, ea)
		if cached, ok := e.cache.Get(key); ok {
			if f, ok := cached.(*domain.RiskForecast); ok {
				e.metrics.IncrCacheHit(resultCache)
				return f
			}
		}
		e.metrics.IncrCacheMiss(resultCache)
	}

	f := &forecaster{rng: e.newRand(), now: e.now(), logger: e.logger}
	forecast := f.Forecast(norm, timeframe, ea)

	if ea != nil && forecast.Source == domain.SourceLocal {
		e.metrics.IncrEnhancedFallback("forecaster")
	}
	if cacheable {
		e.cache.Set(key, forecast)
	}
	e.metrics.IncrComputation("forecast", "success")
	return forecast
}

// ComputeHealthScore runs the weighted rubric, or adopts a caller-supplied
// precomputed score verbatim.
func (e *Engine) ComputeHealthScore(ctx context.Context, txns []domain.Transaction, budgets []domain.Budget, goals []domain.Goal, timeframe string, ea *domain.EnhancedAnalytics, precomputed *float64) *domain.HealthScore {
	_, span := tracer.Start(ctx, "Engine.ComputeHealthScore")
	defer span.End()

	start := time.Now()
	defer func() {
		e.metrics.RecordComputeDuration("health_score", time.Since(start))
	}()

	norm := normalize(txns, e.logger)

	key := fingerprint("health_score", timeframe, norm, budgets, goals, ea, precomputed)
	if cached, ok := e.cache.Get(key); ok {
		if s, ok := cached.(*domain.HealthScore); ok {
			e.metrics.IncrCacheHit(resultCache)
			return s
		}
	}
	e.metrics.IncrCacheMiss(resultCache)

	score := scoreHealth(norm, budgets, goals, ea, precomputed)

	e.cache.Set(key, score)
	e.metrics.IncrComputation("health_score", "success")
	return score
}

// ComputeSuggestions runs all detector passes and returns the merged,
// severity-ranked list. A caller-supplied category breakdown is used as-is;
// otherwise one is computed from the expense transactions.
func (e *Engine) ComputeSuggestions(ctx context.Context, txns []domain.Transaction, budgets []domain.Budget, breakdown map[string]CategoryAggregate, timeframe string, ea *domain.EnhancedAnalytics) []domain.Suggestion {
	_, span := tracer.Start(ctx, "Engine.ComputeSuggestions")
	defer span.End()

	start := time.Now()
	defer func() {
		e.metrics.RecordComputeDuration("suggestions", time.Since(start))
	}()

	norm := normalize(txns, e.logger)
	suggestions := buildSuggestions(norm, budgets, breakdown, ea)

	for _, s := range suggestions {
		e.metrics.IncrDetectorHit(s.Type)
	}
	e.metrics.IncrComputation("suggestions", "success")
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	return suggestions
}

// fingerprint derives a stable cache key from the canonicalized inputs.
// Any input change changes the key, which is how clear-on-input-change
// invalidation works.
func fingerprint(parts ...any) string {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encoding into a hash cannot fail for these value types.
		_ = enc.Encode(p)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
