package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"
	"github.com/mbittar/finsights-engine-go/internal/port"

	"go.uber.org/zap"
)

// ============================================================
// Analytics endpoints
// ============================================================

type forecastRequest struct {
	Transactions []domain.Transaction      `json:"transactions"`
	Timeframe    string                    `json:"timeframe"`
	Enhanced     *domain.EnhancedAnalytics `json:"enhancedAnalytics,omitempty"`
	CustomerID   string                    `json:"customerId,omitempty"`
}

type healthScoreRequest struct {
	Transactions []domain.Transaction      `json:"transactions"`
	Budgets      []domain.Budget           `json:"budgets,omitempty"`
	Goals        []domain.Goal             `json:"goals,omitempty"`
	Timeframe    string                    `json:"timeframe"`
	Enhanced     *domain.EnhancedAnalytics `json:"enhancedAnalytics,omitempty"`
	Precomputed  *float64                  `json:"precomputedScore,omitempty"`
	CustomerID   string                    `json:"customerId,omitempty"`
}

type suggestionsRequest struct {
	Transactions      []domain.Transaction                `json:"transactions"`
	Budgets           []domain.Budget                     `json:"budgets,omitempty"`
	CategoryBreakdown map[string]engine.CategoryAggregate `json:"categoryBreakdown,omitempty"`
	Timeframe         string                              `json:"timeframe"`
	Enhanced          *domain.EnhancedAnalytics           `json:"enhancedAnalytics,omitempty"`
	CustomerID        string                              `json:"customerId,omitempty"`
}

type overviewRequest struct {
	Transactions []domain.Transaction      `json:"transactions"`
	Budgets      []domain.Budget           `json:"budgets,omitempty"`
	Goals        []domain.Goal             `json:"goals,omitempty"`
	Timeframe    string                    `json:"timeframe"`
	Enhanced     *domain.EnhancedAnalytics `json:"enhancedAnalytics,omitempty"`
	CustomerID   string                    `json:"customerId,omitempty"`
}

// resolveEnhanced prefers an inline bundle; otherwise it asks the provider
// when one is configured and the request names a customer. Provider failure
// degrades to nil (local computation), never an error.
func resolveEnhanced(ctx context.Context, inline *domain.EnhancedAnalytics, customerID string, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger) *domain.EnhancedAnalytics {
	if inline != nil || customerID == "" || fetcher == nil {
		return inline
	}
	bundle, err := fetcher.FetchEnhanced(ctx, customerID)
	if err != nil {
		logger.Warn("enhanced provider unavailable, computing locally",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		metrics.IncrExternalError("enhanced-analytics")
		return nil
	}
	return bundle
}

func forecastHandler(eng *engine.Engine, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/analytics/forecast")
		defer span.End()

		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		timeframe, err := validTimeframe(req.Timeframe)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ea := resolveEnhanced(ctx, req.Enhanced, req.CustomerID, fetcher, metrics, logger)
		forecast := eng.ComputeRiskForecast(ctx, req.Transactions, timeframe, ea)
		writeJSON(w, http.StatusOK, forecast)
	}
}

func healthScoreHandler(eng *engine.Engine, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/analytics/health-score")
		defer span.End()

		var req healthScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		timeframe, err := validTimeframe(req.Timeframe)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ea := resolveEnhanced(ctx, req.Enhanced, req.CustomerID, fetcher, metrics, logger)
		score := eng.ComputeHealthScore(ctx, req.Transactions, req.Budgets, req.Goals, timeframe, ea, req.Precomputed)
		writeJSON(w, http.StatusOK, score)
	}
}

func suggestionsHandler(eng *engine.Engine, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/analytics/suggestions")
		defer span.End()

		var req suggestionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		timeframe, err := validTimeframe(req.Timeframe)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ea := resolveEnhanced(ctx, req.Enhanced, req.CustomerID, fetcher, metrics, logger)
		suggestions := eng.ComputeSuggestions(ctx, req.Transactions, req.Budgets, req.CategoryBreakdown, timeframe, ea)
		writeJSON(w, http.StatusOK, suggestions)
	}
}

func overviewHandler(eng *engine.Engine, fetcher port.EnhancedFetcher, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/analytics/overview")
		defer span.End()

		var req overviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		timeframe, err := validTimeframe(req.Timeframe)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ea := resolveEnhanced(ctx, req.Enhanced, req.CustomerID, fetcher, metrics, logger)
		overview := eng.ComputeOverview(ctx, req.Transactions, req.Budgets, req.Goals, timeframe, ea)
		writeJSON(w, http.StatusOK, overview)
	}
}

func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/engine")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
