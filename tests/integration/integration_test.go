package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/handler"
	"github.com/mbittar/finsights-engine-go/internal/infra/cache"
	"github.com/mbittar/finsights-engine-go/internal/infra/client"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"
	"github.com/mbittar/finsights-engine-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// TestIntegration_EnhancedProvider spins up a mock enhanced-analytics
// provider and tests the full request flow through the HTTP API.
func TestIntegration_EnhancedProvider(t *testing.T) {
	// --- Mock enhanced analytics provider ---
	providerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analytics/cust-integration-1/enhanced" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		bundle := domain.EnhancedAnalytics{
			CashFlowAnalysis: &domain.CashFlowAnalysis{
				Periods: []domain.CashFlowPeriod{
					{Period: "2024-03", Income: 5000, Expenses: 4200, Net: 800},
					{Period: "2024-04", Income: 5000, Expenses: 4600, Net: 400},
					{Period: "2024-05", Income: 5000, Expenses: 5300, Net: -300},
				},
				Trends:      &domain.CashFlowTrends{Volatility: 80, NetGrowth: -1.2},
				Granularity: "monthly",
			},
			SpendingForecast: &domain.SpendingForecast{Confidence: "high"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bundle)
	}))
	defer providerServer.Close()

	// --- Build engine and router ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	fetcher := client.NewEnhancedClient(httpClient, providerServer.URL, cb, cfg)
	eng := engine.New(cache.New[any](5*time.Minute), metrics, logger, engine.WithSeed(42))
	router := handler.NewRouter(eng, fetcher, metrics, logger, handler.AuthConfig{})

	// --- Forecast adopts the fetched series ---
	body, _ := json.Marshal(map[string]any{
		"transactions": []map[string]any{
			{"id": "t1", "date": "2024-05-01", "amount": 5000, "type": "income", "category": "Salary"},
			{"id": "t2", "date": "2024-05-03", "amount": -1800, "type": "expense", "category": "Rent"},
		},
		"timeframe":  "monthly",
		"customerId": "cust-integration-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var forecast domain.RiskForecast
	if err := json.NewDecoder(rec.Body).Decode(&forecast); err != nil {
		t.Fatalf("failed to decode forecast: %v", err)
	}
	if forecast.Source != domain.SourceEnhanced {
		t.Errorf("expected the fetched series adopted, got source %q", forecast.Source)
	}
	if forecast.ForecastPeriod != 3 {
		t.Errorf("expected 3 adopted periods, got %d", forecast.ForecastPeriod)
	}

	// --- Overview carries all three results with enhanced bonuses ---
	req = httptest.NewRequest(http.MethodPost, "/v1/analytics/overview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var overview domain.Overview
	if err := json.NewDecoder(rec.Body).Decode(&overview); err != nil {
		t.Fatalf("failed to decode overview: %v", err)
	}
	if overview.ComputationID == "" {
		t.Error("expected computationId to be present")
	}
	if overview.Forecast == nil || overview.Forecast.Source != domain.SourceEnhanced {
		t.Error("expected the overview forecast built from the fetched series")
	}
	if overview.Health == nil || overview.Health.Score == 0 {
		t.Error("expected a non-zero health score")
	}

	found := false
	for _, f := range overview.Health.Breakdown {
		if f.Factor == domain.FactorForecastReliability {
			found = true
		}
	}
	if !found {
		t.Error("expected the high-confidence forecast bonus in the breakdown")
	}
}

// TestIntegration_ProviderDownFallsBack verifies that an unreachable
// provider degrades to local computation instead of failing the request.
func TestIntegration_ProviderDownFallsBack(t *testing.T) {
	providerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	providerServer.Close() // connection refused from the start

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration-down")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 5 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: time.Second}

	fetcher := client.NewEnhancedClient(httpClient, providerServer.URL, cb, cfg)
	eng := engine.New(cache.New[any](5*time.Minute), metrics, logger)
	router := handler.NewRouter(eng, fetcher, metrics, logger, handler.AuthConfig{})

	body, _ := json.Marshal(map[string]any{
		"transactions": []map[string]any{
			{"id": "t1", "date": "2024-05-01", "amount": 3000, "type": "income", "category": "Salary"},
			{"id": "t2", "date": "2024-05-02", "amount": -1000, "type": "expense", "category": "Rent"},
		},
		"customerId": "cust-integration-2",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite the provider being down, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var forecast domain.RiskForecast
	if err := json.NewDecoder(rec.Body).Decode(&forecast); err != nil {
		t.Fatalf("failed to decode forecast: %v", err)
	}
	if forecast.Source != domain.SourceLocal {
		t.Errorf("expected local fallback, got source %q", forecast.Source)
	}
	if len(forecast.DailyFlow) != 30 {
		t.Errorf("expected a simulated 30 day series, got %d days", len(forecast.DailyFlow))
	}
}
