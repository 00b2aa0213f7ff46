package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/handler"
	"github.com/mbittar/finsights-engine-go/internal/infra/cache"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newRouter(auth handler.AuthConfig) http.Handler {
	metrics := observability.NewMetrics()
	eng := engine.New(cache.New[any](time.Minute), metrics, zap.NewNop(), engine.WithSeed(1))
	return handler.NewRouter(eng, nil, metrics, zap.NewNop(), auth)
}

func TestHealthz(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestForecastEndpoint(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	body := `{
		"transactions": [
			{"id": "t1", "date": "2024-05-01", "amount": 3000, "type": "income", "category": "Salary"},
			{"id": "t2", "date": "2024-05-02", "amount": -1200, "type": "expense", "category": "Rent"}
		],
		"timeframe": "monthly"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var forecast domain.RiskForecast
	if err := json.NewDecoder(rec.Body).Decode(&forecast); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if forecast.ForecastPeriod != 30 {
		t.Errorf("expected a 30 day forecast, got %d", forecast.ForecastPeriod)
	}
	if forecast.Source != domain.SourceLocal {
		t.Errorf("expected source local, got %q", forecast.Source)
	}
}

func TestForecastEndpoint_InvalidTimeframe(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	body := `{"transactions": [], "timeframe": "weekly"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestForecastEndpoint_MalformedBody(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthScoreEndpoint_Precomputed(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	body := `{"transactions": [], "precomputedScore": 87.4}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/health-score", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var score domain.HealthScore
	if err := json.NewDecoder(rec.Body).Decode(&score); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if score.Score != 87 || score.Grade != "B" {
		t.Errorf("expected 87/B, got %d/%q", score.Score, score.Grade)
	}
	if score.Source != domain.ScoreSourcePrecomputed {
		t.Errorf("expected precomputed source, got %q", score.Source)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	body := `{
		"transactions": [
			{"id": "t1", "date": "2024-05-01", "amount": 1000, "type": "income", "category": "Salary"},
			{"id": "t2", "date": "2024-05-02", "amount": -95, "type": "expense", "category": "Groceries"}
		],
		"budgets": [{"category": "Groceries", "limit": 100}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/suggestions", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var suggestions []domain.Suggestion
	if err := json.NewDecoder(rec.Body).Decode(&suggestions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Type != domain.SuggestionBudgetAlert {
		t.Fatalf("expected a single budget alert, got %+v", suggestions)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	body := `{
		"transactions": [
			{"id": "t1", "date": "2024-05-01", "amount": 5000, "type": "income", "category": "Salary"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/overview", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var overview domain.Overview
	if err := json.NewDecoder(rec.Body).Decode(&overview); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if overview.ComputationID == "" {
		t.Error("expected computationId to be present")
	}
	if overview.Forecast == nil || overview.Health == nil {
		t.Error("expected forecast and health results to be present")
	}
}

func TestEngineMetricsEndpoint(t *testing.T) {
	router := newRouter(handler.AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/engine", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap domain.EngineMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if snap.Period != "all_time" {
		t.Errorf("expected all_time period, got %q", snap.Period)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	router := newRouter(handler.AuthConfig{Required: true, Secret: "test-secret"})

	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader(`{"transactions": []}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	secret := "test-secret"
	router := newRouter(handler.AuthConfig{Required: true, Secret: secret})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader(`{"transactions": []}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with a valid token, got %d. Body: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	router := newRouter(handler.AuthConfig{Required: true, Secret: "right-secret"})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, _ := token.SignedString([]byte("wrong-secret"))

	req := httptest.NewRequest(http.MethodPost, "/v1/analytics/forecast", strings.NewReader(`{"transactions": []}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad signature, got %d", rec.Code)
	}
}
