// Package client holds HTTP adapters for external collaborators.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// EnhancedClient fetches externally computed analytics bundles from the
// enhanced-analytics provider. Provider failures are reported to the
// caller, who degrades to local computation.
type EnhancedClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewEnhancedClient creates a new EnhancedClient.
func NewEnhancedClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *EnhancedClient {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &EnhancedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
	}
}

// FetchEnhanced retrieves the enhanced analytics bundle for a customer.
func (c *EnhancedClient) FetchEnhanced(ctx context.Context, customerID string) (*domain.EnhancedAnalytics, error) {
	ctx, span := tracer.Start(ctx, "EnhancedClient.FetchEnhanced")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var bundle domain.EnhancedAnalytics

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/analytics/%s/enhanced", c.baseURL, customerID)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			httpReq.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "enhanced analytics", ID: customerID}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("enhanced provider returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&bundle)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &bundle, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "enhanced-analytics"}
		}
		return nil, &domain.ErrExternalService{Service: "enhanced-analytics", Err: err}
	}

	return result.(*domain.EnhancedAnalytics), nil
}
