// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the engine from
// concrete implementations.
package port

import (
	"context"

	"github.com/mbittar/finsights-engine-go/internal/domain"
)

// EnhancedFetcher retrieves an externally computed analytics bundle for a
// customer. Implementations must treat failures as non-fatal: the engine
// degrades to local computation.
type EnhancedFetcher interface {
	FetchEnhanced(ctx context.Context, customerID string) (*domain.EnhancedAnalytics, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
