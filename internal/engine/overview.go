package engine

import (
	"context"

	"github.com/mbittar/finsights-engine-go/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ComputeOverview runs the three computations concurrently over the same
// inputs. The computations are independent and never fail, so the group is
// used for fan-out only.
func (e *Engine) ComputeOverview(ctx context.Context, txns []domain.Transaction, budgets []domain.Budget, goals []domain.Goal, timeframe string, ea *domain.EnhancedAnalytics) *domain.Overview {
	ctx, span := tracer.Start(ctx, "Engine.ComputeOverview")
	defer span.End()

	overview := &domain.Overview{
		ComputationID: uuid.NewString(),
		ComputedAt:    e.now(),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview.Forecast = e.ComputeRiskForecast(gCtx, txns, timeframe, ea)
		return nil
	})
	g.Go(func() error {
		overview.Health = e.ComputeHealthScore(gCtx, txns, budgets, goals, timeframe, ea, nil)
		return nil
	})
	g.Go(func() error {
		overview.Suggestions = e.ComputeSuggestions(gCtx, txns, budgets, nil, timeframe, ea)
		return nil
	})
	_ = g.Wait()

	return overview
}
