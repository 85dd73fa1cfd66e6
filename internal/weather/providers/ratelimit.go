package providers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with a shared request budget.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
	name     string
}

var _ weather.Provider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider allows rps requests per second (fractional values
// allowed) with the given burst.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [rate limited]", provider.Name()),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.name
}

func (r *RateLimitedProvider) Forecast(ctx context.Context, q string, days int) (weather.Payload, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Payload{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.Forecast(ctx, q, days)
}

func (r *RateLimitedProvider) History(ctx context.Context, q string, date time.Time) (weather.Payload, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Payload{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.provider.History(ctx, q, date)
}
