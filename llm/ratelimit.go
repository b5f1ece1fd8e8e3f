package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/AyushPoddar351/E-Commerce-Assistant/types"
)

// RateLimitedProvider wraps a Provider with a token-bucket rate limiter so
// the three workflow roles share one request budget against the upstream.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider creates a rate-limited wrapper. rps is requests per
// second; burst is the bucket size (minimum 1).
func NewRateLimitedProvider(inner Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete waits for a limiter token, then delegates. A context cancelled
// while waiting surfaces as a rate-limit error so callers can tell it apart
// from an upstream failure.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", types.NewError(types.ErrRateLimited, "rate limiter wait aborted").WithCause(err)
	}
	return p.inner.Complete(ctx, prompt)
}

// Name implements Provider.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }
