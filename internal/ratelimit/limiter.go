// Package ratelimit provides token-bucket limits for workflow-server
// endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Endpoint names accepted by EndpointLimiter.Wait.
const (
	EndpointQuery    = "query"
	EndpointMetadata = "metadata"
)

// EndpointRates configures per-endpoint request rates in requests per
// second. Metadata calls fan out per workflow, so they get a higher budget
// than listing queries.
type EndpointRates struct {
	Query    float64
	Metadata float64
}

// DefaultEndpointRates returns rates conservative enough for a shared
// server.
func DefaultEndpointRates() EndpointRates {
	return EndpointRates{
		Query:    2,
		Metadata: 10,
	}
}

// EndpointLimiter rate-limits server calls per endpoint using token buckets.
type EndpointLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewEndpointLimiter creates a limiter with the given per-endpoint rates.
func NewEndpointLimiter(rates EndpointRates) *EndpointLimiter {
	burst := func(r float64) int {
		if r < 1 {
			return 1
		}
		return int(r)
	}
	return &EndpointLimiter{
		limiters: map[string]*rate.Limiter{
			EndpointQuery:    rate.NewLimiter(rate.Limit(rates.Query), burst(rates.Query)),
			EndpointMetadata: rate.NewLimiter(rate.Limit(rates.Metadata), burst(rates.Metadata)),
		},
	}
}

// Wait blocks until a token is available for the named endpoint, or ctx is
// cancelled. Unknown endpoints pass through unlimited.
func (l *EndpointLimiter) Wait(ctx context.Context, endpoint string) error {
	l.mu.RLock()
	limiter, ok := l.limiters[endpoint]
	l.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", endpoint, err)
	}
	return nil
}
