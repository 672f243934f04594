package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter hands out one token bucket per outbound provider
// (geocoder, airport lookup, weather). A nil *ProviderLimiter never waits.
type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewProviderLimiter(config Config) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewProviderLimiterWithDefaults() *ProviderLimiter {
	return NewProviderLimiter(DefaultConfig())
}

func (p *ProviderLimiter) GetLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

func (p *ProviderLimiter) SetProviderLimit(provider string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(rate.Limit(rps), burst)
}

func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	if p == nil {
		return nil
	}
	return p.GetLimiter(provider).Wait(ctx)
}
