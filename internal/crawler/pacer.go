package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces politeness between requests.
// Pause is the fixed delay taken after every processed page. Wait blocks on
// an optional token bucket before each fetch, for servers that publish a
// request-rate budget rather than a delay.
type Pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// NewPacer creates a Pacer. A requestsPerSecond of 0 disables the token bucket.
func NewPacer(delay time.Duration, requestsPerSecond float64) *Pacer {
	p := &Pacer{delay: delay}
	if requestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return p
}

// Wait blocks until the rate limit allows another request.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Pause sleeps for the configured delay or until ctx is done.
func (p *Pacer) Pause(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

