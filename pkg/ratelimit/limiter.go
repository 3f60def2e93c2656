// Package ratelimit paces outgoing photo API requests on the client side.
// It never retries or rejects a request; it only delays it until a token is
// available or the caller's context ends.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by all requests of one client.
// A Limiter created with a non-positive rate lets everything through.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewLimiter creates a limiter allowing perSecond requests per second with a
// burst of the same size.
func NewLimiter(perSecond int, logger zerolog.Logger) *Limiter {
	l := &Limiter{logger: logger}
	if perSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
	return l
}

// Enabled reports whether the limiter paces requests at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Wait blocks until the next request may be sent.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	waited := time.Since(start)
	metrics.RateLimitWait.Observe(waited.Seconds())
	if waited > time.Millisecond {
		l.logger.Debug().
			Dur("wait_duration", waited).
			Msg("Request delayed by rate limiter")
	}

	return nil
}
