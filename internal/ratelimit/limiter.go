// Package ratelimit throttles client-side reconnect attempts and
// trigger_cache_refresh calls with a token bucket, trimmed from the
// pack's per-client engine.RateLimiter down to the single global
// bucket this system needs: there is only ever one plugin client
// talking to the service at a time, so there is no per-peer map to
// maintain.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps golang.org/x/time/rate.Limiter with the two call
// shapes callers in this system need: a non-blocking check before an
// opportunistic action, and a blocking wait bounded by the caller's
// context before a required one.
type Limiter struct {
	rl *rate.Limiter
}

// New builds a Limiter allowing eventsPerSecond sustained events with
// bursts up to burst.
func New(eventsPerSecond float64, burst int) *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Allow reports whether an event may proceed right now, consuming a
// token if so. Used to throttle trigger_cache_refresh so a chatty
// client can't flood the background pre-warm queue.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}

// Wait blocks until a token is available or ctx is done, whichever
// comes first. The client's reconnect throttle does not use it: it
// calls Allow, so a throttled dial fails at once instead of waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
