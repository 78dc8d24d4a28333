// Package ratelimit implements the layered abuse guards shared across
// endpoints: fixed-window caps, role-differentiated caps, a progressive
// penalty that worsens limits for repeat offenders, and a speed-down guard
// that delays instead of rejecting.
//
// All counters live on the shared TTL store, so the guards behave the same
// across instances. The fixed-window counter accepts boundary bursts; it is
// an approximation, not a sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// Penalty tuning: each level shaves penaltyMaxStep off the allowed maximum
// and stretches the window by penaltyWindowStep.
const (
	penaltyMaxStep    = 10
	penaltyWindowStep = time.Minute
)

// Result reports one evaluation of a capped guard.
type Result struct {
	Allowed    bool
	Count      int64
	Limit      int
	RetryAfter time.Duration
}

// Limiter evaluates fixed-window counters against the shared store.
type Limiter struct {
	store      kernel.TTLStore
	penaltyTTL time.Duration
	now        func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithPenaltyTTL overrides how long penalty levels persist (default 24h).
func WithPenaltyTTL(ttl time.Duration) Option {
	return func(l *Limiter) { l.penaltyTTL = ttl }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter on the given store.
func NewLimiter(store kernel.TTLStore, opts ...Option) *Limiter {
	l := &Limiter{
		store:      store,
		penaltyTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func countKey(key string) string   { return fmt.Sprintf("ratelimit:count:%s", key) }
func startKey(key string) string   { return fmt.Sprintf("ratelimit:start:%s", key) }
func penaltyKey(key string) string { return fmt.Sprintf("ratelimit:penalty:%s", key) }

// Allow counts one request against the key's fixed window and reports
// whether it stays under max. Rejections carry a Retry-After bounded by the
// remaining window time.
func (l *Limiter) Allow(ctx context.Context, key string, max int, window time.Duration) (*Result, error) {
	count, err := l.store.Increment(ctx, countKey(key), window)
	if err != nil {
		return nil, err
	}
	if count == 1 {
		// Companion key marking the window start; best-effort, used only to
		// derive Retry-After.
		_ = l.store.Set(ctx, startKey(key), strconv.FormatInt(l.now().Unix(), 10), window)
	}

	res := &Result{Count: count, Limit: max}
	if count <= int64(max) {
		res.Allowed = true
		return res, nil
	}

	res.RetryAfter = l.remaining(ctx, key, window)
	return res, nil
}

// AllowWithPenalty is Allow with the progressive penalty applied: the key's
// penalty level shrinks the effective maximum and widens the window, and
// each fresh violation raises the level. Levels only decay by TTL expiry.
func (l *Limiter) AllowWithPenalty(ctx context.Context, key string, max int, window time.Duration) (*Result, error) {
	level, err := l.penaltyLevel(ctx, key)
	if err != nil {
		return nil, err
	}

	effMax := max - int(level)*penaltyMaxStep
	if effMax < 1 {
		effMax = 1
	}
	effWindow := window + time.Duration(level)*penaltyWindowStep

	res, err := l.Allow(ctx, key, effMax, effWindow)
	if err != nil {
		return nil, err
	}

	if !res.Allowed {
		if _, err := l.store.Increment(ctx, penaltyKey(key), l.penaltyTTL); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Delay implements the speed-down guard: free within the grace count, then
// a linearly growing delay per excess request, capped. It never rejects.
func (l *Limiter) Delay(ctx context.Context, key string, grace int, window, step, maxDelay time.Duration) (time.Duration, error) {
	count, err := l.store.Increment(ctx, countKey("speed:"+key), window)
	if err != nil {
		return 0, err
	}

	excess := count - int64(grace)
	if excess <= 0 {
		return 0, nil
	}

	delay := time.Duration(excess) * step
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay, nil
}

// PenaltyLevel returns the current penalty level for a key.
func (l *Limiter) PenaltyLevel(ctx context.Context, key string) (int64, error) {
	return l.penaltyLevel(ctx, key)
}

func (l *Limiter) penaltyLevel(ctx context.Context, key string) (int64, error) {
	raw, found, err := l.store.Get(ctx, penaltyKey(key))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	level, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return level, nil
}

// remaining derives Retry-After from the stored window start. When the
// start marker is gone the full window is the safe upper bound.
func (l *Limiter) remaining(ctx context.Context, key string, window time.Duration) time.Duration {
	raw, found, err := l.store.Get(ctx, startKey(key))
	if err != nil || !found {
		return window
	}
	start, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return window
	}

	left := window - l.now().Sub(time.Unix(start, 0))
	if left < time.Second {
		left = time.Second
	}
	if left > window {
		left = window
	}
	return left
}
