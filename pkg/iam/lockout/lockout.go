package lockout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// Tracker counts failed logins per identifier on the shared TTL store and
// flips the identifier into a hard lock once the threshold is hit. It also
// carries the advisory exponential-delay layer keyed by identifier+IP, which
// lives on the same store so it stays correct across instances.
type Tracker struct {
	store        kernel.TTLStore
	maxFailures  int
	window       time.Duration
	lockDuration time.Duration
	delayBase    time.Duration
	delayCap     time.Duration
}

// Config holds the lockout thresholds.
type Config struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
	DelayBase    time.Duration
	DelayCap     time.Duration
}

// NewTracker creates a tracker. Zero config fields fall back to the
// production defaults (5 failures / 1h window / 15min lock / 1s..5min delay).
func NewTracker(store kernel.TTLStore, cfg Config) *Tracker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Window == 0 {
		cfg.Window = time.Hour
	}
	if cfg.LockDuration == 0 {
		cfg.LockDuration = 15 * time.Minute
	}
	if cfg.DelayBase == 0 {
		cfg.DelayBase = time.Second
	}
	if cfg.DelayCap == 0 {
		cfg.DelayCap = 5 * time.Minute
	}
	return &Tracker{
		store:        store,
		maxFailures:  cfg.MaxFailures,
		window:       cfg.Window,
		lockDuration: cfg.LockDuration,
		delayBase:    cfg.DelayBase,
		delayCap:     cfg.DelayCap,
	}
}

func failKey(identifier string) string {
	return fmt.Sprintf("login:fail:%s", strings.ToLower(identifier))
}

func lockKey(identifier string) string {
	return fmt.Sprintf("login:lock:%s", strings.ToLower(identifier))
}

func delayKey(identifier, ip string) string {
	return fmt.Sprintf("login:delay:%s:%s", strings.ToLower(identifier), ip)
}

// IsLocked reports whether the identifier is currently in the LOCKED state.
func (t *Tracker) IsLocked(ctx context.Context, identifier string) (bool, error) {
	_, found, err := t.store.Get(ctx, lockKey(identifier))
	if err != nil {
		return false, err
	}
	return found, nil
}

// RecordFailure increments the failed-attempt counter and returns the
// post-increment count plus whether this failure tripped the lock.
func (t *Tracker) RecordFailure(ctx context.Context, identifier string) (int64, bool, error) {
	count, err := t.store.Increment(ctx, failKey(identifier), t.window)
	if err != nil {
		return 0, false, err
	}

	if count >= int64(t.maxFailures) {
		if err := t.store.Set(ctx, lockKey(identifier), "1", t.lockDuration); err != nil {
			return count, false, err
		}
		return count, true, nil
	}
	return count, false, nil
}

// Clear removes the failure counter and any lock after a successful login.
func (t *Tracker) Clear(ctx context.Context, identifier string) error {
	if err := t.store.Del(ctx, failKey(identifier)); err != nil {
		return err
	}
	return t.store.Del(ctx, lockKey(identifier))
}

// RetryDelay records one more failed attempt for identifier+IP and returns
// the advisory response delay: zero within the grace attempts, then the base
// doubling per excess attempt, capped. Callers sleep for the returned
// duration before responding; the delay slows automated retries but never
// rejects.
func (t *Tracker) RetryDelay(ctx context.Context, identifier, ip string) (time.Duration, error) {
	count, err := t.store.Increment(ctx, delayKey(identifier, ip), t.window)
	if err != nil {
		return 0, err
	}

	excess := count - int64(t.maxFailures)
	if excess <= 0 {
		return 0, nil
	}
	// Shifting past 62 would overflow; the cap kicks in long before that.
	if excess > 32 {
		excess = 32
	}

	delay := t.delayBase << uint(excess-1)
	if delay > t.delayCap || delay <= 0 {
		delay = t.delayCap
	}
	return delay, nil
}
