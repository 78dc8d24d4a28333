package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel/kvmemory"
	"github.com/pressroom-io/pressroom/pkg/ratelimit"
)

func newLimiter(now *time.Time) *ratelimit.Limiter {
	store := kvmemory.NewWithClock(func() time.Time { return *now })
	return ratelimit.NewLimiter(store,
		ratelimit.WithClock(func() time.Time { return *now }))
}

func TestAllowUnderAndOverCap(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	for i := 1; i <= 5; i++ {
		res, err := l.Allow(ctx, "ip:1.1.1.1", 5, 15*time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	res, err := l.Allow(ctx, "ip:1.1.1.1", 5, 15*time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("6th request should be rejected")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > 15*time.Minute {
		t.Fatalf("retry-after out of bounds: %v", res.RetryAfter)
	}
}

func TestAllowWindowResets(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 6; i++ {
		l.Allow(ctx, "k", 5, time.Minute)
	}

	now = now.Add(61 * time.Second)
	res, err := l.Allow(ctx, "k", 5, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed || res.Count != 1 {
		t.Fatalf("expected fresh window, got %+v", res)
	}
}

func TestRetryAfterShrinksWithElapsedTime(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	for i := 0; i < 5; i++ {
		l.Allow(ctx, "k", 5, 10*time.Minute)
	}

	now = now.Add(9 * time.Minute)
	res, _ := l.Allow(ctx, "k", 5, 10*time.Minute)
	if res.Allowed {
		t.Fatal("expected rejection")
	}
	if res.RetryAfter > time.Minute {
		t.Fatalf("expected at most the remaining minute, got %v", res.RetryAfter)
	}
}

func TestPenaltyShrinksLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	// Violate a cap of 15 once to earn a penalty level.
	for i := 0; i < 16; i++ {
		if _, err := l.AllowWithPenalty(ctx, "abuser", 15, time.Minute); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}
	level, err := l.PenaltyLevel(ctx, "abuser")
	if err != nil {
		t.Fatalf("penalty level: %v", err)
	}
	if level != 1 {
		t.Fatalf("expected level 1, got %d", level)
	}

	// A fresh window now allows only 15-10=5 before rejecting.
	now = now.Add(2 * time.Minute)
	var rejectedAt int64
	for i := 1; i <= 10; i++ {
		res, err := l.AllowWithPenalty(ctx, "abuser", 15, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			rejectedAt = res.Count
			break
		}
	}
	if rejectedAt != 6 {
		t.Fatalf("expected rejection on request 6 under penalty, got %d", rejectedAt)
	}
}

func TestPenaltyFloorsAtOne(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	// Drive the level high enough that max-10*level goes negative. The
	// advance between rounds outlives even the penalty-stretched window.
	for round := 0; round < 4; round++ {
		for i := 0; i < 25; i++ {
			l.AllowWithPenalty(ctx, "k", 15, time.Second)
		}
		now = now.Add(2 * time.Hour)
	}

	res, err := l.AllowWithPenalty(ctx, "k", 15, time.Second)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed || res.Limit != 1 {
		t.Fatalf("expected effective limit floored at 1, got %+v", res)
	}
}

func TestDelayGrowsLinearlyAndCaps(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := newLimiter(&now)

	grace, window := 3, time.Minute
	step, maxDelay := 500*time.Millisecond, 2*time.Second

	for i := 0; i < grace; i++ {
		d, err := l.Delay(ctx, "k", grace, window, step, maxDelay)
		if err != nil {
			t.Fatalf("delay: %v", err)
		}
		if d != 0 {
			t.Fatalf("expected no delay within grace, got %v", d)
		}
	}

	want := []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond, 2 * time.Second, 2 * time.Second}
	for i, w := range want {
		d, err := l.Delay(ctx, "k", grace, window, step, maxDelay)
		if err != nil {
			t.Fatalf("delay: %v", err)
		}
		if d != w {
			t.Fatalf("excess %d: expected %v, got %v", i+1, w, d)
		}
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}
func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("store down")
}
func (brokenStore) Del(context.Context, string) error { return errors.New("store down") }
func (brokenStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestStoreErrorsSurface(t *testing.T) {
	ctx := context.Background()
	l := ratelimit.NewLimiter(brokenStore{})

	if _, err := l.Allow(ctx, "k", 5, time.Minute); err == nil {
		t.Fatal("expected error from broken store")
	}
	if _, err := l.AllowWithPenalty(ctx, "k", 5, time.Minute); err == nil {
		t.Fatal("expected error from broken store")
	}
	if _, err := l.Delay(ctx, "k", 3, time.Minute, time.Second, time.Minute); err == nil {
		t.Fatal("expected error from broken store")
	}
}
