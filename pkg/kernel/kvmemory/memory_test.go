package kvmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel/kvmemory"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := kvmemory.New()

	if err := s.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found, err := s.Get(ctx, "k")
	if err != nil || !found || val != "v" {
		t.Fatalf("expected v, got %q found=%v err=%v", val, found, err)
	}

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatal("expected key gone after del")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := kvmemory.New()
	_, found, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false for missing key")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	current := time.Now()
	s := kvmemory.NewWithClock(func() time.Time { return current })

	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	current = current.Add(59 * time.Second)
	if _, found, _ := s.Get(ctx, "k"); !found {
		t.Fatal("expected key alive before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatal("expected key expired")
	}
}

func TestIncrementWindow(t *testing.T) {
	ctx := context.Background()
	current := time.Now()
	s := kvmemory.NewWithClock(func() time.Time { return current })

	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment(ctx, "c", time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	// TTL attaches on creation only; later increments must not extend it.
	current = current.Add(61 * time.Second)
	got, err := s.Increment(ctx, "c", time.Minute)
	if err != nil {
		t.Fatalf("increment after window: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh window to restart at 1, got %d", got)
	}
}
