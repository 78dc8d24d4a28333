package activity_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pressroom-io/pressroom/pkg/iam/activity"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/kernel/kvmemory"
)

const (
	userID = kernel.UserID("u-1")
	chrome = "Mozilla/5.0 Chrome"
	curl   = "curl/8.0"
)

func newMonitor(now *time.Time) (*activity.Monitor, *kvmemory.MemoryStore) {
	clock := func() time.Time { return *now }
	store := kvmemory.NewWithClock(clock)
	return activity.NewMonitor(store, activity.WithClock(clock)), store
}

func daytime() time.Time {
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
}

func TestFirstObservationRaisesNoIdentityFlags(t *testing.T) {
	now := daytime()
	m, _ := newMonitor(&now)

	flags := m.Observe(context.Background(), userID, "1.1.1.1", chrome)
	if len(flags) != 0 {
		t.Fatalf("expected no flags on first observation, got %v", flags)
	}
}

func TestRepeatRequestIsClean(t *testing.T) {
	ctx := context.Background()
	now := daytime()
	m, _ := newMonitor(&now)

	m.Observe(ctx, userID, "1.1.1.1", chrome)
	flags := m.Observe(ctx, userID, "1.1.1.1", chrome)
	if len(flags) != 0 {
		t.Fatalf("expected no flags for a repeat request, got %v", flags)
	}
}

func TestDifferentIPFlag(t *testing.T) {
	ctx := context.Background()
	now := daytime()
	m, _ := newMonitor(&now)

	m.Observe(ctx, userID, "1.1.1.1", chrome)
	flags := m.Observe(ctx, userID, "9.9.9.9", chrome)
	if len(flags) != 1 || flags[0] != activity.FlagDifferentIP {
		t.Fatalf("expected only different_ip, got %v", flags)
	}
}

func TestDifferentDeviceFlag(t *testing.T) {
	ctx := context.Background()
	now := daytime()
	m, _ := newMonitor(&now)

	m.Observe(ctx, userID, "1.1.1.1", chrome)
	flags := m.Observe(ctx, userID, "1.1.1.1", curl)
	if len(flags) != 1 || flags[0] != activity.FlagDifferentDevice {
		t.Fatalf("expected only different_device, got %v", flags)
	}
}

func TestIPLookbackExpires(t *testing.T) {
	ctx := context.Background()
	now := daytime()
	m, _ := newMonitor(&now)

	m.Observe(ctx, userID, "1.1.1.1", chrome)

	// Two hours later the IP match is stale but the device match is not.
	now = now.Add(2 * time.Hour)
	flags := m.Observe(ctx, userID, "1.1.1.1", chrome)
	if len(flags) != 1 || flags[0] != activity.FlagDifferentIP {
		t.Fatalf("expected stale ip flagged, got %v", flags)
	}
}

func TestUnusualTimeFlag(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.Local)
	m, _ := newMonitor(&now)

	m.Observe(ctx, userID, "1.1.1.1", chrome)
	flags := m.Observe(ctx, userID, "1.1.1.1", chrome)
	if len(flags) != 1 || flags[0] != activity.FlagUnusualTime {
		t.Fatalf("expected unusual_time at 03:00, got %v", flags)
	}
}

func TestHistoryTruncatedToBuffer(t *testing.T) {
	ctx := context.Background()
	now := daytime()
	m, store := newMonitor(&now)

	for i := 0; i < 15; i++ {
		m.Observe(ctx, userID, "1.1.1.1", chrome)
	}

	raw, found, err := store.Get(ctx, "activity:u-1")
	if err != nil || !found {
		t.Fatalf("expected stored history, found=%v err=%v", found, err)
	}
	var history []activity.Entry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected buffer capped at 10, got %d", len(history))
	}
}
