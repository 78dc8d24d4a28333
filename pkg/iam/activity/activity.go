package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/logx"
)

// Flags raised by Observe.
const (
	FlagDifferentIP     = "different_ip"
	FlagDifferentDevice = "different_device"
	FlagUnusualTime     = "unusual_time"
)

const (
	ipLookback     = time.Hour
	deviceLookback = 24 * time.Hour
	usualHourFrom  = 6  // inclusive
	usualHourUntil = 23 // exclusive
)

// Entry is one observed authenticated request.
type Entry struct {
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
	Flagged   bool      `json:"flagged"`
}

// Monitor keeps a short ring buffer of recent authenticated requests per
// user and flags anomalies. It is purely advisory: it logs and records but
// never blocks, and store failures are swallowed.
type Monitor struct {
	store      kernel.TTLStore
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source. Tests use this to pin the hour.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates a monitor with the production buffer (10 entries, 7d).
func NewMonitor(store kernel.TTLStore, opts ...Option) *Monitor {
	m := &Monitor{
		store:      store,
		maxEntries: 10,
		ttl:        7 * 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func activityKey(userID kernel.UserID) string {
	return fmt.Sprintf("activity:%s", userID)
}

// Observe compares the current request against the user's recent history,
// pushes a new entry and truncates the buffer. It returns the raised flags;
// callers may ignore them.
func (m *Monitor) Observe(ctx context.Context, userID kernel.UserID, ip, userAgent string) []string {
	history := m.loadHistory(ctx, userID)
	now := m.now()

	flags := m.assess(history, now, ip, userAgent)

	entry := Entry{
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: now,
		Flagged:   len(flags) > 0,
	}
	history = append([]Entry{entry}, history...)
	if len(history) > m.maxEntries {
		history = history[:m.maxEntries]
	}

	if data, err := json.Marshal(history); err == nil {
		if err := m.store.Set(ctx, activityKey(userID), string(data), m.ttl); err != nil {
			logx.WithError(err).Warn("activity: failed to persist history")
		}
	}

	if len(flags) > 0 {
		logx.WithFields(logx.Fields{
			"user_id": userID,
			"ip":      ip,
			"flags":   flags,
		}).Warn("activity: suspicious request")
	}
	return flags
}

func (m *Monitor) loadHistory(ctx context.Context, userID kernel.UserID) []Entry {
	raw, found, err := m.store.Get(ctx, activityKey(userID))
	if err != nil {
		logx.WithError(err).Warn("activity: failed to load history")
		return nil
	}
	if !found {
		return nil
	}

	var history []Entry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

// assess raises the anomaly flags. IP and device flags need at least one
// prior entry to compare against; a brand-new history flags nothing.
func (m *Monitor) assess(history []Entry, now time.Time, ip, userAgent string) []string {
	var flags []string

	if len(history) > 0 {
		knownIP := false
		knownDevice := false
		for _, e := range history {
			age := now.Sub(e.Timestamp)
			if age <= ipLookback && e.IP == ip {
				knownIP = true
			}
			if age <= deviceLookback && e.UserAgent == userAgent {
				knownDevice = true
			}
		}
		if !knownIP {
			flags = append(flags, FlagDifferentIP)
		}
		if !knownDevice {
			flags = append(flags, FlagDifferentDevice)
		}
	}

	hour := now.Local().Hour()
	if hour < usualHourFrom || hour >= usualHourUntil {
		flags = append(flags, FlagUnusualTime)
	}
	return flags
}
