package kvmemory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
)

// MemoryStore is an in-process kernel.TTLStore. It exists for tests and for
// single-instance development setups; counters kept here are NOT shared
// across instances, so production deployments must use the Redis store.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store that reads time through the given function.
// Tests use this to step past TTLs without sleeping.
func NewWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		now:   now,
	}
}

var _ kernel.TTLStore = (*MemoryStore)(nil)

func (s *MemoryStore) live(key string) (entry, bool) {
	e, ok := s.items[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return entry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = e
	return nil
}

func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		e = entry{value: "0"}
		if ttl > 0 {
			e.expiresAt = s.now().Add(ttl)
		}
	}

	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		n = 0
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	s.items[key] = e
	return n, nil
}

// Len returns the number of live keys. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.items {
		if _, ok := s.live(key); ok {
			n++
		}
	}
	return n
}
