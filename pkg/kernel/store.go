package kernel

import (
	"context"
	"time"
)

// TTLStore is the shared ephemeral key-value store every cross-request
// counter and session artifact lives in. Implementations must make each
// single-key operation atomic; no multi-key transactions are assumed, so
// composite check-then-write sequences remain best-effort.
type TTLStore interface {
	// Get returns the value at key. The second return is false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value at key with the given TTL, replacing any prior value
	// and TTL. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Increment atomically increments the integer at key and returns the
	// post-increment count. The TTL is applied only on the increment that
	// creates the key, giving fixed-window counter semantics.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
