package kvredis

import (
	"context"
	"time"

	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements kernel.TTLStore backed by Redis. All primitives map
// onto single Redis commands (plus a pipelined EXPIRE NX for Increment), so
// each call is atomic with respect to concurrent requests on any instance.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed TTL store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

var _ kernel.TTLStore = (*RedisStore)(nil)

// Get returns the value at key, with found=false for absent keys.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, kvErrors.NewWithCause(ErrGet, err).WithDetail("key", key)
	}
	return val, true, nil
}

// Set writes value with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return kvErrors.NewWithCause(ErrSet, err).WithDetail("key", key)
	}
	return nil
}

// Del removes key.
func (s *RedisStore) Del(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return kvErrors.NewWithCause(ErrDel, err).WithDetail("key", key)
	}
	return nil
}

// Increment bumps the counter at key. EXPIRE NX attaches the TTL only when
// the key has none yet, i.e. on the increment that created it.
func (s *RedisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if ttl > 0 {
		pipe.ExpireNX(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, kvErrors.NewWithCause(ErrIncrement, err).WithDetail("key", key)
	}
	return incr.Val(), nil
}
