package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	phash "github.com/vmchale/phash-fut"
)

// DefaultPrefix namespaces keys written by Redis.
const DefaultPrefix = "phash:"

// Redis stores hashes as hex strings in Redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. An empty prefix selects DefaultPrefix; a zero ttl
// keeps entries forever.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key used for a content key.
func (r *Redis) Key(key string) string { return r.prefix + key }

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (phash.Hash, bool, error) {
	s, err := r.client.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	h, err := phash.ParseHash(s)
	if err != nil {
		return 0, false, err
	}
	return h, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, h phash.Hash) error {
	if err := r.client.Set(ctx, r.Key(key), h.String(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
