package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisAdapter stores values as Redis strings and keeps a sorted-set index
// scored by expiry, so Keys prunes entries whose TTL has passed.
type RedisAdapter struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisAdapter.
type RedisOption func(*RedisAdapter)

// WithTTL sets the expiration of stored values. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *RedisAdapter) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisAdapter) {
		r.prefix = prefix
	}
}

// NewRedisAdapter connects to the Redis server at addr.
func NewRedisAdapter(addr, password string, db int, opts ...RedisOption) *RedisAdapter {
	return NewRedisAdapterFromClient(backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisAdapterFromClient wraps an existing client.
func NewRedisAdapterFromClient(client *backend.Client, opts ...RedisOption) *RedisAdapter {
	r := &RedisAdapter{
		client: client,
		prefix: "warden:runs:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisAdapter) key(k string) string { return r.prefix + k }

func (r *RedisAdapter) indexKey() string { return r.prefix + "index" }

// farFuture scores index members that never expire.
const farFuture = 4102444800 // 2100-01-01

// Get retrieves a value by key.
func (r *RedisAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: redis get %q: %w", key, err)
	}
	return json.RawMessage(val), true, nil
}

// Set stores a value by key.
func (r *RedisAdapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	score := float64(farFuture)
	if r.ttl > 0 {
		score = float64(time.Now().Add(r.ttl).Unix())
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(key), []byte(value), r.ttl)
	// Insertion order is kept in a second set so Keys is stable.
	pipe.ZAddNX(ctx, r.indexKey()+":order", backend.Z{Score: float64(time.Now().UnixNano()), Member: key})
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(key))
	pipe.ZRem(ctx, r.indexKey(), key)
	pipe.ZRem(ctx, r.indexKey()+":order", key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis delete %q: %w", key, err)
	}
	return nil
}

// Keys returns live keys, oldest first. Expired entries are pruned from
// the index on the way.
func (r *RedisAdapter) Keys(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	expired, err := r.client.ZRangeByScore(ctx, r.indexKey(), &backend.ZRangeBy{Min: "-inf", Max: "(" + now}).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis prune: %w", err)
	}
	if len(expired) > 0 {
		members := make([]any, len(expired))
		for i, k := range expired {
			members[i] = k
		}
		pipe := r.client.TxPipeline()
		pipe.ZRem(ctx, r.indexKey(), members...)
		pipe.ZRem(ctx, r.indexKey()+":order", members...)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("store: redis prune: %w", err)
		}
	}

	keys, err := r.client.ZRange(ctx, r.indexKey()+":order", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis keys: %w", err)
	}
	return keys, nil
}

// Ping checks connectivity.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

var _ Adapter = (*RedisAdapter)(nil)
