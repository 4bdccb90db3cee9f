// Package embedcache memoizes embeddings in Redis. Identical catalog
// queries ("2020 honda cbr600") are common, and each one otherwise costs an
// embedding round trip.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss indicates a cache miss.
var ErrMiss = errors.New("embedcache: miss")

// Embedder is the wrapped embedding client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the byte-level cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements Store with go-redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and pings it.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("embedcache: redis ping %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("embedcache: redis get: %w", err)
	}
	return val, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("embedcache: redis set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

// Cache is an Embedder that consults Store before calling the wrapped one.
// Cache failures never fail an Embed call.
type Cache struct {
	next   Embedder
	store  Store
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps next. model is part of every key so switching models never
// serves stale vectors.
func New(next Embedder, store Store, model string, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{next: next, store: store, prefix: "fitment:emb:" + model + ":", ttl: ttl, logger: logger}
}

// Embed implements fitment.Embedder.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if b, err := c.store.Get(ctx, key); err == nil {
		if vec, ok := decode(b); ok {
			return vec, nil
		}
		c.logger.Warn("embedcache: corrupt entry, re-embedding", "key", key)
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("embedcache: get failed", "err", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 {
		if err := c.store.Set(ctx, key, encode(vec), c.ttl); err != nil {
			c.logger.Warn("embedcache: set failed", "err", err)
		}
	}
	return vec, nil
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// encode packs vec as little-endian float32s.
func encode(vec []float32) []byte {
	b := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func decode(b []byte) ([]float32, bool) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return vec, true
}
