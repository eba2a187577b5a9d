package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joestump/affilinks/internal/store"
)

const (
	listKey    = "links:list"
	versionKey = "links:version"
)

// RedisOptions configures a Redis list cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis stores the list view as one JSON value under a key that carries
// the current generation. Invalidate increments the generation, so rows
// written for an older generation land on a key no reader looks at and
// expire with the TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis builds a client from opts. It does not dial; the first command does.
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "affilinks"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.versionKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version: %w", err)
	}
	return gen, nil
}

func (r *Redis) Get(ctx context.Context) ([]*store.AffiliateLink, bool, error) {
	gen, err := r.Generation(ctx)
	if err != nil {
		return nil, false, err
	}
	val, err := r.client.Get(ctx, r.listKey(gen)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var links []*store.AffiliateLink
	if err := json.Unmarshal([]byte(val), &links); err != nil {
		return nil, false, fmt.Errorf("decode cached list: %w", err)
	}
	return links, true, nil
}

func (r *Redis) Set(ctx context.Context, gen uint64, links []*store.AffiliateLink) error {
	payload, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}
	if err := r.client.Set(ctx, r.listKey(gen), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.versionKey()).Err(); err != nil {
		return fmt.Errorf("redis incr version: %w", err)
	}
	return nil
}

func (r *Redis) listKey(gen uint64) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, listKey, gen)
}

func (r *Redis) versionKey() string {
	return r.prefix + ":" + versionKey
}
