package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores opaque blobs. A miss is reported as (nil, false, nil).
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	GenerateKey(operation, key string) string
}

type redisCache struct {
	client      *redis.Client
	serviceName string
}

func NewRedisCache(addr, serviceName string) Cache {
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r redisCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}

// Ping reports whether the server behind c answers. Non-redis caches are
// always reachable.
func Ping(ctx context.Context, c Cache) error {
	if rc, ok := c.(*redisCache); ok {
		return rc.client.Ping(ctx).Err()
	}
	return nil
}

type nop struct{}

// Nop is used when no redis address is configured.
func Nop() Cache { return nop{} }

func (nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nop) GenerateKey(operation, key string) string                 { return operation + ":" + key }
