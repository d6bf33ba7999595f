package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store is a byte-level read-through cache.
type Store interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

const defaultLoadTimeout = 5 * time.Second

// Cache stores each key under a generation counter (key "#" gen). Delete bumps
// the counter, so a load that started before it writes to a generation no
// reader asks for anymore.
type Cache struct {
	RDB *redis.Client
	// LoadTimeout bounds a shared load; it does not follow the caller's context.
	LoadTimeout time.Duration
	sf          singleflight.Group
}

func New(addr, pass string, db int, dialTimeout time.Duration) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    pass,
			DB:          db,
			DialTimeout: dialTimeout,
			MaxRetries:  -1,
		}),
		LoadTimeout: defaultLoadTimeout,
	}
}

func genKey(key string) string { return key + "#gen" }

// GetOrLoad serves key from redis, otherwise calls load once per key across
// concurrent callers. Redis failures degrade to a plain load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	gen, err := c.RDB.Get(ctx, genKey(key)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return load(ctx)
	}
	vkey := key + "#" + strconv.FormatInt(gen, 10)
	if b, err := c.RDB.Get(ctx, vkey).Bytes(); err == nil {
		return b, nil
	}

	ch := c.sf.DoChan(vkey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		if b != nil {
			_ = c.RDB.Set(lctx, vkey, b, ttl).Err()
		}
		return b, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		b, _ := r.Val.([]byte)
		return b, nil
	}
}

func (c *Cache) loadTimeout() time.Duration {
	if c.LoadTimeout <= 0 {
		return defaultLoadTimeout
	}
	return c.LoadTimeout
}

// Delete invalidates keys by moving them to a new generation.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	pipe := c.RDB.TxPipeline()
	for _, k := range keys {
		pipe.Incr(ctx, genKey(k))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// Nop always loads.
type Nop struct{}

func (Nop) GetOrLoad(ctx context.Context, _ string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	return load(ctx)
}

func (Nop) Delete(context.Context, ...string) error { return nil }
