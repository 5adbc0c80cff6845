package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/pkg/config"
	"tgpay/pkg/logger"
)

var (
	Module      = fx.Provide(New)
	ErrNotFound = errors.New("not found")
)

// Client is the small slice of redis the service needs: cached tokens, once-only marks and
// windowed counters. Keys are namespaced with redis.prefix.
type Client interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// SetOnce stores value only if key is absent and reports whether it did.
	SetOnce(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr bumps a counter and starts its expiry window on the first hit.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type client struct {
	redis  redis.UniversalClient
	prefix string
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle `optional:"true"`
	Config    config.IConfig
	Logger    logger.Logger
}

const dialTimeout = 5 * time.Second

// New connects to redis.addrs. Without addresses it falls back to a process-local store, which is
// fine for a single instance but loses marks and counters on restart.
func New(p Params) (Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	addrs := p.Config.GetStringSlice("redis.addrs")
	if len(addrs) == 0 {
		p.Logger.Warn(ctx, "redis.addrs is empty, using in-memory store")
		return NewMemory(), nil
	}

	conn := redis.NewUniversalClient(&redis.UniversalOptions{
		ClientName:   "tgpay",
		Addrs:        addrs,
		Username:     p.Config.GetString("redis.username"),
		Password:     p.Config.GetString("redis.password"),
		DB:           p.Config.GetInt("redis.db"),
		PoolSize:     p.Config.GetInt("redis.poolSize"),
		MaxRedirects: p.Config.GetInt("redis.maxRedirects"),
		DialTimeout:  dialTimeout,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	p.Logger.Info(ctx, "redis connected", zap.Strings("addrs", addrs))

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return conn.Close() },
		})
	}

	return &client{
		redis:  conn,
		prefix: p.Config.GetString("redis.prefix"),
	}, nil
}

func (c client) key(key string) string {
	return c.prefix + "." + key
}

func (c client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.redis.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (c client) Get(ctx context.Context, key string) (string, error) {
	value, err := c.redis.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

func (c client) Delete(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (c client) SetOnce(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := c.redis.SetNX(ctx, c.key(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx: %w", err)
	}
	return ok, nil
}

func (c client) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, c.key(key))
		pipe.ExpireNX(ctx, c.key(key), window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to incr key: %w", err)
	}
	return incr.Val(), nil
}
