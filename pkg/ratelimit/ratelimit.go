package ratelimit

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger logger.Logger
	Redis  redis.Client
}

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

type limiter struct {
	logger logger.Logger
	redis  redis.Client
}

func New(p Params) Limiter {
	return &limiter{
		logger: p.Logger,
		redis:  p.Redis,
	}
}

// Allow fails open when redis is unreachable.
func (l *limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return true
	}
	count, err := l.redis.Incr(ctx, "ratelimit."+key, window)
	if err != nil {
		l.logger.Warn(ctx, "rate limit counter unavailable", zap.String("key", key), zap.Error(err))
		return true
	}
	return count <= int64(limit)
}
