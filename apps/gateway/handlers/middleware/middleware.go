package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/ratelimit"
	"tgpay/pkg/reply"
)

var (
	Module = fx.Provide(NewMiddleware)
)

type (
	Middleware interface {
		// Ctx gives every request its own log id.
		Ctx() gin.HandlerFunc
		// RateLimit caps requests per client ip using http.rate_limit and http.rate_window.
		RateLimit() gin.HandlerFunc
	}

	Params struct {
		fx.In

		Logger  logger.Logger
		Config  config.IConfig
		Limiter ratelimit.Limiter
	}

	mw struct {
		logger  logger.Logger
		limiter ratelimit.Limiter
		limit   int
		window  time.Duration
	}
)

func NewMiddleware(params Params) Middleware {
	window := params.Config.GetDuration("http.rate_window")
	if window <= 0 {
		window = time.Minute
	}
	return &mw{
		logger:  params.Logger,
		limiter: params.Limiter,
		limit:   params.Config.GetInt("http.rate_limit"),
		window:  window,
	}
}

// LogIDHeader lets support match a gateway's delivery to our log lines.
const LogIDHeader = "X-Log-Id"

func (m *mw) Ctx() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, capture := m.logger.ContextWithCapture(m.logger.Context(c.Request.Context()), "http request")
		c.Request = c.Request.WithContext(ctx)
		c.Header(LogIDHeader, logger.ID(ctx))

		c.Next()

		capture(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func (m *mw) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		if !m.limiter.Allow(ctx, "ip."+ip, m.limit, m.window) {
			m.logger.Warn(ctx, "too many requests", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Abort()
			reply.Json(c.Writer, http.StatusTooManyRequests, gin.H{"status": "error", "message": "too many requests"})
			return
		}
		c.Next()
	}
}
