package router

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/apps/gateway/handlers/callback"
	"tgpay/apps/gateway/handlers/health"
	"tgpay/apps/gateway/handlers/middleware"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
)

var Module = fx.Options(
	fx.Invoke(
		NewRouter,
	),
)

type Params struct {
	fx.In

	middleware.Middleware
	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
	Callback  callback.Handler
	Health    health.Handler
}

func NewEngine(params Params) *gin.Engine {
	r := gin.New()
	r.Use(params.Ctx(), gin.Logger(), gin.Recovery())

	if proxies := params.Config.GetStringSlice("gin.trusted_proxies"); len(proxies) > 0 {
		if err := r.SetTrustedProxies(proxies); err != nil {
			params.Logger.Warn(context.Background(), "err on r.SetTrustedProxies", zap.Error(err))
		}
	}

	// Webhooks come from a handful of gateway addresses and are retried, so they skip the per-ip limit.
	r.POST("/callback/ragapay", params.Callback.Webhook)
	r.POST("/webhook/readies", params.Callback.Webhook)

	public := r.Group("/")
	public.Use(params.RateLimit())
	{
		public.GET("/", params.Health.Info)
		public.GET("/health", params.Health.Health)
		public.GET("/payment/success", params.Callback.Success)
		public.GET("/payment/cancel", params.Callback.Cancel)
	}

	r.NoRoute(params.Health.NotFound)
	return r
}

func allowedOrigins(cfg config.IConfig) []string {
	var origins []string
	for _, o := range cfg.GetStringSlice("server.allowed_origins") {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func NewRouter(params Params) {
	r := NewEngine(params)

	server := http.Server{
		Addr: params.Config.GetString("server.port"),
		Handler: cors.New(cors.Options{
			AllowedHeaders: []string{"*"},
			AllowedOrigins: allowedOrigins(params.Config),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}).Handler(r),
	}

	params.Lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Starting application")
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						params.Logger.Error(ctx, "Err on ListenAndServe", zap.Error(err))
					}
				}()

				params.Logger.Info(ctx, "Application starting on port", zap.String("port", params.Config.GetString("server.port")))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Application stopped")
				return server.Shutdown(ctx)
			},
		},
	)
}
