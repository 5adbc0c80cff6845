package handlers

import (
	"go.uber.org/fx"

	"tgpay/apps/gateway/handlers/callback"
	"tgpay/apps/gateway/handlers/health"
	"tgpay/apps/gateway/handlers/middleware"
)

var Module = fx.Options(
	middleware.Module,
	callback.Module,
	health.Module,
)
