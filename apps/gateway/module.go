package gateway

import (
	"go.uber.org/fx"

	"tgpay/apps/gateway/handlers"
)

var Module = fx.Options(
	handlers.Module,
)
