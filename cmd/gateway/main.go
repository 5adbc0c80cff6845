package main

import (
	"go.uber.org/fx"

	"tgpay/apps/bot"
	"tgpay/apps/gateway"
	"tgpay/cmd/gateway/router"
	"tgpay/internal"
	"tgpay/pkg"
)

func main() {
	fx.New(
		gateway.Module,
		router.Module,
		pkg.Module,
		internal.Module,
		bot.Module,
	).Run()
}
