package internal

import (
	"go.uber.org/fx"

	"tgpay/internal/admin"
	"tgpay/internal/notifier"
	"tgpay/internal/orderflow"
	"tgpay/internal/payment"
	"tgpay/internal/product"
	"tgpay/internal/productflow"
	"tgpay/internal/reconcile"
)

var Module = fx.Options(
	admin.Module,
	product.Module,
	payment.Module,
	notifier.Module,
	orderflow.Module,
	productflow.Module,
	reconcile.Module,
	fx.Provide(
		func(m payment.Manager) orderflow.SessionCreator { return m },
		func(s product.Service) productflow.Products { return s },
	),
)
