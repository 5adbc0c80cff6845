package postgres

import (
	"go.uber.org/fx"

	adminrepo "tgpay/pkg/repository/postgres/admin_repo"
	paymentrepo "tgpay/pkg/repository/postgres/payment_repo"
	productrepo "tgpay/pkg/repository/postgres/product_repo"
)

var Module = fx.Options(
	paymentrepo.Module,
	productrepo.Module,
	adminrepo.Module,
)
