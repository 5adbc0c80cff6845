package pkg

import (
	"go.uber.org/fx"

	"tgpay/pkg/cache"
	"tgpay/pkg/config"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/migration"
	"tgpay/pkg/ratelimit"
	"tgpay/pkg/redis"
	"tgpay/pkg/reply"
	"tgpay/pkg/repository"
	"tgpay/pkg/tgrouter"
)

var Module = fx.Options(
	config.Module,
	logger.Module,
	migration.Module,
	repository.Module,
	db.Module,
	cache.Module,
	reply.Module,
	tgrouter.Module,
	redis.Module,
	ratelimit.Module,
)
