package middleware

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/admin"
	"tgpay/internal/ctxman"
	"tgpay/internal/notifier"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/pkg/logger"
	"tgpay/pkg/tgrouter"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger   logger.Logger
	Admins   admin.Service
	Notifier notifier.Notifier
}

type Middleware interface {
	// AccessMw loads the caller's roles into the context.
	AccessMw(next tgrouter.Handler) tgrouter.Handler
	AdminMw(next tgrouter.Handler) tgrouter.Handler
	MasterMw(next tgrouter.Handler) tgrouter.Handler
}

type mw struct {
	logger   logger.Logger
	admins   admin.Service
	notifier notifier.Notifier
}

func New(p Params) Middleware {
	return &mw{
		logger:   p.Logger,
		admins:   p.Admins,
		notifier: p.Notifier,
	}
}

func (m *mw) AccessMw(next tgrouter.Handler) tgrouter.Handler {
	return func(c *tgrouter.Ctx) {
		userID := c.UserID()
		if userID == 0 {
			return
		}

		access, err := m.admins.Access(c.Context, userID)
		if err != nil {
			// plain user commands keep working; admin routes report the failure
			m.logger.Error(c.Context, "failed to load access", zap.Int64("user_id", userID), zap.Error(err))
			next(c)
			return
		}

		c.Context = ctxman.WithAccess(c.Context, access)
		next(c)
	}
}

func (m *mw) AdminMw(next tgrouter.Handler) tgrouter.Handler {
	return m.require(texts.AccessDenied, func(a structs.Access) bool { return a.IsAdmin }, next)
}

func (m *mw) MasterMw(next tgrouter.Handler) tgrouter.Handler {
	return m.require(texts.MasterAccessDenied, func(a structs.Access) bool { return a.IsMaster }, next)
}

func (m *mw) require(denied texts.TextKey, allowed func(structs.Access) bool, next tgrouter.Handler) tgrouter.Handler {
	return func(c *tgrouter.Ctx) {
		access, ok := ctxman.Access(c.Context)
		if !ok {
			m.send(c, texts.Get(texts.AccessCheckFailed))
			return
		}
		if !allowed(access) {
			m.logger.Warn(c.Context, "access denied", zap.Int64("user_id", access.UserID), zap.String("text", c.Text()))
			m.send(c, texts.Get(denied))
			return
		}
		next(c)
	}
}

func (m *mw) send(c *tgrouter.Ctx, text string) {
	if err := m.notifier.Send(c.Context, c.ChatID(), text); err != nil {
		m.logger.Error(c.Context, "failed to send message", zap.Error(err))
	}
}
