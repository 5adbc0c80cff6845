package admins

import (
	"errors"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/admin"
	"tgpay/internal/notifier"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/internal/validator"
	"tgpay/pkg/logger"
	"tgpay/pkg/tgrouter"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger   logger.Logger
	Notifier notifier.Notifier
	Admins   admin.Service
}

type Commands struct {
	logger   logger.Logger
	notifier notifier.Notifier
	admins   admin.Service
}

func New(p Params) Commands {
	return Commands{
		logger:   p.Logger,
		notifier: p.Notifier,
		admins:   p.Admins,
	}
}

func (cmd Commands) send(c *tgrouter.Ctx, text string) {
	if err := cmd.notifier.Send(c.Context, c.ChatID(), text); err != nil {
		cmd.logger.Error(c.Context, "failed to send message", zap.Int64("chat_id", c.ChatID()), zap.Error(err))
	}
}

// targetID reads the single numeric user id argument.
func (cmd Commands) targetID(c *tgrouter.Ctx, usage texts.TextKey) (int64, bool) {
	args := c.Args()
	if len(args) != 1 {
		cmd.send(c, texts.Get(usage))
		return 0, false
	}
	if !validator.IsValidUserID(args[0]) {
		cmd.send(c, texts.Get(texts.InvalidUserID))
		return 0, false
	}
	return cast.ToInt64(args[0]), true
}

func (cmd Commands) AddAdmin(c *tgrouter.Ctx) {
	userID, ok := cmd.targetID(c, texts.AddAdminUsage)
	if !ok {
		return
	}

	err := cmd.admins.Add(c.Context, userID, c.UserID())
	switch {
	case errors.Is(err, structs.ErrAlreadyExists):
		cmd.send(c, texts.Format(texts.AdminExists, userID))
	case err != nil:
		cmd.send(c, texts.Get(texts.AdminAddFailed))
	default:
		cmd.send(c, texts.Format(texts.AdminAdded, userID))
	}
}

func (cmd Commands) RemoveAdmin(c *tgrouter.Ctx) {
	userID, ok := cmd.targetID(c, texts.RemoveAdminUsage)
	if !ok {
		return
	}

	err := cmd.admins.Remove(c.Context, userID)
	switch {
	case errors.Is(err, structs.ErrCannotRemoveMaster):
		cmd.send(c, texts.Get(texts.CannotRemoveMaster))
	case errors.Is(err, structs.ErrNotFound):
		cmd.send(c, texts.Format(texts.NotAnAdmin, userID))
	case err != nil:
		cmd.send(c, texts.Get(texts.AdminRemoveFailed))
	default:
		cmd.send(c, texts.Format(texts.AdminRemoved, userID))
	}
}

func (cmd Commands) ListAdmins(c *tgrouter.Ctx) {
	list, err := cmd.admins.List(c.Context)
	if err != nil {
		cmd.send(c, texts.Get(texts.AdminListFailed))
		return
	}

	var sb strings.Builder
	sb.WriteString(texts.Get(texts.AdminListHeader))
	for _, a := range list {
		if a.Role == structs.RoleMasterAdmin {
			sb.WriteString(texts.Format(texts.AdminListMaster, a.UserID))
			continue
		}
		sb.WriteString(texts.Format(texts.AdminListItem, a.UserID))
	}
	cmd.send(c, strings.TrimRight(sb.String(), "\n"))
}
