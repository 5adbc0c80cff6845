package clients

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/admin"
	"tgpay/internal/ctxman"
	"tgpay/internal/notifier"
	"tgpay/internal/payment"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/tgrouter"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger   logger.Logger
	Notifier notifier.Notifier
	Admins   admin.Service
	Payments payment.Manager
	Store    interfaces.ConversationStore
}

type Commands struct {
	logger   logger.Logger
	notifier notifier.Notifier
	admins   admin.Service
	payments payment.Manager
	store    interfaces.ConversationStore
}

func New(p Params) Commands {
	return Commands{
		logger:   p.Logger,
		notifier: p.Notifier,
		admins:   p.Admins,
		payments: p.Payments,
		store:    p.Store,
	}
}

func access(c *tgrouter.Ctx) structs.Access {
	if a, ok := ctxman.Access(c.Context); ok {
		return a
	}
	return structs.Access{UserID: c.UserID()}
}

func (cmd Commands) send(c *tgrouter.Ctx, text string) {
	if err := cmd.notifier.Send(c.Context, c.ChatID(), text); err != nil {
		cmd.logger.Error(c.Context, "failed to send message", zap.Int64("chat_id", c.ChatID()), zap.Error(err))
	}
}

func (cmd Commands) Start(c *tgrouter.Ctx) {
	a := access(c)

	var sb strings.Builder
	sb.WriteString(texts.Get(texts.Welcome))
	switch {
	case a.IsMaster:
		sb.WriteString(texts.Get(texts.WelcomeMaster))
	case a.IsAdmin:
		sb.WriteString(texts.Get(texts.WelcomeAdmin))
	}
	sb.WriteString(texts.Get(texts.WelcomeIntro))
	writeCommands(&sb, a)
	sb.WriteString(texts.Get(texts.WelcomeExample))
	sb.WriteString(texts.Get(texts.PaymentProcess))

	cmd.send(c, sb.String())
}

func (cmd Commands) Help(c *tgrouter.Ctx) {
	var sb strings.Builder
	sb.WriteString(texts.Get(texts.HelpHeader))
	writeCommands(&sb, access(c))
	sb.WriteString(texts.Get(texts.HelpLimits))
	sb.WriteString(texts.Get(texts.PaymentProcess))

	cmd.send(c, sb.String())
}

func writeCommands(sb *strings.Builder, a structs.Access) {
	sb.WriteString(texts.Get(texts.UserCommands))
	if a.IsAdmin {
		sb.WriteString(texts.Get(texts.AdminCommands))
	}
	if a.IsMaster {
		sb.WriteString(texts.Get(texts.MasterCommands))
	}
}

// statusText renders the user's active session. ok is false when there is none.
func (cmd Commands) statusText(c *tgrouter.Ctx) (text string, ok bool) {
	session, err := cmd.payments.FindActiveByUser(c.Context, c.UserID())
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return texts.Get(texts.NoSessions), false
		}
		cmd.logger.Error(c.Context, "->payments.FindActiveByUser", zap.Int64("user_id", c.UserID()), zap.Error(err))
		return texts.Get(texts.StatusFailed), false
	}

	var sb strings.Builder
	sb.WriteString(texts.Format(texts.PaymentStatus,
		session.OrderNumber,
		utils.FAmount(session.Amount, session.Currency),
		session.Status.Emoji(),
		strings.ToUpper(string(session.Status)),
		session.CreatedAt.Format(time.DateTime),
	))
	if session.ProductName != "" {
		sb.WriteString(texts.Format(texts.StatusProduct, session.ProductName))
	}
	if session.Status == structs.StatusPending {
		sb.WriteString(texts.Get(texts.StatusPending))
	}
	return strings.TrimRight(sb.String(), "\n"), true
}

func (cmd Commands) Status(c *tgrouter.Ctx) {
	text, _ := cmd.statusText(c)
	cmd.send(c, text)
}

func (cmd Commands) Refresh(c *tgrouter.Ctx) {
	text, ok := cmd.statusText(c)
	if ok {
		text += texts.Get(texts.RefreshHint)
	}
	cmd.send(c, text)
}

var cancelTexts = map[structs.ConversationKind]texts.TextKey{
	structs.KindAddress:             texts.AddressCancelled,
	structs.KindProductCreation:     texts.CreationCancelled,
	structs.KindProductModification: texts.ModificationCancelled,
}

func (cmd Commands) Cancel(c *tgrouter.Ctx) {
	kind, err := cmd.store.Kind(c.Context, c.UserID())
	if err != nil {
		cmd.logger.Error(c.Context, "->store.Kind", zap.Int64("user_id", c.UserID()), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	if kind == "" {
		cmd.send(c, texts.Get(texts.NothingToCancel))
		return
	}

	if err = c.ClearState(); err != nil {
		cmd.logger.Error(c.Context, "->c.ClearState", zap.Int64("user_id", c.UserID()), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.logger.Info(c.Context, "conversation cancelled", zap.Int64("user_id", c.UserID()), zap.String("kind", kind))

	key, ok := cancelTexts[structs.ConversationKind(kind)]
	if !ok {
		key = texts.NothingToCancel
	}
	cmd.send(c, texts.Get(key))
}

func yesNo(v bool) string {
	if v {
		return texts.Get(texts.Yes)
	}
	return texts.Get(texts.No)
}

func (cmd Commands) AdminStatus(c *tgrouter.Ctx) {
	a := access(c)

	text := texts.Format(texts.AdminStatus, c.UserID(), yesNo(a.IsAdmin), yesNo(a.IsMaster))
	switch {
	case a.IsMaster:
		text += texts.Get(texts.AdminStatusMaster)
	case a.IsAdmin:
		text += texts.Get(texts.AdminStatusAdmin)
	default:
		text += texts.Format(texts.AdminStatusNone, cmd.admins.MasterID())
	}
	cmd.send(c, text)
}

func (cmd Commands) CheckAdmin(c *tgrouter.Ctx) {
	a := access(c)

	text := texts.Format(texts.CheckAdmin, c.UserID(), yesNo(a.IsAdmin), yesNo(a.IsMaster))
	if a.IsAdmin {
		text += texts.Get(texts.CheckAdminYes)
	} else {
		text += texts.Get(texts.CheckAdminNo)
	}
	cmd.send(c, text)
}

func (cmd Commands) Unknown(c *tgrouter.Ctx) {
	cmd.send(c, texts.Get(texts.UnknownMessage))
}
