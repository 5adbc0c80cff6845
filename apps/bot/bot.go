package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/apps/bot/commands/admins"
	"tgpay/apps/bot/commands/clients"
	"tgpay/apps/bot/commands/order"
	"tgpay/apps/bot/commands/product"
	"tgpay/apps/bot/middleware"
	"tgpay/internal/keyboards"
	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	repo "tgpay/pkg/repository/interfaces"
	"tgpay/pkg/tgrouter"
	"tgpay/pkg/tgrouter/interfaces"
)

var Module = fx.Options(
	clients.Module,
	order.Module,
	product.Module,
	admins.Module,
	middleware.Module,

	fx.Provide(
		NewBotAPI,
		func(s repo.ConversationStore) interfaces.State { return s },
	),

	fx.Invoke(NewBot),
)

// apiTimeout bounds every Bot API call. getUpdates long polls for up to a minute, so it has to
// outlast that.
const apiTimeout = 75 * time.Second

func NewBotAPI(cfg config.IConfig) (*tgbotapi.BotAPI, error) {
	token := cfg.GetString("bot.token")
	if token == "" {
		return nil, &structs.ConfigurationError{Key: "bot.token"}
	}
	return newBotAPI(token, tgbotapi.APIEndpoint)
}

func newBotAPI(token, endpoint string) (*tgbotapi.BotAPI, error) {
	tb, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: apiTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	return tb, nil
}

type Params struct {
	fx.In
	fx.Lifecycle

	Logger  logger.Logger
	Config  config.IConfig
	Bot     *tgbotapi.BotAPI
	Factory tgrouter.RouterFactory
	State   interfaces.State

	Handlers
}

// Handlers are the command sets a router is wired with.
type Handlers struct {
	fx.In

	Middleware middleware.Middleware
	ClientsCmd clients.Commands
	OrderCmd   order.Commands
	ProductCmd product.Commands
	AdminsCmd  admins.Commands
}

func NewBot(p Params) error {
	registerCommands(p.Bot)

	poolSize := p.Config.GetInt("bot.pool_size")
	if poolSize <= 0 {
		poolSize = 10
	}
	r := p.Factory(p.Bot, tgrouter.WithPoolSize(poolSize), tgrouter.WithState(p.State))
	Register(r, p.Handlers)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.Listen()
			p.Logger.Info(ctx, "bot started", zap.Int("workers", poolSize))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return r.Shutdown(ctx)
		},
	})

	return nil
}

// Register adds every route. Commands come first so /cancel works inside a conversation, then
// buttons, then conversation answers, then the catch-all.
func Register(r *tgrouter.Router, h Handlers) {
	bot := r.Group()
	bot.Use(h.Middleware.AccessMw)

	tgrouter.On(bot, tgrouter.Cmd("start"), h.ClientsCmd.Start)
	tgrouter.On(bot, tgrouter.Cmd("help"), h.ClientsCmd.Help)
	tgrouter.On(bot, tgrouter.Cmd("status"), h.ClientsCmd.Status)
	tgrouter.On(bot, tgrouter.Cmd("refresh"), h.ClientsCmd.Refresh)
	tgrouter.On(bot, tgrouter.Cmd("cancel"), h.ClientsCmd.Cancel)
	tgrouter.On(bot, tgrouter.Cmd("adminstatus"), h.ClientsCmd.AdminStatus)
	tgrouter.On(bot, tgrouter.Cmd("checkadmin"), h.ClientsCmd.CheckAdmin)

	tgrouter.On(bot, tgrouter.Cmd("products"), h.OrderCmd.Products)
	tgrouter.On(bot, tgrouter.Cmd("buy"), h.OrderCmd.Buy)
	tgrouter.On(bot, tgrouter.Cmd("pay"), h.OrderCmd.Pay)

	adminGroup := bot.Group()
	adminGroup.Use(h.Middleware.AdminMw)
	tgrouter.On(adminGroup, tgrouter.Cmd("addproduct"), h.ProductCmd.AddProduct)
	tgrouter.On(adminGroup, tgrouter.Cmd("deleteproduct"), h.ProductCmd.DeleteProduct)
	tgrouter.On(adminGroup, tgrouter.Cmd("listproducts"), h.ProductCmd.ListProducts)
	tgrouter.On(adminGroup, tgrouter.Cmd("modifyproduct"), h.ProductCmd.ModifyProduct)

	masterGroup := bot.Group()
	masterGroup.Use(h.Middleware.MasterMw)
	tgrouter.On(masterGroup, tgrouter.Cmd("addadmin"), h.AdminsCmd.AddAdmin)
	tgrouter.On(masterGroup, tgrouter.Cmd("removeadmin"), h.AdminsCmd.RemoveAdmin)
	tgrouter.On(masterGroup, tgrouter.Cmd("listadmins"), h.AdminsCmd.ListAdmins)

	tgrouter.On(bot, tgrouter.Callback(keyboards.BuyQuery), h.OrderCmd.BuyCallback)
	tgrouter.On(adminGroup, tgrouter.Callback(keyboards.ChoiceQuery), h.ProductCmd.Choice)

	tgrouter.On(bot, tgrouter.State(string(structs.KindAddress)), h.OrderCmd.Answer)
	tgrouter.On(adminGroup, tgrouter.State(string(structs.KindProductCreation)), h.ProductCmd.Answer)
	tgrouter.On(adminGroup, tgrouter.State(string(structs.KindProductModification)), h.ProductCmd.Answer)

	tgrouter.On(bot, tgrouter.Message(), h.ClientsCmd.Unknown)
}

func registerCommands(tb *tgbotapi.BotAPI) {
	cfg := tgbotapi.NewSetMyCommands([]tgbotapi.BotCommand{
		{Command: "start", Description: "Welcome message"},
		{Command: "help", Description: "Show help"},
		{Command: "products", Description: "View available products"},
		{Command: "buy", Description: "Buy a product"},
		{Command: "pay", Description: "Direct payment: /pay <amount> <currency>"},
		{Command: "status", Description: "Check payment status"},
		{Command: "refresh", Description: "Refresh payment status"},
		{Command: "cancel", Description: "Cancel current process"},
	}...)

	_, _ = tb.Request(cfg)
}
