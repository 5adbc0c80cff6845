package order

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/keyboards"
	"tgpay/internal/notifier"
	"tgpay/internal/orderflow"
	"tgpay/internal/product"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/internal/validator"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/ratelimit"
	"tgpay/pkg/tgrouter"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger   logger.Logger
	Config   config.IConfig
	Notifier notifier.Notifier
	Products product.Service
	Orders   orderflow.Service
	Limiter  ratelimit.Limiter
}

type Commands struct {
	logger      logger.Logger
	notifier    notifier.Notifier
	products    product.Service
	orders      orderflow.Service
	limiter     ratelimit.Limiter
	maxAttempts int
	window      time.Duration
}

func New(p Params) Commands {
	return Commands{
		logger:      p.Logger,
		notifier:    p.Notifier,
		products:    p.Products,
		orders:      p.Orders,
		limiter:     p.Limiter,
		maxAttempts: p.Config.GetInt("payment.max_attempts"),
		window:      p.Config.GetDuration("payment.attempt_window"),
	}
}

func (cmd Commands) send(c *tgrouter.Ctx, text string) {
	if err := cmd.notifier.Send(c.Context, c.ChatID(), text); err != nil {
		cmd.logger.Error(c.Context, "failed to send message", zap.Int64("chat_id", c.ChatID()), zap.Error(err))
	}
}

func (cmd Commands) reply(c *tgrouter.Ctx, r structs.Reply) {
	if err := cmd.notifier.Reply(c.Context, c.ChatID(), r); err != nil {
		cmd.logger.Error(c.Context, "failed to send reply", zap.Int64("chat_id", c.ChatID()), zap.Error(err))
	}
}

func (cmd Commands) Products(c *tgrouter.Ctx) {
	products, err := cmd.products.GetList(c.Context, true)
	if err != nil {
		cmd.logger.Error(c.Context, "->products.GetList", zap.Error(err))
		cmd.send(c, texts.Get(texts.ProductsFailed))
		return
	}
	if len(products) == 0 {
		cmd.send(c, texts.Get(texts.ProductsEmpty))
		return
	}

	var sb strings.Builder
	sb.WriteString(texts.Get(texts.ProductsHeader))
	for _, p := range products {
		sb.WriteString(texts.Format(texts.ProductItem, p.ID, p.Title, utils.FAmount(p.Amount, p.Currency), p.Description))
	}
	sb.WriteString(texts.Get(texts.ProductsFooter))

	if err = cmd.notifier.SendKeyboard(c.Context, c.ChatID(), sb.String(), keyboards.ProductsKeyboard(products)); err != nil {
		cmd.logger.Error(c.Context, "failed to send products", zap.Error(err))
	}
}

// allowAttempt counts a payment attempt against the per-user limit.
func (cmd Commands) allowAttempt(c *tgrouter.Ctx) bool {
	key := "pay." + strconv.FormatInt(c.UserID(), 10)
	if cmd.limiter.Allow(c.Context, key, cmd.maxAttempts, cmd.window) {
		return true
	}
	cmd.logger.Warn(c.Context, "payment attempts exceeded", zap.Int64("user_id", c.UserID()))
	cmd.send(c, texts.Get(texts.RateLimited))
	return false
}

func (cmd Commands) start(c *tgrouter.Ctx, req orderflow.StartRequest) {
	req.UserID = c.UserID()
	req.ChatID = c.ChatID()
	req.CustomerName = c.FirstName()

	r, err := cmd.orders.Start(c.Context, req)
	if err != nil {
		cmd.logger.Error(c.Context, "->orders.Start", zap.Int64("user_id", req.UserID), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.reply(c, r)
}

func (cmd Commands) Pay(c *tgrouter.Ctx) {
	args := c.Args()
	if len(args) != 2 {
		cmd.send(c, texts.Get(texts.PayUsage))
		return
	}

	amount, ok := validator.ParseAmount(args[0])
	if !ok || !validator.AmountInRange(amount) {
		cmd.send(c, texts.Get(texts.InvalidAmount))
		return
	}
	if !validator.ValidateCurrency(args[1]) {
		cmd.send(c, texts.Get(texts.UnsupportedCurrency))
		return
	}
	if !cmd.allowAttempt(c) {
		return
	}

	cmd.start(c, orderflow.StartRequest{Amount: amount, Currency: validator.NormalizeCurrency(args[1])})
}

func (cmd Commands) Buy(c *tgrouter.Ctx) {
	args := c.Args()
	if len(args) == 0 {
		cmd.send(c, texts.Get(texts.BuyUsage))
		return
	}
	cmd.buy(c, strings.Join(args, " "))
}

// BuyCallback handles the Buy button under /products.
func (cmd Commands) BuyCallback(c *tgrouter.Ctx) {
	if err := cmd.notifier.AnswerCallback(c.Context, c.Update().CallbackQuery.ID); err != nil {
		cmd.logger.Warn(c.Context, "failed to answer callback", zap.Error(err))
	}
	cmd.buy(c, c.CallbackValue())
}

func (cmd Commands) buy(c *tgrouter.Ctx, ref string) {
	p, err := cmd.products.GetActive(c.Context, ref)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			cmd.send(c, texts.Get(texts.ProductNotFound))
			return
		}
		cmd.logger.Error(c.Context, "->products.GetActive", zap.String("ref", ref), zap.Error(err))
		cmd.send(c, texts.Get(texts.BuyFailed))
		return
	}
	if !cmd.allowAttempt(c) {
		return
	}

	cmd.start(c, orderflow.StartRequest{Product: &p})
}

// Answer feeds text to the user's address collection.
func (cmd Commands) Answer(c *tgrouter.Ctx) {
	r, err := cmd.orders.Handle(c.Context, c.UserID(), c.Text())
	if err != nil {
		if errors.Is(err, structs.ErrNoActiveProcess) {
			cmd.send(c, texts.Get(texts.UnknownMessage))
			return
		}
		cmd.logger.Error(c.Context, "->orders.Handle", zap.Int64("user_id", c.UserID()), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.reply(c, r)
}
