package product

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/ctxman"
	"tgpay/internal/notifier"
	"tgpay/internal/product"
	"tgpay/internal/productflow"
	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/pkg/logger"
	"tgpay/pkg/tgrouter"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger      logger.Logger
	Notifier    notifier.Notifier
	ProductSvc  product.Service
	ProductFlow productflow.Service
}

type Commands struct {
	logger      logger.Logger
	notifier    notifier.Notifier
	productSvc  product.Service
	productFlow productflow.Service
}

func New(p Params) Commands {
	return Commands{
		logger:      p.Logger,
		notifier:    p.Notifier,
		productSvc:  p.ProductSvc,
		productFlow: p.ProductFlow,
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

func (cmd Commands) AddProduct(c *tgrouter.Ctx) {
	r, err := cmd.productFlow.StartCreation(c.Context, c.UserID(), c.ChatID())
	if err != nil {
		cmd.logger.Error(c.Context, "->productFlow.StartCreation", zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.reply(c, r)
}

func (cmd Commands) DeleteProduct(c *tgrouter.Ctx) {
	title := strings.Join(c.Args(), " ")
	if title == "" {
		cmd.send(c, texts.Get(texts.DeleteProductUsage))
		return
	}

	p, err := cmd.productSvc.DeleteByTitle(c.Context, title)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			cmd.send(c, texts.Format(texts.DeleteProductNotFound, title))
			return
		}
		cmd.logger.Error(c.Context, "->productSvc.DeleteByTitle", zap.String("title", title), zap.Error(err))
		cmd.send(c, texts.Get(texts.ProductDeleteFailed))
		return
	}

	cmd.logger.Info(c.Context, "product deleted", zap.String("product_id", p.ID), zap.Int64("by", c.UserID()))
	cmd.send(c, texts.Format(texts.ProductDeleted, p.Title, utils.FAmount(p.Amount, p.Currency), p.Description))
}

func (cmd Commands) ListProducts(c *tgrouter.Ctx) {
	products, err := cmd.productSvc.GetList(c.Context, false)
	if err != nil {
		cmd.logger.Error(c.Context, "->productSvc.GetList", zap.Error(err))
		cmd.send(c, texts.Get(texts.ProductsFailed))
		return
	}
	if len(products) == 0 {
		cmd.send(c, texts.Get(texts.AdminProductsEmpty))
		return
	}

	var sb strings.Builder
	sb.WriteString(texts.Get(texts.AdminProductsHeader))
	for _, p := range products {
		inactive := ""
		if !p.IsActive {
			inactive = texts.Get(texts.ProductInactive)
		}
		sb.WriteString(texts.Format(texts.AdminProductItem,
			p.ID, p.Title, inactive,
			utils.FAmount(p.Amount, p.Currency),
			p.Description,
			p.CreatedBy,
			p.CreatedAt.Format(time.DateTime),
		))
	}
	cmd.send(c, strings.TrimRight(sb.String(), "\n"))
}

func (cmd Commands) ModifyProduct(c *tgrouter.Ctx) {
	args := c.Args()
	if len(args) != 1 {
		cmd.send(c, texts.Get(texts.ModifyUsage))
		return
	}

	p, err := cmd.productSvc.GetByID(c.Context, args[0])
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			cmd.send(c, texts.Get(texts.ProductNotFound))
			return
		}
		cmd.logger.Error(c.Context, "->productSvc.GetByID", zap.String("product_id", args[0]), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}

	access, _ := ctxman.Access(c.Context)
	if !cmd.productSvc.CanModify(access, p) {
		cmd.send(c, texts.Get(texts.ModifyForbidden))
		return
	}

	r, err := cmd.productFlow.StartModification(c.Context, c.UserID(), c.ChatID(), p)
	if err != nil {
		cmd.logger.Error(c.Context, "->productFlow.StartModification", zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.reply(c, r)
}

// Answer feeds text to the user's product creation or modification.
func (cmd Commands) Answer(c *tgrouter.Ctx) {
	cmd.handle(c, c.Text())
}

// Choice takes a field button pressed during modification.
func (cmd Commands) Choice(c *tgrouter.Ctx) {
	if err := cmd.notifier.AnswerCallback(c.Context, c.Update().CallbackQuery.ID); err != nil {
		cmd.logger.Warn(c.Context, "failed to answer callback", zap.Error(err))
	}
	cmd.handle(c, c.CallbackValue())
}

func (cmd Commands) handle(c *tgrouter.Ctx, text string) {
	r, err := cmd.productFlow.Handle(c.Context, c.UserID(), text)
	if err != nil {
		if errors.Is(err, structs.ErrNoActiveProcess) {
			cmd.send(c, texts.Get(texts.UnknownMessage))
			return
		}
		cmd.logger.Error(c.Context, "->productFlow.Handle", zap.Int64("user_id", c.UserID()), zap.Error(err))
		cmd.send(c, texts.Get(texts.Retry))
		return
	}
	cmd.reply(c, r)
}
