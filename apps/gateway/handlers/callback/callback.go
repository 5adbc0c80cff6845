package callback

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/reconcile"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
	"tgpay/pkg/reply"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

type (
	Handler interface {
		// Webhook takes server to server notifications of any gateway.
		Webhook(c *gin.Context)
		Success(c *gin.Context)
		Cancel(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger     logger.Logger
		Reconciler reconcile.Reconciler
	}

	handler struct {
		logger     logger.Logger
		reconciler reconcile.Reconciler
	}
)

func New(p Params) Handler {
	return &handler{
		logger:     p.Logger,
		reconciler: p.Reconciler,
	}
}

// maxWebhookBody caps what a webhook may send. Real notifications are a few kilobytes.
const maxWebhookBody = 1 << 20

type ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// webhookStatus maps a reconcile failure to what the gateway sees. Gateways retry on anything but
// 2xx, which is what an unmatched session wants.
func webhookStatus(err error) (int, string) {
	var serr *structs.SignatureError
	switch {
	case errors.Is(err, structs.ErrBadRequest):
		return http.StatusBadRequest, "invalid payload"
	case errors.As(err, &serr):
		return http.StatusUnauthorized, "invalid signature"
	case errors.Is(err, structs.ErrNotFound):
		return http.StatusNotFound, "payment not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *handler) Webhook(c *gin.Context) {
	var (
		ctx      = c.Request.Context()
		status   = http.StatusOK
		response = ack{Status: "OK"}
	)
	defer func() { reply.Json(c.Writer, status, &response) }()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn(ctx, "webhook body too large", zap.Int64("limit", tooLarge.Limit))
		} else {
			h.logger.Warn(ctx, "err on c.GetRawData", zap.Error(err))
		}
		status, response = http.StatusBadRequest, ack{Status: "error", Message: "invalid payload"}
		return
	}

	cb, err := reconcile.ParseWebhook(body, c.ContentType(), c.Request.Header)
	if err != nil {
		h.logger.Warn(ctx, "webhook not parsed", zap.String("path", c.FullPath()), zap.Error(err))
		status, response = http.StatusBadRequest, ack{Status: "error", Message: "invalid payload"}
		return
	}

	res, err := h.reconciler.Reconcile(ctx, cb)
	if err != nil {
		var msg string
		status, msg = webhookStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(ctx, "err on h.reconciler.Reconcile", zap.String("order_number", cb.OrderNumber), zap.Error(err))
		}
		response = ack{Status: "error", Message: msg}
		return
	}

	h.logger.Info(ctx, "webhook acknowledged",
		zap.String("path", c.FullPath()),
		zap.String("order_number", res.Session.OrderNumber),
		zap.Bool("changed", res.Changed),
	)
}

func (h *handler) Success(c *gin.Context) {
	h.redirect(c, structs.SourceSuccess)
}

func (h *handler) Cancel(c *gin.Context) {
	h.redirect(c, structs.SourceCancel)
}

func (h *handler) redirect(c *gin.Context, source structs.CallbackSource) {
	ctx := c.Request.Context()

	res, err := h.reconciler.Reconcile(ctx, reconcile.ParseRedirect(source, c.Request.URL.Query()))
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			h.logger.Error(ctx, "err on h.reconciler.Reconcile", zap.String("source", string(source)), zap.Error(err))
		}
		reply.HTML(c.Writer, http.StatusOK, pageTpl, unknownPage)
		return
	}

	p := pageFor(res.Session.Status)
	p.OrderNumber = res.Session.OrderNumber
	p.Amount = utils.FAmount(res.Session.Amount, res.Session.Currency)
	reply.HTML(c.Writer, http.StatusOK, pageTpl, p)
}

func pageFor(status structs.PaymentStatus) page {
	switch status {
	case structs.StatusCompleted:
		return completedPage
	case structs.StatusCancelled:
		return cancelledPage
	case structs.StatusFailed:
		return failedPage
	default:
		return pendingPage
	}
}
