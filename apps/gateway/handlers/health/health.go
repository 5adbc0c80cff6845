package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/payment"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
	"tgpay/pkg/reply"
)

var Module = fx.Provide(New)

// Endpoints is what the service exposes, listed on / and on unknown routes.
var Endpoints = []string{
	"GET /",
	"GET /health",
	"POST /callback/ragapay",
	"POST /webhook/readies",
	"GET /payment/success",
	"GET /payment/cancel",
}

type (
	Handler interface {
		Info(c *gin.Context)
		Health(c *gin.Context)
		NotFound(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger   logger.Logger
		Payments payment.Manager
	}

	handler struct {
		logger   logger.Logger
		payments payment.Manager
		started  time.Time
	}
)

func New(p Params) Handler {
	return &handler{
		logger:   p.Logger,
		payments: p.Payments,
		started:  time.Now(),
	}
}

func (h *handler) Info(c *gin.Context) {
	reply.Json(c.Writer, http.StatusOK, gin.H{
		"service":   "tgpay",
		"gateway":   h.payments.Gateway().Name(),
		"endpoints": Endpoints,
	})
}

func (h *handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	resp := gin.H{
		"status":  "ok",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"gateway": h.payments.Gateway().Name(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	counts, err := h.payments.CountByStatus(ctx)
	if err != nil {
		h.logger.Error(ctx, "err on h.payments.CountByStatus", zap.Error(err))
		resp["status"] = "degraded"
		reply.Json(c.Writer, http.StatusServiceUnavailable, resp)
		return
	}
	resp["pending_sessions"] = counts[structs.StatusPending]
	resp["sessions"] = counts

	reply.Json(c.Writer, http.StatusOK, resp)
}

func (h *handler) NotFound(c *gin.Context) {
	reply.Json(c.Writer, http.StatusNotFound, gin.H{
		"error":     "endpoint not found",
		"path":      c.Request.URL.Path,
		"endpoints": Endpoints,
	})
}
