package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/apps/gateway/handlers/callback"
	"tgpay/apps/gateway/handlers/health"
	"tgpay/apps/gateway/handlers/middleware"
	"tgpay/internal/notifier"
	"tgpay/internal/payment"
	"tgpay/internal/reconcile"
	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/ratelimit"
	"tgpay/pkg/redis"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/repository/memory"
)

type stubGateway struct{}

func (stubGateway) Name() string { return "stub" }

func (stubGateway) CreateSession(context.Context, structs.GatewayOrder) (structs.GatewayResult, error) {
	return structs.GatewayResult{CheckoutURL: "https://checkout.example/1"}, nil
}

func (stubGateway) VerifyCallback(structs.Callback, structs.PaymentSession) error { return nil }

func (stubGateway) MapStatus(raw string) structs.PaymentStatus {
	if raw == "completed" {
		return structs.StatusCompleted
	}
	return structs.StatusPending
}

type countingNotifier struct {
	notifier.Notifier
	n atomic.Int32
}

func (c *countingNotifier) NotifyStatus(context.Context, structs.PaymentSession) error {
	c.n.Add(1)
	return nil
}

func newEngine(t *testing.T) (*gin.Engine, interfaces.PaymentRepo, *countingNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewWith(map[string]interface{}{"http.rate_limit": 3, "http.rate_window": time.Minute})
	log := logger.NewNop()
	rds := redis.NewMemory()
	repo := memory.NewPaymentRepo()
	payments := payment.New(payment.Params{Config: cfg, Logger: log, Gateway: stubGateway{}, PaymentRepo: repo})
	n := &countingNotifier{}
	rec := reconcile.New(reconcile.Params{Config: cfg, Logger: log, Payments: payments, Notifier: n, Redis: rds})

	engine := NewEngine(Params{
		Middleware: middleware.NewMiddleware(middleware.Params{
			Logger:  log,
			Config:  cfg,
			Limiter: ratelimit.New(ratelimit.Params{Logger: log, Redis: rds}),
		}),
		Config:   cfg,
		Logger:   log,
		Callback: callback.New(callback.Params{Logger: log, Reconciler: rec}),
		Health:   health.New(health.Params{Logger: log, Payments: payments}),
	})
	return engine, repo, n
}

func TestWebhookRoundTrip(t *testing.T) {
	engine, repo, n := newEngine(t)
	require.NoError(t, repo.Save(context.Background(), structs.PaymentSession{
		OrderNumber: "TG_1_1000",
		InvoiceID:   "TG_1_1000",
		UserID:      1,
		ChatID:      10,
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
		Status:      structs.StatusPending,
		CreatedAt:   time.Now(),
	}))

	// more deliveries than the per-ip limit: webhooks are never throttled
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/callback/ragapay", strings.NewReader(`{"order":{"number":"TG_1_1000"},"status":"completed"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
	}
	assert.Eventually(t, func() bool { return n.n.Load() == 1 }, time.Second, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/webhook/readies", strings.NewReader("invoice=TG_404&status=completed"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	engine, _, _ := newEngine(t)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestUnknownRoute(t *testing.T) {
	engine, _, _ := newEngine(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "/payment/success")
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowedOrigins(config.NewWith(nil)))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		allowedOrigins(config.NewWith(map[string]interface{}{"server.allowed_origins": "https://a.example, https://b.example"})))
}
