package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/structs"
	"tgpay/pkg/logger"
)

type fakeReconciler struct {
	got []structs.Callback
	res structs.Resolution
	err error
}

func (f *fakeReconciler) Reconcile(_ context.Context, cb structs.Callback) (structs.Resolution, error) {
	f.got = append(f.got, cb)
	return f.res, f.err
}

func newRouter(rec *fakeReconciler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(Params{Logger: logger.NewNop(), Reconciler: rec})
	r := gin.New()
	r.POST("/callback/ragapay", h.Webhook)
	r.POST("/webhook/readies", h.Webhook)
	r.GET("/payment/success", h.Success)
	r.GET("/payment/cancel", h.Cancel)
	return r
}

func session(status structs.PaymentStatus) structs.PaymentSession {
	return structs.PaymentSession{
		OrderNumber: "TG_1_1000",
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
		Status:      status,
	}
}

func TestWebhookResponses(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		ctype  string
		err    error
		status int
	}{
		{name: "ok", path: "/callback/ragapay", body: `{"order":{"number":"TG_1_1000"},"status":"completed"}`, ctype: "application/json", status: http.StatusOK},
		{name: "readies form", path: "/webhook/readies", body: "invoice=TG_1_1000&status=1", ctype: "application/x-www-form-urlencoded", status: http.StatusOK},
		{name: "unknown shape", path: "/callback/ragapay", body: `{"hello":"world"}`, ctype: "application/json", status: http.StatusBadRequest},
		{name: "not found", path: "/callback/ragapay", body: `{"orderNumber":"TG_9","status":"completed"}`, err: &structs.ReconciliationError{Reason: "no session", Err: structs.ErrNotFound}, status: http.StatusNotFound},
		{name: "signature", path: "/callback/ragapay", body: `{"orderNumber":"TG_9","status":"completed","hash":"x"}`, err: &structs.SignatureError{Reason: "mismatch"}, status: http.StatusUnauthorized},
		{name: "internal", path: "/callback/ragapay", body: `{"orderNumber":"TG_9","status":"completed"}`, err: errors.New("db down"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeReconciler{res: structs.Resolution{Session: session(structs.StatusCompleted), Changed: true}, err: tt.err}
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			w := httptest.NewRecorder()
			newRouter(rec).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			var resp ack
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tt.status == http.StatusOK {
				assert.Equal(t, "OK", resp.Status)
			} else {
				assert.Equal(t, "error", resp.Status)
				assert.NotContains(t, resp.Message, "db down")
			}
		})
	}
}

func TestWebhookBodyIsCapped(t *testing.T) {
	rec := &fakeReconciler{res: structs.Resolution{Session: session(structs.StatusCompleted)}}
	body := `{"order":{"number":"TG_1_1000"},"status":"completed","pad":"` + strings.Repeat("x", maxWebhookBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/callback/ragapay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouter(rec).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.got)
}

func TestRedirectPages(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		res     structs.Resolution
		err     error
		source  structs.CallbackSource
		heading string
	}{
		{name: "success", path: "/payment/success?order_id=TG_1_1000&user_id=1", res: structs.Resolution{Session: session(structs.StatusCompleted)}, source: structs.SourceSuccess, heading: "Payment Successful"},
		{name: "cancel", path: "/payment/cancel?order_id=TG_1_1000", res: structs.Resolution{Session: session(structs.StatusCancelled)}, source: structs.SourceCancel, heading: "Payment Cancelled"},
		{name: "already failed", path: "/payment/success?order_id=TG_1_1000", res: structs.Resolution{Session: session(structs.StatusFailed)}, source: structs.SourceSuccess, heading: "Payment Failed"},
		{name: "unknown", path: "/payment/success?order_id=TG_9", err: &structs.ReconciliationError{Reason: "no session", Err: structs.ErrNotFound}, source: structs.SourceSuccess, heading: "Payment Status Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeReconciler{res: tt.res, err: tt.err}
			w := httptest.NewRecorder()
			newRouter(rec).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.heading)
			require.Len(t, rec.got, 1)
			assert.Equal(t, tt.source, rec.got[0].Source)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), "TG_1_1000")
				assert.Contains(t, w.Body.String(), "100.00 USD")
			}
		})
	}
}

func TestRedirectPassesIdentifiers(t *testing.T) {
	rec := &fakeReconciler{res: structs.Resolution{Session: session(structs.StatusCompleted)}}
	w := httptest.NewRecorder()
	newRouter(rec).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/success?payment_id=p1&trans_id=t1&user_id=7", nil))

	require.Len(t, rec.got, 1)
	assert.Equal(t, "p1", rec.got[0].PaymentID)
	assert.Equal(t, "t1", rec.got[0].TransactionID)
	assert.Equal(t, int64(7), rec.got[0].UserID)
}
