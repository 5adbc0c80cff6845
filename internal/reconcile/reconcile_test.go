package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/notifier"
	"tgpay/internal/orderflow"
	"tgpay/internal/payment"
	"tgpay/internal/structs"
	"tgpay/pkg/cache"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/repository/memory"
)

type fakeGateway struct {
	checkouts int
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreateSession(_ context.Context, order structs.GatewayOrder) (structs.GatewayResult, error) {
	f.checkouts++
	return structs.GatewayResult{
		CheckoutURL: fmt.Sprintf("https://checkout.example/%d", f.checkouts),
		PaymentID:   "pay_" + order.OrderNumber,
	}, nil
}

func (f *fakeGateway) VerifyCallback(cb structs.Callback, _ structs.PaymentSession) error {
	if cb.Signature != "good" {
		return &structs.SignatureError{Reason: "mismatch"}
	}
	return nil
}

func (f *fakeGateway) MapStatus(raw string) structs.PaymentStatus {
	switch raw {
	case "completed", "1":
		return structs.StatusCompleted
	case "cancelled", "200":
		return structs.StatusCancelled
	case "failed":
		return structs.StatusFailed
	}
	return structs.StatusPending
}

type fakeNotifier struct {
	notifier.Notifier
	mu    sync.Mutex
	sent  []structs.PaymentSession
	err   error
	block chan struct{}
}

func (f *fakeNotifier) NotifyStatus(_ context.Context, s structs.PaymentSession) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
	return f.err
}

type fixture struct {
	payments   payment.Manager
	repo       interfaces.PaymentRepo
	notifier   *fakeNotifier
	reconciler Reconciler
}

func newFixture(values map[string]interface{}) fixture {
	cfg := config.NewWith(values)
	repo := memory.NewPaymentRepo()
	payments := payment.New(payment.Params{Config: cfg, Logger: logger.NewNop(), Gateway: &fakeGateway{}, PaymentRepo: repo})
	n := &fakeNotifier{}
	return fixture{
		payments: payments,
		repo:     repo,
		notifier: n,
		reconciler: New(Params{
			Config:   cfg,
			Logger:   logger.NewNop(),
			Payments: payments,
			Notifier: n,
			Redis:    redis.NewMemory(),
		}),
	}
}

// drain waits for background notifications so their effects can be asserted.
func (f fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.reconciler.(*reconciler).Drain(ctx))
}

func (f fixture) save(t *testing.T, s structs.PaymentSession) {
	t.Helper()
	if s.Status == "" {
		s.Status = structs.StatusPending
	}
	if s.InvoiceID == "" {
		s.InvoiceID = s.OrderNumber
	}
	s.Amount = decimal.NewFromInt(25)
	s.Currency = "USD"
	require.NoError(t, f.repo.Save(context.Background(), s))
}

func TestParseWebhookShapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		order       string
		status      string
	}{
		{name: "order", body: `{"order":{"number":"TG_1_1"},"status":"completed"}`, contentType: "application/json", order: "TG_1_1", status: "completed"},
		{name: "data.order", body: `{"data":{"order":{"number":"TG_1_2"},"status":"failed"}}`, contentType: "application/json", order: "TG_1_2", status: "failed"},
		{name: "order_number", body: `{"order_number":"TG_1_3","payment_status":"cancelled"}`, order: "TG_1_3", status: "cancelled"},
		{name: "orderNumber", body: `{"orderNumber":"TG_1_4","status":"completed"}`, order: "TG_1_4", status: "completed"},
		{name: "readies form", body: "invoice=TG_1_5&status=1&txn_id=tx5", contentType: "application/x-www-form-urlencoded", order: "TG_1_5", status: "1"},
		{name: "form order_number", body: "order_number=TG_1_6&payment_status=completed", order: "TG_1_6", status: "completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := ParseWebhook([]byte(tt.body), tt.contentType, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.order, cb.OrderNumber)
			assert.Equal(t, tt.status, cb.RawStatus)
			assert.Equal(t, structs.SourceWebhook, cb.Source)
			assert.Equal(t, tt.body, string(cb.Raw))
		})
	}
}

func TestParseWebhookKeepsNumericIDs(t *testing.T) {
	body := `{"invoice_id":9007199254740993,"status":"completed","payment_id":12345678901234567,"txn_id":9007199254740995,"user_id":7}`
	cb, err := ParseWebhook([]byte(body), "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", cb.OrderNumber)
	assert.Equal(t, "9007199254740993", cb.InvoiceID)
	assert.Equal(t, "12345678901234567", cb.PaymentID)
	assert.Equal(t, "9007199254740995", cb.TransactionID)
	assert.Equal(t, int64(7), cb.UserID)
}

func TestParseWebhookExtras(t *testing.T) {
	body := `{"order":{"number":"TG_7_1","amount":"100.00","currency":"USD"},"status":"completed","payment_id":"p1","transaction_id":"t1","parameters":{"telegram_user_id":7}}`
	header := http.Header{}
	header.Set("X-Signature", "abc")

	cb, err := ParseWebhook([]byte(body), "application/json", header)
	require.NoError(t, err)
	assert.Equal(t, "p1", cb.PaymentID)
	assert.Equal(t, "t1", cb.TransactionID)
	assert.Equal(t, int64(7), cb.UserID)
	assert.Equal(t, "100.00", cb.Amount)
	assert.Equal(t, "USD", cb.Currency)
	assert.Equal(t, "abc", cb.Signature)

	cb, err = ParseWebhook([]byte(`{"orderNumber":"TG_7_2","status":"completed","hash":"h"}`), "", header)
	require.NoError(t, err)
	assert.Equal(t, "h", cb.Signature)
}

func TestParseWebhookRejectsUnknownShapes(t *testing.T) {
	bodies := []string{
		``,
		`{"foo":"bar"}`,
		`{"order":{"number":"TG_1_1"}}`,
		`{"order_number":"TG_1_1","status":"completed"}`,
		`{"orderNumber":"TG_1_1"`,
	}
	for _, body := range bodies {
		_, err := ParseWebhook([]byte(body), "application/json", nil)
		var rerr *structs.ReconciliationError
		require.ErrorAs(t, err, &rerr, body)
		assert.ErrorIs(t, err, structs.ErrBadRequest)
	}
}

func TestParseRedirect(t *testing.T) {
	q := url.Values{}
	q.Set("order_id", "TG_1_1")
	q.Set("trans_id", "t1")
	q.Set("user_id", "42")

	cb := ParseRedirect(structs.SourceSuccess, q)
	assert.Equal(t, structs.SourceSuccess, cb.Source)
	assert.Equal(t, "TG_1_1", cb.OrderNumber)
	assert.Equal(t, "t1", cb.TransactionID)
	assert.Equal(t, int64(42), cb.UserID)
	assert.Empty(t, cb.RawStatus)

	cb = ParseRedirect(structs.SourceCancel, url.Values{"user_id": {"not-a-number"}})
	assert.Zero(t, cb.UserID)
}

func TestReconcileSpecificIDBeatsRecentPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	now := time.Now()
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, ChatID: 10, CreatedAt: now.Add(-time.Hour)})
	f.save(t, structs.PaymentSession{OrderNumber: "TG_2_2", UserID: 2, ChatID: 20, CreatedAt: now})

	res, err := f.reconciler.Reconcile(ctx, ParseRedirect(structs.SourceSuccess, url.Values{"order_id": {"TG_1_1"}}))
	require.NoError(t, err)
	assert.Equal(t, ByOrderNumber, res.Strategy)
	assert.Equal(t, int64(1), res.Session.UserID)
	assert.Equal(t, structs.StatusCompleted, res.Session.Status)

	other, err := f.repo.FindByOrderNumber(ctx, "TG_2_2")
	require.NoError(t, err)
	assert.Equal(t, structs.StatusPending, other.Status)
}

func TestReconcileFallbackChain(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		query    url.Values
		strategy string
		order    string
	}{
		{name: "invoice", query: url.Values{"invoice_id": {"INV_A"}}, strategy: ByInvoiceID, order: "TG_1_A"},
		{name: "unknown order falls to payment id", query: url.Values{"order_id": {"TG_missing"}, "payment_id": {"pay_B"}}, strategy: ByPaymentID, order: "TG_2_B"},
		{name: "transaction", query: url.Values{"trans_id": {"tx_A"}}, strategy: ByTransactionID, order: "TG_1_A"},
		{name: "user", query: url.Values{"user_id": {"2"}}, strategy: ByUserID, order: "TG_2_B"},
		{name: "bare redirect", query: url.Values{}, strategy: ByMostRecentPending, order: "TG_2_B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.save(t, structs.PaymentSession{OrderNumber: "TG_1_A", InvoiceID: "INV_A", TransactionID: "tx_A", UserID: 1, CreatedAt: now.Add(-time.Minute)})
			f.save(t, structs.PaymentSession{OrderNumber: "TG_2_B", PaymentID: "pay_B", UserID: 2, CreatedAt: now})

			res, err := f.reconciler.Reconcile(context.Background(), ParseRedirect(structs.SourceCancel, tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.Equal(t, tt.order, res.Session.OrderNumber)
			assert.Equal(t, structs.StatusCancelled, res.Session.Status)
			assert.True(t, res.Changed)
		})
	}
}

func TestReconcileNeverGuesses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

	// an identifier that matches nothing does not fall through to the most recent pending session
	_, err := f.reconciler.Reconcile(ctx, ParseRedirect(structs.SourceSuccess, url.Values{"order_id": {"TG_9_9"}}))
	assert.ErrorIs(t, err, structs.ErrNotFound)

	_, err = f.reconciler.Reconcile(ctx, structs.Callback{Source: structs.SourceWebhook, RawStatus: "completed"})
	assert.ErrorIs(t, err, structs.ErrNotFound)

	s, err := f.repo.FindByOrderNumber(ctx, "TG_1_1")
	require.NoError(t, err)
	assert.Equal(t, structs.StatusPending, s.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, ChatID: 10, CreatedAt: time.Now()})

	cb := structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed", TransactionID: "t1"}
	first, err := f.reconciler.Reconcile(ctx, cb)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.True(t, first.Notified)
	assert.Equal(t, "t1", first.Session.TransactionID)

	cb.RawStatus = "failed"
	second, err := f.reconciler.Reconcile(ctx, cb)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.False(t, second.Notified)
	assert.Equal(t, structs.StatusCompleted, second.Session.Status)

	f.drain(t)
	assert.Len(t, f.notifier.sent, 1)
}

func TestReconcileSignature(t *testing.T) {
	ctx := context.Background()

	t.Run("mismatch mutates nothing", func(t *testing.T) {
		f := newFixture(nil)
		f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

		_, err := f.reconciler.Reconcile(ctx, structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed", Signature: "bad"})
		var serr *structs.SignatureError
		require.ErrorAs(t, err, &serr)

		s, err := f.repo.FindByOrderNumber(ctx, "TG_1_1")
		require.NoError(t, err)
		assert.Equal(t, structs.StatusPending, s.Status)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("missing when required", func(t *testing.T) {
		f := newFixture(map[string]interface{}{"payment.require_signature": true})
		f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

		_, err := f.reconciler.Reconcile(ctx, structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed"})
		var serr *structs.SignatureError
		require.ErrorAs(t, err, &serr)
	})

	t.Run("valid", func(t *testing.T) {
		f := newFixture(map[string]interface{}{"payment.require_signature": true})
		f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

		res, err := f.reconciler.Reconcile(ctx, structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed", Signature: "good"})
		require.NoError(t, err)
		assert.True(t, res.Changed)
	})
}

func TestReconcileNonTerminalStatus(t *testing.T) {
	f := newFixture(nil)
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

	res, err := f.reconciler.Reconcile(context.Background(), structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "processing"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, structs.StatusPending, res.Session.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestReconcileNotifyFailureStillAcknowledges(t *testing.T) {
	f := newFixture(nil)
	f.notifier.err = errors.New("chat not found")
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, CreatedAt: time.Now()})

	res, err := f.reconciler.Reconcile(context.Background(), structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	f.drain(t)
	assert.Len(t, f.notifier.sent, 1)
	s, err := f.repo.FindByOrderNumber(context.Background(), "TG_1_1")
	require.NoError(t, err)
	assert.Equal(t, structs.StatusCompleted, s.Status)
}

func TestReconcileAnswersBeforeNotificationIsSent(t *testing.T) {
	f := newFixture(nil)
	f.notifier.block = make(chan struct{})
	f.save(t, structs.PaymentSession{OrderNumber: "TG_1_1", UserID: 1, ChatID: 10, CreatedAt: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	res, err := f.reconciler.Reconcile(ctx, structs.Callback{Source: structs.SourceWebhook, OrderNumber: "TG_1_1", RawStatus: "completed"})
	require.NoError(t, err)
	assert.True(t, res.Notified)
	// the request is over; the send must not be cancelled with it
	cancel()

	short, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	assert.ErrorIs(t, f.reconciler.(*reconciler).Drain(short), context.DeadlineExceeded)

	close(f.notifier.block)
	f.drain(t)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, int64(10), f.notifier.sent[0].ChatID)
}

func TestAddressToWebhookEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	store := memory.NewConversationStore(cache.New(cache.Params{Logger: logger.NewNop()}))
	flow := orderflow.New(orderflow.Params{Logger: logger.NewNop(), Store: store, Sessions: f.payments})

	_, err := flow.Start(ctx, orderflow.StartRequest{UserID: 1, ChatID: 10, Amount: decimal.NewFromInt(100), Currency: "USD"})
	require.NoError(t, err)

	var reply structs.Reply
	for _, answer := range []string{"US", "CA", "Cupertino", "1 Infinite Loop", "95014", "+19035310488"} {
		reply, err = flow.Handle(ctx, 1, answer)
		require.NoError(t, err)
	}
	require.NotEmpty(t, reply.CheckoutURL)

	session, err := f.payments.FindActiveByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, structs.StatusPending, session.Status)
	assert.Equal(t, "US", session.BillingAddress.Country)

	body := fmt.Sprintf(`{"order":{"number":%q},"status":"completed"}`, session.OrderNumber)
	for i := 0; i < 2; i++ {
		cb, err := ParseWebhook([]byte(body), "application/json", nil)
		require.NoError(t, err)
		_, err = f.reconciler.Reconcile(ctx, cb)
		require.NoError(t, err)
	}

	f.drain(t)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, int64(10), f.notifier.sent[0].ChatID)
	assert.Equal(t, structs.StatusCompleted, f.notifier.sent[0].Status)

	stored, err := f.payments.FindByOrderNumber(ctx, session.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, structs.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}
