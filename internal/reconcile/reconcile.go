package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/notifier"
	"tgpay/internal/payment"
	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
)

var Module = fx.Provide(New)

const notifiedTTL = 24 * time.Hour

// Strategy names, in the order they are tried.
const (
	ByOrderNumber       = "order_number"
	ByInvoiceID         = "invoice_id"
	ByPaymentID         = "payment_id"
	ByTransactionID     = "transaction_id"
	ByUserID            = "user_id"
	ByMostRecentPending = "most_recent_pending"
)

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle `optional:"true"`
	Config   config.IConfig
	Logger   logger.Logger
	Payments payment.Manager
	Notifier notifier.Notifier
	Redis    redis.Client
}

// Reconciler ties a gateway callback back to the session and chat it belongs to.
type Reconciler interface {
	Reconcile(ctx context.Context, cb structs.Callback) (structs.Resolution, error)
}

type reconciler struct {
	logger           logger.Logger
	payments         payment.Manager
	notifier         notifier.Notifier
	redis            redis.Client
	requireSignature bool
	inflight         sync.WaitGroup
}

func New(p Params) Reconciler {
	r := &reconciler{
		logger:           p.Logger,
		payments:         p.Payments,
		notifier:         p.Notifier,
		redis:            p.Redis,
		requireSignature: p.Config.GetBool("payment.require_signature"),
	}
	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{OnStop: r.Drain})
	}
	return r
}

// Drain waits for status notifications still being sent, or until ctx is done.
func (r *reconciler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "notifications still in flight at shutdown")
		return ctx.Err()
	}
}

type strategy struct {
	name string
	find func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error)
	// applies reports whether the callback carries what the lookup needs.
	applies func(cb structs.Callback) bool
}

func (r *reconciler) strategies() []strategy {
	return []strategy{
		{
			name:    ByOrderNumber,
			applies: func(cb structs.Callback) bool { return cb.OrderNumber != "" },
			find: func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindByOrderNumber(ctx, cb.OrderNumber)
			},
		},
		{
			name:    ByInvoiceID,
			applies: func(cb structs.Callback) bool { return cb.InvoiceID != "" },
			find: func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindByInvoiceID(ctx, cb.InvoiceID)
			},
		},
		{
			name:    ByPaymentID,
			applies: func(cb structs.Callback) bool { return cb.PaymentID != "" },
			find: func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindByPaymentID(ctx, cb.PaymentID)
			},
		},
		{
			name:    ByTransactionID,
			applies: func(cb structs.Callback) bool { return cb.TransactionID != "" },
			find: func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindByTransactionID(ctx, cb.TransactionID)
			},
		},
		{
			name:    ByUserID,
			applies: func(cb structs.Callback) bool { return cb.UserID != 0 },
			find: func(ctx context.Context, cb structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindActiveByUser(ctx, cb.UserID)
			},
		},
		{
			// Ambiguous with several users paying at once, so only a bare redirect gets here.
			name:    ByMostRecentPending,
			applies: bareRedirect,
			find: func(ctx context.Context, _ structs.Callback) (structs.PaymentSession, error) {
				return r.payments.FindMostRecentPending(ctx)
			},
		},
	}
}

func bareRedirect(cb structs.Callback) bool {
	return cb.Source != structs.SourceWebhook &&
		cb.OrderNumber == "" && cb.InvoiceID == "" && cb.PaymentID == "" &&
		cb.TransactionID == "" && cb.UserID == 0
}

func (r *reconciler) identify(ctx context.Context, cb structs.Callback) (structs.PaymentSession, string, error) {
	for _, s := range r.strategies() {
		if !s.applies(cb) {
			continue
		}
		session, err := s.find(ctx, cb)
		if errors.Is(err, structs.ErrNotFound) {
			r.logger.Debug(ctx, "reconcile strategy missed", zap.String("strategy", s.name))
			continue
		}
		if err != nil {
			return structs.PaymentSession{}, "", err
		}
		if s.name == ByMostRecentPending {
			r.logger.Warn(ctx, "callback matched by most recent pending session",
				zap.String("source", string(cb.Source)),
				zap.String("order_number", session.OrderNumber),
			)
		}
		return session, s.name, nil
	}
	return structs.PaymentSession{}, "", &structs.ReconciliationError{Reason: "no session matches callback", Err: structs.ErrNotFound}
}

func (r *reconciler) verify(ctx context.Context, cb structs.Callback, session structs.PaymentSession) error {
	if cb.Source != structs.SourceWebhook {
		return nil
	}
	if cb.Signature == "" && !r.requireSignature {
		r.logger.Warn(ctx, "webhook without signature accepted", zap.String("order_number", session.OrderNumber))
		return nil
	}
	if cb.Signature == "" {
		return &structs.SignatureError{Reason: "missing signature"}
	}
	return r.payments.Gateway().VerifyCallback(cb, session)
}

// status picks the gateway status when one was sent, else the default of the redirect page.
func (r *reconciler) status(cb structs.Callback) structs.PaymentStatus {
	if cb.RawStatus != "" {
		return r.payments.Gateway().MapStatus(cb.RawStatus)
	}
	switch cb.Source {
	case structs.SourceSuccess:
		return structs.StatusCompleted
	case structs.SourceCancel:
		return structs.StatusCancelled
	default:
		return structs.StatusPending
	}
}

func (r *reconciler) Reconcile(ctx context.Context, cb structs.Callback) (structs.Resolution, error) {
	session, strategy, err := r.identify(ctx, cb)
	if err != nil {
		r.logger.Warn(ctx, "callback not reconciled",
			zap.String("source", string(cb.Source)),
			zap.String("order_number", cb.OrderNumber),
			zap.String("invoice_id", cb.InvoiceID),
			zap.String("payment_id", cb.PaymentID),
			zap.Error(err),
		)
		return structs.Resolution{}, err
	}

	ctx = logger.WithUser(logger.WithOrder(ctx, session.OrderNumber), session.UserID)
	ctx, capture := r.logger.ContextWithCapture(ctx, "callback reconciled")

	if err = r.verify(ctx, cb, session); err != nil {
		r.logger.Warn(ctx, "callback signature rejected", zap.Error(err))
		return structs.Resolution{}, err
	}

	res := structs.Resolution{Session: session, Strategy: strategy}
	status := r.status(cb)
	if !status.IsTerminal() {
		r.logger.Info(ctx, "callback without terminal status", zap.String("raw_status", cb.RawStatus))
		return res, nil
	}

	updated, changed, err := r.payments.UpdateStatus(ctx, session.OrderNumber, structs.StatusUpdate{
		Status:        status,
		TransactionID: cb.TransactionID,
		PaymentID:     cb.PaymentID,
	})
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return structs.Resolution{}, &structs.ReconciliationError{Reason: "session vanished", Err: err}
		}
		return structs.Resolution{}, err
	}
	res.Session = updated
	res.Changed = changed

	capture(
		zap.String("strategy", strategy),
		zap.String("source", string(cb.Source)),
		zap.String("status", string(updated.Status)),
		zap.Bool("changed", changed),
	)

	if changed {
		res.Notified = r.notify(ctx, updated)
	}
	return res, nil
}

// notify is best effort. The message is sent in the background so the gateway gets its answer
// without waiting on telegram; the send keeps the log fields of ctx but not its cancellation.
func (r *reconciler) notify(ctx context.Context, session structs.PaymentSession) bool {
	first, err := r.redis.SetOnce(ctx, "notified."+session.OrderNumber, string(session.Status), notifiedTTL)
	if err != nil {
		r.logger.Warn(ctx, "->redis.SetOnce", zap.String("order_number", session.OrderNumber), zap.Error(err))
	} else if !first {
		return false
	}

	ctx = context.WithoutCancel(ctx)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		if err := r.notifier.NotifyStatus(ctx, session); err != nil {
			r.logger.Error(ctx, "->notifier.NotifyStatus", zap.String("order_number", session.OrderNumber), zap.Error(err))
		}
	}()
	return true
}
