package memory

import (
	"context"
	"sync"
	"time"

	"tgpay/internal/structs"
	"tgpay/pkg/repository/interfaces"
)

type paymentRepo struct {
	mu       sync.RWMutex
	sessions map[string]structs.PaymentSession
}

func NewPaymentRepo() interfaces.PaymentRepo {
	return &paymentRepo{sessions: map[string]structs.PaymentSession{}}
}

func (r *paymentRepo) Save(_ context.Context, s structs.PaymentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.OrderNumber]; ok {
		return structs.ErrUniqueViolation
	}
	r.sessions[s.OrderNumber] = clone(s)
	return nil
}

func (r *paymentRepo) FindByOrderNumber(_ context.Context, orderNumber string) (structs.PaymentSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[orderNumber]
	if !ok {
		return structs.PaymentSession{}, structs.ErrNotFound
	}
	return clone(s), nil
}

func (r *paymentRepo) FindByInvoiceID(_ context.Context, invoiceID string) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return invoiceID != "" && s.InvoiceID == invoiceID
	})
}

func (r *paymentRepo) FindByPaymentID(_ context.Context, paymentID string) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return paymentID != "" && s.PaymentID == paymentID
	})
}

func (r *paymentRepo) FindByTransactionID(_ context.Context, transactionID string) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return transactionID != "" && s.TransactionID == transactionID
	})
}

func (r *paymentRepo) FindActiveByUser(_ context.Context, userID int64) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return s.UserID == userID && (s.Status == structs.StatusPending || s.Status == structs.StatusCompleted)
	})
}

func (r *paymentRepo) FindLatestByUser(_ context.Context, userID int64) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return s.UserID == userID
	})
}

func (r *paymentRepo) FindMostRecentPending(_ context.Context) (structs.PaymentSession, error) {
	return r.newest(func(s structs.PaymentSession) bool {
		return s.Status == structs.StatusPending
	})
}

func (r *paymentRepo) UpdateStatus(_ context.Context, orderNumber string, upd structs.StatusUpdate, at time.Time) (structs.PaymentSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[orderNumber]
	if !ok {
		return structs.PaymentSession{}, false, structs.ErrNotFound
	}
	if s.Status != structs.StatusPending {
		return clone(s), false, nil
	}

	s.Status = upd.Status
	if upd.TransactionID != "" {
		s.TransactionID = upd.TransactionID
	}
	if upd.PaymentID != "" {
		s.PaymentID = upd.PaymentID
	}
	s.UpdatedAt = at
	if upd.Status == structs.StatusCompleted {
		completed := at
		s.CompletedAt = &completed
	}
	r.sessions[orderNumber] = s
	return clone(s), true, nil
}

func (r *paymentRepo) CountByStatus(_ context.Context) (map[structs.PaymentStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp := map[structs.PaymentStatus]int64{}
	for _, s := range r.sessions {
		resp[s.Status]++
	}
	return resp, nil
}

// newest picks the latest created session matching fn. Ties go to the larger order number.
func (r *paymentRepo) newest(fn func(structs.PaymentSession) bool) (structs.PaymentSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found structs.PaymentSession
		ok    bool
	)
	for _, s := range r.sessions {
		if !fn(s) {
			continue
		}
		if !ok || s.CreatedAt.After(found.CreatedAt) ||
			(s.CreatedAt.Equal(found.CreatedAt) && s.OrderNumber > found.OrderNumber) {
			found, ok = s, true
		}
	}
	if !ok {
		return structs.PaymentSession{}, structs.ErrNotFound
	}
	return clone(found), nil
}

func clone(s structs.PaymentSession) structs.PaymentSession {
	if s.BillingAddress != nil {
		a := *s.BillingAddress
		s.BillingAddress = &a
	}
	if s.GatewayMeta != nil {
		meta := make(map[string]string, len(s.GatewayMeta))
		for k, v := range s.GatewayMeta {
			meta[k] = v
		}
		s.GatewayMeta = meta
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}
