package interfaces

import (
	"context"
	"time"

	"tgpay/internal/structs"
)

type PaymentRepo interface {
	Save(ctx context.Context, s structs.PaymentSession) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (structs.PaymentSession, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (structs.PaymentSession, error)
	FindByPaymentID(ctx context.Context, paymentID string) (structs.PaymentSession, error)
	FindByTransactionID(ctx context.Context, transactionID string) (structs.PaymentSession, error)
	// FindActiveByUser returns the newest pending or completed session of the user.
	FindActiveByUser(ctx context.Context, userID int64) (structs.PaymentSession, error)
	FindLatestByUser(ctx context.Context, userID int64) (structs.PaymentSession, error)
	FindMostRecentPending(ctx context.Context) (structs.PaymentSession, error)
	// UpdateStatus moves a pending session to upd.Status. It reports false without error when the
	// session already left pending.
	UpdateStatus(ctx context.Context, orderNumber string, upd structs.StatusUpdate, at time.Time) (structs.PaymentSession, bool, error)
	CountByStatus(ctx context.Context) (map[structs.PaymentStatus]int64, error)
}

type ProductRepo interface {
	Create(ctx context.Context, id string, req structs.CreateProduct) (structs.Product, error)
	FindByID(ctx context.Context, id string) (structs.Product, error)
	// FindByTitle matches the active product with exactly this title, case included.
	FindByTitle(ctx context.Context, title string) (structs.Product, error)
	FindAll(ctx context.Context, activeOnly bool) ([]structs.Product, error)
	SoftDelete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch structs.PatchProduct) (structs.Product, error)
}

type AdminRepo interface {
	Create(ctx context.Context, a structs.Admin) error
	Upsert(ctx context.Context, a structs.Admin) error
	Get(ctx context.Context, userID int64) (structs.Admin, error)
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]structs.Admin, error)
}

// ConversationStore keeps at most one in-progress conversation per user. Last write wins.
type ConversationStore interface {
	Get(ctx context.Context, userID int64) (structs.Conversation, error)
	Set(ctx context.Context, conv structs.Conversation) error
	Delete(ctx context.Context, userID int64) error
	Kind(ctx context.Context, userID int64) (string, error)
	CountByKind(ctx context.Context) (map[structs.ConversationKind]int64, error)
}
