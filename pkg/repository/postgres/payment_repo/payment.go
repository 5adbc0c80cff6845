package paymentrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
)

var Module = fx.Provide(New)

type (
	Params struct {
		fx.In
		Logger logger.Logger
		DB     db.Querier
	}

	repo struct {
		logger logger.Logger
		db     db.Querier
	}
)

func New(p Params) interfaces.PaymentRepo {
	return &repo{
		logger: p.Logger,
		db:     p.DB,
	}
}

const selectColumns = `
	order_number,
	invoice_id,
	user_id,
	chat_id,
	amount::text,
	currency,
	status,
	checkout_url,
	gateway,
	description,
	billing_address,
	product_id,
	product_name,
	transaction_id,
	payment_id,
	gateway_meta,
	created_at,
	updated_at,
	completed_at
`

func scanSession(row pgx.Row) (structs.PaymentSession, error) {
	var (
		s       structs.PaymentSession
		amount  string
		status  string
		address []byte
		meta    []byte
	)
	err := row.Scan(
		&s.OrderNumber,
		&s.InvoiceID,
		&s.UserID,
		&s.ChatID,
		&amount,
		&s.Currency,
		&status,
		&s.CheckoutURL,
		&s.Gateway,
		&s.Description,
		&address,
		&s.ProductID,
		&s.ProductName,
		&s.TransactionID,
		&s.PaymentID,
		&meta,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return structs.PaymentSession{}, structs.ErrNotFound
		}
		return structs.PaymentSession{}, err
	}

	s.Status = structs.PaymentStatus(status)
	if s.Amount, err = decimal.NewFromString(amount); err != nil {
		return structs.PaymentSession{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if len(address) > 0 && string(address) != "null" {
		s.BillingAddress = &structs.Address{}
		if err = json.Unmarshal(address, s.BillingAddress); err != nil {
			return structs.PaymentSession{}, fmt.Errorf("unmarshal billing address: %w", err)
		}
	}
	if len(meta) > 0 {
		if err = json.Unmarshal(meta, &s.GatewayMeta); err != nil {
			return structs.PaymentSession{}, fmt.Errorf("unmarshal gateway meta: %w", err)
		}
	}
	return s, nil
}

func (r *repo) Save(ctx context.Context, s structs.PaymentSession) error {
	var address any
	if s.BillingAddress != nil {
		b, err := json.Marshal(s.BillingAddress)
		if err != nil {
			return fmt.Errorf("marshal billing address: %w", err)
		}
		address = string(b)
	}
	meta := s.GatewayMeta
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal gateway meta: %w", err)
	}

	query := `
		INSERT INTO payments(
			order_number,
			invoice_id,
			user_id,
			chat_id,
			amount,
			currency,
			status,
			checkout_url,
			gateway,
			description,
			billing_address,
			product_id,
			product_name,
			transaction_id,
			payment_id,
			gateway_meta,
			created_at,
			updated_at
		) VALUES($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11::jsonb, $12, $13, $14, $15, $16::jsonb, $17, $18)
	`
	_, err = r.db.Exec(ctx, query,
		s.OrderNumber,
		s.InvoiceID,
		s.UserID,
		s.ChatID,
		s.Amount.StringFixed(2),
		s.Currency,
		string(s.Status),
		s.CheckoutURL,
		s.Gateway,
		s.Description,
		address,
		s.ProductID,
		s.ProductName,
		s.TransactionID,
		s.PaymentID,
		string(metaJSON),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return structs.ErrUniqueViolation
		}
		r.logger.Error(ctx, "err on r.db.Exec", zap.Error(err))
		return fmt.Errorf("save payment failed: %w", err)
	}
	return nil
}

func (r *repo) findOne(ctx context.Context, where string, args ...any) (structs.PaymentSession, error) {
	query := `SELECT ` + selectColumns + ` FROM payments WHERE ` + where + ` ORDER BY created_at DESC LIMIT 1`
	s, err := scanSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return structs.PaymentSession{}, err
		}
		r.logger.Error(ctx, "err on r.db.QueryRow", zap.Error(err), zap.String("where", where))
		return structs.PaymentSession{}, fmt.Errorf("find payment failed: %w", err)
	}
	return s, nil
}

func (r *repo) FindByOrderNumber(ctx context.Context, orderNumber string) (structs.PaymentSession, error) {
	return r.findOne(ctx, "order_number = $1", orderNumber)
}

func (r *repo) FindByInvoiceID(ctx context.Context, invoiceID string) (structs.PaymentSession, error) {
	if invoiceID == "" {
		return structs.PaymentSession{}, structs.ErrNotFound
	}
	return r.findOne(ctx, "invoice_id = $1", invoiceID)
}

func (r *repo) FindByPaymentID(ctx context.Context, paymentID string) (structs.PaymentSession, error) {
	if paymentID == "" {
		return structs.PaymentSession{}, structs.ErrNotFound
	}
	return r.findOne(ctx, "payment_id = $1", paymentID)
}

func (r *repo) FindByTransactionID(ctx context.Context, transactionID string) (structs.PaymentSession, error) {
	if transactionID == "" {
		return structs.PaymentSession{}, structs.ErrNotFound
	}
	return r.findOne(ctx, "transaction_id = $1", transactionID)
}

func (r *repo) FindActiveByUser(ctx context.Context, userID int64) (structs.PaymentSession, error) {
	return r.findOne(ctx, "user_id = $1 AND status IN ('pending', 'completed')", userID)
}

func (r *repo) FindLatestByUser(ctx context.Context, userID int64) (structs.PaymentSession, error) {
	return r.findOne(ctx, "user_id = $1", userID)
}

func (r *repo) FindMostRecentPending(ctx context.Context) (structs.PaymentSession, error) {
	return r.findOne(ctx, "status = 'pending'")
}

func (r *repo) UpdateStatus(ctx context.Context, orderNumber string, upd structs.StatusUpdate, at time.Time) (structs.PaymentSession, bool, error) {
	query := `
		UPDATE payments SET
			status = $2,
			transaction_id = COALESCE(NULLIF($3, ''), transaction_id),
			payment_id = COALESCE(NULLIF($4, ''), payment_id),
			updated_at = $5,
			completed_at = CASE WHEN $2 = 'completed' THEN $5 ELSE completed_at END
		WHERE order_number = $1 AND status = 'pending'
		RETURNING ` + selectColumns

	s, err := scanSession(r.db.QueryRow(ctx, query, orderNumber, string(upd.Status), upd.TransactionID, upd.PaymentID, at))
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, structs.ErrNotFound) {
		r.logger.Error(ctx, "err on r.db.QueryRow", zap.Error(err), zap.String("order_number", orderNumber))
		return structs.PaymentSession{}, false, fmt.Errorf("update payment status failed: %w", err)
	}

	// either unknown or already terminal
	s, err = r.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return structs.PaymentSession{}, false, err
	}
	return s, false, nil
}

func (r *repo) CountByStatus(ctx context.Context) (map[structs.PaymentStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM payments GROUP BY status`)
	if err != nil {
		r.logger.Error(ctx, "err on r.db.Query", zap.Error(err))
		return nil, fmt.Errorf("count payments failed: %w", err)
	}
	defer rows.Close()

	resp := map[structs.PaymentStatus]int64{}
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan payment count: %w", err)
		}
		resp[structs.PaymentStatus(status)] = count
	}
	return resp, rows.Err()
}
