package structs

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s PaymentStatus) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

func (s PaymentStatus) Emoji() string {
	switch s {
	case StatusPending:
		return "⏳"
	case StatusCompleted:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusCancelled:
		return "🚫"
	default:
		return "❓"
	}
}

type Address struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
	Phone   string `json:"phone"`
}

func (a Address) Complete() bool {
	return a.Country != "" && a.State != "" && a.City != "" && a.Address != "" && a.Zip != "" && a.Phone != ""
}

type PaymentSession struct {
	OrderNumber    string            `json:"order_number"`
	InvoiceID      string            `json:"invoice_id"`
	UserID         int64             `json:"user_id"`
	ChatID         int64             `json:"chat_id"`
	Amount         decimal.Decimal   `json:"amount"`
	Currency       string            `json:"currency"`
	Status         PaymentStatus     `json:"status"`
	CheckoutURL    string            `json:"checkout_url"`
	Gateway        string            `json:"gateway"`
	Description    string            `json:"description"`
	BillingAddress *Address          `json:"billing_address,omitempty"`
	ProductID      string            `json:"product_id,omitempty"`
	ProductName    string            `json:"product_name,omitempty"`
	TransactionID  string            `json:"transaction_id,omitempty"`
	PaymentID      string            `json:"payment_id,omitempty"`
	GatewayMeta    map[string]string `json:"gateway_meta,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// CreateSessionRequest is what a finished address collection (or a direct caller) hands to the
// session manager.
type CreateSessionRequest struct {
	UserID             int64
	ChatID             int64
	CustomerName       string
	Amount             decimal.Decimal
	Currency           string
	Description        string
	Address            *Address
	ProductID          string
	ProductName        string
	ProductDescription string
}

// StatusUpdate carries the optional ids a callback may report alongside the status.
type StatusUpdate struct {
	Status        PaymentStatus
	TransactionID string
	PaymentID     string
}

// GatewayOrder is the normalized order a gateway turns into its own request payload.
type GatewayOrder struct {
	OrderNumber        string
	Amount             decimal.Decimal
	Currency           string
	Description        string
	CustomerName       string
	UserID             int64
	ChatID             int64
	Address            *Address
	CountryCode        string
	ProductID          string
	ProductName        string
	ProductDescription string
}

type GatewayResult struct {
	CheckoutURL   string
	InvoiceID     string
	PaymentID     string
	TransactionID string
	Status        PaymentStatus
	Meta          map[string]string
}
