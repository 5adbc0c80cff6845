package structs

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConversationKind string

const (
	KindAddress             ConversationKind = "address"
	KindProductCreation     ConversationKind = "product_creation"
	KindProductModification ConversationKind = "product_modification"
)

type AddressStep string

const (
	StepCountry AddressStep = "country"
	StepState   AddressStep = "state"
	StepCity    AddressStep = "city"
	StepAddress AddressStep = "address"
	StepZip     AddressStep = "zip"
	StepPhone   AddressStep = "phone"
)

type ProductStep string

const (
	StepName        ProductStep = "name"
	StepDescription ProductStep = "description"
	StepPrice       ProductStep = "price"
	StepCurrency    ProductStep = "currency"
	// StepFieldSelect only exists in the modification loop.
	StepFieldSelect ProductStep = "field"
)

// Conversation is the single in-progress record a user may have. Exactly one of the
// kind-specific pointers is set, matching Kind.
type Conversation struct {
	Kind                ConversationKind     `json:"kind"`
	UserID              int64                `json:"user_id"`
	ChatID              int64                `json:"chat_id"`
	Address             *AddressCollection   `json:"address,omitempty"`
	ProductCreation     *ProductCreation     `json:"product_creation,omitempty"`
	ProductModification *ProductModification `json:"product_modification,omitempty"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type AddressCollection struct {
	Step               AddressStep     `json:"step"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	CustomerName       string          `json:"customer_name,omitempty"`
	ProductID          string          `json:"product_id,omitempty"`
	ProductName        string          `json:"product_name,omitempty"`
	ProductDescription string          `json:"product_description,omitempty"`
	Address            Address         `json:"partial_address"`
}

type ProductCreation struct {
	Step        ProductStep     `json:"step"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
}

type ProductModification struct {
	Step        ProductStep  `json:"step"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Edits       PatchProduct `json:"pending_edits"`
}
