package structs

// Callback is a gateway status notification normalized from whatever shape it arrived in.
type Callback struct {
	OrderNumber   string
	InvoiceID     string
	PaymentID     string
	TransactionID string
	UserID        int64
	RawStatus     string
	Signature     string
	Source        CallbackSource
	// Order fields echoed back by the gateway, used to recompute its signature.
	Amount      string
	Currency    string
	Description string
	Raw         []byte
}

type CallbackSource string

const (
	SourceWebhook CallbackSource = "webhook"
	SourceSuccess CallbackSource = "success_redirect"
	SourceCancel  CallbackSource = "cancel_redirect"
)

// Resolution is the outcome of reconciling one callback.
type Resolution struct {
	Session  PaymentSession
	Strategy string
	Changed  bool
	// Notified is set when the status message was handed off for sending. Delivery happens after
	// the callback is answered.
	Notified bool
}
