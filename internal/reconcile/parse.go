package reconcile

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"tgpay/internal/structs"
	"tgpay/pkg/utils"
)

// shape recognizes one webhook body layout. ok is false when the body is not of that layout.
type shape struct {
	name  string
	match func(body map[string]any) (cb structs.Callback, ok bool)
}

// shapes are tried in order; the first match wins.
var shapes = []shape{
	{name: "order", match: matchOrder},
	{name: "data.order", match: func(body map[string]any) (structs.Callback, bool) {
		data, ok := body["data"].(map[string]any)
		if !ok {
			return structs.Callback{}, false
		}
		return matchOrder(data)
	}},
	{name: "order_number", match: func(body map[string]any) (structs.Callback, bool) {
		return matchFlat(body, "order_number", "payment_status")
	}},
	{name: "orderNumber", match: func(body map[string]any) (structs.Callback, bool) {
		return matchFlat(body, "orderNumber", "status")
	}},
	{name: "invoice", match: matchInvoice},
}

func matchOrder(body map[string]any) (structs.Callback, bool) {
	order, ok := body["order"].(map[string]any)
	if !ok {
		return structs.Callback{}, false
	}
	number := utils.FirstString(order, "number")
	status := utils.FirstString(body, "status")
	if number == "" || status == "" {
		return structs.Callback{}, false
	}
	cb := common(body)
	cb.OrderNumber = number
	cb.RawStatus = status
	cb.Amount = utils.FirstString(order, "amount")
	cb.Currency = utils.FirstString(order, "currency")
	cb.Description = utils.FirstString(order, "description")
	return cb, true
}

func matchFlat(body map[string]any, numberKey, statusKey string) (structs.Callback, bool) {
	number := utils.FirstString(body, numberKey)
	status := utils.FirstString(body, statusKey)
	if number == "" || status == "" {
		return structs.Callback{}, false
	}
	cb := common(body)
	cb.OrderNumber = number
	cb.RawStatus = status
	return cb, true
}

// matchInvoice reads IPN style notifications where the invoice is the order number.
func matchInvoice(body map[string]any) (structs.Callback, bool) {
	invoice := utils.FirstString(body, "invoice", "invoice_id")
	status := utils.FirstString(body, "status")
	if invoice == "" || status == "" {
		return structs.Callback{}, false
	}
	cb := common(body)
	cb.OrderNumber = invoice
	cb.InvoiceID = invoice
	cb.RawStatus = status
	return cb, true
}

// common collects the optional identifiers any layout may carry at its top level.
func common(body map[string]any) structs.Callback {
	cb := structs.Callback{
		Source:        structs.SourceWebhook,
		InvoiceID:     utils.FirstString(body, "invoice_id"),
		PaymentID:     utils.FirstString(body, "payment_id", "session_id"),
		TransactionID: utils.FirstString(body, "transaction_id", "trans_id", "txn_id"),
		UserID:        cast.ToInt64(utils.FirstString(body, "user_id", "telegram_user_id")),
		Signature:     utils.FirstString(body, "hash", "signature", "ipn_signature"),
		Amount:        utils.FirstString(body, "amount", "amount1"),
		Currency:      utils.FirstString(body, "currency", "currency1"),
		Description:   utils.FirstString(body, "description"),
	}
	if params, ok := body["parameters"].(map[string]any); ok && cb.UserID == 0 {
		cb.UserID = cast.ToInt64(utils.FirstString(params, "telegram_user_id"))
	}
	return cb
}

// ParseWebhook normalizes a webhook body. JSON is tried first, then form encoding. A body that fits
// none of the known layouts is a ReconciliationError wrapping ErrBadRequest.
func ParseWebhook(body []byte, contentType string, header http.Header) (structs.Callback, error) {
	fields, err := decodeBody(body, contentType)
	if err != nil {
		return structs.Callback{}, &structs.ReconciliationError{Reason: err.Error(), Err: structs.ErrBadRequest}
	}

	for _, s := range shapes {
		cb, ok := s.match(fields)
		if !ok {
			continue
		}
		cb.Raw = body
		if cb.Signature == "" && header != nil {
			cb.Signature = utils.FirstNonEmpty(header.Get("X-Signature"), header.Get("HMAC"))
		}
		return cb, nil
	}
	return structs.Callback{}, &structs.ReconciliationError{Reason: "unrecognized webhook shape", Err: structs.ErrBadRequest}
}

func decodeBody(body []byte, contentType string) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, errors.New("empty body")
	}

	if strings.HasPrefix(trimmed, "{") || strings.Contains(contentType, "json") {
		var fields map[string]any
		err := utils.UnmarshalNumbers(body, &fields)
		if err == nil {
			return fields, nil
		}
		if strings.Contains(contentType, "json") {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	}

	values, err := url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	fields := make(map[string]any, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	return fields, nil
}

// ParseRedirect reads the query of a success or cancel redirect. Every identifier is optional.
func ParseRedirect(source structs.CallbackSource, query url.Values) structs.Callback {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(query.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}
	return structs.Callback{
		Source:        source,
		OrderNumber:   get("order_id", "order_number"),
		InvoiceID:     get("invoice_id", "invoice"),
		PaymentID:     get("payment_id"),
		TransactionID: get("trans_id", "transaction_id", "txn_id"),
		UserID:        cast.ToInt64(get("user_id")),
		RawStatus:     get("status"),
	}
}
