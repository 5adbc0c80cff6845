package ragapay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tgpay/internal/payment/signature"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
	"tgpay/pkg/utils"
)

const (
	Name           = "ragapay"
	defaultTimeout = 10 * time.Second
	userAgent      = "TelegramBot/1.0"
)

// checkoutURLKeys are the response fields the gateway has used for the hosted page, in order.
var checkoutURLKeys = []string{"checkout_url", "url", "redirect_url", "payment_url", "session_url", "link"}

type Config struct {
	Key             string
	Password        string
	Endpoint        string
	SignatureScheme string
	BaseURL         string
	Timeout         time.Duration
}

type Client struct {
	cfg    Config
	scheme signature.Scheme
	http   *resty.Client
	logger logger.Logger
}

type (
	sessionRequest struct {
		MerchantKey    string          `json:"merchant_key"`
		Operation      string          `json:"operation"`
		Methods        []string        `json:"methods"`
		Order          order           `json:"order"`
		CancelURL      string          `json:"cancel_url"`
		SuccessURL     string          `json:"success_url"`
		WebhookURL     string          `json:"webhook_url"`
		Customer       customer        `json:"customer"`
		BillingAddress *billingAddress `json:"billing_address,omitempty"`
		Parameters     parameters      `json:"parameters"`
		Hash           string          `json:"hash"`
	}
	order struct {
		Number      string `json:"number"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
	}
	customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	billingAddress struct {
		Country string `json:"country"`
		State   string `json:"state"`
		City    string `json:"city"`
		Address string `json:"address"`
		Zip     string `json:"zip"`
		Phone   string `json:"phone"`
	}
	parameters struct {
		TelegramUserID int64   `json:"telegram_user_id"`
		TelegramChatID int64   `json:"telegram_chat_id"`
		ProductID      *string `json:"product_id"`
		OrderNumber    string  `json:"order_number"`
	}
)

func New(cfg Config, log logger.Logger) (*Client, error) {
	switch {
	case cfg.Key == "":
		return nil, &structs.ConfigurationError{Key: "ragapay.key"}
	case cfg.Password == "":
		return nil, &structs.ConfigurationError{Key: "ragapay.password"}
	case cfg.Endpoint == "":
		return nil, &structs.ConfigurationError{Key: "ragapay.endpoint"}
	}

	scheme, err := signature.ParseScheme(cfg.SignatureScheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", &structs.ConfigurationError{Key: "ragapay.signature_scheme"}, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:    cfg,
		scheme: scheme,
		logger: log,
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", userAgent),
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) gatewayErr(op string, err error) error {
	return &structs.GatewayError{Gateway: Name, Op: op, Err: err}
}

func (c *Client) buildRequest(o structs.GatewayOrder) sessionRequest {
	query := url.Values{}
	query.Set("order_id", o.OrderNumber)
	query.Set("user_id", fmt.Sprint(o.UserID))

	name := o.CustomerName
	if name == "" {
		name = "Telegram User"
	}

	req := sessionRequest{
		MerchantKey: c.cfg.Key,
		Operation:   "purchase",
		Methods:     []string{"card", "applepay"},
		Order: order{
			Number:      o.OrderNumber,
			Amount:      o.Amount.StringFixed(2),
			Currency:    o.Currency,
			Description: o.Description,
		},
		CancelURL:  c.cfg.BaseURL + "/payment/cancel?" + query.Encode(),
		SuccessURL: c.cfg.BaseURL + "/payment/success?" + query.Encode(),
		WebhookURL: c.cfg.BaseURL + "/callback/ragapay",
		Customer: customer{
			Name:  name,
			Email: fmt.Sprintf("user%d@telegram.com", o.UserID),
		},
		Parameters: parameters{
			TelegramUserID: o.UserID,
			TelegramChatID: o.ChatID,
			OrderNumber:    o.OrderNumber,
		},
	}
	if o.ProductID != "" {
		id := o.ProductID
		req.Parameters.ProductID = &id
	}
	if a := o.Address; a != nil {
		req.BillingAddress = &billingAddress{
			Country: o.CountryCode,
			State:   a.State,
			City:    a.City,
			Address: a.Address,
			Zip:     a.Zip,
			Phone:   a.Phone,
		}
	}
	return req
}

func (c *Client) sign(req sessionRequest) (string, error) {
	if c.scheme == signature.SchemeHMAC {
		req.Hash = ""
		return signature.SignPayload(req, c.cfg.Password)
	}
	return signature.SHA1MD5(signature.Fields{
		OrderNumber: req.Order.Number,
		Amount:      req.Order.Amount,
		Currency:    req.Order.Currency,
		Description: req.Order.Description,
	}, c.cfg.Password)
}

func (c *Client) CreateSession(ctx context.Context, o structs.GatewayOrder) (structs.GatewayResult, error) {
	req := c.buildRequest(o)

	hash, err := c.sign(req)
	if err != nil {
		return structs.GatewayResult{}, err
	}
	req.Hash = hash

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.cfg.Endpoint)
	if err != nil {
		return structs.GatewayResult{}, c.gatewayErr("create session", err)
	}
	if resp.IsError() {
		c.logger.Warn(ctx, "ragapay returned non-2xx", zap.Int("status", resp.StatusCode()), zap.String("order_number", o.OrderNumber))
		return structs.GatewayResult{}, c.gatewayErr("create session", fmt.Errorf("status %d", resp.StatusCode()))
	}

	var body map[string]any
	if err = utils.UnmarshalNumbers(resp.Body(), &body); err != nil || body == nil {
		return structs.GatewayResult{}, c.gatewayErr("create session", errors.New("response is not a json object"))
	}

	if code, msg := utils.FirstString(body, "error_code"), utils.FirstString(body, "error_message"); code != "" || msg != "" {
		if msg == "" {
			msg = "unknown error"
		}
		c.logger.Warn(ctx, "ragapay rejected session", zap.String("error_code", code), zap.String("order_number", o.OrderNumber))
		return structs.GatewayResult{}, c.gatewayErr("create session", fmt.Errorf("api error %s: %s", code, msg))
	}

	checkoutURL := utils.FirstString(body, checkoutURLKeys...)
	if checkoutURL == "" {
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		c.logger.Warn(ctx, "ragapay response has no checkout url", zap.Strings("fields", keys))
		return structs.GatewayResult{}, c.gatewayErr("create session", errors.New("no checkout url in response"))
	}

	return structs.GatewayResult{
		CheckoutURL: checkoutURL,
		PaymentID:   utils.FirstString(body, "payment_id", "session_id"),
		Status:      structs.StatusPending,
	}, nil
}

// VerifyCallback recomputes the webhook hash. Order fields missing from the callback are taken
// from the stored session.
func (c *Client) VerifyCallback(cb structs.Callback, s structs.PaymentSession) error {
	if c.scheme == signature.SchemeHMAC {
		if len(cb.Raw) == 0 {
			return &structs.SignatureError{Reason: "empty body"}
		}
		signed, err := signature.BlankField(cb.Raw, "hash")
		if err != nil {
			return err
		}
		expected, err := signature.HMACSHA256(signed, c.cfg.Password)
		if err != nil {
			return err
		}
		return signature.Verify(expected, cb.Signature, c.scheme.HexLen())
	}

	fields := signature.Fields{
		OrderNumber: utils.FirstNonEmpty(cb.OrderNumber, s.OrderNumber),
		Amount:      s.Amount.StringFixed(2),
		Currency:    utils.FirstNonEmpty(cb.Currency, s.Currency),
		Description: utils.FirstNonEmpty(cb.Description, s.Description),
	}
	if cb.Amount != "" {
		if d, err := decimal.NewFromString(cb.Amount); err == nil {
			fields.Amount = d.StringFixed(2)
		}
	}

	expected, err := signature.SHA1MD5(fields, c.cfg.Password)
	if err != nil {
		return err
	}
	return signature.Verify(expected, cb.Signature, c.scheme.HexLen())
}

func (c *Client) MapStatus(raw string) structs.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "complete", "success", "successful", "paid", "settled", "approved":
		return structs.StatusCompleted
	case "cancelled", "canceled", "cancel":
		return structs.StatusCancelled
	case "failed", "fail", "declined", "error", "expired":
		return structs.StatusFailed
	default:
		return structs.StatusPending
	}
}
