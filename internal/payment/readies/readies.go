package readies

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"tgpay/internal/payment/signature"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
	"tgpay/pkg/utils"
)

const (
	Name      = "readies"
	timeout   = 15 * time.Second
	userAgent = "TelegramBot/ReadiesIntegration/1.0"

	tokenKey = "readies.token"
	tokenTTL = 10 * time.Minute
)

var (
	bearerPrefix = regexp.MustCompile(`(?i)^Bearer\s+`)

	statusMap = map[string]structs.PaymentStatus{
		"0":         structs.StatusPending,
		"1":         structs.StatusCompleted,
		"200":       structs.StatusCancelled,
		"400":       structs.StatusFailed,
		"pending":   structs.StatusPending,
		"completed": structs.StatusCompleted,
		"cancel":    structs.StatusCancelled,
		"failed":    structs.StatusFailed,
	}

	metaKeys = []string{"original_amount", "original_currency", "selected_amount", "selected_currency", "confirms_needed", "timeout"}
)

type Config struct {
	MerchantEmail       string
	PublicKey           string
	PrivateKey          string
	IPNSecret           string
	AuthorizeEndpoint   string
	TransactionEndpoint string
	BaseURL             string
}

type Client struct {
	cfg    Config
	http   *resty.Client
	redis  redis.Client
	logger logger.Logger
}

type envelope struct {
	Status   any            `json:"status"`
	Message  string         `json:"message"`
	Response map[string]any `json:"response"`
}

func New(cfg Config, log logger.Logger, rds redis.Client) (*Client, error) {
	required := []struct{ key, value string }{
		{"readies.merchant_email", cfg.MerchantEmail},
		{"readies.public_key", cfg.PublicKey},
		{"readies.private_key", cfg.PrivateKey},
		{"readies.authorize_endpoint", cfg.AuthorizeEndpoint},
		{"readies.transaction_endpoint", cfg.TransactionEndpoint},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &structs.ConfigurationError{Key: r.key}
		}
	}

	return &Client{
		cfg:    cfg,
		redis:  rds,
		logger: log,
		http: resty.New().
			SetTimeout(timeout).
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

func (c *Client) post(ctx context.Context, op, endpoint, token string, form map[string]string) (envelope, int, error) {
	req := c.http.R().SetContext(ctx).SetFormData(form)
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Post(endpoint)
	if err != nil {
		return envelope{}, 0, c.gatewayErr(op, err)
	}
	if resp.IsError() {
		return envelope{}, resp.StatusCode(), c.gatewayErr(op, fmt.Errorf("status %d", resp.StatusCode()))
	}

	var env envelope
	if err = utils.UnmarshalNumbers(resp.Body(), &env); err != nil {
		return envelope{}, resp.StatusCode(), c.gatewayErr(op, errors.New("response is not a json object"))
	}
	if !utils.Truthy(env.Status) || env.Response == nil {
		msg := env.Message
		if msg == "" {
			msg = "unexpected response"
		}
		return envelope{}, resp.StatusCode(), c.gatewayErr(op, errors.New(msg))
	}
	return env, resp.StatusCode(), nil
}

// token returns the merchant bearer token, cached in redis for tokenTTL.
func (c *Client) token(ctx context.Context) (string, error) {
	if cached, err := c.redis.Get(ctx, tokenKey); err == nil && cached != "" {
		return cached, nil
	} else if err != nil && !errors.Is(err, redis.ErrNotFound) {
		c.logger.Warn(ctx, "->redis.Get", zap.Error(err))
	}

	env, _, err := c.post(ctx, "authorize", c.cfg.AuthorizeEndpoint, "", map[string]string{
		"email":       c.cfg.MerchantEmail,
		"public_key":  c.cfg.PublicKey,
		"private_key": c.cfg.PrivateKey,
	})
	if err != nil {
		return "", err
	}

	token := bearerPrefix.ReplaceAllString(utils.FirstString(env.Response, "authorize_token"), "")
	if token == "" {
		return "", c.gatewayErr("authorize", errors.New("no authorize token in response"))
	}

	if err = c.redis.Set(ctx, tokenKey, token, tokenTTL); err != nil {
		c.logger.Warn(ctx, "->redis.Set", zap.Error(err))
	}
	return token, nil
}

func (c *Client) buildForm(o structs.GatewayOrder) map[string]string {
	query := url.Values{}
	query.Set("order_id", o.OrderNumber)
	query.Set("user_id", fmt.Sprint(o.UserID))

	firstName := o.CustomerName
	if firstName == "" {
		firstName = "Telegram"
	}
	itemName := o.ProductName
	if itemName == "" {
		itemName = "Telegram Payment"
	}
	itemNumber := o.ProductID
	if itemNumber == "" {
		itemNumber = "N/A"
	}

	description := o.ProductDescription
	if description == "" {
		description = o.Description
	}
	info := map[string]any{"productId": nilIfEmpty(o.ProductID), "productName": nilIfEmpty(o.ProductName), "description": nilIfEmpty(description)}

	form := map[string]string{
		"plugins_version":     "telegram-bot",
		"cmd":                 "simple",
		"amount":              o.Amount.StringFixed(2),
		"currency1":           strings.ToUpper(o.Currency),
		"currency2":           "READIES",
		"user_creation":       "false",
		"buyer_opt_completed": "false",
		"buyer_email":         fmt.Sprintf("user%d@telegram.local", o.UserID),
		"buyer_first_name":    firstName,
		"buyer_last_name":     "User",
		"address_supplied":    "false",
		"item_name":           itemName,
		"item_number":         itemNumber,
		"description":         string(utils.Marshal(info)),
		"ipn_url":             c.cfg.BaseURL + "/webhook/readies",
		"invoice":             o.OrderNumber,
		"success_url":         c.cfg.BaseURL + "/payment/success?" + query.Encode(),
		"cancel_url":          c.cfg.BaseURL + "/payment/cancel?" + query.Encode(),
	}
	if a := o.Address; a != nil {
		form["address_supplied"] = "true"
		form["address_line1"] = a.Address
		form["address_city"] = a.City
		form["address_state_province"] = a.State
		form["address_country"] = a.Country
		form["address_postal_code"] = a.Zip
		form["buyer_mobile"] = a.Phone
	}
	return form
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *Client) CreateSession(ctx context.Context, o structs.GatewayOrder) (structs.GatewayResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return structs.GatewayResult{}, err
	}

	env, status, err := c.post(ctx, "create transaction", c.cfg.TransactionEndpoint, token, c.buildForm(o))
	if err != nil {
		if status == http.StatusUnauthorized {
			// stale token; the next attempt authorizes again
			if derr := c.redis.Delete(ctx, tokenKey); derr != nil {
				c.logger.Warn(ctx, "->redis.Delete", zap.Error(derr))
			}
		}
		return structs.GatewayResult{}, err
	}

	resp := env.Response
	checkoutURL := utils.FirstString(resp, "checkout_url", "url", "payment_url")
	if checkoutURL == "" {
		return structs.GatewayResult{}, c.gatewayErr("create transaction", errors.New("no checkout url in response"))
	}

	meta := map[string]string{}
	for _, k := range metaKeys {
		if v := utils.FirstString(resp, k); v != "" {
			meta[k] = v
		}
	}

	invoiceID := utils.FirstString(resp, "invoice_id")
	if invoiceID == "" {
		invoiceID = o.OrderNumber
	}

	return structs.GatewayResult{
		CheckoutURL:   checkoutURL,
		InvoiceID:     invoiceID,
		PaymentID:     utils.FirstString(resp, "payment_id"),
		TransactionID: utils.FirstString(resp, "txn_id"),
		Status:        c.MapStatus(utils.FirstString(resp, "status")),
		Meta:          meta,
	}, nil
}

// VerifyCallback checks the IPN signature: md5 of the IPN secret, or of the private key when no
// IPN secret is configured.
func (c *Client) VerifyCallback(cb structs.Callback, _ structs.PaymentSession) error {
	secret := c.cfg.IPNSecret
	if secret == "" {
		secret = c.cfg.PrivateKey
	}
	return signature.Verify(signature.MD5Hex(secret), cb.Signature, 32)
}

func (c *Client) MapStatus(raw string) structs.PaymentStatus {
	if status, ok := statusMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return structs.StatusPending
}
