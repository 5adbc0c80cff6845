package ragapay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/payment/signature"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
)

func testOrder() structs.GatewayOrder {
	return structs.GatewayOrder{
		OrderNumber:  "TG_1_1000_abcdef12",
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		Description:  "Telegram Payment - 100.00 USD",
		CustomerName: "Ann",
		UserID:       1,
		ChatID:       10,
		Address: &structs.Address{
			Country: "United States", State: "CA", City: "Cupertino",
			Address: "1 Infinite Loop", Zip: "95014", Phone: "+19035310488",
		},
		CountryCode: "US",
	}
}

func newClient(t *testing.T, endpoint, scheme string) *Client {
	t.Helper()
	c, err := New(Config{
		Key:             "merchant",
		Password:        "s3cr3t",
		Endpoint:        endpoint,
		SignatureScheme: scheme,
		BaseURL:         "https://bot.example",
	}, logger.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewRequiresSecrets(t *testing.T) {
	_, err := New(Config{Password: "p", Endpoint: "e"}, logger.NewNop())
	var cerr *structs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "ragapay.key", cerr.Key)

	_, err = New(Config{Key: "k", Endpoint: "e"}, logger.NewNop())
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "ragapay.password", cerr.Key)

	_, err = New(Config{Key: "k", Password: "p", Endpoint: "e", SignatureScheme: "rot13"}, logger.NewNop())
	require.ErrorAs(t, err, &cerr)
}

func TestCreateSessionSignsPayload(t *testing.T) {
	var received sessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{"redirect_url":"https://checkout.example/s/1","payment_id":"p-1"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, "sha1md5")
	res, err := c.CreateSession(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/s/1", res.CheckoutURL)
	assert.Equal(t, "p-1", res.PaymentID)
	assert.Equal(t, structs.StatusPending, res.Status)

	assert.Equal(t, "merchant", received.MerchantKey)
	assert.Equal(t, "purchase", received.Operation)
	assert.Equal(t, []string{"card", "applepay"}, received.Methods)
	assert.Equal(t, "100.00", received.Order.Amount)
	assert.Equal(t, "user1@telegram.com", received.Customer.Email)
	assert.Equal(t, "https://bot.example/callback/ragapay", received.WebhookURL)
	assert.Contains(t, received.SuccessURL, "order_id=TG_1_1000_abcdef12")
	assert.Contains(t, received.CancelURL, "user_id=1")
	require.NotNil(t, received.BillingAddress)
	assert.Equal(t, "US", received.BillingAddress.Country)
	assert.Nil(t, received.Parameters.ProductID)

	expected, err := signature.SHA1MD5(signature.Fields{
		OrderNumber: "TG_1_1000_abcdef12",
		Amount:      "100.00",
		Currency:    "USD",
		Description: "Telegram Payment - 100.00 USD",
	}, "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, expected, received.Hash)
}

func TestCreateSessionHMAC(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"checkout_url":"https://checkout.example/s/2"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, "hmac")
	_, err := c.CreateSession(context.Background(), testOrder())
	require.NoError(t, err)

	var req sessionRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	hash := req.Hash
	assert.Len(t, hash, 64)

	req.Hash = ""
	expected, err := signature.SignPayload(req, "s3cr3t")
	require.NoError(t, err)
	assert.Equal(t, expected, hash)
}

func TestCreateSessionFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "api error", status: http.StatusOK, body: `{"error_code":"E42","error_message":"bad merchant"}`},
		{name: "no url", status: http.StatusOK, body: `{"id":"x"}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "server error", status: http.StatusBadGateway, body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newClient(t, srv.URL, "sha1md5")
			_, err := c.CreateSession(context.Background(), testOrder())
			var gerr *structs.GatewayError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, Name, gerr.Gateway)
		})
	}
}

func TestVerifyCallbackSHA1MD5(t *testing.T) {
	c := newClient(t, "http://unused", "sha1md5")
	session := structs.PaymentSession{
		OrderNumber: "TG_1_1000",
		Amount:      decimal.NewFromInt(10),
		Currency:    "USD",
		Description: "test",
	}
	good, err := signature.SHA1MD5(signature.Fields{OrderNumber: "TG_1_1000", Amount: "10.00", Currency: "USD", Description: "test"}, "s3cr3t")
	require.NoError(t, err)

	assert.NoError(t, c.VerifyCallback(structs.Callback{OrderNumber: "TG_1_1000", Signature: good}, session))
	assert.NoError(t, c.VerifyCallback(structs.Callback{OrderNumber: "TG_1_1000", Amount: "10", Signature: good}, session))

	var serr *structs.SignatureError
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{OrderNumber: "TG_1_1000", Amount: "11", Signature: good}, session), &serr)
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{OrderNumber: "TG_1_1000", Signature: good[:39]}, session), &serr)
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{OrderNumber: "TG_1_1000"}, session), &serr)
}

func TestVerifyCallbackHMAC(t *testing.T) {
	c := newClient(t, "http://unused", "hmac")

	signed := `{"status":"completed","order":{"number":"TG_1_1000","description":"Tom & Jerry <3>"},"hash":""}`
	expected, err := signature.HMACSHA256([]byte(signed), "s3cr3t")
	require.NoError(t, err)

	raw := []byte(strings.Replace(signed, `"hash":""`, `"hash":"`+expected+`"`, 1))
	assert.NoError(t, c.VerifyCallback(structs.Callback{Raw: raw, Signature: expected}, structs.PaymentSession{}))

	tampered := []byte(strings.Replace(string(raw), "completed", "cancelled", 1))
	var serr *structs.SignatureError
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{Raw: tampered, Signature: expected}, structs.PaymentSession{}), &serr)
}

func TestVerifyCallbackHMACAcceptsOwnRequest(t *testing.T) {
	c := newClient(t, "http://unused", "hmac")

	req := c.buildRequest(testOrder())
	hash, err := c.sign(req)
	require.NoError(t, err)
	req.Hash = hash

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NoError(t, c.VerifyCallback(structs.Callback{Raw: raw, Signature: hash}, structs.PaymentSession{}))
}

func TestMapStatus(t *testing.T) {
	c := newClient(t, "http://unused", "")
	assert.Equal(t, structs.StatusCompleted, c.MapStatus("Completed"))
	assert.Equal(t, structs.StatusCompleted, c.MapStatus("success"))
	assert.Equal(t, structs.StatusCancelled, c.MapStatus("canceled"))
	assert.Equal(t, structs.StatusFailed, c.MapStatus("declined"))
	assert.Equal(t, structs.StatusPending, c.MapStatus("whatever"))
}
