package readies

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/payment/signature"
	"tgpay/internal/structs"
	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
)

type fakeReadies struct {
	authCalls int
	txCalls   int
	lastForm  map[string]string
	lastAuth  string
	txStatus  int
}

func (f *fakeReadies) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "shop@example.com", r.PostForm.Get("email"))
		_, _ = w.Write([]byte(`{"status":true,"response":{"authorize_token":"Bearer tok-1"}}`))
	})
	mux.HandleFunc("/transaction", func(w http.ResponseWriter, r *http.Request) {
		f.txCalls++
		require.NoError(t, r.ParseForm())
		f.lastAuth = r.Header.Get("Authorization")
		f.lastForm = map[string]string{}
		for k := range r.PostForm {
			f.lastForm[k] = r.PostForm.Get(k)
		}
		if f.txStatus != 0 {
			w.WriteHeader(f.txStatus)
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"response":{"checkout_url":"https://pay.readies.example/i/9","invoice_id":"INV-9","payment_id":"PAY-9","txn_id":"TXN-9","status":"0","confirms_needed":3}}`))
	})
	return httptest.NewServer(mux)
}

func newClient(t *testing.T, srvURL string, rds redis.Client) *Client {
	t.Helper()
	c, err := New(Config{
		MerchantEmail:       "shop@example.com",
		PublicKey:           "pub",
		PrivateKey:          "priv",
		IPNSecret:           "ipn",
		AuthorizeEndpoint:   srvURL + "/authorize",
		TransactionEndpoint: srvURL + "/transaction",
		BaseURL:             "https://bot.example",
	}, logger.NewNop(), rds)
	require.NoError(t, err)
	return c
}

func testOrder() structs.GatewayOrder {
	return structs.GatewayOrder{
		OrderNumber: "TG_1_1000_abcdef12",
		Amount:      decimal.RequireFromString("25.5"),
		Currency:    "eur",
		Description: "Product: Premium",
		UserID:      1,
		ChatID:      10,
		ProductID:   "prod1",
		ProductName: "Premium",
		Address: &structs.Address{
			Country: "US", State: "CA", City: "Cupertino",
			Address: "1 Infinite Loop", Zip: "95014", Phone: "+19035310488",
		},
	}
}

func TestCreateSession(t *testing.T) {
	fake := &fakeReadies{}
	srv := fake.server(t)
	defer srv.Close()

	rds := redis.NewMemory()
	c := newClient(t, srv.URL, rds)

	res, err := c.CreateSession(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.readies.example/i/9", res.CheckoutURL)
	assert.Equal(t, "INV-9", res.InvoiceID)
	assert.Equal(t, "PAY-9", res.PaymentID)
	assert.Equal(t, "TXN-9", res.TransactionID)
	assert.Equal(t, structs.StatusPending, res.Status)
	assert.Equal(t, "3", res.Meta["confirms_needed"])

	assert.Equal(t, "Bearer tok-1", fake.lastAuth)
	assert.Equal(t, "simple", fake.lastForm["cmd"])
	assert.Equal(t, "25.50", fake.lastForm["amount"])
	assert.Equal(t, "EUR", fake.lastForm["currency1"])
	assert.Equal(t, "READIES", fake.lastForm["currency2"])
	assert.Equal(t, "TG_1_1000_abcdef12", fake.lastForm["invoice"])
	assert.Equal(t, "true", fake.lastForm["address_supplied"])
	assert.Equal(t, "95014", fake.lastForm["address_postal_code"])
	assert.Equal(t, "https://bot.example/webhook/readies", fake.lastForm["ipn_url"])
	assert.JSONEq(t, `{"productId":"prod1","productName":"Premium","description":"Product: Premium"}`, fake.lastForm["description"])

	cached, err := rds.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cached)

	_, err = c.CreateSession(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, 1, fake.authCalls)
	assert.Equal(t, 2, fake.txCalls)
}

func TestCreateSessionWithoutAddress(t *testing.T) {
	fake := &fakeReadies{}
	srv := fake.server(t)
	defer srv.Close()

	order := testOrder()
	order.Address = nil
	_, err := newClient(t, srv.URL, redis.NewMemory()).CreateSession(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "false", fake.lastForm["address_supplied"])
	_, ok := fake.lastForm["address_line1"]
	assert.False(t, ok)
}

func TestUnauthorizedDropsCachedToken(t *testing.T) {
	fake := &fakeReadies{txStatus: http.StatusUnauthorized}
	srv := fake.server(t)
	defer srv.Close()

	rds := redis.NewMemory()
	_, err := newClient(t, srv.URL, rds).CreateSession(context.Background(), testOrder())
	var gerr *structs.GatewayError
	require.ErrorAs(t, err, &gerr)

	_, err = rds.Get(context.Background(), tokenKey)
	assert.ErrorIs(t, err, redis.ErrNotFound)
}

func TestVerifyCallback(t *testing.T) {
	c := newClient(t, "http://unused", redis.NewMemory())

	assert.NoError(t, c.VerifyCallback(structs.Callback{Signature: signature.MD5Hex("ipn")}, structs.PaymentSession{}))

	var serr *structs.SignatureError
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{Signature: signature.MD5Hex("priv")}, structs.PaymentSession{}), &serr)
	assert.ErrorAs(t, c.VerifyCallback(structs.Callback{Signature: "zz"}, structs.PaymentSession{}), &serr)
}

func TestMapStatus(t *testing.T) {
	c := newClient(t, "http://unused", redis.NewMemory())
	tests := map[string]structs.PaymentStatus{
		"0":         structs.StatusPending,
		"1":         structs.StatusCompleted,
		"200":       structs.StatusCancelled,
		"400":       structs.StatusFailed,
		"Completed": structs.StatusCompleted,
		"cancel":    structs.StatusCancelled,
		"-1":        structs.StatusPending,
		"":          structs.StatusPending,
	}
	for raw, want := range tests {
		assert.Equal(t, want, c.MapStatus(raw), raw)
	}
}

func TestNewRequiresSecrets(t *testing.T) {
	_, err := New(Config{MerchantEmail: "a"}, logger.NewNop(), redis.NewMemory())
	var cerr *structs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "readies.public_key", cerr.Key)
}
