package payment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"tgpay/internal/payment/ragapay"
	"tgpay/internal/payment/readies"
	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/redis"
)

// Gateway is one hosted checkout provider. Shared code never branches on the provider name.
type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, order structs.GatewayOrder) (structs.GatewayResult, error)
	// VerifyCallback checks the webhook signature against the session it resolved to.
	VerifyCallback(cb structs.Callback, session structs.PaymentSession) error
	MapStatus(raw string) structs.PaymentStatus
}

type GatewayParams struct {
	fx.In
	Config config.IConfig
	Logger logger.Logger
	Redis  redis.Client
}

// NewGateway builds the provider named by payment.gateway. Missing secrets fail here so the app
// does not start half configured.
func NewGateway(p GatewayParams) (Gateway, error) {
	baseURL := strings.TrimRight(p.Config.GetString("server.base_url"), "/")

	switch name := strings.ToLower(p.Config.GetString("payment.gateway")); name {
	case "", ragapay.Name:
		return ragapay.New(ragapay.Config{
			Key:             p.Config.GetString("ragapay.key"),
			Password:        p.Config.GetString("ragapay.password"),
			Endpoint:        p.Config.GetString("ragapay.endpoint"),
			SignatureScheme: p.Config.GetString("ragapay.signature_scheme"),
			BaseURL:         baseURL,
			Timeout:         p.Config.GetDuration("payment.timeout"),
		}, p.Logger)
	case readies.Name:
		return readies.New(readies.Config{
			MerchantEmail:       p.Config.GetString("readies.merchant_email"),
			PublicKey:           p.Config.GetString("readies.public_key"),
			PrivateKey:          p.Config.GetString("readies.private_key"),
			IPNSecret:           p.Config.GetString("readies.ipn_secret"),
			AuthorizeEndpoint:   p.Config.GetString("readies.authorize_endpoint"),
			TransactionEndpoint: p.Config.GetString("readies.transaction_endpoint"),
			BaseURL:             baseURL,
		}, p.Logger, p.Redis)
	default:
		return nil, fmt.Errorf("%w: unknown gateway %q", &structs.ConfigurationError{Key: "payment.gateway"}, name)
	}
}
