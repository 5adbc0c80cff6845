package payment

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/payment/country"
	"tgpay/internal/structs"
	"tgpay/internal/validator"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(NewGateway),
	fx.Provide(New),
)

type (
	Params struct {
		fx.In
		Config      config.IConfig
		Logger      logger.Logger
		Gateway     Gateway
		PaymentRepo interfaces.PaymentRepo
	}

	// Manager owns payment sessions: it creates them through the gateway and is the only writer of
	// their status.
	Manager interface {
		CreateSession(ctx context.Context, req structs.CreateSessionRequest) (structs.PaymentSession, error)
		// UpdateStatus applies a terminal status once. changed is false when the session had
		// already left pending; that is not an error.
		UpdateStatus(ctx context.Context, orderNumber string, upd structs.StatusUpdate) (session structs.PaymentSession, changed bool, err error)

		FindByOrderNumber(ctx context.Context, orderNumber string) (structs.PaymentSession, error)
		FindByInvoiceID(ctx context.Context, invoiceID string) (structs.PaymentSession, error)
		FindByPaymentID(ctx context.Context, paymentID string) (structs.PaymentSession, error)
		FindByTransactionID(ctx context.Context, transactionID string) (structs.PaymentSession, error)
		FindActiveByUser(ctx context.Context, userID int64) (structs.PaymentSession, error)
		FindLatestByUser(ctx context.Context, userID int64) (structs.PaymentSession, error)
		FindMostRecentPending(ctx context.Context) (structs.PaymentSession, error)
		CountByStatus(ctx context.Context) (map[structs.PaymentStatus]int64, error)

		Gateway() Gateway
	}

	manager struct {
		logger      logger.Logger
		gateway     Gateway
		paymentRepo interfaces.PaymentRepo
		timeout     time.Duration
		now         func() time.Time
	}
)

func New(p Params) Manager {
	timeout := p.Config.GetDuration("payment.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &manager{
		logger:      p.Logger,
		gateway:     p.Gateway,
		paymentRepo: p.PaymentRepo,
		timeout:     timeout,
		now:         time.Now,
	}
}

func (m *manager) Gateway() Gateway {
	return m.gateway
}

// Description is the order description sent to the gateway when the caller gave none.
func Description(req structs.CreateSessionRequest) string {
	if req.Description != "" {
		return req.Description
	}
	if req.ProductName != "" {
		if req.ProductDescription != "" {
			return req.ProductDescription
		}
		return "Product: " + req.ProductName
	}
	return "Telegram Payment - " + utils.FAmount(req.Amount, req.Currency)
}

func (m *manager) validate(req structs.CreateSessionRequest) error {
	if !validator.AmountInRange(req.Amount) {
		return structs.NewValidationError("amount", "Invalid amount. Must be between 1 and 1,000,000.")
	}
	if !validator.ValidateCurrency(req.Currency) {
		return structs.NewValidationError("currency", "Unsupported currency. Supported: USD, EUR, GBP, INR")
	}
	if a := req.Address; a != nil {
		if !a.Complete() {
			return structs.NewValidationError("address", "Billing address is incomplete.")
		}
		if err := validator.ValidatePhone(a.Phone); err != nil {
			return err
		}
		if err := validator.CheckAddressLimits(*a); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(req.CustomerName) > validator.MaxNameLength ||
		utf8.RuneCountInString(req.ProductName) > validator.MaxNameLength {
		return structs.NewValidationError("name", "Name is too long.")
	}
	return nil
}

func (m *manager) CreateSession(ctx context.Context, req structs.CreateSessionRequest) (structs.PaymentSession, error) {
	req.Currency = validator.NormalizeCurrency(req.Currency)
	if err := m.validate(req); err != nil {
		m.logger.Warn(ctx, "payment request rejected", zap.Int64("user_id", req.UserID), zap.Error(err))
		return structs.PaymentSession{}, err
	}

	description := Description(req)
	if utf8.RuneCountInString(description) > validator.MaxDescriptionLength {
		return structs.PaymentSession{}, structs.NewValidationError("description", "Description is too long.")
	}

	now := m.now()
	orderNumber := utils.GenOrderNumber(req.UserID, now)
	if len(orderNumber) > validator.MaxOrderNumberLength {
		return structs.PaymentSession{}, structs.NewValidationError("order_number", "Order number is too long.")
	}

	order := structs.GatewayOrder{
		OrderNumber:        orderNumber,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        description,
		CustomerName:       req.CustomerName,
		UserID:             req.UserID,
		ChatID:             req.ChatID,
		Address:            req.Address,
		ProductID:          req.ProductID,
		ProductName:        req.ProductName,
		ProductDescription: req.ProductDescription,
	}
	if req.Address != nil {
		order.CountryCode = country.Code(req.Address.Country)
	}

	gwCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	started := time.Now()
	result, err := m.gateway.CreateSession(gwCtx, order)
	if err != nil {
		m.logger.Error(ctx, "->gateway.CreateSession",
			zap.String("gateway", m.gateway.Name()),
			zap.String("order_number", orderNumber),
			zap.Duration("took", time.Since(started)),
			zap.Error(err),
		)
		return structs.PaymentSession{}, err
	}
	if strings.TrimSpace(result.CheckoutURL) == "" {
		return structs.PaymentSession{}, &structs.GatewayError{Gateway: m.gateway.Name(), Op: "create session", Err: errors.New("empty checkout url")}
	}

	invoiceID := result.InvoiceID
	if invoiceID == "" {
		invoiceID = orderNumber
	}

	session := structs.PaymentSession{
		OrderNumber:    orderNumber,
		InvoiceID:      invoiceID,
		UserID:         req.UserID,
		ChatID:         req.ChatID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         structs.StatusPending,
		CheckoutURL:    result.CheckoutURL,
		Gateway:        m.gateway.Name(),
		Description:    description,
		BillingAddress: req.Address,
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		TransactionID:  result.TransactionID,
		PaymentID:      result.PaymentID,
		GatewayMeta:    result.Meta,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = m.paymentRepo.Save(ctx, session); err != nil {
		m.logger.Error(ctx, "->paymentRepo.Save", zap.String("order_number", orderNumber), zap.Error(err))
		return structs.PaymentSession{}, err
	}

	m.logger.Info(ctx, "payment session created",
		zap.String("order_number", orderNumber),
		zap.Int64("user_id", req.UserID),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("currency", req.Currency),
		zap.String("gateway", session.Gateway),
	)
	return session, nil
}

func (m *manager) UpdateStatus(ctx context.Context, orderNumber string, upd structs.StatusUpdate) (structs.PaymentSession, bool, error) {
	if !upd.Status.IsTerminal() {
		// pending is where every session starts, nothing to apply
		session, err := m.paymentRepo.FindByOrderNumber(ctx, orderNumber)
		return session, false, err
	}

	session, changed, err := m.paymentRepo.UpdateStatus(ctx, orderNumber, upd, m.now())
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			m.logger.Error(ctx, "->paymentRepo.UpdateStatus", zap.String("order_number", orderNumber), zap.Error(err))
		}
		return structs.PaymentSession{}, false, err
	}

	if changed {
		m.logger.Info(ctx, "payment status updated", zap.String("order_number", orderNumber), zap.String("status", string(session.Status)))
	} else {
		m.logger.Debug(ctx, "payment status already final", zap.String("order_number", orderNumber), zap.String("status", string(session.Status)))
	}
	return session, changed, nil
}

func (m *manager) FindByOrderNumber(ctx context.Context, orderNumber string) (structs.PaymentSession, error) {
	return m.paymentRepo.FindByOrderNumber(ctx, orderNumber)
}

func (m *manager) FindByInvoiceID(ctx context.Context, invoiceID string) (structs.PaymentSession, error) {
	return m.paymentRepo.FindByInvoiceID(ctx, invoiceID)
}

func (m *manager) FindByPaymentID(ctx context.Context, paymentID string) (structs.PaymentSession, error) {
	return m.paymentRepo.FindByPaymentID(ctx, paymentID)
}

func (m *manager) FindByTransactionID(ctx context.Context, transactionID string) (structs.PaymentSession, error) {
	return m.paymentRepo.FindByTransactionID(ctx, transactionID)
}

func (m *manager) FindActiveByUser(ctx context.Context, userID int64) (structs.PaymentSession, error) {
	return m.paymentRepo.FindActiveByUser(ctx, userID)
}

func (m *manager) FindLatestByUser(ctx context.Context, userID int64) (structs.PaymentSession, error) {
	return m.paymentRepo.FindLatestByUser(ctx, userID)
}

func (m *manager) FindMostRecentPending(ctx context.Context) (structs.PaymentSession, error) {
	return m.paymentRepo.FindMostRecentPending(ctx)
}

func (m *manager) CountByStatus(ctx context.Context) (map[structs.PaymentStatus]int64, error) {
	return m.paymentRepo.CountByStatus(ctx)
}
