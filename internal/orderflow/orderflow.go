package orderflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/internal/texts"
	"tgpay/internal/validator"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/utils"
)

var Module = fx.Provide(New)

// SessionCreator is the payment side of a finished address collection.
type SessionCreator interface {
	CreateSession(ctx context.Context, req structs.CreateSessionRequest) (structs.PaymentSession, error)
}

type Service interface {
	// Start opens an address collection for a direct payment or a product purchase, replacing any
	// conversation the user had.
	Start(ctx context.Context, req StartRequest) (structs.Reply, error)
	// Handle feeds one answer to the user's address collection. It returns structs.ErrNoActiveProcess
	// when the user has none.
	Handle(ctx context.Context, userID int64, text string) (structs.Reply, error)
}

type StartRequest struct {
	UserID       int64
	ChatID       int64
	CustomerName string
	Amount       decimal.Decimal
	Currency     string
	Product      *structs.Product
}

type Params struct {
	fx.In
	Logger   logger.Logger
	Store    interfaces.ConversationStore
	Sessions SessionCreator
}

type service struct {
	logger   logger.Logger
	store    interfaces.ConversationStore
	sessions SessionCreator
}

func New(p Params) Service {
	return &service{
		logger:   p.Logger,
		store:    p.Store,
		sessions: p.Sessions,
	}
}

type step struct {
	id       structs.AddressStep
	title    texts.TextKey
	ask      texts.TextKey
	label    texts.TextKey
	validate func(string) error
	set      func(*structs.Address, string)
}

func fieldRule(name texts.TextKey) func(string) error {
	return func(raw string) error {
		return validator.ValidateAddressField(raw, texts.Get(name))
	}
}

var steps = []step{
	{
		id: structs.StepCountry, title: texts.StepCountry, ask: texts.AskCountry, label: texts.LabelCountry,
		validate: fieldRule(texts.FieldCountry),
		set:      func(a *structs.Address, v string) { a.Country = v },
	},
	{
		id: structs.StepState, title: texts.StepState, ask: texts.AskState, label: texts.LabelState,
		validate: fieldRule(texts.FieldState),
		set:      func(a *structs.Address, v string) { a.State = v },
	},
	{
		id: structs.StepCity, title: texts.StepCity, ask: texts.AskCity, label: texts.LabelCity,
		validate: fieldRule(texts.FieldCity),
		set:      func(a *structs.Address, v string) { a.City = v },
	},
	{
		id: structs.StepAddress, title: texts.StepAddress, ask: texts.AskAddress, label: texts.LabelAddress,
		validate: fieldRule(texts.FieldStreet),
		set:      func(a *structs.Address, v string) { a.Address = v },
	},
	{
		id: structs.StepZip, title: texts.StepZip, ask: texts.AskZip, label: texts.LabelZip,
		validate: validator.ValidateZip,
		set:      func(a *structs.Address, v string) { a.Zip = v },
	},
	{
		id: structs.StepPhone, title: texts.StepPhone, ask: texts.AskPhone, label: texts.LabelPhone,
		validate: validator.ValidatePhone,
		set:      func(a *structs.Address, v string) { a.Phone = validator.NormalizePhone(v) },
	},
}

func stepIndex(id structs.AddressStep) int {
	for i, s := range steps {
		if s.id == id {
			return i
		}
	}
	return -1
}

func header(i int) string {
	return texts.Format(texts.AddressStepHeader, i+1, len(steps), texts.Get(steps[i].title), texts.Get(steps[i].ask))
}

func (s *service) Start(ctx context.Context, req StartRequest) (structs.Reply, error) {
	conv := structs.Conversation{
		Kind:   structs.KindAddress,
		UserID: req.UserID,
		ChatID: req.ChatID,
		Address: &structs.AddressCollection{
			Step:         steps[0].id,
			Amount:       req.Amount,
			Currency:     validator.NormalizeCurrency(req.Currency),
			CustomerName: req.CustomerName,
		},
		UpdatedAt: time.Now(),
	}

	var intro string
	if p := req.Product; p != nil {
		conv.Address.Amount = p.Amount
		conv.Address.Currency = p.Currency
		conv.Address.ProductID = p.ID
		conv.Address.ProductName = p.Title
		conv.Address.ProductDescription = p.Description
		intro = texts.Format(texts.ProductSelected, p.Title, utils.FAmount(p.Amount, p.Currency), p.Description)
	} else {
		intro = texts.Format(texts.DirectPayment, utils.FAmount(conv.Address.Amount, conv.Address.Currency))
	}

	replaced, err := s.replace(ctx, conv)
	if err != nil {
		return structs.Reply{}, err
	}

	s.logger.Info(ctx, "address collection started",
		zap.Int64("user_id", req.UserID),
		zap.String("amount", conv.Address.Amount.String()),
		zap.String("currency", conv.Address.Currency),
		zap.String("product_id", conv.Address.ProductID),
	)

	text := intro + texts.Get(texts.AddressIntro) + header(0)
	if replaced {
		text = texts.Get(texts.FlowReplaced) + text
	}
	return structs.Reply{Text: text}, nil
}

// replace stores conv and reports whether another conversation was dropped for it.
func (s *service) replace(ctx context.Context, conv structs.Conversation) (bool, error) {
	kind, err := s.store.Kind(ctx, conv.UserID)
	if err != nil {
		s.logger.Error(ctx, "->store.Kind", zap.Error(err))
		return false, err
	}
	if err = s.store.Set(ctx, conv); err != nil {
		s.logger.Error(ctx, "->store.Set", zap.Error(err))
		return false, err
	}
	if kind != "" {
		s.logger.Info(ctx, "conversation replaced", zap.Int64("user_id", conv.UserID), zap.String("previous", kind))
	}
	return kind != "", nil
}

func (s *service) Handle(ctx context.Context, userID int64, text string) (structs.Reply, error) {
	conv, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return structs.Reply{}, structs.ErrNoActiveProcess
		}
		s.logger.Error(ctx, "->store.Get", zap.Error(err))
		return structs.Reply{}, err
	}
	if conv.Kind != structs.KindAddress || conv.Address == nil {
		return structs.Reply{}, structs.ErrNoActiveProcess
	}

	collection := conv.Address
	i := stepIndex(collection.Step)
	if i < 0 {
		s.logger.Warn(ctx, "unknown address step", zap.Int64("user_id", userID), zap.String("step", string(collection.Step)))
		if err := s.store.Delete(ctx, userID); err != nil {
			s.logger.Error(ctx, "->store.Delete", zap.Error(err))
		}
		return structs.Reply{Text: texts.Get(texts.AddressInvalidStep)}, nil
	}

	current := steps[i]
	if err := current.validate(text); err != nil {
		return structs.Reply{Text: texts.Format(texts.AddressFieldError, err.Error(), retryPrompt(current))}, nil
	}

	value := strings.TrimSpace(text)
	current.set(&collection.Address, value)

	if i == len(steps)-1 {
		return s.complete(ctx, conv)
	}

	collection.Step = steps[i+1].id
	conv.UpdatedAt = time.Now()
	if err := s.store.Set(ctx, conv); err != nil {
		s.logger.Error(ctx, "->store.Set", zap.Error(err))
		return structs.Reply{}, err
	}

	return structs.Reply{
		Text: texts.Format(texts.AddressAccepted, texts.Get(current.label), value) + header(i+1),
	}, nil
}

// retryPrompt drops the example hint the first prompt of a step carries.
func retryPrompt(st step) string {
	ask := texts.Get(st.ask)
	if idx := strings.Index(ask, " (e.g."); idx > 0 {
		return ask[:idx] + ":"
	}
	return ask
}

// complete hands the collected data to the session manager. The conversation is gone afterwards
// whatever the outcome; a failed payment has to be restarted from /pay or /buy.
func (s *service) complete(ctx context.Context, conv structs.Conversation) (structs.Reply, error) {
	collection := conv.Address
	if err := s.store.Delete(ctx, conv.UserID); err != nil {
		s.logger.Error(ctx, "->store.Delete", zap.Error(err))
	}

	address := collection.Address
	s.logger.Info(ctx, "address collection completed", zap.Int64("user_id", conv.UserID))

	session, err := s.sessions.CreateSession(ctx, structs.CreateSessionRequest{
		UserID:             conv.UserID,
		ChatID:             conv.ChatID,
		CustomerName:       collection.CustomerName,
		Amount:             collection.Amount,
		Currency:           collection.Currency,
		Address:            &address,
		ProductID:          collection.ProductID,
		ProductName:        collection.ProductName,
		ProductDescription: collection.ProductDescription,
	})
	if err != nil {
		s.logger.Error(ctx, "->sessions.CreateSession", zap.Int64("user_id", conv.UserID), zap.Error(err))
		return structs.Reply{Text: texts.Get(texts.PaymentFailed)}, nil
	}

	return structs.Reply{
		Text:        CreatedMessage(session),
		CheckoutURL: session.CheckoutURL,
	}, nil
}

// CreatedMessage is the confirmation shown once the checkout page exists.
func CreatedMessage(session structs.PaymentSession) string {
	var b strings.Builder
	b.WriteString(texts.Format(texts.PaymentCreated, utils.FAmount(session.Amount, session.Currency), session.OrderNumber))
	if a := session.BillingAddress; a != nil {
		b.WriteString(texts.Format(texts.PaymentAddress, a.Address, a.City, a.State, a.Zip, a.Country, a.Phone))
	}
	b.WriteString(texts.Format(texts.PaymentLink, session.CheckoutURL))
	return b.String()
}
