package productflow

import (
	"context"
	"errors"
	"strings"
	"time"

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

const doneChoice = "done"

// FieldChoices are the answers the modification loop accepts, in menu order.
var FieldChoices = []string{
	string(structs.StepName),
	string(structs.StepDescription),
	string(structs.StepPrice),
	string(structs.StepCurrency),
	doneChoice,
}

// Products is the catalog side of the admin flows.
type Products interface {
	Create(ctx context.Context, req structs.CreateProduct) (structs.Product, error)
	Update(ctx context.Context, id string, patch structs.PatchProduct) (structs.Product, error)
}

type Service interface {
	StartCreation(ctx context.Context, userID, chatID int64) (structs.Reply, error)
	// StartModification opens the edit loop for p. Access is checked by the caller.
	StartModification(ctx context.Context, userID, chatID int64, p structs.Product) (structs.Reply, error)
	// Handle routes one answer to the user's creation or modification flow. It returns
	// structs.ErrNoActiveProcess when the user has neither.
	Handle(ctx context.Context, userID int64, text string) (structs.Reply, error)
}

type Params struct {
	fx.In
	Logger   logger.Logger
	Store    interfaces.ConversationStore
	Products Products
}

type service struct {
	logger   logger.Logger
	store    interfaces.ConversationStore
	products Products
}

func New(p Params) Service {
	return &service{
		logger:   p.Logger,
		store:    p.Store,
		products: p.Products,
	}
}

func (s *service) StartCreation(ctx context.Context, userID, chatID int64) (structs.Reply, error) {
	replaced, err := s.replace(ctx, structs.Conversation{
		Kind:            structs.KindProductCreation,
		UserID:          userID,
		ChatID:          chatID,
		ProductCreation: &structs.ProductCreation{Step: structs.StepName},
		UpdatedAt:       time.Now(),
	})
	if err != nil {
		return structs.Reply{}, err
	}
	return structs.Reply{Text: withNotice(replaced, texts.Get(texts.AddProductStart))}, nil
}

func (s *service) StartModification(ctx context.Context, userID, chatID int64, p structs.Product) (structs.Reply, error) {
	replaced, err := s.replace(ctx, structs.Conversation{
		Kind:   structs.KindProductModification,
		UserID: userID,
		ChatID: chatID,
		ProductModification: &structs.ProductModification{
			Step:        structs.StepFieldSelect,
			ProductID:   p.ID,
			ProductName: p.Title,
		},
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return structs.Reply{}, err
	}

	text := texts.Format(texts.ModifyStart, p.Title, utils.FAmount(p.Amount, p.Currency), p.Description) + texts.Get(texts.ModifyMenu)
	return structs.Reply{Text: withNotice(replaced, text), Choices: FieldChoices}, nil
}

func withNotice(replaced bool, text string) string {
	if replaced {
		return texts.Get(texts.FlowReplaced) + text
	}
	return text
}

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
	s.logger.Info(ctx, "product flow started", zap.Int64("user_id", conv.UserID), zap.String("kind", string(conv.Kind)), zap.String("previous", kind))
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

	switch {
	case conv.Kind == structs.KindProductCreation && conv.ProductCreation != nil:
		return s.handleCreation(ctx, conv, text)
	case conv.Kind == structs.KindProductModification && conv.ProductModification != nil:
		return s.handleModification(ctx, conv, text)
	default:
		return structs.Reply{}, structs.ErrNoActiveProcess
	}
}

func (s *service) save(ctx context.Context, conv structs.Conversation) error {
	conv.UpdatedAt = time.Now()
	if err := s.store.Set(ctx, conv); err != nil {
		s.logger.Error(ctx, "->store.Set", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) drop(ctx context.Context, userID int64) {
	if err := s.store.Delete(ctx, userID); err != nil {
		s.logger.Error(ctx, "->store.Delete", zap.Error(err))
	}
}

func (s *service) handleCreation(ctx context.Context, conv structs.Conversation, text string) (structs.Reply, error) {
	pc := conv.ProductCreation
	value := strings.TrimSpace(text)

	switch pc.Step {
	case structs.StepName:
		if err := validator.ValidateProductName(value); err != nil {
			return structs.Reply{Text: texts.Format(texts.ProductNameError, err.Error())}, nil
		}
		pc.Name = value
		pc.Step = structs.StepDescription
		if err := s.save(ctx, conv); err != nil {
			return structs.Reply{}, err
		}
		return structs.Reply{Text: texts.Format(texts.ProductNameSaved, value)}, nil

	case structs.StepDescription:
		if err := validator.ValidateProductDescription(value); err != nil {
			return structs.Reply{Text: texts.Format(texts.ProductDescError, err.Error())}, nil
		}
		pc.Description = value
		pc.Step = structs.StepPrice
		if err := s.save(ctx, conv); err != nil {
			return structs.Reply{}, err
		}
		return structs.Reply{Text: texts.Format(texts.ProductDescSaved, value)}, nil

	case structs.StepPrice:
		price, ok := validator.ParseAmount(value)
		if !ok {
			return structs.Reply{Text: texts.Get(texts.ProductPriceError)}, nil
		}
		pc.Price = price
		pc.Step = structs.StepCurrency
		if err := s.save(ctx, conv); err != nil {
			return structs.Reply{}, err
		}
		return structs.Reply{Text: texts.Format(texts.ProductPriceSaved, utils.FCurrency(price))}, nil

	case structs.StepCurrency:
		if !validator.ValidateCurrency(value) {
			return structs.Reply{Text: texts.Get(texts.ProductCurrencyError)}, nil
		}
		pc.Currency = validator.NormalizeCurrency(value)

		product, err := s.products.Create(ctx, structs.CreateProduct{
			Title:       pc.Name,
			Description: pc.Description,
			Amount:      pc.Price,
			Currency:    pc.Currency,
			CreatedBy:   conv.UserID,
		})
		if err != nil {
			// conversation stays on the currency step so the admin can resend it
			s.logger.Error(ctx, "->products.Create", zap.Error(err))
			return structs.Reply{Text: texts.Get(texts.ProductCreateFailed)}, nil
		}
		s.drop(ctx, conv.UserID)

		s.logger.Info(ctx, "product created", zap.String("product_id", product.ID), zap.Int64("created_by", conv.UserID))
		return structs.Reply{Text: texts.Format(texts.ProductCreated,
			product.ID, product.Title, utils.FAmount(product.Amount, product.Currency), product.Description, product.ID)}, nil

	default:
		s.drop(ctx, conv.UserID)
		return structs.Reply{Text: texts.Get(texts.ProductInvalidStep)}, nil
	}
}

var askNew = map[structs.ProductStep]texts.TextKey{
	structs.StepName:        texts.AskNewName,
	structs.StepDescription: texts.AskNewDescription,
	structs.StepPrice:       texts.AskNewPrice,
	structs.StepCurrency:    texts.AskNewCurrency,
}

func (s *service) handleModification(ctx context.Context, conv structs.Conversation, text string) (structs.Reply, error) {
	pm := conv.ProductModification
	value := strings.TrimSpace(text)

	switch pm.Step {
	case structs.StepFieldSelect:
		choice := strings.ToLower(value)
		if choice == doneChoice {
			return s.applyEdits(ctx, conv)
		}
		ask, ok := askNew[structs.ProductStep(choice)]
		if !ok {
			return structs.Reply{Text: texts.Get(texts.InvalidFieldChoice), Choices: FieldChoices}, nil
		}
		pm.Step = structs.ProductStep(choice)
		if err := s.save(ctx, conv); err != nil {
			return structs.Reply{}, err
		}
		return structs.Reply{Text: texts.Format(texts.FieldSelected, choice, choice, texts.Get(ask))}, nil

	case structs.StepName:
		if err := validator.ValidateProductName(value); err != nil {
			return structs.Reply{Text: texts.Format(texts.ProductNameError, err.Error())}, nil
		}
		pm.Edits.Title = &value
		return s.nextField(ctx, conv, value)

	case structs.StepDescription:
		if err := validator.ValidateProductDescription(value); err != nil {
			return structs.Reply{Text: texts.Format(texts.ProductDescError, err.Error())}, nil
		}
		pm.Edits.Description = &value
		return s.nextField(ctx, conv, value)

	case structs.StepPrice:
		price, ok := validator.ParseAmount(value)
		if !ok {
			return structs.Reply{Text: texts.Get(texts.ProductPriceError)}, nil
		}
		pm.Edits.Amount = &price
		return s.nextField(ctx, conv, utils.FCurrency(price))

	case structs.StepCurrency:
		if !validator.ValidateCurrency(value) {
			return structs.Reply{Text: texts.Get(texts.ProductCurrencyError)}, nil
		}
		currency := validator.NormalizeCurrency(value)
		pm.Edits.Currency = &currency
		return s.nextField(ctx, conv, currency)

	default:
		s.drop(ctx, conv.UserID)
		return structs.Reply{Text: texts.Get(texts.ModifyInvalidStep)}, nil
	}
}

// nextField records the edit and goes back to the field menu.
func (s *service) nextField(ctx context.Context, conv structs.Conversation, shown string) (structs.Reply, error) {
	field := string(conv.ProductModification.Step)
	conv.ProductModification.Step = structs.StepFieldSelect
	if err := s.save(ctx, conv); err != nil {
		return structs.Reply{}, err
	}
	return structs.Reply{
		Text:    texts.Format(texts.NewValueSaved, field, shown) + texts.Get(texts.ModifyNext),
		Choices: FieldChoices,
	}, nil
}

// applyEdits writes every pending edit in one update.
func (s *service) applyEdits(ctx context.Context, conv structs.Conversation) (structs.Reply, error) {
	pm := conv.ProductModification
	if pm.Edits.Empty() {
		s.drop(ctx, conv.UserID)
		return structs.Reply{Text: texts.Get(texts.NoModifications)}, nil
	}

	product, err := s.products.Update(ctx, pm.ProductID, pm.Edits)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			s.drop(ctx, conv.UserID)
			return structs.Reply{Text: texts.Get(texts.ProductNotFound)}, nil
		}
		s.logger.Error(ctx, "->products.Update", zap.String("product_id", pm.ProductID), zap.Error(err))
		return structs.Reply{Text: texts.Get(texts.ModifyFailed), Choices: FieldChoices}, nil
	}
	s.drop(ctx, conv.UserID)

	s.logger.Info(ctx, "product modified", zap.String("product_id", product.ID), zap.Int64("user_id", conv.UserID))
	return structs.Reply{Text: texts.Format(texts.ProductModified,
		product.Title, utils.FAmount(product.Amount, product.Currency), product.Description,
		product.UpdatedAt.Format(time.DateTime))}, nil
}
