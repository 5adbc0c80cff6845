package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/internal/validator"
	"tgpay/pkg/cache"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/utils"
)

var (
	Module = fx.Provide(New)
)

const (
	activeListKey = "products.active"
	activeListTTL = 5 * time.Minute
)

type (
	Params struct {
		fx.In
		ProductRepo interfaces.ProductRepo
		Cache       cache.ICache
		Logger      logger.Logger
	}

	Service interface {
		Create(ctx context.Context, req structs.CreateProduct) (structs.Product, error)
		GetByID(ctx context.Context, id string) (structs.Product, error)
		// GetActive resolves a /buy argument: an id first, then an exact title.
		GetActive(ctx context.Context, idOrTitle string) (structs.Product, error)
		GetList(ctx context.Context, activeOnly bool) ([]structs.Product, error)
		// DeleteByTitle soft-deletes the active product named exactly title.
		DeleteByTitle(ctx context.Context, title string) (structs.Product, error)
		Update(ctx context.Context, id string, patch structs.PatchProduct) (structs.Product, error)
		// CanModify reports whether the caller created p or is the master admin.
		CanModify(access structs.Access, p structs.Product) bool
	}
	service struct {
		productRepo interfaces.ProductRepo
		cache       cache.ICache
		logger      logger.Logger
	}
)

func New(p Params) Service {
	return &service{
		productRepo: p.ProductRepo,
		cache:       p.Cache,
		logger:      p.Logger,
	}
}

func (s service) Create(ctx context.Context, req structs.CreateProduct) (structs.Product, error) {
	if err := validator.ValidateProductName(req.Title); err != nil {
		return structs.Product{}, err
	}
	if err := validator.ValidateProductDescription(req.Description); err != nil {
		return structs.Product{}, err
	}
	if !validator.AmountInRange(req.Amount) {
		return structs.Product{}, structs.NewValidationError("amount", "amount out of range")
	}
	if !validator.ValidateCurrency(req.Currency) {
		return structs.Product{}, structs.NewValidationError("currency", "unsupported currency")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Currency = validator.NormalizeCurrency(req.Currency)

	product, err := s.productRepo.Create(ctx, utils.GenKSUID(), req)
	if err != nil {
		s.logger.Error(ctx, "->productRepo.Create", zap.Error(err))
		return structs.Product{}, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s service) GetByID(ctx context.Context, id string) (structs.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			s.logger.Error(ctx, "->productRepo.FindByID", zap.Error(err))
		}
		return structs.Product{}, err
	}
	return product, nil
}

func (s service) GetActive(ctx context.Context, idOrTitle string) (structs.Product, error) {
	key := strings.TrimSpace(idOrTitle)
	if key == "" {
		return structs.Product{}, structs.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, key)
	if err == nil && product.IsActive {
		return product, nil
	}
	if err != nil && !errors.Is(err, structs.ErrNotFound) {
		s.logger.Error(ctx, "->productRepo.FindByID", zap.Error(err))
		return structs.Product{}, err
	}

	product, err = s.productRepo.FindByTitle(ctx, key)
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			s.logger.Error(ctx, "->productRepo.FindByTitle", zap.Error(err))
		}
		return structs.Product{}, err
	}
	return product, nil
}

func (s service) GetList(ctx context.Context, activeOnly bool) ([]structs.Product, error) {
	if activeOnly {
		var cached []structs.Product
		if err := s.cache.GetObj(activeListKey, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.productRepo.FindAll(ctx, activeOnly)
	if err != nil {
		s.logger.Error(ctx, "->productRepo.FindAll", zap.Error(err))
		return nil, err
	}

	if activeOnly {
		if err := s.cache.SaveObj(activeListKey, products, activeListTTL); err != nil {
			s.logger.Warn(ctx, "->cache.SaveObj", zap.Error(err))
		}
	}
	return products, nil
}

func (s service) DeleteByTitle(ctx context.Context, title string) (structs.Product, error) {
	product, err := s.productRepo.FindByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			s.logger.Error(ctx, "->productRepo.FindByTitle", zap.Error(err))
		}
		return structs.Product{}, err
	}

	if err = s.productRepo.SoftDelete(ctx, product.ID); err != nil {
		s.logger.Error(ctx, "->productRepo.SoftDelete", zap.Error(err))
		return structs.Product{}, err
	}
	s.invalidate(ctx)

	product.IsActive = false
	return product, nil
}

func (s service) Update(ctx context.Context, id string, patch structs.PatchProduct) (structs.Product, error) {
	if patch.Empty() {
		return structs.Product{}, structs.ErrBadRequest
	}
	if patch.Currency != nil {
		currency := validator.NormalizeCurrency(*patch.Currency)
		patch.Currency = &currency
	}

	product, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, structs.ErrNotFound) {
			s.logger.Error(ctx, "->productRepo.Update", zap.Error(err))
		}
		return structs.Product{}, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s service) CanModify(access structs.Access, p structs.Product) bool {
	return access.IsMaster || (access.IsAdmin && p.CreatedBy == access.UserID)
}

func (s service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(activeListKey); err != nil && !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn(ctx, "->cache.Delete", zap.Error(err))
	}
}
