package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tgpay/internal/structs"
	"tgpay/pkg/repository/interfaces"
)

type productRepo struct {
	mu       sync.RWMutex
	products map[string]structs.Product
}

func NewProductRepo() interfaces.ProductRepo {
	return &productRepo{products: map[string]structs.Product{}}
}

func (r *productRepo) Create(_ context.Context, id string, req structs.CreateProduct) (structs.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; ok {
		return structs.Product{}, structs.ErrUniqueViolation
	}
	now := time.Now()
	p := structs.Product{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		CreatedBy:   req.CreatedBy,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.products[id] = p
	return p, nil
}

func (r *productRepo) FindByID(_ context.Context, id string) (structs.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return structs.Product{}, structs.ErrNotFound
	}
	return p, nil
}

func (r *productRepo) FindByTitle(_ context.Context, title string) (structs.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	title = strings.TrimSpace(title)
	for _, p := range r.sortedLocked() {
		if p.IsActive && p.Title == title {
			return p, nil
		}
	}
	return structs.Product{}, structs.ErrNotFound
}

func (r *productRepo) FindAll(_ context.Context, activeOnly bool) ([]structs.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []structs.Product
	for _, p := range r.sortedLocked() {
		if activeOnly && !p.IsActive {
			continue
		}
		list = append(list, p)
	}
	return list, nil
}

func (r *productRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return structs.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	r.products[id] = p
	return nil
}

func (r *productRepo) Update(_ context.Context, id string, patch structs.PatchProduct) (structs.Product, error) {
	if patch.Empty() {
		return structs.Product{}, structs.ErrBadRequest
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return structs.Product{}, structs.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		p.Currency = *patch.Currency
	}
	p.UpdatedAt = time.Now()
	r.products[id] = p
	return p, nil
}

// newest first, like the postgres ORDER BY created_at DESC
func (r *productRepo) sortedLocked() []structs.Product {
	list := make([]structs.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}
