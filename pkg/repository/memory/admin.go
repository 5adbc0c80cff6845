package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tgpay/internal/structs"
	"tgpay/pkg/repository/interfaces"
)

type adminRepo struct {
	mu     sync.RWMutex
	admins map[int64]structs.Admin
}

func NewAdminRepo() interfaces.AdminRepo {
	return &adminRepo{admins: map[int64]structs.Admin{}}
}

func (r *adminRepo) Create(_ context.Context, a structs.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[a.UserID]; ok {
		return structs.ErrAlreadyExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.admins[a.UserID] = a
	return nil
}

func (r *adminRepo) Upsert(_ context.Context, a structs.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.admins[a.UserID]; ok {
		old.Role = a.Role
		if a.Name != "" {
			old.Name = a.Name
		}
		r.admins[a.UserID] = old
		return nil
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.admins[a.UserID] = a
	return nil
}

func (r *adminRepo) Get(_ context.Context, userID int64) (structs.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[userID]
	if !ok {
		return structs.Admin{}, structs.ErrNotFound
	}
	return a, nil
}

func (r *adminRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[userID]; !ok {
		return structs.ErrNotFound
	}
	delete(r.admins, userID)
	return nil
}

func (r *adminRepo) List(_ context.Context) ([]structs.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]structs.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Role != list[j].Role {
			return list[i].Role == structs.RoleMasterAdmin
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
