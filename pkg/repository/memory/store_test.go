package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/structs"
	"tgpay/pkg/cache"
	"tgpay/pkg/logger"
)

func TestConversationStore(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(cache.New(cache.Params{Logger: logger.NewNop()}))

	_, err := store.Get(ctx, 7)
	assert.ErrorIs(t, err, structs.ErrNotFound)
	kind, err := store.Kind(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, kind)

	require.NoError(t, store.Set(ctx, structs.Conversation{
		Kind:   structs.KindAddress,
		UserID: 7,
		ChatID: 70,
		Address: &structs.AddressCollection{
			Step:     structs.StepCity,
			Amount:   decimal.RequireFromString("10.50"),
			Currency: "EUR",
			Address:  structs.Address{Country: "DE", State: "BE"},
		},
	}))

	conv, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, structs.StepCity, conv.Address.Step)
	assert.True(t, conv.Address.Amount.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, "BE", conv.Address.Address.State)

	// last write wins, across kinds too
	require.NoError(t, store.Set(ctx, structs.Conversation{
		Kind:            structs.KindProductCreation,
		UserID:          7,
		ChatID:          70,
		ProductCreation: &structs.ProductCreation{Step: structs.StepName},
	}))
	kind, err = store.Kind(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, string(structs.KindProductCreation), kind)

	counts, err := store.CountByKind(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[structs.ConversationKind]int64{structs.KindProductCreation: 1}, counts)

	require.NoError(t, store.Delete(ctx, 7))
	_, err = store.Get(ctx, 7)
	assert.ErrorIs(t, err, structs.ErrNotFound)
}

func TestProductRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo()

	p, err := repo.Create(ctx, "p1", structs.CreateProduct{
		Title:       "Premium Plan",
		Description: "One year",
		Amount:      decimal.RequireFromString("99.99"),
		Currency:    "USD",
		CreatedBy:   5,
	})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	byTitle, err := repo.FindByTitle(ctx, "Premium Plan")
	require.NoError(t, err)
	assert.Equal(t, "p1", byTitle.ID)
	_, err = repo.FindByTitle(ctx, "premium plan")
	assert.ErrorIs(t, err, structs.ErrNotFound)

	title := "Basic Plan"
	updated, err := repo.Update(ctx, "p1", structs.PatchProduct{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Basic Plan", updated.Title)
	assert.Equal(t, "One year", updated.Description)

	_, err = repo.Update(ctx, "p1", structs.PatchProduct{})
	assert.ErrorIs(t, err, structs.ErrBadRequest)

	require.NoError(t, repo.SoftDelete(ctx, "p1"))
	assert.ErrorIs(t, repo.SoftDelete(ctx, "p1"), structs.ErrNotFound)

	active, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.FindAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}

func TestAdminRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepo()

	require.NoError(t, repo.Upsert(ctx, structs.Admin{UserID: 1, Role: structs.RoleMasterAdmin}))
	require.NoError(t, repo.Create(ctx, structs.Admin{UserID: 2, Role: structs.RoleAdmin, AddedBy: 1}))
	assert.ErrorIs(t, repo.Create(ctx, structs.Admin{UserID: 2, Role: structs.RoleAdmin}), structs.ErrAlreadyExists)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].UserID)

	require.NoError(t, repo.Delete(ctx, 2))
	assert.ErrorIs(t, repo.Delete(ctx, 2), structs.ErrNotFound)
	_, err = repo.Get(ctx, 2)
	assert.ErrorIs(t, err, structs.ErrNotFound)
}
