package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgpay/internal/structs"
	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/memory"
)

const masterID = 1000

func newTestService(t *testing.T) Service {
	t.Helper()
	svc := New(Params{
		Config:    config.NewWith(map[string]interface{}{"admin.master_id": masterID}),
		AdminRepo: memory.NewAdminRepo(),
		Logger:    logger.NewNop(),
	})
	require.NoError(t, svc.SeedMaster(context.Background()))
	return svc
}

func TestAccess(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	access, err := svc.Access(ctx, masterID)
	require.NoError(t, err)
	assert.True(t, access.IsAdmin)
	assert.True(t, access.IsMaster)

	access, err = svc.Access(ctx, 5)
	require.NoError(t, err)
	assert.False(t, access.IsAdmin)
	assert.False(t, access.IsMaster)

	require.NoError(t, svc.Add(ctx, 5, masterID))
	access, err = svc.Access(ctx, 5)
	require.NoError(t, err)
	assert.True(t, access.IsAdmin)
	assert.False(t, access.IsMaster)
}

func TestAddRemove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Add(ctx, 7, masterID))
	assert.ErrorIs(t, svc.Add(ctx, 7, masterID), structs.ErrAlreadyExists)

	admins, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, int64(masterID), admins[0].UserID)
	assert.Equal(t, structs.RoleMasterAdmin, admins[0].Role)

	assert.ErrorIs(t, svc.Remove(ctx, masterID), structs.ErrCannotRemoveMaster)
	require.NoError(t, svc.Remove(ctx, 7))
	assert.ErrorIs(t, svc.Remove(ctx, 7), structs.ErrNotFound)
}

func TestSeedMasterIsRepeatable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.SeedMaster(ctx))
	admins, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}
