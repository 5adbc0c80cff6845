package ctxman

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tgpay/internal/structs"
)

func TestAccess(t *testing.T) {
	_, ok := Access(context.Background())
	assert.False(t, ok)

	ctx := WithAccess(context.Background(), structs.Access{UserID: 3, IsAdmin: true})
	a, ok := Access(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), a.UserID)
	assert.True(t, a.IsAdmin)
	assert.False(t, a.IsMaster)
}

func TestGetWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), AccessKey{}, "admin")
	_, ok := Get[structs.Access](ctx, AccessKey{})
	assert.False(t, ok)
}
