package ctxman

import (
	"context"

	"tgpay/internal/structs"
)

type (
	// AccessKey holds the caller's structs.Access, set by the bot middleware.
	AccessKey struct{}
)

func Get[T any](ctx context.Context, key any) (T, bool) {
	var result T

	value := ctx.Value(key)
	if value == nil {
		return result, false
	}

	result, ok := value.(T)
	return result, ok
}

func WithAccess(ctx context.Context, access structs.Access) context.Context {
	return context.WithValue(ctx, AccessKey{}, access)
}

// Access reports the caller's roles. ok is false when they could not be loaded.
func Access(ctx context.Context) (structs.Access, bool) {
	return Get[structs.Access](ctx, AccessKey{})
}
