package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	logIDKey    = "logID"
	durationKey = "duration"
	userKey     = "user_id"
	orderKey    = "order_number"
)

type logCtxKey struct{}

type logContext struct {
	LogID         LogID
	StartTime     time.Time
	OperationName string
	UserID        int64
	OrderNumber   string
}

func fromContext(ctx context.Context) *logContext {
	if ctx == nil {
		return nil
	}
	lgCtx, _ := ctx.Value(logCtxKey{}).(*logContext)
	return lgCtx
}

func (lgCtx *logContext) fields() []zap.Field {
	if lgCtx == nil {
		return nil
	}

	//nolint:mnd // guide go slice cap
	attrs := make([]zap.Field, 0, 3)
	attrs = append(attrs, zap.String(logIDKey, lgCtx.LogID.String()))
	if lgCtx.UserID != 0 {
		attrs = append(attrs, zap.Int64(userKey, lgCtx.UserID))
	}
	if lgCtx.OrderNumber != "" {
		attrs = append(attrs, zap.String(orderKey, lgCtx.OrderNumber))
	}
	return attrs
}

// with stores a modified copy so contexts already handed to other goroutines keep their fields.
func with(ctx context.Context, fn func(*logContext)) context.Context {
	lgCtx := fromContext(ctx)
	if lgCtx == nil {
		return ctx
	}
	cp := *lgCtx
	fn(&cp)
	return context.WithValue(ctx, logCtxKey{}, &cp)
}

// WithUser adds the telegram user id to every later line logged with ctx.
// ctx must come from Logger.Context.
func WithUser(ctx context.Context, userID int64) context.Context {
	return with(ctx, func(l *logContext) { l.UserID = userID })
}

// WithOrder adds the order number to every later line logged with ctx.
func WithOrder(ctx context.Context, orderNumber string) context.Context {
	return with(ctx, func(l *logContext) { l.OrderNumber = orderNumber })
}

// ID returns the log id carried by ctx, or "" when there is none.
func ID(ctx context.Context) string {
	if lgCtx := fromContext(ctx); lgCtx != nil {
		return lgCtx.LogID.String()
	}
	return ""
}
