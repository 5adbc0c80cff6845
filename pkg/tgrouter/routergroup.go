package tgrouter

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"tgpay/pkg/logger"
	"tgpay/pkg/tgrouter/interfaces"
)

const abortIndex int8 = math.MaxInt8 >> 1

func (group *RouterGroup) combineMiddlewares(middlewares ...Middleware) []Middleware {
	finalSize := len(group.middlewares) + len(middlewares)
	assert1(finalSize < int(abortIndex), "too many middlewares")
	mergedMws := make([]Middleware, finalSize)
	copy(mergedMws, group.middlewares)
	copy(mergedMws[len(group.middlewares):], middlewares)
	return mergedMws
}

func (group *RouterGroup) Use(middleware ...Middleware) {
	group.middlewares = append(group.middlewares, middleware...)
}

func On[F FilterType](group *RouterGroup, filter Filter[F], handler Handler, mws ...Middleware) {
	mws = group.combineMiddlewares(mws...)
	// wrap backwards so middlewares run in the order they were added
	for _, mw := range slices.Backward(mws) {
		handler = mw(handler)
	}

	group.addRoute(newRoute(filter, handler))
}

// State preloads the conversation kind before conversation routes are matched.
func (group *RouterGroup) State(c *Ctx) {
	kind, err := group.stateDB.Kind(c.Context, c.UserID())
	if err != nil {
		group.logger.Error(c.Context, "failed to get state", zap.Int64("user_id", c.UserID()), zap.Error(err))
		c.SetState("")
		return
	}
	c.SetState(kind)
}

func (group *RouterGroup) addRoute(route Route) {
	if !group.root {
		group.parent.addRoute(route)
	} else {
		group.routes = append(group.routes, route)
	}
}

type RouterGroup struct {
	parent      *RouterGroup
	routes      []Route
	root        bool
	middlewares []Middleware
	stateDB     interfaces.State
	logger      logger.Logger
}

func (group *RouterGroup) Group() *RouterGroup {
	return &RouterGroup{
		parent:      group,
		root:        false,
		logger:      group.logger,
		stateDB:     group.stateDB,
		middlewares: slices.Clone(group.middlewares),
	}
}
