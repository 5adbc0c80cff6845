package tgrouter

type routeKind uint8

const (
	plainRoute routeKind = iota
	// conversationRoute filters on the sender's conversation, which is loaded before matching.
	conversationRoute
)

type Route struct {
	match   Filter[any]
	handler Handler
	kind    routeKind
}

func newRoute[F FilterType](filter Filter[F], handler Handler) Route {
	r := Route{
		match:   Filter[any](filter),
		handler: handler,
	}
	if _, ok := any(filter).(Filter[StateFilter]); ok {
		r.kind = conversationRoute
	}
	return r
}
