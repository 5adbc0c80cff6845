package tgrouter

import (
	"context"
	"slices"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"tgpay/pkg/logger"
	"tgpay/pkg/tgrouter/interfaces"
)

var Module = fx.Provide(NewRouterFactory)

type RouterFactory func(*tgbotapi.BotAPI, ...OptFn) *Router

type Router struct {
	bot         *tgbotapi.BotAPI
	poolSize    int
	pollTimeout int
	logger      logger.Logger
	stateDB     interfaces.State
	pool        sync.Pool
	wg          sync.WaitGroup
	cancel      context.CancelFunc

	*RouterGroup
}

type Handler func(*Ctx)

func NewRouterFactory(logger logger.Logger) RouterFactory {
	return func(bot *tgbotapi.BotAPI, options ...OptFn) *Router {
		r := &Router{
			bot:         bot,
			logger:      logger,
			poolSize:    _poolSize,
			pollTimeout: _pollTimeout,
		}
		for _, opt := range options {
			opt(r)
		}
		r.pool.New = func() any {
			return &Ctx{bot: bot, stateDB: r.stateDB}
		}
		r.RouterGroup = &RouterGroup{
			root:    true,
			logger:  r.logger,
			stateDB: r.stateDB,
		}
		return r
	}
}

const (
	_poolSize    = 100
	_pollTimeout = 60
	// laneBuffer is how many updates may queue for one worker before polling blocks.
	laneBuffer = 16
)

type OptFn func(r *Router)

func WithPoolSize(psize int) OptFn {
	return func(r *Router) {
		if psize > 0 {
			r.poolSize = psize
		}
	}
}

func WithState(s interfaces.State) OptFn {
	return func(r *Router) {
		r.stateDB = s
	}
}

// Listen starts long polling in the background. Every update of one user goes to the same worker,
// so a user's messages are handled one at a time in the order telegram delivered them.
func (r *Router) Listen() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	updates := r.bot.GetUpdatesChan(tgbotapi.UpdateConfig{
		Timeout:        r.pollTimeout,
		AllowedUpdates: []string{"message", "callback_query"},
	})

	lanes := make([]chan *tgbotapi.Update, r.poolSize)
	for i := range lanes {
		lanes[i] = make(chan *tgbotapi.Update, laneBuffer)
		r.wg.Add(1)
		go func(lane <-chan *tgbotapi.Update) {
			defer r.wg.Done()
			for update := range lane {
				r.serveUpdate(update)
			}
		}(lanes[i])
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// workers drain what is already queued, then exit
		defer func() {
			for _, lane := range lanes {
				close(lane)
			}
		}()

		for {
			select {
			case update, ok := <-updates:
				if !ok {
					r.logger.Warn(ctx, "update channel closed, dispatcher shutting down")
					return
				}
				select {
				case lanes[laneFor(&update, len(lanes))] <- &update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// laneFor picks the worker for update. Updates without a sender are spread at random.
func laneFor(update *tgbotapi.Update, lanes int) int {
	if u := update.SentFrom(); u != nil {
		return int(uint64(u.ID) % uint64(lanes))
	}
	return rand.Intn(lanes)
}

// Shutdown stops polling and waits for in-flight updates until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	r.logger.Info(ctx, "workers shutting down")
	if r.bot != nil {
		r.bot.StopReceivingUpdates()
	}
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info(ctx, "workers stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timeout exceeded, dropping in-flight updates")
		return ctx.Err()
	}
}

func (r *Router) Use(middlewares ...Middleware) {
	r.RouterGroup.Use(middlewares...)
}

// HandleUpdate serves one update on the calling goroutine. Used for webhook delivery and tests.
func (r *Router) HandleUpdate(update *tgbotapi.Update) {
	r.serveUpdate(update)
}

func (r *Router) serveUpdate(update *tgbotapi.Update) {
	c := r.pool.Get().(*Ctx)
	c.update = update
	c.reset()
	c.Context = logger.WithUser(r.logger.Context(c.Context), c.UserID())

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(c.Context, "panic while handling update", zap.Any("panic", rec), zap.Int("update_id", update.UpdateID))
		}
		r.pool.Put(c)
	}()

	r.handle(c)
}

func (r *Router) handle(c *Ctx) {
	for route := range slices.Values(r.routes) {
		if c.state == nil && route.kind == conversationRoute {
			r.State(c)
		}

		if route.match(c) {
			route.handler(c)
			return
		}
	}
}
