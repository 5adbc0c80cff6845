package repository

import (
	"go.uber.org/fx"

	"tgpay/pkg/cache"
	"tgpay/pkg/config"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
	"tgpay/pkg/repository/memory"
	"tgpay/pkg/repository/postgres"
	"tgpay/pkg/repository/state"
)

var Module = fx.Options(
	postgres.Module,
	fx.Provide(NewConversationStore),
)

type StoreParams struct {
	fx.In
	Config config.IConfig
	Logger logger.Logger
	DB     db.Querier
	Cache  cache.ICache
}

// NewConversationStore keeps conversations in postgres unless bot.conversation_store is "memory".
// The memory store loses in-progress dialogues on restart.
func NewConversationStore(p StoreParams) interfaces.ConversationStore {
	if p.Config.GetString("bot.conversation_store") == "memory" {
		return memory.NewConversationStore(p.Cache)
	}
	return state.New(state.Params{Logger: p.Logger, DB: p.DB})
}
