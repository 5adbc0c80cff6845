package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/internal/structs"
	"tgpay/pkg/db"
	"tgpay/pkg/logger"
	"tgpay/pkg/repository/interfaces"
)

type Params struct {
	fx.In
	Logger logger.Logger
	DB     db.Querier
}

type state struct {
	logger logger.Logger
	db     db.Querier
}

// New returns the postgres backed conversation store. One row per user; the whole record is kept
// in the data column.
func New(params Params) interfaces.ConversationStore {
	return &state{
		logger: params.Logger,
		db:     params.DB,
	}
}

func (s *state) Get(ctx context.Context, userID int64) (structs.Conversation, error) {
	var (
		conv structs.Conversation
		data []byte
	)
	err := s.db.QueryRow(ctx, "SELECT data FROM conversations WHERE user_id = $1", userID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return structs.Conversation{}, structs.ErrNotFound
		}
		return structs.Conversation{}, fmt.Errorf("repo: failed get conversation: %w", err)
	}
	if err = json.Unmarshal(data, &conv); err != nil {
		s.logger.Error(ctx, "broken conversation record, dropping", zap.Int64("user_id", userID), zap.Error(err))
		if err = s.Delete(ctx, userID); err != nil {
			s.logger.Error(ctx, "->s.Delete", zap.Int64("user_id", userID), zap.Error(err))
		}
		return structs.Conversation{}, structs.ErrNotFound
	}
	return conv, nil
}

func (s *state) Set(ctx context.Context, conv structs.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("repo: failed marshal conversation: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO conversations (user_id, chat_id, kind, data, updated_at) VALUES ($1, $2, $3, $4::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE SET chat_id = $2, kind = $3, data = $4::jsonb, updated_at = NOW()`,
		conv.UserID, conv.ChatID, string(conv.Kind), string(data))
	if err != nil {
		return fmt.Errorf("repo: failed update conversation: %w", err)
	}
	return nil
}

func (s *state) Delete(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, "DELETE FROM conversations WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("repo: failed delete conversation: %w", err)
	}
	return nil
}

func (s *state) Kind(ctx context.Context, userID int64) (string, error) {
	var kind string
	err := s.db.QueryRow(ctx, "SELECT kind FROM conversations WHERE user_id = $1", userID).Scan(&kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("repo: failed get conversation kind: %w", err)
	}
	return kind, nil
}

func (s *state) CountByKind(ctx context.Context) (map[structs.ConversationKind]int64, error) {
	rows, err := s.db.Query(ctx, "SELECT kind, COUNT(*) FROM conversations GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("repo: failed count conversations: %w", err)
	}
	defer rows.Close()

	resp := map[structs.ConversationKind]int64{}
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("repo: failed scan conversation count: %w", err)
		}
		resp[structs.ConversationKind(kind)] = count
	}
	return resp, rows.Err()
}
