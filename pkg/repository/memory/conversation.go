package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tgpay/internal/structs"
	"tgpay/pkg/cache"
	"tgpay/pkg/repository/interfaces"
)

const conversationPrefix = "conversation:"

// idle conversations are dropped after a day
const conversationTTL = 24 * time.Hour

type conversationStore struct {
	cache cache.ICache
}

func NewConversationStore(c cache.ICache) interfaces.ConversationStore {
	return &conversationStore{cache: c}
}

func conversationKey(userID int64) string {
	return conversationPrefix + strconv.FormatInt(userID, 10)
}

func (s *conversationStore) Get(_ context.Context, userID int64) (structs.Conversation, error) {
	var conv structs.Conversation
	if err := s.cache.GetObj(conversationKey(userID), &conv); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return structs.Conversation{}, structs.ErrNotFound
		}
		return structs.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

func (s *conversationStore) Set(_ context.Context, conv structs.Conversation) error {
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now()
	}
	return s.cache.SaveObj(conversationKey(conv.UserID), conv, conversationTTL)
}

func (s *conversationStore) Delete(_ context.Context, userID int64) error {
	return s.cache.Delete(conversationKey(userID))
}

func (s *conversationStore) Kind(ctx context.Context, userID int64) (string, error) {
	conv, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, structs.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(conv.Kind), nil
}

func (s *conversationStore) CountByKind(ctx context.Context) (map[structs.ConversationKind]int64, error) {
	resp := map[structs.ConversationKind]int64{}
	for _, key := range s.cache.Keys(conversationPrefix) {
		userID, err := strconv.ParseInt(strings.TrimPrefix(key, conversationPrefix), 10, 64)
		if err != nil {
			continue
		}
		conv, err := s.Get(ctx, userID)
		if err != nil {
			continue
		}
		resp[conv.Kind]++
	}
	return resp, nil
}
