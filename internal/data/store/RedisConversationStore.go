package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/data/redisStore"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// RedisConversationStore keeps, per conversation, the source scope the user
// picked and the turn history that feeds query enrichment.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if inner == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  inner,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func scopeKey(id string) string { return "convscope:" + id }
func turnsKey(id string) string { return "convturns:" + id }

func (s *RedisConversationStore) ValidateConversation(ctx context.Context, id string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", id)
	found, err := s.store.Exists(ctx, scopeKey(id))
	if err != nil {
		log.Error("Failed to check conversation", "error", err)
		return false
	}
	return found
}

func (s *RedisConversationStore) InitConversation(ctx context.Context, id string, sourceIds []int64) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", id)
	log.Debug("Initializing conversation")

	if sourceIds == nil {
		sourceIds = []int64{}
	}
	data, err := json.Marshal(sourceIds)
	if err != nil {
		return err
	}
	if err = s.store.Del(ctx, turnsKey(id)); err != nil {
		log.Error("Could not clear previous turns", "error", err)
	}
	return s.store.Set(ctx, scopeKey(id), data, config.RedisConversationTTL)
}

func (s *RedisConversationStore) GetScope(ctx context.Context, id string) ([]int64, error) {
	val, err := s.store.Get(ctx, scopeKey(id))
	if s.store.IsNil(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var scope []int64
	if err = json.Unmarshal([]byte(val), &scope); err != nil {
		return nil, err
	}
	return scope, nil
}

func (s *RedisConversationStore) SaveTurn(ctx context.Context, id string, message ragModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversationId", id)
	if !s.ValidateConversation(ctx, id) {
		err := errors.New("unknown conversation id")
		log.Error("Failed validation before saving turn", "error", err)
		return err
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, turnsKey(id), data); err != nil {
		log.Error("Error saving turn", "error", err)
		return err
	}
	return s.store.Expire(ctx, turnsKey(id), config.RedisConversationTTL)
}

func (s *RedisConversationStore) GetRecentMessages(ctx context.Context, id string, limit int) ([]ragModel.ChatMessage, error) {
	raw, err := s.store.ListGetRecent(ctx, turnsKey(id), limit)
	if err != nil {
		return nil, err
	}
	messages := make([]ragModel.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var message ragModel.ChatMessage
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			s.logger.Error("Corrupt turn entry, skipping", "conversationId", id, "error", err)
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversation store"),
	}
}
