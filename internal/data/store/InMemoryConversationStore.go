package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

type conversationState struct {
	scope []int64
	turns []ragModel.ChatMessage
}

type InMemoryConversationStore struct {
	mu            *sync.RWMutex
	conversations map[string]*conversationState
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		mu:            new(sync.RWMutex),
		conversations: make(map[string]*conversationState),
	}
}

func (store *InMemoryConversationStore) ValidateConversation(ctx context.Context, id string) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	_, found := store.conversations[id]
	return found
}

func (store *InMemoryConversationStore) InitConversation(ctx context.Context, id string, sourceIds []int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.conversations[id] = &conversationState{
		scope: append([]int64(nil), sourceIds...),
	}
	return nil
}

func (store *InMemoryConversationStore) GetScope(ctx context.Context, id string) ([]int64, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	state, found := store.conversations[id]
	if !found {
		return nil, nil
	}
	return append([]int64(nil), state.scope...), nil
}

func (store *InMemoryConversationStore) SaveTurn(ctx context.Context, id string, message ragModel.ChatMessage) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	state, found := store.conversations[id]
	if !found {
		return errors.New("unknown conversation id")
	}
	state.turns = append(state.turns, message)
	return nil
}

func (store *InMemoryConversationStore) GetRecentMessages(ctx context.Context, id string, limit int) ([]ragModel.ChatMessage, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	state, found := store.conversations[id]
	if !found {
		return nil, nil
	}
	turns := state.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]ragModel.ChatMessage(nil), turns...), nil
}
