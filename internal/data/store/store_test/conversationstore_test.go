package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rsarva/ContextAPI/internal/data/redisStore"
	"github.com/rsarva/ContextAPI/internal/data/store"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

func newConversationStore(t *testing.T) *store.RedisConversationStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestConversationStore(redisStore.NewTestStore(client))
}

func TestRedisConversationStore_ScopeAndTurns(t *testing.T) {
	convStore := newConversationStore(t)
	ctx := context.Background()

	if convStore.ValidateConversation(ctx, "conv-1") {
		t.Fatal("conversation should not exist yet")
	}

	if err := convStore.InitConversation(ctx, "conv-1", []int64{3, 7}); err != nil {
		t.Fatalf("InitConversation failed: %v", err)
	}
	if !convStore.ValidateConversation(ctx, "conv-1") {
		t.Fatal("conversation missing after init")
	}

	scope, err := convStore.GetScope(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetScope failed: %v", err)
	}
	if len(scope) != 2 || scope[0] != 3 || scope[1] != 7 {
		t.Errorf("scope mismatch: %v", scope)
	}

	turns := []ragModel.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	}
	for _, turn := range turns {
		if err := convStore.SaveTurn(ctx, "conv-1", turn); err != nil {
			t.Fatalf("SaveTurn failed: %v", err)
		}
	}

	recent, err := convStore.GetRecentMessages(ctx, "conv-1", 2)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent messages, got %d", len(recent))
	}
	if recent[0].Content != "second" || recent[1].Content != "third" {
		t.Errorf("recent messages out of order: %v", recent)
	}
}

func TestRedisConversationStore_SaveTurnRequiresInit(t *testing.T) {
	convStore := newConversationStore(t)
	ctx := context.Background()

	err := convStore.SaveTurn(ctx, "ghost", ragModel.ChatMessage{Role: "user", Content: "hi"})
	if err == nil {
		t.Error("saving a turn to an unknown conversation should fail")
	}
}

func TestRedisConversationStore_EmptyScopeAllowed(t *testing.T) {
	convStore := newConversationStore(t)
	ctx := context.Background()

	if err := convStore.InitConversation(ctx, "conv-2", nil); err != nil {
		t.Fatalf("InitConversation failed: %v", err)
	}
	scope, err := convStore.GetScope(ctx, "conv-2")
	if err != nil {
		t.Fatalf("GetScope failed: %v", err)
	}
	if len(scope) != 0 {
		t.Errorf("expected empty scope, got %v", scope)
	}
	if !convStore.ValidateConversation(ctx, "conv-2") {
		t.Error("unscoped conversation should still validate")
	}
}
