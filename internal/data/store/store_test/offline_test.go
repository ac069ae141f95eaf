package store_test

import (
	"context"
	"testing"

	"github.com/rsarva/ContextAPI/internal/data/store"
)

// With Redis unreachable every constructor must return nil so the caller can
// fall back to the in-memory stores instead of carrying a dead client.
func TestRedisStores_OfflineReturnsNil(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	ctx := context.Background()

	if s := store.GetRedisJobStore(ctx); s != nil {
		t.Error("expected nil job store when Redis is offline")
	}
	if s := store.GetRedisDocumentStore(ctx); s != nil {
		t.Error("expected nil document store when Redis is offline")
	}
	if s := store.GetRedisSourceStore(ctx); s != nil {
		t.Error("expected nil source store when Redis is offline")
	}
	if s := store.GetRedisConversationStore(ctx); s != nil {
		t.Error("expected nil conversation store when Redis is offline")
	}
}
