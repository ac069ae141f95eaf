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

func TestRedisSourceStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sourceStore := store.TestSourceStore(redisStore.NewTestStore(client))
	ctx := context.Background()

	sources := []ragModel.Source{
		{Id: 1, Name: "Wiki", Type: "rss", Status: ragModel.SourceStatusReady},
		{Id: 2, Name: "Archive", Type: "upload", Status: ragModel.SourceStatusDisabled},
		{Id: 3, Name: "Blog", Type: "rss", Status: ragModel.SourceStatusReady},
	}
	for _, source := range sources {
		if err := sourceStore.SaveSource(ctx, source); err != nil {
			t.Fatalf("SaveSource failed: %v", err)
		}
	}

	got, found := sourceStore.GetSource(ctx, 2)
	if !found || got.Name != "Archive" {
		t.Errorf("GetSource mismatch: found=%v source=%+v", found, got)
	}

	if !sourceStore.Exists(ctx, 1) || sourceStore.Exists(ctx, 99) {
		t.Error("Exists gave wrong answers")
	}

	ready, err := sourceStore.ListReady(ctx)
	if err != nil {
		t.Fatalf("ListReady failed: %v", err)
	}
	if len(ready) != 2 {
		t.Fatalf("expected 2 ready sources, got %d", len(ready))
	}
	for _, source := range ready {
		if source.Status != ragModel.SourceStatusReady {
			t.Errorf("non-ready source leaked: %+v", source)
		}
	}
}
