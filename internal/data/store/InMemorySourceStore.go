package store

import (
	"context"
	"sync"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

type InMemorySourceStore struct {
	mu      *sync.RWMutex
	sources map[int64]ragModel.Source
}

func InitInMemorySourceStore() *InMemorySourceStore {
	return &InMemorySourceStore{
		mu:      new(sync.RWMutex),
		sources: make(map[int64]ragModel.Source),
	}
}

func (store *InMemorySourceStore) GetSource(ctx context.Context, id int64) (ragModel.Source, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	source, found := store.sources[id]
	return source, found
}

func (store *InMemorySourceStore) ListReady(ctx context.Context) ([]ragModel.Source, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	var ready []ragModel.Source
	for _, source := range store.sources {
		if source.Status == ragModel.SourceStatusReady {
			ready = append(ready, source)
		}
	}
	return ready, nil
}

func (store *InMemorySourceStore) Exists(ctx context.Context, id int64) bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	_, found := store.sources[id]
	return found
}

func (store *InMemorySourceStore) SaveSource(ctx context.Context, source ragModel.Source) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sources[source.Id] = source
	return nil
}
