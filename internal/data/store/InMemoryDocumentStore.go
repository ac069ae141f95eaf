package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

type InMemoryDocumentStore struct {
	mu      *sync.RWMutex
	docs    map[string]ragModel.Document
	chunks  map[string][]ragModel.Chunk
	lookups map[string]string
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		mu:      new(sync.RWMutex),
		docs:    make(map[string]ragModel.Document),
		chunks:  make(map[string][]ragModel.Chunk),
		lookups: make(map[string]string),
	}
}

func memLookupKey(sourceId int64, key string) string {
	return fmt.Sprintf("%d:%s", sourceId, key)
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	doc, found := store.docs[id]
	return doc, found
}

func (store *InMemoryDocumentStore) FindDocumentByKey(ctx context.Context, sourceId int64, key string) (ragModel.Document, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	id, found := store.lookups[memLookupKey(sourceId, key)]
	if !found {
		return ragModel.Document{}, false
	}
	doc, found := store.docs[id]
	return doc, found
}

func (store *InMemoryDocumentStore) ReplaceDocument(ctx context.Context, doc ragModel.Document, chunks []ragModel.Chunk) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.docs[doc.Id] = doc
	store.chunks[doc.Id] = append([]ragModel.Chunk(nil), chunks...)
	store.lookups[memLookupKey(doc.SourceId, doc.IngestKey())] = doc.Id
	return nil
}

func (store *InMemoryDocumentStore) GetChunks(ctx context.Context, documentId string) ([]ragModel.Chunk, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return append([]ragModel.Chunk(nil), store.chunks[documentId]...), nil
}

func (store *InMemoryDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	doc, found := store.docs[id]
	if !found {
		return nil
	}
	delete(store.docs, id)
	delete(store.chunks, id)
	delete(store.lookups, memLookupKey(doc.SourceId, doc.IngestKey()))
	return nil
}
