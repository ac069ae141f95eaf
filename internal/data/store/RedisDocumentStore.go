package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/data/redisStore"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// RedisDocumentStore keeps each document under three keys: the document
// itself, its chunks as one JSON array, and the ingest-key lookup entry.
// ReplaceDocument writes all three in a single transaction, which is what
// makes a rebuild atomic for readers.
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func docKey(id string) string { return "doc:" + id }

func chunksKey(id string) string { return "chunks:" + id }

func lookupKey(sourceId int64, k string) string { return fmt.Sprintf("dockey:%d:%s", sourceId, k) }

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	var doc ragModel.Document
	val, err := s.store.Get(ctx, docKey(id))
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.Error("Failed to read document", "id", id, "error", err)
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("Corrupt document entry", "id", id, "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) FindDocumentByKey(ctx context.Context, sourceId int64, key string) (ragModel.Document, bool) {
	id, err := s.store.Get(ctx, lookupKey(sourceId, key))
	if err != nil {
		if !s.store.IsNil(err) {
			s.logger.Error("Failed to resolve ingest key", "sourceId", sourceId, "error", err)
		}
		return ragModel.Document{}, false
	}
	return s.GetDocument(ctx, id)
}

func (s *RedisDocumentStore) ReplaceDocument(ctx context.Context, doc ragModel.Document, chunks []ragModel.Chunk) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)

	docData, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	chunkData, err := json.Marshal(chunks)
	if err != nil {
		return err
	}

	entries := map[string]interface{}{
		docKey(doc.Id):    docData,
		chunksKey(doc.Id): chunkData,
	}
	entries[lookupKey(doc.SourceId, doc.IngestKey())] = doc.Id

	err = s.store.SetMulti(ctx, entries, 0)
	if err != nil {
		log.Error("Failed to replace document", "error", err)
		return err
	}
	log.Debug("Replaced document", "chunks", len(chunks))
	return nil
}

func (s *RedisDocumentStore) GetChunks(ctx context.Context, documentId string) ([]ragModel.Chunk, error) {
	val, err := s.store.Get(ctx, chunksKey(documentId))
	if s.store.IsNil(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var chunks []ragModel.Chunk
	if err = json.Unmarshal([]byte(val), &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	doc, found := s.GetDocument(ctx, id)
	if !found {
		return nil
	}
	return s.store.Del(ctx, docKey(id), chunksKey(id), lookupKey(doc.SourceId, doc.IngestKey()))
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
