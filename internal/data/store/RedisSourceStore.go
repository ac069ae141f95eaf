package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/data/redisStore"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

const sourceHashKey = "sources"

// RedisSourceStore keeps the source registry in one hash, field per source id.
type RedisSourceStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSourceStore(ctx context.Context) *RedisSourceStore {
	// Sources live in the document DB on purpose: a source only exists to own
	// documents, and the single "sources" hash cannot collide with the
	// doc:/chunks:/dockey: key prefixes.
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisSourceStore{
		store:  inner,
		logger: logger_i.NewLogger("SourceStore"),
	}
}

func (s *RedisSourceStore) GetSource(ctx context.Context, id int64) (ragModel.Source, bool) {
	var source ragModel.Source
	val, err := s.store.HashGet(ctx, sourceHashKey, strconv.FormatInt(id, 10))
	if err != nil {
		if !s.store.IsNil(err) {
			s.logger.Error("Failed to read source", "id", id, "error", err)
		}
		return source, false
	}
	if err = json.Unmarshal([]byte(val), &source); err != nil {
		s.logger.Error("Corrupt source entry", "id", id, "error", err)
		return source, false
	}
	return source, true
}

func (s *RedisSourceStore) ListReady(ctx context.Context) ([]ragModel.Source, error) {
	entries, err := s.store.HashGetAll(ctx, sourceHashKey)
	if err != nil {
		return nil, err
	}
	var ready []ragModel.Source
	for _, raw := range entries {
		var source ragModel.Source
		if err := json.Unmarshal([]byte(raw), &source); err != nil {
			s.logger.Error("Corrupt source entry, skipping", "error", err)
			continue
		}
		if source.Status == ragModel.SourceStatusReady {
			ready = append(ready, source)
		}
	}
	return ready, nil
}

func (s *RedisSourceStore) Exists(ctx context.Context, id int64) bool {
	_, found := s.GetSource(ctx, id)
	return found
}

func (s *RedisSourceStore) SaveSource(ctx context.Context, source ragModel.Source) error {
	data, err := json.Marshal(source)
	if err != nil {
		return err
	}
	return s.store.HashSet(ctx, sourceHashKey, strconv.FormatInt(source.Id, 10), data)
}

func TestSourceStore(store *redisStore.Store) *RedisSourceStore {
	return &RedisSourceStore{
		store:  store,
		logger: logger_i.NewLogger("test source store"),
	}
}
