package assembler

import (
	"context"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB"
)

// MockIndex implements vectorDB.Index
type MockIndex struct {
	OnNearestNeighbors func(ctx context.Context, vector []float32, filters vectorDB.SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error)
	OnEnsureCollection func(ctx context.Context, collectionName string, dimension uint64) error
	OnUpsertChunks     func(ctx context.Context, collectionName string, chunks []ragModel.Chunk, doc ragModel.Document) error
	OnDeleteByDocument func(ctx context.Context, collectionName string, documentId string) error
}

func (m *MockIndex) NearestNeighbors(ctx context.Context, vector []float32, filters vectorDB.SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error) {
	if m.OnNearestNeighbors != nil {
		return m.OnNearestNeighbors(ctx, vector, filters, limit)
	}
	return nil, nil
}

func (m *MockIndex) EnsureCollection(ctx context.Context, collectionName string, dimension uint64) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, collectionName, dimension)
	}
	return nil
}

func (m *MockIndex) UpsertChunks(ctx context.Context, collectionName string, chunks []ragModel.Chunk, doc ragModel.Document) error {
	if m.OnUpsertChunks != nil {
		return m.OnUpsertChunks(ctx, collectionName, chunks, doc)
	}
	return nil
}

func (m *MockIndex) DeleteByDocument(ctx context.Context, collectionName string, documentId string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, collectionName, documentId)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, query string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockDocumentStore implements ragModel.DocumentStore
type MockDocumentStore struct {
	OnGetDocument       func(ctx context.Context, id string) (ragModel.Document, bool)
	OnFindDocumentByKey func(ctx context.Context, sourceId int64, key string) (ragModel.Document, bool)
	OnReplaceDocument   func(ctx context.Context, doc ragModel.Document, chunks []ragModel.Chunk) error
	OnGetChunks         func(ctx context.Context, documentId string) ([]ragModel.Chunk, error)
	OnDeleteDocument    func(ctx context.Context, id string) error
}

func (m *MockDocumentStore) GetDocument(ctx context.Context, id string) (ragModel.Document, bool) {
	if m.OnGetDocument != nil {
		return m.OnGetDocument(ctx, id)
	}
	return ragModel.Document{}, false
}

func (m *MockDocumentStore) FindDocumentByKey(ctx context.Context, sourceId int64, key string) (ragModel.Document, bool) {
	if m.OnFindDocumentByKey != nil {
		return m.OnFindDocumentByKey(ctx, sourceId, key)
	}
	return ragModel.Document{}, false
}

func (m *MockDocumentStore) ReplaceDocument(ctx context.Context, doc ragModel.Document, chunks []ragModel.Chunk) error {
	if m.OnReplaceDocument != nil {
		return m.OnReplaceDocument(ctx, doc, chunks)
	}
	return nil
}

func (m *MockDocumentStore) GetChunks(ctx context.Context, documentId string) ([]ragModel.Chunk, error) {
	if m.OnGetChunks != nil {
		return m.OnGetChunks(ctx, documentId)
	}
	return nil, nil
}

func (m *MockDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	if m.OnDeleteDocument != nil {
		return m.OnDeleteDocument(ctx, id)
	}
	return nil
}

// MockSourceStore implements ragModel.SourceStore
type MockSourceStore struct {
	OnGetSource  func(ctx context.Context, id int64) (ragModel.Source, bool)
	OnListReady  func(ctx context.Context) ([]ragModel.Source, error)
	OnExists     func(ctx context.Context, id int64) bool
	OnSaveSource func(ctx context.Context, source ragModel.Source) error
}

func (m *MockSourceStore) GetSource(ctx context.Context, id int64) (ragModel.Source, bool) {
	if m.OnGetSource != nil {
		return m.OnGetSource(ctx, id)
	}
	return ragModel.Source{}, false
}

func (m *MockSourceStore) ListReady(ctx context.Context) ([]ragModel.Source, error) {
	if m.OnListReady != nil {
		return m.OnListReady(ctx)
	}
	return nil, nil
}

func (m *MockSourceStore) Exists(ctx context.Context, id int64) bool {
	if m.OnExists != nil {
		return m.OnExists(ctx, id)
	}
	return false
}

func (m *MockSourceStore) SaveSource(ctx context.Context, source ragModel.Source) error {
	if m.OnSaveSource != nil {
		return m.OnSaveSource(ctx, source)
	}
	return nil
}

// MockEnricher implements Enricher
type MockEnricher struct {
	OnEnrich func(ctx context.Context, query string, history []ragModel.ChatMessage) *ragModel.EnrichmentResult
}

func (m *MockEnricher) Enrich(ctx context.Context, query string, history []ragModel.ChatMessage) *ragModel.EnrichmentResult {
	if m.OnEnrich != nil {
		return m.OnEnrich(ctx, query, history)
	}
	return nil
}
