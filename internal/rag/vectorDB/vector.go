package vectorDB

import (
	"context"
	"time"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

// SearchFilters restricts nearest-neighbor search before ranking. A nil or
// empty SourceIds means unscoped; date bounds apply to the owning document's
// publish date.
type SearchFilters struct {
	SourceIds       []int64
	PublishedAfter  *time.Time
	PublishedBefore *time.Time
}

// Index is the nearest-neighbor store over chunk vectors. Reads come from the
// retrieval pipeline, writes only from ingestion.
type Index interface {
	NearestNeighbors(ctx context.Context, vector []float32, filters SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error)

	EnsureCollection(ctx context.Context, collectionName string, dimension uint64) error
	UpsertChunks(ctx context.Context, collectionName string, chunks []ragModel.Chunk, doc ragModel.Document) error
	DeleteByDocument(ctx context.Context, collectionName string, documentId string) error
}
