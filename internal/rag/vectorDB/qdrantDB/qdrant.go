package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = ensureCollection(ctx, client, config.ChunkCollectionName)
	if err != nil {
		logger.Error("could not prepare collection: ", "collectionName", config.ChunkCollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) NearestNeighbors(ctx context.Context, vector []float32, filters vectorDB.SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.ChunkCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         buildFilter(filters),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	hits := make([]ragModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		chunk := chunkFromPayload(hit.Payload)
		hits = append(hits, ragModel.ScoredChunk{
			Chunk: chunk,
			// Qdrant reports cosine similarity, the pipeline reasons in
			// cosine distance (lower = closer).
			Distance: 1 - float64(hit.Score),
		})
	}

	loggr.Debug("Vector search done", "hits", len(hits))
	return hits, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string, dim uint64) error {
	if dim != dimension {
		return fmt.Errorf("dimension mismatch: configured %d, requested %d", dimension, dim)
	}
	return ensureCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertChunks(ctx context.Context, collectionName string, chunks []ragModel.Chunk, doc ragModel.Document) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		if len(chunk.Embedding) != int(dimension) {
			return fmt.Errorf("chunk %s has a %d-dim vector, collection expects %d - re-embed the corpus before mixing models",
				chunk.Id, len(chunk.Embedding), dimension)
		}

		payload := map[string]any{
			"content":     chunk.Content,
			"document_id": chunk.DocumentId,
			"source_id":   chunk.SourceId,
			"chunk_id":    chunk.Id,
			"position":    chunk.Position,
			"token_count": chunk.TokenCount,
		}
		if doc.PublishedAt != nil {
			payload["published_at"] = doc.PublishedAt.Unix()
		}

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, collectionName string, documentId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by document failed: %w", err)
	}
	return nil
}

func buildFilter(filters vectorDB.SearchFilters) *qdrant.Filter {
	var must []*qdrant.Condition

	if len(filters.SourceIds) > 0 {
		must = append(must, qdrant.NewMatchInts("source_id", filters.SourceIds...))
	}
	if filters.PublishedAfter != nil || filters.PublishedBefore != nil {
		dateRange := &qdrant.Range{}
		if filters.PublishedAfter != nil {
			dateRange.Gte = qdrant.PtrOf(float64(filters.PublishedAfter.Unix()))
		}
		if filters.PublishedBefore != nil {
			dateRange.Lte = qdrant.PtrOf(float64(filters.PublishedBefore.Unix()))
		}
		must = append(must, qdrant.NewRange("published_at", dateRange))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func chunkFromPayload(payload map[string]*qdrant.Value) ragModel.Chunk {
	chunk := ragModel.Chunk{
		Id:         payload["chunk_id"].GetStringValue(),
		DocumentId: payload["document_id"].GetStringValue(),
		SourceId:   payload["source_id"].GetIntegerValue(),
		Content:    payload["content"].GetStringValue(),
		Position:   int(payload["position"].GetIntegerValue()),
		TokenCount: int(payload["token_count"].GetIntegerValue()),
	}
	return chunk
}

func ensureCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return verifyDimension(ctx, client, collectionName)
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}

// verifyDimension refuses to reuse a collection built for another embedding
// model. Changing model or dimension requires an explicit re-embed of the
// whole corpus into a fresh collection.
func verifyDimension(ctx context.Context, client *qdrant.Client, collectionName string) error {
	info, err := client.GetCollectionInfo(ctx, collectionName)
	if err != nil {
		return err
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return nil
	}
	if params.Size != dimension {
		return fmt.Errorf("collection %q holds %d-dim vectors but config wants %d: re-embed all documents before switching models",
			collectionName, params.Size, dimension)
	}
	return nil
}

var _ vectorDB.Index = (*ClientHolder)(nil)
