package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rsarva/ContextAPI/internal/adapter/utils"
	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/jobModel"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/chunker"
	"github.com/rsarva/ContextAPI/internal/rag/embedding"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// ProcessDocumentRebuild chunks, embeds and atomically replaces one document.
// Rebuilds of the same logical document are serialized on a per-document lock
// so two concurrent re-ingests can never interleave partial chunk sets. An
// unchanged content hash short-circuits the whole pipeline.
func ProcessDocumentRebuild(ctx context.Context, job jobModel.Job, em embedding.Embedder, index vectorDB.Index, documents ragModel.DocumentStore, cfg config.RetrievalConfig) jobModel.Job {
	logger := logger_i.NewLogger("Document Rebuild ").With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	doc := job.Document
	job.Status = jobModel.JobStatusRunning
	job.CurrentStep = jobModel.IngestInit

	unlock := lockDocument(rebuildKey(doc))
	defer unlock()

	hash := sha256.Sum256([]byte(doc.Content))
	doc.ContentHash = hex.EncodeToString(hash[:])

	existing, found := documents.FindDocumentByKey(ctx, doc.SourceId, doc.IngestKey())
	if found {
		if existing.ContentHash == doc.ContentHash {
			logger.Info("Content unchanged, skipping rebuild", "documentId", existing.Id)
			job.Status = jobModel.JobStatusSkipped
			job.CurrentStep = jobModel.Complete
			job.EndTime = time.Now()
			return job
		}
		// Changed content keeps the document identity so a rebuild fully
		// supersedes the old chunk set.
		doc.Id = existing.Id
	}
	if doc.Id == "" {
		doc.Id = utils.GetNewUUID()
	}

	job.CurrentStep = jobModel.IngestChunking
	pieces := chunker.Split(doc.Content, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(pieces) == 0 {
		return failJob(logger, job, "Document has no chunkable content", nil, false)
	}

	chunks := make([]ragModel.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, ragModel.Chunk{
			Id:         utils.GetNewUUID(),
			DocumentId: doc.Id,
			SourceId:   doc.SourceId,
			Content:    piece.Content,
			Position:   piece.Position,
			TokenCount: piece.TokenCount,
		})
	}
	logger.Debug("Chunking complete", "documentId", doc.Id, "chunks", len(chunks))

	job.CurrentStep = jobModel.IngestEmbedding
	if err := embedChunks(ctx, em, chunks); err != nil {
		return failJob(logger, job, "Embedding failed", err, true)
	}

	job.CurrentStep = jobModel.IngestReplacing
	if err := index.EnsureCollection(ctx, config.ChunkCollectionName, uint64(config.EmbeddingOutputDimensionality)); err != nil {
		return failJob(logger, job, "Collection check failed", err, true)
	}
	if err := documents.ReplaceDocument(ctx, doc, chunks); err != nil {
		return failJob(logger, job, "Storing chunks failed", err, true)
	}
	if err := index.DeleteByDocument(ctx, config.ChunkCollectionName, doc.Id); err != nil {
		return failJob(logger, job, "Clearing old vectors failed", err, true)
	}
	if err := index.UpsertChunks(ctx, config.ChunkCollectionName, chunks, doc); err != nil {
		return failJob(logger, job, "Indexing vectors failed", err, true)
	}

	logger.Info("Rebuild complete", "documentId", doc.Id, "chunks", len(chunks))
	job.Document = doc
	job.ChunkCount = len(chunks)
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	job.EndTime = time.Now()
	return job
}

// embedChunks fills in chunk vectors in batches so one oversized document
// cannot blow a single embedding request.
func embedChunks(ctx context.Context, em embedding.Embedder, chunks []ragModel.Chunk) error {
	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := i + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, 0, len(batch))
		for _, c := range batch {
			texts = append(texts, c.Content)
		}

		vectors, err := em.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		for j := range batch {
			batch[j].Embedding = vectors[j]
		}
	}
	return nil
}

func failJob(logger *logger_i.Logger, job jobModel.Job, message string, err error, retry bool) jobModel.Job {
	logger.Error(message, "error", err)
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{Message: message, Retry: retry}
	job.EndTime = time.Now()
	return job
}
