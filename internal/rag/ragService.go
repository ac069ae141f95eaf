package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/jobModel"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/metrics"
	"github.com/rsarva/ContextAPI/internal/rag/embedding"
	"github.com/rsarva/ContextAPI/internal/rag/ingest"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract the worker depends on.
  - The worker only knows "a document can be rebuilt", not how.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the state (index, embedder, document store).
  - Lowercase so external packages cannot reach the dependencies directly.

3. Pointer Receiver (*service):
  - Methods on (*service) make the struct implicitly satisfy Service.

4. Dependency Injection (NewService):
  - Lets tests swap the real index and stores for mocks without touching
    the worker.
*/

// Service Worker will only call this service - it doesn't need to know the index or the embedder
type Service interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	index     vectorDB.Index
	embedder  embedding.Embedder
	documents ragModel.DocumentStore
	cfg       config.RetrievalConfig
	logger    *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.Index, em embedding.Embedder, documents ragModel.DocumentStore, cfg config.RetrievalConfig) Service {
	return &service{
		index:     index,
		embedder:  em,
		documents: documents,
		cfg:       cfg,
		logger:    logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_rebuild", time.Since(start)) }()

	job = ingest.ProcessDocumentRebuild(ctx, job, s.embedder, s.index, s.documents, s.cfg)
	if job.Status == jobModel.JobStatusError && job.Error.Code == 0 {
		job.Error.Code = http.StatusInternalServerError
	}
	return job
}
