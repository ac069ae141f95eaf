package assembler

import (
	"context"
	"time"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/metrics"
	"github.com/rsarva/ContextAPI/internal/rag/embedding"
	"github.com/rsarva/ContextAPI/internal/rag/vectorDB"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// Enricher is the query-rewrite dependency. Satisfied by enrich.Engine;
// a nil result always means "search with the raw query".
type Enricher interface {
	Enrich(ctx context.Context, query string, history []ragModel.ChatMessage) *ragModel.EnrichmentResult
}

// BuildScope carries what the conversation already decided: an explicit
// source scope (always wins over enrichment hints) and the recent turns
// handed to the rewrite model.
type BuildScope struct {
	SourceIds []int64
	History   []ragModel.ChatMessage
}

// Service assembles the retrieval context for one chat turn. Handlers and the
// MCP tool call this - they don't need to know the index or the embedder.
type Service interface {
	Build(ctx context.Context, query string, scope BuildScope) (ragModel.RagContext, error)
	RawSearch(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error)
}

type service struct {
	index     vectorDB.Index
	embedder  embedding.Embedder
	documents ragModel.DocumentStore
	sources   ragModel.SourceStore
	enricher  Enricher
	cfg       config.RetrievalConfig
	logger    *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.Index, em embedding.Embedder, documents ragModel.DocumentStore, sources ragModel.SourceStore, enricher Enricher, cfg config.RetrievalConfig) Service {
	return &service{
		index:     index,
		embedder:  em,
		documents: documents,
		sources:   sources,
		enricher:  enricher,
		cfg:       cfg,
		logger:    logger_i.NewLogger("Context Assembler :"),
	}
}

// Build runs the fixed pipeline: rewrite, scope, search, window expansion,
// full-document promotion, token budget, citations. Deterministic for a given
// chunk state except for the rewrite, whose failure degrades to the raw query.
func (s *service) Build(ctx context.Context, query string, scope BuildScope) (ragModel.RagContext, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	// Query rewrite
	enrichment := s.executeEnrichmentStep(ctx, inMethodLogger, query, scope.History)
	searchQuery := query
	if enrichment != nil {
		searchQuery = enrichment.EnrichedQuery
	}

	// Source scoping: the explicit conversation scope is a hard pre-ranking
	// filter and always beats enrichment hints.
	filters := resolveFilters(scope.SourceIds, enrichment)

	// Vector search
	hits, err := s.executeSearchStep(ctx, inMethodLogger, searchQuery, filters, uint64(s.cfg.ContextChunkCount))
	if err != nil {
		return ragModel.RagContext{}, err
	}

	result := ragModel.RagContext{}
	if enrichment != nil {
		result.EnrichedQuery = enrichment.EnrichedQuery
	}
	if len(hits) == 0 {
		inMethodLogger.Debug("Vector search returned no chunks")
		return result, nil
	}

	// Window expansion
	ordered, docChunks := s.executeWindowStep(ctx, inMethodLogger, hits)

	// Full-document promotion
	ordered = s.executePromotionStep(inMethodLogger, hits, ordered, docChunks)

	// Token budget
	accepted, totalTokens := s.executeBudgetStep(ordered)

	// Citations
	result.Citations, result.FormattedChunks = s.executeCitationStep(ctx, inMethodLogger, accepted)
	result.TotalTokens = totalTokens
	result.ChunkCount = len(accepted)
	metrics.CaptureContextSize(result.ChunkCount, result.TotalTokens)

	inMethodLogger.Info("Assembled context",
		"chunks", result.ChunkCount,
		"tokens", result.TotalTokens,
		"enriched", enrichment != nil)
	return result, nil
}

// RawSearch is the inspection path: embed plus filtered nearest-neighbor only.
// It shares searchChunks with Build so the two can never drift apart.
func (s *service) RawSearch(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error) {
	if limit == 0 {
		limit = uint64(s.cfg.ContextChunkCount)
	}
	return s.searchChunks(ctx, query, vectorDB.SearchFilters{SourceIds: sourceIds}, limit)
}

func (s *service) searchChunks(ctx context.Context, query string, filters vectorDB.SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error) {
	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.index.NearestNeighbors(ctx, vector, filters, limit)
}

func (s *service) executeEnrichmentStep(ctx context.Context, log *logger_i.Logger, query string, history []ragModel.ChatMessage) *ragModel.EnrichmentResult {
	if !s.cfg.EnrichQueries || s.enricher == nil {
		return nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Query_enrichment", time.Since(start)) }()

	enrichment := s.enricher.Enrich(ctx, query, history)
	if enrichment == nil {
		log.Debug("Enrichment unavailable, searching with raw query")
	}
	return enrichment
}

func (s *service) executeSearchStep(ctx context.Context, log *logger_i.Logger, query string, filters vectorDB.SearchFilters, limit uint64) ([]ragModel.ScoredChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Vector_search", time.Since(start)) }()

	hits, err := s.searchChunks(ctx, query, filters, limit)
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return nil, err
	}
	log.Debug("Vector search complete", "hits", len(hits))
	return hits, nil
}

func resolveFilters(explicitScope []int64, enrichment *ragModel.EnrichmentResult) vectorDB.SearchFilters {
	filters := vectorDB.SearchFilters{}
	if len(explicitScope) > 0 {
		filters.SourceIds = explicitScope
	} else if enrichment != nil {
		filters.SourceIds = enrichment.SourceIds
	}
	if enrichment != nil && enrichment.DateFilter.Active() {
		filters.PublishedAfter = enrichment.DateFilter.StartDate
		filters.PublishedBefore = enrichment.DateFilter.EndDate
	}
	return filters
}
