package ragModel

import (
	"context"
	"strings"
	"time"
)

// Document is an ingested piece of content owned by a Source. Immutable once
// chunked except through re-ingestion, which replaces it wholesale when the
// content hash changed.
type Document struct {
	Id           string     `json:"id"`
	SourceId     int64      `json:"source_id"`
	Title        string     `json:"title"`
	Url          string     `json:"url,omitempty"`
	ExternalGuid string     `json:"external_guid,omitempty"`
	Content      string     `json:"content"`
	ContentHash  string     `json:"content_hash"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// IngestKey identifies a document for replace-if-changed re-ingestion.
// (SourceId, Url) wins when a url exists, (SourceId, ExternalGuid) otherwise.
func (d Document) IngestKey() string {
	if d.Url != "" {
		return d.Url
	}
	return d.ExternalGuid
}

// Chunk is a bounded, positioned slice of a document. Positions are contiguous
// 0..n-1 within a document; chunks are recreated in full on every rechunk.
type Chunk struct {
	Id         string    `json:"id"`
	DocumentId string    `json:"document_id"`
	SourceId   int64     `json:"source_id"`
	Content    string    `json:"content"`
	Position   int       `json:"position"`
	TokenCount int       `json:"token_count"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

type SourceStatus string

const (
	SourceStatusReady    SourceStatus = "READY"
	SourceStatusPending  SourceStatus = "PENDING"
	SourceStatusDisabled SourceStatus = "DISABLED"
)

type Source struct {
	Id     int64        `json:"id"`
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Status SourceStatus `json:"status"`
}

// DateFilter bounds a search to a publish-date range. Active iff at least one
// bound is set; Expression keeps the model's natural language form for logging.
type DateFilter struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Expression string     `json:"expression,omitempty"`
}

func (f *DateFilter) Active() bool {
	return f != nil && (f.StartDate != nil || f.EndDate != nil)
}

// EnrichmentResult is the LLM's rewrite of a user query. A nil result means
// enrichment failed or was skipped - callers fall back to the raw query.
type EnrichmentResult struct {
	OriginalQuery string      `json:"original_query"`
	EnrichedQuery string      `json:"enriched_query"`
	DateFilter    *DateFilter `json:"date_filter,omitempty"`
	SourceIds     []int64     `json:"source_ids,omitempty"`
}

// ChatMessage is one prior conversation turn handed to enrichment so the
// model can resolve pronouns. Never persisted as part of the result.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	IsSummary bool   `json:"is_summary,omitempty"`
}

// ScoredChunk is a vector search hit: the chunk plus its cosine distance
// (lower is closer).
type ScoredChunk struct {
	Chunk
	Distance float64 `json:"distance"`
}

type Citation struct {
	Number      int        `json:"number"`
	ChunkId     string     `json:"chunk_id"`
	DocumentId  string     `json:"document_id"`
	Title       string     `json:"title"`
	Url         string     `json:"url,omitempty"`
	SourceName  string     `json:"source_name"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Snippet     string     `json:"snippet"`
}

// RagContext is the bounded, cited context window for one chat turn. Built
// fresh per request, never persisted.
type RagContext struct {
	FormattedChunks []string   `json:"formatted_chunks"`
	Citations       []Citation `json:"citations"`
	TotalTokens     int        `json:"total_tokens"`
	ChunkCount      int        `json:"chunk_count"`
	EnrichedQuery   string     `json:"enriched_query,omitempty"`
}

// Text joins the formatted chunks with blank lines into the block handed to
// the model.
func (c RagContext) Text() string {
	return strings.Join(c.FormattedChunks, "\n\n")
}

// DocumentStore is read by the assembler and written only by the ingestion
// pipeline. ReplaceDocument is the atomic delete-then-insert of a rebuild.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (Document, bool)
	FindDocumentByKey(ctx context.Context, sourceId int64, key string) (Document, bool)
	ReplaceDocument(ctx context.Context, doc Document, chunks []Chunk) error
	GetChunks(ctx context.Context, documentId string) ([]Chunk, error)
	DeleteDocument(ctx context.Context, id string) error
}

type SourceStore interface {
	GetSource(ctx context.Context, id int64) (Source, bool)
	ListReady(ctx context.Context) ([]Source, error)
	Exists(ctx context.Context, id int64) bool
	SaveSource(ctx context.Context, source Source) error
}

// ConversationStore keeps the per-conversation source scope and the recent
// turns that feed query enrichment.
type ConversationStore interface {
	ValidateConversation(ctx context.Context, id string) bool
	InitConversation(ctx context.Context, id string, sourceIds []int64) error
	GetScope(ctx context.Context, id string) ([]int64, error)
	SaveTurn(ctx context.Context, id string, message ChatMessage) error
	GetRecentMessages(ctx context.Context, id string, limit int) ([]ChatMessage, error)
}
