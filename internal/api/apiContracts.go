package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status     string `json:"status"`
	Step       string `json:"step,omitempty"`
	DocumentId string `json:"document_id,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type Citation struct {
	Number      int    `json:"number"`
	ChunkId     string `json:"chunk_id"`
	DocumentId  string `json:"document_id"`
	Title       string `json:"title"`
	Url         string `json:"url,omitempty"`
	SourceName  string `json:"source_name,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Snippet     string `json:"snippet"`
}

type ContextResponse struct {
	ContextText   string     `json:"context_text"`
	Chunks        []string   `json:"chunks"`
	Citations     []Citation `json:"citations"`
	TotalTokens   int        `json:"total_tokens"`
	ChunkCount    int        `json:"chunk_count"`
	EnrichedQuery string     `json:"enriched_query,omitempty"`
}

type SearchHit struct {
	ChunkId    string  `json:"chunk_id"`
	DocumentId string  `json:"document_id"`
	SourceId   int64   `json:"source_id"`
	Position   int     `json:"position"`
	Distance   float64 `json:"distance"`
	Content    string  `json:"content"`
}

type SearchResponse struct {
	Hits  []SearchHit `json:"hits"`
	Count int         `json:"count"`
}

type ConversationResponse struct {
	ConversationId string  `json:"conversation_id"`
	SourceIds      []int64 `json:"source_ids"`
}

// requests---------------------

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ContextRequest struct {
	Query          string    `json:"query" validate:"required"`
	ConversationId string    `json:"conversation_id,omitempty"`
	SourceIds      []int64   `json:"source_ids,omitempty"`
	History        []Message `json:"history,omitempty"`
}

type SearchRequest struct {
	Query     string  `json:"query" validate:"required"`
	SourceIds []int64 `json:"source_ids,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

type IngestRequest struct {
	SourceId     int64  `json:"source_id" validate:"required"`
	Title        string `json:"title"`
	Url          string `json:"url,omitempty"`
	ExternalGuid string `json:"external_guid,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Content      string `json:"content" validate:"required"`
}

type ConversationRequest struct {
	ConversationId string  `json:"conversation_id,omitempty"`
	SourceIds      []int64 `json:"source_ids,omitempty"`
}

type SourceRequest struct {
	Id   int64  `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Type string `json:"type,omitempty"`
}
