package enrich

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/llm"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// Engine rewrites ambiguous user queries with an LLM, pulling out a temporal
// filter and referenced-source hints. Enrichment is strictly best-effort:
// every failure path returns nil and the caller searches with the raw query.
type Engine struct {
	llmProvider llm.Provider
	sources     ragModel.SourceStore
	cfg         config.RetrievalConfig
	logger      *logger_i.Logger
	now         func() time.Time
}

func NewEngine(provider llm.Provider, sources ragModel.SourceStore, cfg config.RetrievalConfig) *Engine {
	return &Engine{
		llmProvider: provider,
		sources:     sources,
		cfg:         cfg,
		logger:      logger_i.NewLogger("Query Enrichment"),
		now:         time.Now,
	}
}

// enrichmentPayload mirrors the JSON schema the model is asked to fill.
type enrichmentPayload struct {
	EnrichedQuery string `json:"enriched_query"`
	DateFilter    struct {
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		Expression string `json:"expression"`
	} `json:"date_filter"`
	SourceIds []int64 `json:"source_ids"`
}

// Enrich runs the rewrite under its own timeout, distinct from the request
// deadline, so a hung model call cannot stall retrieval. A nil return means
// "use the raw query" and is never an error condition.
func (e *Engine) Enrich(ctx context.Context, query string, history []ragModel.ChatMessage) *ragModel.EnrichmentResult {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if e.llmProvider == nil {
		return nil
	}

	enrichCtx, cancel := context.WithTimeout(ctx, e.cfg.EnrichmentTimeout)
	defer cancel()

	readySources, err := e.sources.ListReady(enrichCtx)
	if err != nil {
		log.Warn("Could not list sources for enrichment", "error", err)
		readySources = nil
	}

	instructions := buildInstructions(e.now(), readySources)
	prompt := buildPrompt(query, RecentHistory(history, e.cfg.RecentHistoryCount))

	raw, err := e.llmProvider.CompleteStructured(enrichCtx, instructions, prompt, responseSchema())
	if err != nil {
		log.Warn("Enrichment call failed, falling back to raw query", "error", err)
		return nil
	}

	payload, ok := parsePayload(raw, log)
	if !ok {
		return nil
	}

	result := &ragModel.EnrichmentResult{
		OriginalQuery: query,
		EnrichedQuery: strings.TrimSpace(payload.EnrichedQuery),
	}
	if result.EnrichedQuery == "" {
		log.Debug("Enrichment returned an empty rewrite, discarding")
		return nil
	}

	result.DateFilter = parseDateFilter(payload, log)
	result.SourceIds = e.validSourceIds(enrichCtx, payload.SourceIds)
	return result
}

// parsePayload strips Markdown code fences the model sometimes wraps around
// its JSON, then unmarshals.
func parsePayload(raw string, log *logger_i.Logger) (enrichmentPayload, bool) {
	var payload enrichmentPayload

	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		log.Warn("Could not parse enrichment response", "error", err)
		return payload, false
	}
	return payload, true
}

// parseDateFilter turns the model's day strings into day-granular bounds.
// Each unparsable bound is dropped on its own; a filter is only returned when
// at least one bound survived.
func parseDateFilter(payload enrichmentPayload, log *logger_i.Logger) *ragModel.DateFilter {
	filter := &ragModel.DateFilter{Expression: strings.TrimSpace(payload.DateFilter.Expression)}

	if start, ok := parseDay(payload.DateFilter.StartDate); ok {
		startOfDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		filter.StartDate = &startOfDay
	} else if payload.DateFilter.StartDate != "" {
		log.Debug("Dropping unparsable start date", "value", payload.DateFilter.StartDate)
	}
	if end, ok := parseDay(payload.DateFilter.EndDate); ok {
		endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
		filter.EndDate = &endOfDay
	} else if payload.DateFilter.EndDate != "" {
		log.Debug("Dropping unparsable end date", "value", payload.DateFilter.EndDate)
	}

	if !filter.Active() {
		return nil
	}
	return filter
}

func parseDay(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// validSourceIds keeps positive ids that name a real source. Returning nil
// rather than an empty slice lets callers tell "no filter" from "filter to
// nothing".
func (e *Engine) validSourceIds(ctx context.Context, candidates []int64) []int64 {
	var valid []int64
	for _, id := range candidates {
		if id <= 0 {
			continue
		}
		if e.sources.Exists(ctx, id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	return valid
}

// RecentHistory returns the most recent limit non-summary messages in
// chronological order. Used only to help the model resolve pronouns.
func RecentHistory(messages []ragModel.ChatMessage, limit int) []ragModel.ChatMessage {
	var recent []ragModel.ChatMessage
	for _, m := range messages {
		if !m.IsSummary {
			recent = append(recent, m)
		}
	}
	if limit > 0 && len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	return recent
}
