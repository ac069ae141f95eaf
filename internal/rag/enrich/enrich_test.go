package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/llm"
)

// MockProvider implements llm.Provider
type MockProvider struct {
	OnComplete           func(ctx context.Context, instructions string, prompt string) (string, error)
	OnCompleteStructured func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error)
}

func (m *MockProvider) Complete(ctx context.Context, instructions string, prompt string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, instructions, prompt)
	}
	return "", nil
}

func (m *MockProvider) CompleteStructured(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
	if m.OnCompleteStructured != nil {
		return m.OnCompleteStructured(ctx, instructions, prompt, schema)
	}
	return "{}", nil
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

func newTestEngine(provider llm.Provider, sources ragModel.SourceStore) *Engine {
	return NewEngine(provider, sources, config.DefaultRetrievalConfig())
}

func TestEnrich_FullRewrite(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return `{"enriched_query":"quarterly revenue report 2024","date_filter":{"start_date":"2024-01-01","end_date":"2024-03-31","expression":"Q1 2024"},"source_ids":[2]}`, nil
		},
	}
	sources := &MockSourceStore{
		OnExists: func(ctx context.Context, id int64) bool { return id == 2 },
	}

	result := newTestEngine(provider, sources).Enrich(context.Background(), "revenue in q1?", nil)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.EnrichedQuery != "quarterly revenue report 2024" {
		t.Errorf("unexpected enriched query %q", result.EnrichedQuery)
	}
	if result.OriginalQuery != "revenue in q1?" {
		t.Errorf("unexpected original query %q", result.OriginalQuery)
	}
	if result.DateFilter == nil {
		t.Fatal("expected a date filter")
	}
	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	if !result.DateFilter.StartDate.Equal(wantStart) {
		t.Errorf("start date = %v, want %v", result.DateFilter.StartDate, wantStart)
	}
	if !result.DateFilter.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", result.DateFilter.EndDate, wantEnd)
	}
	if len(result.SourceIds) != 1 || result.SourceIds[0] != 2 {
		t.Errorf("unexpected source ids %v", result.SourceIds)
	}
}

func TestEnrich_FencedResponse(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return "```json\n{\"enriched_query\":\"deployment runbook\"}\n```", nil
		},
	}

	result := newTestEngine(provider, &MockSourceStore{}).Enrich(context.Background(), "how do I deploy it", nil)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.EnrichedQuery != "deployment runbook" {
		t.Errorf("unexpected enriched query %q", result.EnrichedQuery)
	}
	if result.DateFilter != nil {
		t.Errorf("expected no date filter, got %+v", result.DateFilter)
	}
}

func TestEnrich_ProviderErrorFallsBack(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	if result := newTestEngine(provider, &MockSourceStore{}).Enrich(context.Background(), "anything", nil); result != nil {
		t.Errorf("expected nil on provider error, got %+v", result)
	}
}

func TestEnrich_MalformedJSONFallsBack(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return "sure, here is the rewritten query", nil
		},
	}
	if result := newTestEngine(provider, &MockSourceStore{}).Enrich(context.Background(), "anything", nil); result != nil {
		t.Errorf("expected nil on malformed response, got %+v", result)
	}
}

func TestEnrich_EmptyRewriteFallsBack(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return `{"enriched_query":"   "}`, nil
		},
	}
	if result := newTestEngine(provider, &MockSourceStore{}).Enrich(context.Background(), "anything", nil); result != nil {
		t.Errorf("expected nil on empty rewrite, got %+v", result)
	}
}

func TestEnrich_BadDateDroppedIndividually(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return `{"enriched_query":"kernel changes","date_filter":{"start_date":"last tuesday","end_date":"2025-06-30","expression":"recently"}}`, nil
		},
	}

	result := newTestEngine(provider, &MockSourceStore{}).Enrich(context.Background(), "recent kernel changes", nil)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.DateFilter == nil {
		t.Fatal("expected date filter with surviving bound")
	}
	if result.DateFilter.StartDate != nil {
		t.Errorf("expected unparsable start date dropped, got %v", result.DateFilter.StartDate)
	}
	if result.DateFilter.EndDate == nil {
		t.Error("expected end date kept")
	}
}

func TestEnrich_UnknownSourceIdsDropped(t *testing.T) {
	provider := &MockProvider{
		OnCompleteStructured: func(ctx context.Context, instructions string, prompt string, schema *llm.Schema) (string, error) {
			return `{"enriched_query":"release notes","source_ids":[-1,0,99]}`, nil
		},
	}
	sources := &MockSourceStore{
		OnExists: func(ctx context.Context, id int64) bool { return false },
	}

	result := newTestEngine(provider, sources).Enrich(context.Background(), "release notes", nil)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.SourceIds != nil {
		t.Errorf("expected nil source ids, got %v", result.SourceIds)
	}
}

func TestRecentHistory(t *testing.T) {
	messages := []ragModel.ChatMessage{
		{Role: "user", Content: "m1"},
		{Role: "assistant", Content: "summary so far", IsSummary: true},
		{Role: "assistant", Content: "m2"},
		{Role: "user", Content: "m3"},
		{Role: "assistant", Content: "m4"},
	}

	recent := RecentHistory(messages, 2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(recent))
	}
	if recent[0].Content != "m3" || recent[1].Content != "m4" {
		t.Errorf("unexpected window %v", recent)
	}
	for _, m := range recent {
		if m.IsSummary {
			t.Error("summary message leaked into recent history")
		}
	}
}
