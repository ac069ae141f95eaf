package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/assembler"
)

type MockAssembler struct {
	OnBuild     func(ctx context.Context, query string, scope assembler.BuildScope) (ragModel.RagContext, error)
	OnRawSearch func(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error)
}

func (m *MockAssembler) Build(ctx context.Context, query string, scope assembler.BuildScope) (ragModel.RagContext, error) {
	if m.OnBuild != nil {
		return m.OnBuild(ctx, query, scope)
	}
	return ragModel.RagContext{}, nil
}

func (m *MockAssembler) RawSearch(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error) {
	if m.OnRawSearch != nil {
		return m.OnRawSearch(ctx, query, sourceIds, limit)
	}
	return nil, nil
}

func TestHandleSearch(t *testing.T) {
	var gotLimit uint64
	mock := &MockAssembler{
		OnRawSearch: func(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error) {
			gotLimit = limit
			return []ragModel.ScoredChunk{
				{Chunk: ragModel.Chunk{Id: "c1", DocumentId: "d1", SourceId: 2, Position: 0, Content: "hello"}, Distance: 0.12},
			}, nil
		},
	}
	s := NewServer(mock)

	_, out, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "greeting", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}
	if out.Count != 1 || out.Hits[0].ChunkId != "c1" || out.Hits[0].Content != "hello" {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestHandleBuildContext(t *testing.T) {
	mock := &MockAssembler{
		OnBuild: func(ctx context.Context, query string, scope assembler.BuildScope) (ragModel.RagContext, error) {
			if len(scope.SourceIds) != 1 || scope.SourceIds[0] != 7 {
				t.Errorf("scope not passed through: %+v", scope)
			}
			return ragModel.RagContext{
				FormattedChunks: []string{"[1] first", "[2] second"},
				Citations:       []ragModel.Citation{{Number: 1, Title: "Doc", Snippet: "first"}},
				TotalTokens:     9,
				ChunkCount:      2,
			}, nil
		},
	}
	s := NewServer(mock)

	_, out, err := s.handleBuildContext(context.Background(), nil, BuildContextInput{Query: "q", SourceIds: []int64{7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ContextText != "[1] first\n\n[2] second" {
		t.Errorf("unexpected context text %q", out.ContextText)
	}
	if out.ChunkCount != 2 || out.TotalTokens != 9 || len(out.Citations) != 1 {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestHandleSearchError(t *testing.T) {
	mock := &MockAssembler{
		OnRawSearch: func(ctx context.Context, query string, sourceIds []int64, limit uint64) ([]ragModel.ScoredChunk, error) {
			return nil, errors.New("index down")
		},
	}
	s := NewServer(mock)

	if _, _, err := s.handleSearch(context.Background(), nil, SearchInput{Query: "q"}); err == nil {
		t.Error("expected error to surface to the client")
	}
}
