package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rsarva/ContextAPI/internal/rag/assembler"
)

type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the search query to run against the chunk index"`
	SourceIds []int64 `json:"source_ids,omitempty" jsonschema:"restrict the search to these source ids"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of chunks to return"`
}

type SearchOutput struct {
	Hits  []SearchHitOutput `json:"hits"`
	Count int               `json:"count"`
}

type SearchHitOutput struct {
	ChunkId    string  `json:"chunk_id"`
	DocumentId string  `json:"document_id"`
	SourceId   int64   `json:"source_id"`
	Position   int     `json:"position"`
	Distance   float64 `json:"distance"`
	Content    string  `json:"content"`
}

type BuildContextInput struct {
	Query     string  `json:"query" jsonschema:"the user question to assemble context for"`
	SourceIds []int64 `json:"source_ids,omitempty" jsonschema:"restrict retrieval to these source ids"`
}

type BuildContextOutput struct {
	ContextText   string           `json:"context_text"`
	Citations     []CitationOutput `json:"citations"`
	TotalTokens   int              `json:"total_tokens"`
	ChunkCount    int              `json:"chunk_count"`
	EnrichedQuery string           `json:"enriched_query,omitempty"`
}

type CitationOutput struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Url        string `json:"url,omitempty"`
	SourceName string `json:"source_name,omitempty"`
	Snippet    string `json:"snippet"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Search indexed document chunks by semantic similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_context",
		Description: "Assemble a citation-backed retrieval context for a question",
	}, s.handleBuildContext)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit < 0 {
		limit = 0 //the assembler falls back to its configured chunk count
	}

	hits, err := s.assembler.RawSearch(ctx, input.Query, input.SourceIds, uint64(limit))
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Hits:  make([]SearchHitOutput, len(hits)),
		Count: len(hits),
	}
	for i := range hits {
		output.Hits[i] = SearchHitOutput{
			ChunkId:    hits[i].Id,
			DocumentId: hits[i].DocumentId,
			SourceId:   hits[i].SourceId,
			Position:   hits[i].Position,
			Distance:   hits[i].Distance,
			Content:    hits[i].Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleBuildContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildContextInput,
) (*mcp.CallToolResult, BuildContextOutput, error) {
	result, err := s.assembler.Build(ctx, input.Query, assembler.BuildScope{SourceIds: input.SourceIds})
	if err != nil {
		return nil, BuildContextOutput{}, err
	}

	output := BuildContextOutput{
		ContextText:   result.Text(),
		Citations:     make([]CitationOutput, len(result.Citations)),
		TotalTokens:   result.TotalTokens,
		ChunkCount:    result.ChunkCount,
		EnrichedQuery: result.EnrichedQuery,
	}
	for i, c := range result.Citations {
		output.Citations[i] = CitationOutput{
			Number:     c.Number,
			Title:      c.Title,
			Url:        c.Url,
			SourceName: c.SourceName,
			Snippet:    c.Snippet,
		}
	}
	return nil, output, nil
}
