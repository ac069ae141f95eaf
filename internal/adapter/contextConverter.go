package adapter

import (
	"github.com/rsarva/ContextAPI/internal/api"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

func ToContextResponse(ragContext ragModel.RagContext) api.ContextResponse {
	citations := make([]api.Citation, 0, len(ragContext.Citations))
	for _, c := range ragContext.Citations {
		out := api.Citation{
			Number:     c.Number,
			ChunkId:    c.ChunkId,
			DocumentId: c.DocumentId,
			Title:      c.Title,
			Url:        c.Url,
			SourceName: c.SourceName,
			Snippet:    c.Snippet,
		}
		if c.PublishedAt != nil {
			out.PublishedAt = c.PublishedAt.Format("2006-01-02")
		}
		citations = append(citations, out)
	}

	return api.ContextResponse{
		ContextText:   ragContext.Text(),
		Chunks:        ragContext.FormattedChunks,
		Citations:     citations,
		TotalTokens:   ragContext.TotalTokens,
		ChunkCount:    ragContext.ChunkCount,
		EnrichedQuery: ragContext.EnrichedQuery,
	}
}

func ToSearchResponse(hits []ragModel.ScoredChunk) api.SearchResponse {
	out := make([]api.SearchHit, 0, len(hits))
	for _, hit := range hits {
		out = append(out, api.SearchHit{
			ChunkId:    hit.Id,
			DocumentId: hit.DocumentId,
			SourceId:   hit.SourceId,
			Position:   hit.Position,
			Distance:   hit.Distance,
			Content:    hit.Content,
		})
	}
	return api.SearchResponse{Hits: out, Count: len(out)}
}

func ToChatMessages(messages []api.Message) []ragModel.ChatMessage {
	out := make([]ragModel.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ragModel.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
