package assembler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/metrics"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

// executeWindowStep pulls the neighbors of every hit: all chunks of the same
// document within WindowSize positions. Documents stay in relevance order
// (best hit first), chunks within a document in position order. The fetched
// per-document chunk lists are returned for the promotion step to reuse.
func (s *service) executeWindowStep(ctx context.Context, log *logger_i.Logger, hits []ragModel.ScoredChunk) ([]ragModel.Chunk, map[string][]ragModel.Chunk) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Window_expansion", time.Since(start)) }()

	var docOrder []string
	hitsByDoc := make(map[string][]ragModel.ScoredChunk)
	for _, hit := range hits {
		if _, seen := hitsByDoc[hit.DocumentId]; !seen {
			docOrder = append(docOrder, hit.DocumentId)
		}
		hitsByDoc[hit.DocumentId] = append(hitsByDoc[hit.DocumentId], hit)
	}

	// One fetch per document, issued concurrently.
	docChunks := make(map[string][]ragModel.Chunk)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, documentId := range docOrder {
		wg.Add(1)
		go func(documentId string) {
			defer wg.Done()
			chunks, err := s.documents.GetChunks(ctx, documentId)
			if err != nil {
				log.Warn("Could not expand document, keeping hits only", "documentId", documentId, "error", err)
				return
			}
			mu.Lock()
			docChunks[documentId] = chunks
			mu.Unlock()
		}(documentId)
	}
	wg.Wait()

	var ordered []ragModel.Chunk
	included := make(map[string]bool)
	for _, documentId := range docOrder {
		selected := selectWindow(hitsByDoc[documentId], docChunks[documentId], s.cfg.WindowSize)
		for _, chunk := range selected {
			if included[chunk.Id] {
				continue
			}
			included[chunk.Id] = true
			ordered = append(ordered, chunk)
		}
	}
	return ordered, docChunks
}

// selectWindow picks the document's chunks within windowSize of any hit,
// sorted by position. When the document fetch failed the hits themselves are
// kept so expansion can only add, never lose, results.
func selectWindow(hits []ragModel.ScoredChunk, chunks []ragModel.Chunk, windowSize int) []ragModel.Chunk {
	if len(chunks) == 0 {
		fallback := make([]ragModel.Chunk, 0, len(hits))
		for _, hit := range hits {
			fallback = append(fallback, hit.Chunk)
		}
		sort.Slice(fallback, func(i, j int) bool { return fallback[i].Position < fallback[j].Position })
		return fallback
	}

	wanted := make(map[int]bool)
	for _, hit := range hits {
		for p := hit.Position - windowSize; p <= hit.Position+windowSize; p++ {
			wanted[p] = true
		}
	}

	var selected []ragModel.Chunk
	for _, chunk := range chunks {
		if wanted[chunk.Position] {
			selected = append(selected, chunk)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Position < selected[j].Position })
	return selected
}

// executePromotionStep appends the remaining chunks of any document that had
// a hit closer than 1-FullDocThreshold, under one character budget shared by
// all promoted documents. Candidates go in document id order so reruns promote
// identically; appends only, the windowed order is never disturbed.
func (s *service) executePromotionStep(log *logger_i.Logger, hits []ragModel.ScoredChunk, ordered []ragModel.Chunk, docChunks map[string][]ragModel.Chunk) []ragModel.Chunk {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Fulldoc_promotion", time.Since(start)) }()

	cutoff := 1 - s.cfg.FullDocThreshold
	candidateSet := make(map[string]bool)
	for _, hit := range hits {
		if hit.Distance < cutoff {
			candidateSet[hit.DocumentId] = true
		}
	}
	if len(candidateSet) == 0 {
		return ordered
	}

	candidates := make([]string, 0, len(candidateSet))
	for documentId := range candidateSet {
		candidates = append(candidates, documentId)
	}
	sort.Strings(candidates)

	included := make(map[string]bool, len(ordered))
	for _, chunk := range ordered {
		included[chunk.Id] = true
	}

	remaining := s.cfg.MaxFullDocChars
	for _, documentId := range candidates {
		if remaining <= 0 {
			break
		}
		chunks := append([]ragModel.Chunk(nil), docChunks[documentId]...)
		sort.Slice(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })

		for _, chunk := range chunks {
			if included[chunk.Id] {
				continue
			}
			if len(chunk.Content) > remaining {
				// Best effort: never truncate a chunk to fit.
				remaining = 0
				break
			}
			included[chunk.Id] = true
			ordered = append(ordered, chunk)
			remaining -= len(chunk.Content)
		}
	}
	log.Debug("Promotion complete", "documents", len(candidates), "budgetLeft", remaining)
	return ordered
}

// executeBudgetStep takes the longest prefix whose token sum stays under
// MaxContextTokens. Strictly a prefix cut: the first chunk over the line and
// everything after it is dropped, never a re-rank.
func (s *service) executeBudgetStep(ordered []ragModel.Chunk) ([]ragModel.Chunk, int) {
	var accepted []ragModel.Chunk
	totalTokens := 0
	for _, chunk := range ordered {
		if totalTokens+chunk.TokenCount > s.cfg.MaxContextTokens {
			break
		}
		accepted = append(accepted, chunk)
		totalTokens += chunk.TokenCount
	}
	return accepted, totalTokens
}

// executeCitationStep numbers the final list 1..N and renders each chunk with
// its citation marker and publish date.
func (s *service) executeCitationStep(ctx context.Context, log *logger_i.Logger, accepted []ragModel.Chunk) ([]ragModel.Citation, []string) {
	documentCache := make(map[string]ragModel.Document)
	sourceNameCache := make(map[int64]string)

	citations := make([]ragModel.Citation, 0, len(accepted))
	formatted := make([]string, 0, len(accepted))
	for i, chunk := range accepted {
		doc, cached := documentCache[chunk.DocumentId]
		if !cached {
			var found bool
			doc, found = s.documents.GetDocument(ctx, chunk.DocumentId)
			if !found {
				log.Warn("Citation references a missing document", "documentId", chunk.DocumentId)
			}
			documentCache[chunk.DocumentId] = doc
		}

		sourceName, cached := sourceNameCache[chunk.SourceId]
		if !cached {
			if source, found := s.sources.GetSource(ctx, chunk.SourceId); found {
				sourceName = source.Name
			}
			sourceNameCache[chunk.SourceId] = sourceName
		}

		citations = append(citations, ragModel.Citation{
			Number:      i + 1,
			ChunkId:     chunk.Id,
			DocumentId:  chunk.DocumentId,
			Title:       doc.Title,
			Url:         doc.Url,
			SourceName:  sourceName,
			PublishedAt: doc.PublishedAt,
			Snippet:     snippet(chunk.Content, s.cfg.SnippetLength),
		})
		formatted = append(formatted, formatChunk(i+1, chunk, doc))
	}
	return citations, formatted
}

func formatChunk(number int, chunk ragModel.Chunk, doc ragModel.Document) string {
	if doc.PublishedAt != nil {
		return fmt.Sprintf("[%d] (Published: %s) %s", number, doc.PublishedAt.Format("2006-01-02"), chunk.Content)
	}
	return fmt.Sprintf("[%d] %s", number, chunk.Content)
}

func snippet(content string, length int) string {
	runes := []rune(content)
	if len(runes) <= length {
		return content
	}
	return string(runes[:length])
}
