package chunker

import (
	"strings"
)

// Piece is one split segment of a document, position-ordered within it.
type Piece struct {
	Content    string
	Position   int
	TokenCount int
}

// CountTokens approximates a token count as ceil(len/4), at least 1 for any
// non-empty string. This heuristic is part of the budget contract - swapping
// in a real tokenizer changes every budget decision downstream.
func CountTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + 3) / 4
}

// Split cuts text into overlapping chunks of at most chunkSize characters.
// Blank-line paragraphs are the preferred boundary; paragraphs longer than
// chunkSize fall back to sentence boundaries, and sentences longer than
// chunkSize are hard-cut into fixed windows. Segments accumulate greedily,
// and every flush seeds the next buffer with the last overlap characters of
// the emitted chunk so neighboring chunks share context.
//
// Empty and whitespace-only input yields no chunks. The literal string "0"
// is treated the same way, matching how upstream extractors signal a missing
// body.
func Split(text string, chunkSize, overlap int) []Piece {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "0" {
		return nil
	}

	segments := collectSegments(trimmed, chunkSize)

	var pieces []Piece
	var buffer string

	emit := func(content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		pieces = append(pieces, Piece{
			Content:    content,
			Position:   len(pieces),
			TokenCount: CountTokens(content),
		})
	}

	for _, segment := range segments {
		if buffer == "" {
			buffer = segment
			continue
		}
		if len(buffer)+1+len(segment) <= chunkSize {
			buffer = buffer + " " + segment
			continue
		}

		emitted := strings.TrimSpace(buffer)
		emit(emitted)

		// Seed the next buffer with the tail of what we just emitted.
		seed := ""
		if overlap > 0 {
			seed = emitted
			if len(seed) > overlap {
				seed = seed[len(seed)-overlap:]
			}
		}
		if seed != "" {
			buffer = seed + " " + segment
		} else {
			buffer = segment
		}
	}

	emit(buffer)
	return pieces
}

// collectSegments flattens text into chunkSize-bounded segments, splitting
// paragraphs first and recursing into sentences and hard windows only when a
// unit is too large on its own.
func collectSegments(text string, chunkSize int) []string {
	var segments []string
	for _, paragraph := range splitParagraphs(text) {
		if len(paragraph) <= chunkSize {
			segments = append(segments, paragraph)
			continue
		}
		for _, sentence := range splitSentences(paragraph) {
			if len(sentence) <= chunkSize {
				segments = append(segments, sentence)
				continue
			}
			segments = append(segments, hardSplit(sentence, chunkSize)...)
		}
	}
	return segments
}

func splitParagraphs(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	var paragraphs []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitSentences cuts on '.', '?' or '!' followed by whitespace.
func splitSentences(paragraph string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(paragraph)-1; i++ {
		c := paragraph[i]
		if (c == '.' || c == '?' || c == '!') && isSpace(paragraph[i+1]) {
			sentence := strings.TrimSpace(paragraph[start : i+1])
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(paragraph[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func hardSplit(sentence string, chunkSize int) []string {
	var windows []string
	for start := 0; start < len(sentence); start += chunkSize {
		end := start + chunkSize
		if end > len(sentence) {
			end = len(sentence)
		}
		window := strings.TrimSpace(sentence[start:end])
		if window != "" {
			windows = append(windows, window)
		}
	}
	return windows
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
