package chunker

import (
	"strings"
	"testing"
)

func TestCountTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"Hi", 1},
		{"Hello world!", 3},
		{strings.Repeat("a", 100), 25},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
	}

	for _, tt := range tests {
		if got := CountTokens(tt.input); got != tt.expected {
			t.Errorf("CountTokens(%q) = %d; want %d", tt.input, got, tt.expected)
		}
	}
}

func TestCountTokens_Monotonic(t *testing.T) {
	prev := 0
	for i := 1; i <= 64; i++ {
		got := CountTokens(strings.Repeat("x", i))
		if got < prev {
			t.Fatalf("token count decreased at length %d: %d -> %d", i, prev, got)
		}
		if got < 1 {
			t.Fatalf("non-empty input produced %d tokens", got)
		}
		prev = got
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t", "0", " 0 "} {
		if got := Split(input, 1000, 200); len(got) != 0 {
			t.Errorf("Split(%q) = %d chunks; want 0", input, len(got))
		}
	}
}

func TestSplit_SingleShortText(t *testing.T) {
	chunks := Split("Just a short note.", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Just a short note." {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
	if chunks[0].Position != 0 {
		t.Errorf("position = %d; want 0", chunks[0].Position)
	}
	if chunks[0].TokenCount != CountTokens(chunks[0].Content) {
		t.Errorf("token count mismatch")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("One sentence here. Another one follows! Is that all? ", 40)

	first := Split(text, 200, 40)
	second := Split(text, 200, 40)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_PositionsContiguous(t *testing.T) {
	text := strings.Repeat("Sentences pile up quickly in this paragraph. ", 100)
	chunks := Split(text, 300, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	text := strings.Repeat("Some overlapping content flows across boundaries. ", 30)
	overlap := 40
	chunks := Split(text, 200, overlap)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		tail := chunks[i-1].Content
		if len(tail) > overlap {
			tail = tail[len(tail)-overlap:]
		}
		if !strings.HasPrefix(chunks[i].Content, strings.TrimSpace(tail)) {
			t.Errorf("chunk %d does not start with the previous chunk's tail", i)
		}
	}
}

func TestSplit_ParagraphBoundariesPreferred(t *testing.T) {
	text := "First paragraph stays whole.\n\nSecond paragraph stays whole too."
	chunks := Split(text, 40, 10)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "First paragraph stays whole." {
		t.Errorf("first chunk = %q", chunks[0].Content)
	}
}

func TestSplit_HardSplitLongSentence(t *testing.T) {
	// A single sentence with no boundaries at all must still be cut.
	text := strings.Repeat("x", 2500)
	chunks := Split(text, 1000, 0)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Content) > 1000 {
			t.Errorf("chunk exceeds size limit: %d chars", len(c.Content))
		}
	}
}

func TestSplit_CoverageReconstruction(t *testing.T) {
	// Concatenating chunk contents (ignoring overlap duplication, overlap=0
	// here) must reproduce the input modulo whitespace normalization.
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota.\n\nKappa lambda mu."
	chunks := Split(text, 30, 0)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Content)
		joined.WriteString(" ")
	}
	normalized := strings.Join(strings.Fields(joined.String()), " ")
	want := strings.Join(strings.Fields(text), " ")
	if normalized != want {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", normalized, want)
	}
}
