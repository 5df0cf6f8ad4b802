package analysis

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(""); got != 0 {
		t.Errorf("empty string: expected 0, got %d", got)
	}
	if got := estimateTokens("abc"); got != 1 {
		t.Errorf("short string: expected 1, got %d", got)
	}
	if got := estimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("400 chars: expected 100, got %d", got)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := newChunker(4000)
	chunks := c.split("Net sales increased. Gross margin expanded. Operating expenses grew.")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "Net sales increased") {
		t.Errorf("chunk lost content: %q", chunks[0])
	}
}

func TestSplit_RespectsBudget(t *testing.T) {
	c := newChunker(1100) // budget = 100 tokens = ~400 chars

	sentence := strings.Repeat("word ", 60) // ~75 tokens per sentence
	text := sentence + ". " + sentence + ". " + sentence + "."

	chunks := c.split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if estimateTokens(chunk) > c.budget()+1 {
			t.Errorf("chunk %d exceeds budget: %d tokens", i, estimateTokens(chunk))
		}
	}
}

func TestSplit_OversizedSentenceFallsBackToWords(t *testing.T) {
	c := newChunker(1050) // budget = 50 tokens = ~200 chars

	// One giant sentence with no ". " boundaries.
	sentence := strings.Repeat("longword ", 100)

	chunks := c.split(sentence)
	if len(chunks) < 2 {
		t.Fatalf("expected word-split chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if strings.Contains(chunk, ".") {
			t.Errorf("word chunk %d should carry no sentence punctuation: %q", i, chunk)
		}
	}

	// No words lost.
	total := 0
	for _, chunk := range chunks {
		total += len(strings.Fields(chunk))
	}
	if total != 100 {
		t.Errorf("expected 100 words across chunks, got %d", total)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c := newChunker(4000)
	if chunks := c.split(""); chunks != nil {
		t.Errorf("expected nil for empty text, got %v", chunks)
	}
}

func TestBudget_NeverBelowOne(t *testing.T) {
	c := newChunker(10) // below the reserve
	if c.budget() != 1 {
		t.Errorf("expected floor of 1, got %d", c.budget())
	}
}
