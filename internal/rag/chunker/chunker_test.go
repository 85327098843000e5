package chunker

import (
	"strings"
	"testing"

	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/rag/cleaner"
)

// sentence returns a cleaned-stable sentence of exactly n characters.
func sentence(n int) string {
	s := strings.Repeat("wordy ", (n-4)/6)
	return s + strings.Repeat("x", n-len(s)-1) + "."
}

func TestSplit_TwoChunkScenario(t *testing.T) {
	s1, s2, s3 := sentence(400), sentence(400), sentence(400)
	text := s1 + " " + s2 + " " + s3

	c := New(900, 100, cleaner.Default())
	chunks := c.Split(text, "doc-1", "chat-1", nil)

	if len(chunks) != 2 {
		t.Fatalf("Expected exactly 2 chunks, got %d", len(chunks))
	}

	// chunk 0 holds sentences 1+2 and fits the size limit
	if len(chunks[0].Text) > 900 {
		t.Errorf("Chunk 0 length %d exceeds limit", len(chunks[0].Text))
	}
	if !strings.Contains(chunks[0].Text, s2) {
		t.Error("Chunk 0 should contain the second sentence")
	}

	// chunk 1 is the overlap suffix of chunk 0 followed by sentence 3
	if !strings.HasSuffix(chunks[1].Text, s3) {
		t.Error("Chunk 1 should end with the third sentence")
	}
	overlap := strings.TrimSuffix(chunks[1].Text, " "+s3)
	if overlap == "" || !strings.HasSuffix(chunks[0].Text, overlap) {
		t.Errorf("Chunk 1 should start with a suffix of chunk 0, got %q", overlap)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c := Default()
	if chunks := c.Split("", "doc-1", "", nil); chunks != nil {
		t.Errorf("Expected nil chunks for empty text, got %d", len(chunks))
	}
	if chunks := c.Split("   \n\n  ", "doc-1", "", nil); chunks != nil {
		t.Errorf("Expected nil chunks for whitespace text, got %d", len(chunks))
	}
}

func TestSplit_OversizedSentenceMakesProgress(t *testing.T) {
	huge := sentence(1200)
	c := New(900, 100, cleaner.Default())

	chunks := c.Split(huge, "doc-1", "", nil)
	if len(chunks) != 1 {
		t.Fatalf("Expected a single oversized chunk, got %d", len(chunks))
	}
	if chunks[0].Text != huge {
		t.Error("Oversized sentence must be emitted whole")
	}
}

func TestSplit_IndexesAndPositions(t *testing.T) {
	var sentences []string
	for i := 0; i < 12; i++ {
		sentences = append(sentences, sentence(150))
	}
	text := strings.Join(sentences, " ")

	c := New(400, 50, cleaner.Default())
	chunks := c.Split(text, "doc-1", "chat-9", nil)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	seen := make(map[int]bool)
	lastStart := -1
	for _, chunk := range chunks {
		if seen[chunk.ChunkIndex] {
			t.Errorf("chunk_index %d reused", chunk.ChunkIndex)
		}
		seen[chunk.ChunkIndex] = true

		if chunk.StartPosition < lastStart {
			t.Errorf("start positions must be non-decreasing: %d after %d", chunk.StartPosition, lastStart)
		}
		lastStart = chunk.StartPosition

		if chunk.EndPosition-chunk.StartPosition != chunk.Length {
			t.Errorf("span/length mismatch: %d-%d vs %d", chunk.StartPosition, chunk.EndPosition, chunk.Length)
		}
		if chunk.Length != len(chunk.Text) {
			t.Errorf("length %d does not match text %d", chunk.Length, len(chunk.Text))
		}
		if chunk.DocumentId != "doc-1" || chunk.ChatId != "chat-9" {
			t.Errorf("ownership mismatch: %+v", chunk)
		}
		if chunk.Id == "" {
			t.Error("chunk must receive a fresh id")
		}
	}

	// every sentence survives somewhere, in order
	all := strings.Join(chunkTexts(chunks), " ")
	for i, s := range sentences {
		if !strings.Contains(all, s) {
			t.Errorf("sentence %d dropped from chunk sequence", i)
		}
	}
}

func TestSplit_GreedyOverrunBound(t *testing.T) {
	var sentences []string
	for i := 0; i < 10; i++ {
		sentences = append(sentences, sentence(220))
	}
	c := New(500, 80, cleaner.Default())

	chunks := c.Split(strings.Join(sentences, " "), "doc-1", "", nil)
	for i, chunk := range chunks[:len(chunks)-1] {
		// non-final chunks may overrun the limit by at most one sentence
		if len(chunk.Text) > 500+220+1 {
			t.Errorf("chunk %d length %d exceeds greedy overrun bound", i, len(chunk.Text))
		}
	}
}

func TestSplit_MetadataMergedVerbatim(t *testing.T) {
	c := New(900, 100, cleaner.Default())
	chunks := c.Split(sentence(100), "doc-1", "", map[string]any{"source": "upload", "page": 3})
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata["source"] != "upload" || chunks[0].Metadata["page"] != 3 {
		t.Errorf("Metadata not merged verbatim: %+v", chunks[0].Metadata)
	}
}

func TestOverlapSuffix(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		expected string
	}{
		{"Whole_Buffer_When_Short", "tiny.", 100, "tiny."},
		{"Raw_Window_Without_Boundary", "aaaaaaaaaabbbbbbbbbb", 10, "bbbbbbbbbb"},
		{"Trims_To_Sentence_Boundary", "first part. second part here", 20, "second part here"},
		{"Zero_Overlap", "anything at all.", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapSuffix(tt.text, tt.size); got != tt.expected {
				t.Errorf("overlapSuffix(%q, %d) = %q; want %q", tt.text, tt.size, got, tt.expected)
			}
		})
	}
}

func chunkTexts(chunks []commonModels.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}
