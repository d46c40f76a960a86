package worker

import (
	"strings"
	"testing"
)

func TestChunkTextShortInput(t *testing.T) {
	chunks := chunkText("one small document", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "one small document" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestChunkTextSplitsWithOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Sentence about chronic disease management number ")
		b.WriteString(strings.Repeat("x", 10))
		b.WriteString(". ")
	}
	text := b.String()

	chunks := chunkText(text, 500, 100)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 500+100 {
			t.Errorf("chunk %d too long: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}

	// Overlap: the start of each following chunk should repeat text from the
	// end of the previous one.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > 40 {
			head = head[:40]
		}
		if !strings.Contains(text, head) {
			t.Errorf("chunk %d start not found in source text", i)
		}
	}
}

func TestChunkTextPrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("alpha ", 70) // ~420 chars
	text := para + "\n\n" + strings.Repeat("beta ", 70)

	chunks := chunkText(text, 500, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected a split, got %d chunks", len(chunks))
	}
	if strings.Contains(chunks[0], "beta") {
		t.Errorf("first chunk crossed the paragraph boundary: %q", chunks[0][:80])
	}
}
