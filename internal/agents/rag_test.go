package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubIndex struct {
	ready    bool
	matches  []PineconeMatch
	queryErr error
	upserted []PineconeVector
}

func (s *stubIndex) Ready() bool { return s.ready }

func (s *stubIndex) Upsert(ctx context.Context, vectors []PineconeVector) error {
	s.upserted = append(s.upserted, vectors...)
	return nil
}

func (s *stubIndex) Query(ctx context.Context, vector []float32, topK int) ([]PineconeMatch, error) {
	return s.matches, s.queryErr
}

func match(score float64, text string) PineconeMatch {
	return PineconeMatch{
		Score:    score,
		Metadata: map[string]interface{}{"text": text},
	}
}

func TestRAGSearchAssemblesContext(t *testing.T) {
	index := &stubIndex{
		ready: true,
		matches: []PineconeMatch{
			match(0.95, "Aspirin reduces fever."),
			match(0.85, "Ibuprofen is an NSAID."),
			match(0.5, "Below the similarity cutoff."),
		},
	}
	agent := NewRAGAgent(&stubEmbedder{}, index)

	result := agent.Search(context.Background(), "what lowers a fever?")

	if !result.Success {
		t.Fatalf("expected success, got message %q", result.Message)
	}
	if !strings.Contains(result.Context, "Aspirin reduces fever.") {
		t.Errorf("context missing first match: %q", result.Context)
	}
	if !strings.Contains(result.Context, "Ibuprofen") {
		t.Errorf("context missing second match: %q", result.Context)
	}
	if strings.Contains(result.Context, "cutoff") {
		t.Errorf("low-score match leaked into context: %q", result.Context)
	}
	if result.Sources["type"] != "knowledge_base" {
		t.Errorf("sources type = %v", result.Sources["type"])
	}
	if result.Sources["count"] != 2 {
		t.Errorf("sources count = %v, want 2", result.Sources["count"])
	}
}

func TestRAGSearchNoRelevantMatches(t *testing.T) {
	index := &stubIndex{
		ready:   true,
		matches: []PineconeMatch{match(0.2, "irrelevant")},
	}
	agent := NewRAGAgent(&stubEmbedder{}, index)

	result := agent.Search(context.Background(), "query")

	if !result.Success {
		t.Error("no-match search is still a successful search")
	}
	if !strings.Contains(result.Context, "No specific information found") {
		t.Errorf("context = %q", result.Context)
	}
	if result.Sources["type"] != "general" {
		t.Errorf("sources type = %v", result.Sources["type"])
	}
}

func TestRAGSearchIndexUnavailable(t *testing.T) {
	agent := NewRAGAgent(&stubEmbedder{}, &stubIndex{ready: false})

	result := agent.Search(context.Background(), "query")

	if result.Success {
		t.Error("unavailable index must not report success")
	}
	if !strings.Contains(result.Context, "temporarily unavailable") {
		t.Errorf("context = %q", result.Context)
	}
}

func TestRAGSearchEmbeddingFailure(t *testing.T) {
	agent := NewRAGAgent(&stubEmbedder{err: errors.New("hf down")}, &stubIndex{ready: true})

	result := agent.Search(context.Background(), "query")

	if result.Success {
		t.Error("embedding failure must not report success")
	}
	if result.Sources["description"] != "Embedding service failed" {
		t.Errorf("sources = %v", result.Sources)
	}
}

func TestRAGSearchTokenCap(t *testing.T) {
	big := strings.Repeat("medical knowledge text ", 400)
	index := &stubIndex{
		ready: true,
		matches: []PineconeMatch{
			match(0.9, big),
			match(0.89, "short fact"),
		},
	}
	agent := NewRAGAgent(&stubEmbedder{}, index)

	result := agent.Search(context.Background(), "query")

	// The oversized document exceeds the token cap on its own, so the
	// assembled context should fall through to the general-knowledge path
	// or hold only what fits.
	if strings.Contains(result.Context, big) {
		t.Error("token cap did not exclude the oversized document")
	}
}

func TestRAGAddDocuments(t *testing.T) {
	index := &stubIndex{ready: true}
	agent := NewRAGAgent(&stubEmbedder{}, index)

	added, err := agent.AddDocuments(context.Background(), []Document{
		{Text: "Hypertension raises stroke risk.", Metadata: map[string]interface{}{"source": "guide.pdf"}},
		{Text: "   ", Metadata: nil},
		{Text: "Statins lower LDL cholesterol.", Metadata: map[string]interface{}{"source": "guide.pdf"}},
	})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2 (blank document skipped)", added)
	}
	if len(index.upserted) != 2 {
		t.Fatalf("upserted %d vectors", len(index.upserted))
	}
	for _, v := range index.upserted {
		if !strings.HasPrefix(v.ID, "doc_") {
			t.Errorf("vector id %q missing doc_ prefix", v.ID)
		}
		if v.Metadata["source"] != "guide.pdf" {
			t.Errorf("metadata source = %v", v.Metadata["source"])
		}
		if v.Metadata["text"] == "" {
			t.Error("metadata text should carry the document body")
		}
	}
}

func TestRAGAddDocumentsNotReady(t *testing.T) {
	agent := NewRAGAgent(&stubEmbedder{}, &stubIndex{ready: false})
	if _, err := agent.AddDocuments(context.Background(), []Document{{Text: "x"}}); err == nil {
		t.Error("expected error when index is unavailable")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("truncate = %q", got)
	}
}
