package agents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	similarityThreshold = 0.7
	defaultTopK         = 5
	contextTokenLimit   = 800
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorIndex interface {
	Ready() bool
	Upsert(ctx context.Context, vectors []PineconeVector) error
	Query(ctx context.Context, vector []float32, topK int) ([]PineconeMatch, error)
}

// RAGAgent answers knowledge base queries by embedding the query and pulling
// the closest documents from the vector index.
type RAGAgent struct {
	embedder Embedder
	index    VectorIndex
	encoder  *tiktoken.Tiktoken
}

// RAGResult carries the assembled context plus source attribution.
type RAGResult struct {
	Context string
	Sources map[string]interface{}
	Success bool
	Message string
}

type Document struct {
	Text     string
	Metadata map[string]interface{}
}

func NewRAGAgent(embedder Embedder, index VectorIndex) *RAGAgent {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// Token counting degrades to a character estimate.
		log.Printf("tiktoken encoding unavailable: %v", err)
	}
	return &RAGAgent{embedder: embedder, index: index, encoder: encoder}
}

func (a *RAGAgent) Ready() bool {
	return a.index != nil && a.index.Ready()
}

// AddDocuments embeds and upserts documents into the knowledge base.
func (a *RAGAgent) AddDocuments(ctx context.Context, docs []Document) (int, error) {
	if !a.Ready() {
		return 0, fmt.Errorf("knowledge base index not available")
	}

	vectors := make([]PineconeVector, 0, len(docs))
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" {
			continue
		}

		embeddings, err := a.embedder.Embed(ctx, []string{text})
		if err != nil {
			return 0, fmt.Errorf("failed to embed document: %w", err)
		}

		metadata := make(map[string]interface{}, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		// First 1000 chars are enough for retrieval display.
		metadata["text"] = truncate(text, 1000)

		sum := sha256.Sum256([]byte(text))
		vectors = append(vectors, PineconeVector{
			ID:       "doc_" + hex.EncodeToString(sum[:8]),
			Values:   embeddings[0],
			Metadata: metadata,
		})
	}

	if len(vectors) == 0 {
		return 0, fmt.Errorf("no valid documents to add")
	}

	if err := a.index.Upsert(ctx, vectors); err != nil {
		return 0, err
	}
	return len(vectors), nil
}

// Search executes the retrieval step and assembles a token-capped context.
func (a *RAGAgent) Search(ctx context.Context, query string) RAGResult {
	if !a.Ready() {
		return RAGResult{
			Context: "Knowledge base temporarily unavailable. Providing general medical information.",
			Sources: map[string]interface{}{"type": "error", "description": "Knowledge base connection failed"},
			Success: false,
			Message: "Using general medical knowledge - knowledge base connection failed",
		}
	}

	embeddings, err := a.embedder.Embed(ctx, []string{query})
	if err != nil {
		log.Printf("query embedding failed: %v", err)
		return RAGResult{
			Context: "Knowledge base temporarily unavailable. Providing general medical information.",
			Sources: map[string]interface{}{"type": "error", "description": "Embedding service failed"},
			Success: false,
			Message: "Using general medical knowledge - embedding failed",
		}
	}

	matches, err := a.index.Query(ctx, embeddings[0], defaultTopK)
	if err != nil {
		log.Printf("knowledge base query failed: %v", err)
		return RAGResult{
			Context: "Knowledge base temporarily unavailable. Providing general medical information.",
			Sources: map[string]interface{}{"type": "error", "description": "Knowledge base connection failed"},
			Success: false,
			Message: "Using general medical knowledge - knowledge base connection failed",
		}
	}

	var contextParts []string
	var sourceList []map[string]interface{}
	usedTokens := 0

	for _, match := range matches {
		if match.Score <= similarityThreshold {
			continue
		}
		text, _ := match.Metadata["text"].(string)
		if text == "" {
			continue
		}

		tokens := a.countTokens(text)
		if usedTokens+tokens > contextTokenLimit {
			break
		}
		usedTokens += tokens

		contextParts = append(contextParts, text)
		sourceList = append(sourceList, map[string]interface{}{
			"text":     truncate(text, 200),
			"score":    match.Score,
			"metadata": match.Metadata,
		})
	}

	if len(contextParts) == 0 {
		return RAGResult{
			Context: "No specific information found in knowledge base. Providing general medical knowledge.",
			Sources: map[string]interface{}{"type": "general", "description": "No relevant documents found"},
			Success: true,
			Message: "Using general medical knowledge",
		}
	}

	return RAGResult{
		Context: strings.Join(contextParts, "\n\n"),
		Sources: map[string]interface{}{
			"type":      "knowledge_base",
			"count":     len(sourceList),
			"documents": sourceList,
		},
		Success: true,
		Message: fmt.Sprintf("Found %d relevant documents", len(sourceList)),
	}
}

func (a *RAGAgent) countTokens(text string) int {
	if a.encoder == nil {
		// Rough fallback: ~4 chars per token.
		return len(text) / 4
	}
	return len(a.encoder.Encode(text, nil, nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
