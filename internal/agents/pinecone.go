package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PineconeClient is a minimal data-plane client for a single serverless index.
type PineconeClient struct {
	indexHost  string
	apiKey     string
	httpClient *http.Client
}

type PineconeVector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type PineconeMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

func NewPineconeClient(apiKey, indexHost string) *PineconeClient {
	return &PineconeClient{
		indexHost:  indexHost,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ready reports whether the client has enough configuration to serve requests.
func (c *PineconeClient) Ready() bool {
	return c.apiKey != "" && c.indexHost != ""
}

func (c *PineconeClient) Upsert(ctx context.Context, vectors []PineconeVector) error {
	if !c.Ready() {
		return fmt.Errorf("pinecone index not configured")
	}

	payload := map[string]interface{}{"vectors": vectors}
	var out struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := c.post(ctx, "/vectors/upsert", payload, &out); err != nil {
		return err
	}
	if out.UpsertedCount != len(vectors) {
		return fmt.Errorf("pinecone upserted %d of %d vectors", out.UpsertedCount, len(vectors))
	}
	return nil
}

func (c *PineconeClient) Query(ctx context.Context, vector []float32, topK int) ([]PineconeMatch, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("pinecone index not configured")
	}

	payload := map[string]interface{}{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	var out struct {
		Matches []PineconeMatch `json:"matches"`
	}
	if err := c.post(ctx, "/query", payload, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

func (c *PineconeClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexHost+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pinecone API error: %d - %s", resp.StatusCode, string(msg))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
