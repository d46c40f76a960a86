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

// EmbeddingClient calls the HuggingFace Inference API feature-extraction
// pipeline for the configured sentence-transformer model.
type EmbeddingClient struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
}

func NewEmbeddingClient(token, model string) *EmbeddingClient {
	return &EmbeddingClient{
		baseURL:    "https://api-inference.huggingface.co/models",
		model:      model,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed returns one vector per input text.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]interface{}{"inputs": texts}
	if len(texts) == 1 {
		payload["inputs"] = texts[0]
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", c.baseURL, c.model), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding API error: %d - %s", resp.StatusCode, string(msg))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Single input returns one vector, multiple inputs a list of vectors.
	var many [][]float32
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many, nil
	}
	var one []float32
	if err := json.Unmarshal(raw, &one); err == nil && len(one) > 0 {
		return [][]float32{one}, nil
	}

	return nil, fmt.Errorf("unexpected embedding response format")
}
