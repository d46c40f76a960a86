package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedSingleInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all-MiniLM-L6-v2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer hf-token" {
			t.Errorf("Authorization = %q", auth)
		}

		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if _, isString := payload["inputs"].(string); !isString {
			t.Errorf("single input should be sent as a bare string, got %T", payload["inputs"])
		}

		json.NewEncoder(w).Encode([]float32{0.1, 0.2, 0.3})
	}))
	defer srv.Close()

	c := NewEmbeddingClient("hf-token", "all-MiniLM-L6-v2")
	c.baseURL = srv.URL

	vecs, err := c.Embed(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 3 {
		t.Fatalf("vecs = %v", vecs)
	}
}

func TestEmbedMultipleInputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	}))
	defer srv.Close()

	c := NewEmbeddingClient("hf-token", "model")
	c.baseURL = srv.URL

	vecs, err := c.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("vecs = %v", vecs)
	}
}

func TestEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewEmbeddingClient("hf-token", "model")
	c.baseURL = srv.URL

	if _, err := c.Embed(context.Background(), []string{"x"}); err == nil {
		t.Error("expected error on 503")
	}
}

func TestEmbedNoInputs(t *testing.T) {
	c := NewEmbeddingClient("hf-token", "model")
	vecs, err := c.Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("Embed(nil) = %v, %v", vecs, err)
	}
}
