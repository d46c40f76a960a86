package agents

import (
	"context"
	"errors"
	"testing"
)

type stubClassifier struct {
	decision string
	err      error
}

func (s *stubClassifier) ClassifyRoute(ctx context.Context, query string) (string, error) {
	return s.decision, s.err
}

func TestRouterRoute(t *testing.T) {
	tests := []struct {
		name     string
		decision string
		err      error
		want     string
	}{
		{"rag decision", AgentRAG, nil, AgentRAG},
		{"websearch decision", AgentWebSearch, nil, AgentWebSearch},
		{"classifier error falls back to rag", "", errors.New("llm unavailable"), AgentRAG},
		{"invalid decision falls back to rag", "Banana_Agent", nil, AgentRAG},
		{"empty decision falls back to rag", "", nil, AgentRAG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(&stubClassifier{decision: tt.decision, err: tt.err})
			if got := r.Route(context.Background(), "what causes migraines?"); got != tt.want {
				t.Errorf("Route() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouterNilClassifier(t *testing.T) {
	r := NewRouter(nil)
	if got := r.Route(context.Background(), "anything"); got != AgentRAG {
		t.Errorf("Route() = %q, want %q", got, AgentRAG)
	}
}
