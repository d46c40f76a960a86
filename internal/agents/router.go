package agents

import (
	"context"
	"log"
)

const (
	AgentRAG       = "RAG_Agent"
	AgentWebSearch = "WebSearch_Agent"
)

// RouteClassifier is the LLM call the router depends on; satisfied by
// services.LLMService.
type RouteClassifier interface {
	ClassifyRoute(ctx context.Context, query string) (string, error)
}

// Router decides which specialized agent handles a query. Any error or
// unexpected decision falls back to the RAG agent.
type Router struct {
	classifier RouteClassifier
}

func NewRouter(classifier RouteClassifier) *Router {
	return &Router{classifier: classifier}
}

func (r *Router) Route(ctx context.Context, query string) string {
	if r.classifier == nil {
		return AgentRAG
	}

	decision, err := r.classifier.ClassifyRoute(ctx, query)
	if err != nil {
		log.Printf("routing error, defaulting to %s: %v", AgentRAG, err)
		return AgentRAG
	}

	switch decision {
	case AgentRAG, AgentWebSearch:
		return decision
	}

	log.Printf("invalid agent decision %q, defaulting to %s", decision, AgentRAG)
	return AgentRAG
}
