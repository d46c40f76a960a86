package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LLMService wraps the Groq OpenAI-compatible chat completions endpoint.
// One client is shared by generation, routing, and safety checking; the
// per-call model option selects which model handles the request.
type LLMService struct {
	llm             llms.Model
	routerModel     string
	generationModel string
	safetyModel     string
	rateChan        chan struct{} // concurrency slots
}

func NewLLMService(apiKey, baseURL, routerModel, generationModel, safetyModel string, concurrentReqs int) (*LLMService, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(generationModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if concurrentReqs <= 0 {
		concurrentReqs = 5
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &LLMService{
		llm:             llm,
		routerModel:     routerModel,
		generationModel: generationModel,
		safetyModel:     safetyModel,
		rateChan:        rateChan,
	}, nil
}

func (s *LLMService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for LLM rate slot")
	}
}

func (s *LLMService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateAnswer produces the final assistant response from the agent-provided context.
func (s *LLMService) GenerateAnswer(ctx context.Context, query, agentContext, agentUsed string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	systemPrompt := fmt.Sprintf(`You are a helpful medical AI assistant. Use the provided context to answer the user's question accurately and safely.

Context from %s:
%s

Guidelines:
- Provide accurate medical information based on the context
- Always include appropriate medical disclaimers
- Suggest consulting healthcare professionals for serious concerns
- Be empathetic and supportive
- If context is insufficient, acknowledge limitations

Remember: You are providing general medical information, not personal medical advice.`, agentUsed, agentContext)

	resp, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, query),
		},
		llms.WithModel(s.generationModel),
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(1500),
	)
	if err != nil {
		return "", fmt.Errorf("LLM generation error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// ClassifyRoute asks the router model which agent should handle the query.
// The raw decision string is returned; validation happens in the router agent.
func (s *LLMService) ClassifyRoute(ctx context.Context, query string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	routingPrompt := fmt.Sprintf(`Analyze this medical query and determine which specialized agent should handle it.

Query: "%s"

Available agents:
1. RAG_Agent - For questions about medical conditions, symptoms, treatments, general health information, appointment-related queries, and facility information
2. WebSearch_Agent - For current medical news, latest research, drug recalls, recent health updates, breaking health news

Rules:
- Choose RAG_Agent for general medical knowledge questions, appointment inquiries, hospital/clinic information
- Choose WebSearch_Agent ONLY for current/recent medical information that requires up-to-date search results
- When in doubt, choose RAG_Agent

Respond with only the agent name (e.g., "RAG_Agent").`, query)

	resp, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, routingPrompt),
		},
		llms.WithModel(s.routerModel),
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(50),
	)
	if err != nil {
		return "", fmt.Errorf("LLM routing error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// CheckSafety classifies a generated response as safe or unsafe.
// A failed check defaults to safe so a classifier outage never blocks answers.
func (s *LLMService) CheckSafety(ctx context.Context, content string) bool {
	if err := s.acquireRate(ctx); err != nil {
		log.Printf("safety check skipped: %v", err)
		return true
	}
	defer s.releaseRate()

	safetyPrompt := fmt.Sprintf(`You are a safety classifier for medical AI responses. Analyze the following response and determine if it's safe and appropriate for a medical chatbot.

Response to analyze: "%s"

Check for:
- Harmful medical advice
- Inappropriate content
- Dangerous recommendations
- Privacy violations

Respond with only "SAFE" or "UNSAFE" followed by a brief reason.

Classification:`, content)

	resp, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, safetyPrompt),
		},
		llms.WithModel(s.safetyModel),
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(50),
	)
	if err != nil {
		log.Printf("safety check error: %v", err)
		return true
	}
	if len(resp.Choices) == 0 {
		return true
	}

	result := strings.ToLower(strings.TrimSpace(resp.Choices[0].Content))
	return !strings.HasPrefix(result, "unsafe")
}
