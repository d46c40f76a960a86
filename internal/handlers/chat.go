package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medichat-backend/internal/agents"
	"medichat-backend/internal/models"
	"medichat-backend/internal/repository"
	"medichat-backend/internal/services"
)

// ActivityChannel is the Redis pub/sub channel carrying per-turn chat activity
// consumed by the dashboard WebSocket hub.
const ActivityChannel = "chat_activity"

const unsafeFallback = "I apologize, but I can't provide that information. Please consult a qualified healthcare professional for guidance on this topic."

type ChatHandler struct {
	sessionRepo *repository.SessionRepo
	projectRepo *repository.ProjectRepo
	llm         *services.LLMService
	router      *agents.Router
	ragAgent    *agents.RAGAgent
	webAgent    *agents.WebSearchAgent
	publisher   *redis.Client
}

func NewChatHandler(
	sessionRepo *repository.SessionRepo,
	projectRepo *repository.ProjectRepo,
	llm *services.LLMService,
	router *agents.Router,
	ragAgent *agents.RAGAgent,
	webAgent *agents.WebSearchAgent,
	publisher *redis.Client,
) *ChatHandler {
	return &ChatHandler{
		sessionRepo: sessionRepo,
		projectRepo: projectRepo,
		llm:         llm,
		router:      router,
		ragAgent:    ragAgent,
		webAgent:    webAgent,
		publisher:   publisher,
	}
}

// Ask runs one chat turn through the full pipeline: route, gather agent
// context, generate, safety-check, persist, publish activity.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "session_" + uuid.NewString()
	}

	cfg, err := h.projectRepo.GetConfig(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load project configuration", r))
		return
	}

	agentUsed := h.router.Route(r.Context(), message)

	var agentContext string
	var sources interface{}
	switch agentUsed {
	case agents.AgentWebSearch:
		result := h.webAgent.Search(r.Context(), message, cfg.CuratedSites)
		agentContext = result.Context
		sources = result.Sources
	default:
		result := h.ragAgent.Search(r.Context(), message)
		agentContext = result.Context
		sources = result.Sources
	}

	answer, err := h.llm.GenerateAnswer(r.Context(), message, agentContext, agentUsed)
	if err != nil {
		log.Printf("chat generation failed (session %s): %v", conversationID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to generate a response", r))
		return
	}

	safe := h.llm.CheckSafety(r.Context(), answer)
	if !safe {
		answer = unsafeFallback
	}

	h.persistTurn(r.Context(), conversationID, projectID, req.UserID, message, answer)
	h.publishActivity(conversationID, projectID, agentUsed, safe)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:  answer,
		AgentUsed: agentUsed,
		Sources:   sources,
		Safe:      safe,
		ProjectID: projectID,
	})
}

// persistTurn appends the user and assistant messages to the session. Storage
// failures are logged, never surfaced: the caller already has the answer.
func (h *ChatHandler) persistTurn(ctx context.Context, sessionID, projectID, rawUserID, question, answer string) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(rawUserID); err == nil {
		userID = &parsed
	}

	now := time.Now()
	err := h.sessionRepo.AppendMessages(ctx, sessionID, projectID, userID,
		models.ChatMessage{Role: "user", Content: question, Timestamp: now},
		models.ChatMessage{Role: "assistant", Content: answer, Timestamp: now},
	)
	if err != nil {
		log.Printf("failed to persist chat turn (session %s): %v", sessionID, err)
	}
}

func (h *ChatHandler) publishActivity(sessionID, projectID, agentUsed string, safe bool) {
	if h.publisher == nil {
		return
	}

	activity := models.ChatActivity{
		SessionID: sessionID,
		ProjectID: projectID,
		AgentUsed: agentUsed,
		Safe:      safe,
		At:        time.Now(),
	}
	payload, err := json.Marshal(models.WSMessage{Type: "chat_activity", Payload: activity})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.publisher.Publish(ctx, ActivityChannel, payload).Err(); err != nil {
		log.Printf("failed to publish chat activity: %v", err)
	}
}
