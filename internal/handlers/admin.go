package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"medichat-backend/internal/agents"
	"medichat-backend/internal/repository"
)

var serverStart = time.Now()

type AdminHandler struct {
	userRepo      *repository.UserRepo
	sessionRepo   *repository.SessionRepo
	knowledgeRepo *repository.KnowledgeRepo
	pool          *pgxpool.Pool
	redis         *redis.Client
	ragAgent      *agents.RAGAgent
	webAgent      *agents.WebSearchAgent
	env           string
}

func NewAdminHandler(
	userRepo *repository.UserRepo,
	sessionRepo *repository.SessionRepo,
	knowledgeRepo *repository.KnowledgeRepo,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	ragAgent *agents.RAGAgent,
	webAgent *agents.WebSearchAgent,
	env string,
) *AdminHandler {
	return &AdminHandler{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		knowledgeRepo: knowledgeRepo,
		pool:          pool,
		redis:         redisClient,
		ragAgent:      ragAgent,
		webAgent:      webAgent,
		env:           env,
	}
}

// Health reports process liveness plus dependency reachability.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.pool != nil && h.pool.Ping(r.Context()) == nil
	redisOK := h.redis != nil && h.redis.Ping(r.Context()).Err() == nil

	status := "healthy"
	code := http.StatusOK
	if !dbOK || !redisOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"environment":    h.env,
		"uptime_seconds": int(time.Since(serverStart).Seconds()),
		"dependencies": map[string]bool{
			"postgres":       dbOK,
			"redis":          redisOK,
			"knowledge_base": h.ragAgent != nil && h.ragAgent.Ready(),
			"websearch":      h.webAgent != nil && h.webAgent.Ready(),
		},
	})
}

// Stats powers the dashboard overview cards.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load stats", r))
		return
	}
	sessions, err := h.sessionRepo.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load stats", r))
		return
	}
	indexed, err := h.knowledgeRepo.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load stats", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_users":    users,
		"total_sessions": sessions,
		"indexed_files":  indexed,
	})
}
