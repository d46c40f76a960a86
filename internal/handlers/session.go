package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medichat-backend/internal/middleware"
	"medichat-backend/internal/repository"
)

type SessionHandler struct {
	sessionRepo *repository.SessionRepo
}

func NewSessionHandler(sessionRepo *repository.SessionRepo) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo}
}

// List returns every stored conversation, newest first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionRepo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessionRepo.GetByID(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Mine returns the authenticated user's own conversations.
func (h *SessionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Authentication required", r))
		return
	}

	sessions, err := h.sessionRepo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.sessionRepo.GetByID(r.Context(), sessionID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	if err := h.sessionRepo.Delete(r.Context(), sessionID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete session", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}
