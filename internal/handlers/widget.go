package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medichat-backend/internal/widget"
)

// WidgetHandler hosts server-side widget instances so the embed script can
// drive a full chat UI with nothing but HTTP calls. Instances are in-memory
// and expendable: losing one means the visitor starts a fresh conversation.
type WidgetHandler struct {
	mu        sync.RWMutex
	instances map[string]*widget.Widget
}

func NewWidgetHandler() *WidgetHandler {
	return &WidgetHandler{instances: make(map[string]*widget.Widget)}
}

type widgetEventRequest struct {
	Action  string          `json:"action"`
	Message string          `json:"message,omitempty"`
	Options *widget.Options `json:"options,omitempty"`
}

// Create builds a new instance from the embed options and returns its id
// along with the initial markup.
func (h *WidgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var opts widget.Options
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
			return
		}
	}

	inst := widget.New(opts, nil)
	id := uuid.NewString()

	h.mu.Lock()
	h.instances[id] = inst
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"instance_id": id,
		"session_id":  inst.SessionID(),
		"html":        inst.Render(),
		"css":         inst.Stylesheet(),
	})
}

// Event applies one UI action to the instance and returns the new markup.
func (h *WidgetHandler) Event(w http.ResponseWriter, r *http.Request) {
	inst := h.lookup(chi.URLParam(r, "instanceID"))
	if inst == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Widget instance not found", r))
		return
	}

	var req widgetEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	switch req.Action {
	case "open":
		inst.Open()
	case "close":
		inst.Close()
	case "minimize":
		inst.Minimize()
	case "reset":
		inst.Reset()
	case "message":
		inst.SendMessage(req.Message)
	case "configure":
		if req.Options == nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Options are required for configure", r))
			return
		}
		inst.Configure(*req.Options)
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown action", r))
		return
	}

	h.writeState(w, inst)
}

// Get returns the current state and markup without mutating anything.
func (h *WidgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	inst := h.lookup(chi.URLParam(r, "instanceID"))
	if inst == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Widget instance not found", r))
		return
	}
	h.writeState(w, inst)
}

// Delete drops the instance.
func (h *WidgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "instanceID")

	h.mu.Lock()
	_, ok := h.instances[id]
	delete(h.instances, id)
	h.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Widget instance not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Widget instance removed"})
}

func (h *WidgetHandler) lookup(id string) *widget.Widget {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.instances[id]
}

func (h *WidgetHandler) writeState(w http.ResponseWriter, inst *widget.Widget) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   inst.SessionID(),
		"is_open":      inst.IsOpen(),
		"is_minimized": inst.IsMinimized(),
		"is_loading":   inst.IsLoading(),
		"messages":     inst.Messages(),
		"html":         inst.Render(),
	})
}
