package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single turn inside a session transcript.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is one conversation, with the transcript stored as JSONB.
type ChatSession struct {
	SessionID string        `json:"session_id"`
	UserID    *uuid.UUID    `json:"user_id"`
	ProjectID string        `json:"project_id"`
	Title     *string       `json:"title"`
	Status    string        `json:"status"` // "active" | "closed"
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChatRequest is the payload the widget and the dashboard send to the chat endpoint.
type ChatRequest struct {
	Message        string          `json:"message"`
	ConversationID string          `json:"conversation_id"`
	UserID         string          `json:"user_id"`
	Context        json.RawMessage `json:"context"`
}

// ChatResponse is the reply from the agent pipeline.
type ChatResponse struct {
	Response  string      `json:"response"`
	AgentUsed string      `json:"agent_used"`
	Sources   interface{} `json:"sources"`
	Safe      bool        `json:"safe"`
	ProjectID string      `json:"project_id"`
}

// ChatActivity is published on Redis pub/sub after every handled chat turn.
type ChatActivity struct {
	SessionID string    `json:"session_id"`
	ProjectID string    `json:"project_id"`
	AgentUsed string    `json:"agent_used"`
	Safe      bool      `json:"safe"`
	At        time.Time `json:"at"`
}

// WSMessage is the envelope for dashboard WebSocket updates.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
