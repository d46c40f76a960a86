package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medichat-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.ChatSession) error {
	if s.Messages == nil {
		s.Messages = []models.ChatMessage{}
	}
	if s.Status == "" {
		s.Status = "active"
	}
	messagesJSON, err := json.Marshal(s.Messages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chat_sessions (session_id, user_id, project_id, title, status, messages)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		s.SessionID, s.UserID, s.ProjectID, s.Title, s.Status, messagesJSON,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	var messagesJSON []byte

	query := `SELECT session_id, user_id, project_id, title, status, messages, created_at, updated_at
		FROM chat_sessions WHERE session_id = $1`

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&s.SessionID, &s.UserID, &s.ProjectID, &s.Title, &s.Status,
		&messagesJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(messagesJSON, &s.Messages); err != nil {
		// Tolerate malformed transcripts rather than losing the session.
		s.Messages = []models.ChatMessage{}
	}
	return s, nil
}

// AppendMessages adds turns to the transcript, creating the session on first use.
func (r *SessionRepo) AppendMessages(ctx context.Context, sessionID, projectID string, userID *uuid.UUID, msgs ...models.ChatMessage) error {
	s, err := r.GetByID(ctx, sessionID)
	if err != nil {
		s = &models.ChatSession{
			SessionID: sessionID,
			UserID:    userID,
			ProjectID: projectID,
			Status:    "active",
			Messages:  []models.ChatMessage{},
		}
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}

	s.Messages = append(s.Messages, msgs...)
	messagesJSON, err := json.Marshal(s.Messages)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		"UPDATE chat_sessions SET messages = $1, updated_at = $2 WHERE session_id = $3",
		messagesJSON, time.Now(), sessionID,
	)
	return err
}

func (r *SessionRepo) List(ctx context.Context) ([]*models.ChatSession, error) {
	return r.list(ctx, "SELECT session_id, user_id, project_id, title, status, messages, created_at, updated_at FROM chat_sessions ORDER BY created_at DESC")
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	return r.list(ctx,
		"SELECT session_id, user_id, project_id, title, status, messages, created_at, updated_at FROM chat_sessions WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
}

func (r *SessionRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.ChatSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		s := &models.ChatSession{}
		var messagesJSON []byte
		if err := rows.Scan(
			&s.SessionID, &s.UserID, &s.ProjectID, &s.Title, &s.Status,
			&messagesJSON, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(messagesJSON, &s.Messages); err != nil {
			s.Messages = []models.ChatMessage{}
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_sessions WHERE session_id = $1", sessionID)
	return err
}

func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chat_sessions").Scan(&n)
	return n, err
}
