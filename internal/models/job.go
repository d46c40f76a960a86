package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IngestionQueue is the Redis list linking the upload handler to the worker pool.
const IngestionQueue = "queue:knowledge-ingestion"

type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"` // "knowledge-ingestion"
	ReferenceID  uuid.UUID       `json:"reference_id"`
	ConfigJSON   json.RawMessage `json:"config"`
	Status       string          `json:"status"` // "pending" | "processing" | "completed" | "failed"
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

type IngestionProgress struct {
	JobID     uuid.UUID `json:"job_id"`
	FileID    uuid.UUID `json:"file_id"`
	Step      string    `json:"step"`
	Chunks    int       `json:"chunks"`
	Completed bool      `json:"completed"`
}
