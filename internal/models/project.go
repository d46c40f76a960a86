package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectConfig holds the per-project bot settings the admin dashboard edits.
type ProjectConfig struct {
	ProjectID          string    `json:"project_id"`
	BotPersona         string    `json:"bot_persona"`
	CuratedSites       []string  `json:"curated_sites"`
	KnowledgeBaseFiles []string  `json:"knowledge_base_files"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultProjectConfig mirrors the defaults served before an admin has saved anything.
func DefaultProjectConfig(projectID string) *ProjectConfig {
	return &ProjectConfig{
		ProjectID:  projectID,
		BotPersona: "You are a compassionate medical AI assistant that provides accurate health information while emphasizing the importance of consulting healthcare professionals.",
		CuratedSites: []string{
			"mayoclinic.org",
			"webmd.com",
			"healthline.com",
			"medlineplus.gov",
		},
		KnowledgeBaseFiles: []string{},
	}
}

// KnowledgeFile tracks an uploaded knowledge base document through ingestion.
type KnowledgeFile struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID string     `json:"project_id"`
	Filename  string     `json:"filename"`
	SizeBytes int64      `json:"size_bytes"`
	Status    string     `json:"status"` // "pending" | "processing" | "indexed" | "failed" | "skipped"
	Error     *string    `json:"error"`
	CreatedAt time.Time  `json:"created_at"`
	IndexedAt *time.Time `json:"indexed_at"`
}
