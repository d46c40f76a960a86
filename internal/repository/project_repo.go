package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medichat-backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

// GetConfig returns the stored config, or the built-in defaults when the
// project has never been configured.
func (r *ProjectRepo) GetConfig(ctx context.Context, projectID string) (*models.ProjectConfig, error) {
	cfg := &models.ProjectConfig{}
	var sitesJSON, filesJSON []byte

	query := `SELECT project_id, bot_persona, curated_sites, knowledge_base_files, created_at, updated_at
		FROM project_configs WHERE project_id = $1`

	err := r.pool.QueryRow(ctx, query, projectID).Scan(
		&cfg.ProjectID, &cfg.BotPersona, &sitesJSON, &filesJSON, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultProjectConfig(projectID), nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(sitesJSON, &cfg.CuratedSites); err != nil {
		cfg.CuratedSites = []string{}
	}
	if err := json.Unmarshal(filesJSON, &cfg.KnowledgeBaseFiles); err != nil {
		cfg.KnowledgeBaseFiles = []string{}
	}
	return cfg, nil
}

// UpsertConfig creates or replaces the project configuration.
func (r *ProjectRepo) UpsertConfig(ctx context.Context, cfg *models.ProjectConfig) error {
	if cfg.CuratedSites == nil {
		cfg.CuratedSites = []string{}
	}
	if cfg.KnowledgeBaseFiles == nil {
		cfg.KnowledgeBaseFiles = []string{}
	}

	sitesJSON, err := json.Marshal(cfg.CuratedSites)
	if err != nil {
		return err
	}
	filesJSON, err := json.Marshal(cfg.KnowledgeBaseFiles)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO project_configs (project_id, bot_persona, curated_sites, knowledge_base_files)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id) DO UPDATE
		SET bot_persona = EXCLUDED.bot_persona,
		    curated_sites = EXCLUDED.curated_sites,
		    knowledge_base_files = EXCLUDED.knowledge_base_files,
		    updated_at = $5
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cfg.ProjectID, cfg.BotPersona, sitesJSON, filesJSON, time.Now(),
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
}

// AddKnowledgeFile records the filename on the config's knowledge_base_files list.
func (r *ProjectRepo) AddKnowledgeFile(ctx context.Context, projectID, filename string) error {
	cfg, err := r.GetConfig(ctx, projectID)
	if err != nil {
		return err
	}
	for _, f := range cfg.KnowledgeBaseFiles {
		if f == filename {
			return nil
		}
	}
	cfg.KnowledgeBaseFiles = append(cfg.KnowledgeBaseFiles, filename)
	return r.UpsertConfig(ctx, cfg)
}
