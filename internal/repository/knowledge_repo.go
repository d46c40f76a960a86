package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medichat-backend/internal/models"
)

type KnowledgeRepo struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepo(pool *pgxpool.Pool) *KnowledgeRepo {
	return &KnowledgeRepo{pool: pool}
}

func (r *KnowledgeRepo) Create(ctx context.Context, f *models.KnowledgeFile) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = "pending"
	}

	query := `INSERT INTO knowledge_files (id, project_id, filename, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		f.ID, f.ProjectID, f.Filename, f.SizeBytes, f.Status,
	).Scan(&f.CreatedAt)
}

func (r *KnowledgeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.KnowledgeFile, error) {
	f := &models.KnowledgeFile{}
	query := `SELECT id, project_id, filename, size_bytes, status, error, created_at, indexed_at
		FROM knowledge_files WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.ProjectID, &f.Filename, &f.SizeBytes, &f.Status, &f.Error, &f.CreatedAt, &f.IndexedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *KnowledgeRepo) ListByProject(ctx context.Context, projectID string) ([]*models.KnowledgeFile, error) {
	query := `SELECT id, project_id, filename, size_bytes, status, error, created_at, indexed_at
		FROM knowledge_files WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.KnowledgeFile
	for rows.Next() {
		f := &models.KnowledgeFile{}
		if err := rows.Scan(
			&f.ID, &f.ProjectID, &f.Filename, &f.SizeBytes, &f.Status, &f.Error, &f.CreatedAt, &f.IndexedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *KnowledgeRepo) MarkIndexed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE knowledge_files SET status = 'indexed', error = NULL, indexed_at = $1 WHERE id = $2",
		time.Now(), id,
	)
	return err
}

func (r *KnowledgeRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE knowledge_files SET status = 'failed', error = $1 WHERE id = $2",
		errMsg, id,
	)
	return err
}

func (r *KnowledgeRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE knowledge_files SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *KnowledgeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM knowledge_files WHERE status = 'indexed'").Scan(&n)
	return n, err
}
