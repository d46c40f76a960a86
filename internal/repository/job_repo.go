package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medichat-backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.Status = "pending"
	j.RetryCount = 0
	if j.MaxRetries == 0 {
		j.MaxRetries = 3
	}

	config := j.ConfigJSON
	if config == nil {
		config = []byte("{}")
	}

	query := `INSERT INTO jobs (id, user_id, type, reference_id, config_json, status, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		j.ID, j.UserID, j.Type, j.ReferenceID, config, j.Status, j.RetryCount,
	).Scan(&j.CreatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j := &models.Job{}
	query := `SELECT id, user_id, type, reference_id, config_json, status, retry_count, error_message, created_at, completed_at
		FROM jobs WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.UserID, &j.Type, &j.ReferenceID, &j.ConfigJSON, &j.Status,
		&j.RetryCount, &j.ErrorMessage, &j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *JobRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE jobs SET status = $1 WHERE id = $2", status, id)
	return err
}

func (r *JobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = 'completed', completed_at = $1 WHERE id = $2",
		time.Now(), id,
	)
	return err
}

func (r *JobRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = 'failed', error_message = $1, completed_at = $2 WHERE id = $3",
		errMsg, time.Now(), id,
	)
	return err
}

func (r *JobRepo) IncrementRetry(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"UPDATE jobs SET retry_count = retry_count + 1 WHERE id = $1 RETURNING retry_count",
		id,
	).Scan(&count)
	return count, err
}
