package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medichat-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, phone, age, medical_conditions, emergency_contact, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	user.ID = uuid.New()
	user.IsActive = true

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName,
		user.Phone, user.Age, user.MedicalConditions, user.EmergencyContact, user.IsActive,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, phone, age, medical_conditions, emergency_contact,
			is_active, total_sessions, created_at, last_active_at
		FROM users WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Phone, &user.Age, &user.MedicalConditions, &user.EmergencyContact,
		&user.IsActive, &user.TotalSessions, &user.CreatedAt, &user.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, phone, age, medical_conditions, emergency_contact,
			is_active, total_sessions, created_at, last_active_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Phone, &user.Age, &user.MedicalConditions, &user.EmergencyContact,
		&user.IsActive, &user.TotalSessions, &user.CreatedAt, &user.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, email, password_hash, full_name, phone, age, medical_conditions, emergency_contact,
			is_active, total_sessions, created_at, last_active_at
		FROM users ORDER BY last_active_at DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
			&user.Phone, &user.Age, &user.MedicalConditions, &user.EmergencyContact,
			&user.IsActive, &user.TotalSessions, &user.CreatedAt, &user.LastActiveAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepo) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_active_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) IncrementSessionCount(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET total_sessions = total_sessions + 1 WHERE id = $1", userID)
	return err
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET full_name = $1, phone = $2, age = $3, medical_conditions = $4, emergency_contact = $5
		WHERE id = $6`,
		user.FullName, user.Phone, user.Age, user.MedicalConditions, user.EmergencyContact, user.ID,
	)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
