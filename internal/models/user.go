package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	FullName          string     `json:"full_name"`
	Phone             *string    `json:"phone"`
	Age               *int       `json:"age"`
	MedicalConditions *string    `json:"medical_conditions"`
	EmergencyContact  *string    `json:"emergency_contact"`
	IsActive          bool       `json:"is_active"`
	TotalSessions     int        `json:"total_sessions"`
	CreatedAt         time.Time  `json:"created_at"`
	LastActiveAt      *time.Time `json:"last_active_at"`
}

type RegisterRequest struct {
	FullName          string  `json:"full_name"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	Phone             *string `json:"phone"`
	Age               *int    `json:"age"`
	MedicalConditions *string `json:"medical_conditions"`
	EmergencyContact  *string `json:"emergency_contact"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
