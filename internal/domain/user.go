package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user is allowed to do
type Role string

const (
	RoleClient  Role = "client"
	RoleManager Role = "manager"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleManager
}

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
