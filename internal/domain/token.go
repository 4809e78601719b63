package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIToken is an opaque bearer credential stored server-side.
// A user has at most one live token: issuing a new one deletes the rest.
type APIToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Token     string     `json:"token" db:"token"`
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
