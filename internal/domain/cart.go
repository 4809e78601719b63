package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cart is a user's shopping cart, created lazily on first interaction.
// A user has at most one cart in practice, looked up by user id.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem is a product line in a cart. Lines whose product no longer
// exists are pruned on the next read.
type CartItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CartID        uuid.UUID       `json:"cart_id" db:"cart_id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Customization json.RawMessage `json:"customization,omitempty" db:"customization"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
