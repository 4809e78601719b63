package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a free-form status field, not a guarded state machine.
// Checkout moves an order to StatusPaid; later transitions are manager edits.
type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "en préparation"
	OrderStatusPaid      OrderStatus = "payée"
	OrderStatusShipped   OrderStatus = "expédiée"
	OrderStatusDelivered OrderStatus = "livrée"
	OrderStatusCancelled OrderStatus = "annulée"
)

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPreparing, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order with its line items and payment
type Order struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	TotalPrice        decimal.Decimal `json:"total_price" db:"total_price"`
	ShippingAddressID *uuid.UUID      `json:"shipping_address_id" db:"shipping_address_id"`
	BillingAddressID  *uuid.UUID      `json:"billing_address_id" db:"billing_address_id"`
	TrackingNumber    string          `json:"tracking_number" db:"tracking_number"`
	Notes             string          `json:"notes" db:"notes"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`

	Items   []*OrderItem `json:"items,omitempty"`
	Payment *Payment     `json:"payment,omitempty"`
}

// OrderItem snapshots a product line at order time.
// UnitPrice is a point-in-time copy, immune to later product price changes.
type OrderItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderID       uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Customization json.RawMessage `json:"customization,omitempty" db:"customization"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PaymentMethod is the nominal payment instrument
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "carte_bancaire"
	PaymentMethodTransfer PaymentMethod = "virement"
	PaymentMethodCheque   PaymentMethod = "cheque"
)

// Valid reports whether m is one of the known payment methods
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodTransfer || m == PaymentMethodCheque
}

// PaymentStatus is the state of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "en attente"
	PaymentStatusSucceeded PaymentStatus = "réussi"
	PaymentStatusFailed    PaymentStatus = "échoué"
	PaymentStatusCancelled PaymentStatus = "annulé"
)

// Payment represents a payment record. Payments are always synthetic in
// this system and are marked successful with no real gateway integration.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrderID       uuid.UUID       `json:"order_id" db:"order_id"`
	Method        PaymentMethod   `json:"method" db:"method"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        PaymentStatus   `json:"status" db:"status"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
