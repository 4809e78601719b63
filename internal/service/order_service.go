package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductNotFoundError names the missing product when checkout references
// a product that no longer exists.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError carries the available quantity so the response
// can name the product and what is left.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// OrderLine is one requested line item in a checkout
type OrderLine struct {
	ProductID     uuid.UUID
	Quantity      int
	Price         decimal.Decimal
	Customization json.RawMessage
}

// PlaceOrderInput is the checkout request
type PlaceOrderInput struct {
	UserID            uuid.UUID
	Lines             []OrderLine
	Total             decimal.Decimal
	ShippingAddressID *uuid.UUID
	BillingAddressID  *uuid.UUID
	PaymentMethod     domain.PaymentMethod
	Notes             string
}

// OrderService coordinates the multi-entity checkout workflow
type OrderService interface {
	// PlaceOrder runs the full checkout: order, items, stock decrement,
	// synthetic payment, status update and best-effort cart clearing.
	// All writes except the cart clear happen in one transaction.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	tx         repository.TxManager
	orders     repository.OrderRepository
	orderItems repository.OrderItemRepository
	products   repository.ProductRepository
	payments   repository.PaymentRepository
	carts      repository.CartRepository
	cartItems  repository.CartItemRepository
	logger     *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	tx repository.TxManager,
	orders repository.OrderRepository,
	orderItems repository.OrderItemRepository,
	products repository.ProductRepository,
	payments repository.PaymentRepository,
	carts repository.CartRepository,
	cartItems repository.CartItemRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		tx:         tx,
		orders:     orders,
		orderItems: orderItems,
		products:   products,
		payments:   payments,
		carts:      carts,
		cartItems:  cartItems,
		logger:     logger,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	// A positive client-supplied total is trusted as-is; only a missing or
	// non-positive total is recomputed from the submitted lines.
	total := input.Total
	if total.LessThanOrEqual(decimal.Zero) {
		total = decimal.Zero
		for _, line := range input.Lines {
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}

	method := input.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCard
	}

	billing := input.BillingAddressID
	if billing == nil {
		billing = input.ShippingAddressID
	}

	now := time.Now()
	order := &domain.Order{
		ID:                uuid.New(),
		UserID:            input.UserID,
		Status:            domain.OrderStatusPreparing,
		TotalPrice:        total,
		ShippingAddressID: input.ShippingAddressID,
		BillingAddressID:  billing,
		Notes:             input.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.tx.WithinTx(ctx, func(q repository.DBTX) error {
		orders := s.orders.WithTx(q)
		orderItems := s.orderItems.WithTx(q)
		products := s.products.WithTx(q)
		payments := s.payments.WithTx(q)

		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		for _, line := range input.Lines {
			product, err := products.FindByID(ctx, line.ProductID)
			if err != nil {
				if err == repository.ErrProductNotFound {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return err
			}

			if err := products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if err == repository.ErrInsufficientStock {
					return &InsufficientStockError{
						ProductID: product.ID,
						Requested: line.Quantity,
						Available: product.Stock,
					}
				}
				return err
			}

			item := &domain.OrderItem{
				ID:            uuid.New(),
				OrderID:       order.ID,
				ProductID:     product.ID,
				Quantity:      line.Quantity,
				UnitPrice:     line.Price,
				Subtotal:      line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
				Customization: line.Customization,
				CreatedAt:     now,
			}

			if err := orderItems.Create(ctx, item); err != nil {
				return err
			}
		}

		payment := &domain.Payment{
			ID:      uuid.New(),
			OrderID: order.ID,
			Method:  method,
			Amount:  total,
			// No real gateway: the synthetic payment always succeeds
			Status:        domain.PaymentStatusSucceeded,
			TransactionID: fmt.Sprintf("TXN-%d-%s", now.Unix(), order.ID),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := payments.Create(ctx, payment); err != nil {
			return err
		}

		if err := orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Clearing the cart must never fail the order response
	s.clearCart(ctx, input.UserID)

	return s.GetOrder(ctx, order.ID)
}

// clearCart best-effort empties the user's cart after checkout
func (s *orderService) clearCart(ctx context.Context, userID uuid.UUID) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if err != repository.ErrCartNotFound {
			s.logger.Warn("Failed to look up cart after checkout",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return
	}

	if err := s.cartItems.DeleteByCart(ctx, cart.ID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("cart_id", cart.ID.String()),
			zap.Error(err),
		)
	}
}

// GetOrder retrieves an order with its items and payment attached
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.orderItems.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	payment, err := s.payments.FindByOrder(ctx, id)
	if err != nil && err != repository.ErrPaymentNotFound {
		return nil, err
	}
	order.Payment = payment

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateOrder applies a manager edit. Status transitions are intentionally
// unrestricted: any status may be set to any other.
func (s *orderService) UpdateOrder(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now()
	return s.orders.Update(ctx, order)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.orders.Delete(ctx, id)
}
