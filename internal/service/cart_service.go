package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService manages a user's single cart and its lines
type CartService interface {
	// GetOrCreateCart returns the user's cart, creating it lazily on
	// first use.
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// GetItems returns a cart's items. Lines referencing products that no
	// longer exist are deleted and excluded from the result.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, customization json.RawMessage) (*domain.CartItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int, customization json.RawMessage) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
}

type cartService struct {
	carts     repository.CartRepository
	cartItems repository.CartItemRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	carts repository.CartRepository,
	cartItems repository.CartItemRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) CartService {
	return &cartService{
		carts:     carts,
		cartItems: cartItems,
		products:  products,
		logger:    logger,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if err != repository.ErrCartNotFound {
		return nil, err
	}

	cart = &domain.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartService) GetItems(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	items, err := s.cartItems.ListByCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	// Repair referential integrity on read: prune lines whose product was
	// deleted since they were added.
	kept := make([]*domain.CartItem, 0, len(items))
	for _, item := range items {
		_, err := s.products.FindByID(ctx, item.ProductID)
		if err == repository.ErrProductNotFound {
			if delErr := s.cartItems.Delete(ctx, item.ID); delErr != nil && delErr != repository.ErrCartItemNotFound {
				s.logger.Warn("Failed to prune stale cart item",
					zap.String("cart_item_id", item.ID.String()),
					zap.Error(delErr),
				)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		kept = append(kept, item)
	}

	return kept, nil
}

// AddItem appends a new line. Duplicate product+customization lines are
// not merged server-side; the storefront owns that behavior.
func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int, customization json.RawMessage) (*domain.CartItem, error) {
	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return nil, err
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &domain.CartItem{
		ID:            uuid.New(),
		CartID:        cartID,
		ProductID:     productID,
		Quantity:      quantity,
		Customization: customization,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.cartItems.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *cartService) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int, customization json.RawMessage) (*domain.CartItem, error) {
	item, err := s.cartItems.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if customization != nil {
		item.Customization = customization
	}
	item.UpdatedAt = time.Now()

	if err := s.cartItems.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return s.cartItems.Delete(ctx, itemID)
}

// DeleteCart removes the cart and its items. Items are deleted explicitly
// rather than relying solely on the database cascade.
func (s *cartService) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	if err := s.cartItems.DeleteByCart(ctx, cartID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, cartID)
}
