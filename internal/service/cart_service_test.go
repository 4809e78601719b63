package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	service   CartService
	carts     *memCartRepo
	cartItems *memCartItemRepo
	products  *memProductRepo
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:     newMemCartRepo(),
		cartItems: &memCartItemRepo{},
		products:  newMemProductRepo(),
	}
	f.service = NewCartService(f.carts, f.cartItems, f.products, zap.NewNop())
	return f
}

func TestGetOrCreateCart_LazyCreation(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()
	userID := uuid.New()

	cart, err := f.service.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)

	// A second call returns the same cart, not a new one
	again, err := f.service.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestAddItem_RequiresExistingCartAndProduct(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := &domain.Product{ID: uuid.New(), Name: "Table basse", Stock: 3, IsActive: true}
	f.products.products[product.ID] = product

	cart, err := f.service.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)

	_, err = f.service.AddItem(ctx, uuid.New(), product.ID, 1, nil)
	assert.ErrorIs(t, err, repository.ErrCartNotFound)

	_, err = f.service.AddItem(ctx, cart.ID, uuid.New(), 1, nil)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	custom := json.RawMessage(`{"bois":"noyer"}`)
	item, err := f.service.AddItem(ctx, cart.ID, product.ID, 2, custom)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.JSONEq(t, `{"bois":"noyer"}`, string(item.Customization))
}

func TestGetItems_PrunesStaleLines(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	kept := &domain.Product{ID: uuid.New(), Name: "Chaise", Stock: 5, IsActive: true}
	doomed := &domain.Product{ID: uuid.New(), Name: "Tabouret", Stock: 5, IsActive: true}
	f.products.products[kept.ID] = kept
	f.products.products[doomed.ID] = doomed

	cart, err := f.service.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)

	_, err = f.service.AddItem(ctx, cart.ID, kept.ID, 1, nil)
	require.NoError(t, err)
	staleItem, err := f.service.AddItem(ctx, cart.ID, doomed.ID, 1, nil)
	require.NoError(t, err)

	// The product disappears from the catalog after being carted
	require.NoError(t, f.products.Delete(ctx, doomed.ID))

	items, err := f.service.GetItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ProductID)

	// The stale line was deleted, not just filtered
	_, err = f.cartItems.FindByID(ctx, staleItem.ID)
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)

	// Pruning is idempotent
	items, err = f.service.GetItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpdateItem_KeepsCustomizationWhenOmitted(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := &domain.Product{ID: uuid.New(), Name: "Banc", Stock: 5, IsActive: true}
	f.products.products[product.ID] = product

	cart, err := f.service.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)

	item, err := f.service.AddItem(ctx, cart.ID, product.ID, 1, json.RawMessage(`{"finition":"huilée"}`))
	require.NoError(t, err)

	updated, err := f.service.UpdateItem(ctx, item.ID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.JSONEq(t, `{"finition":"huilée"}`, string(updated.Customization))

	_, err = f.service.UpdateItem(ctx, uuid.New(), 1, nil)
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)
}

func TestDeleteCart_RemovesCartAndItems(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	product := &domain.Product{ID: uuid.New(), Name: "Commode", Stock: 5, IsActive: true}
	f.products.products[product.ID] = product

	cart, err := f.service.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)
	item, err := f.service.AddItem(ctx, cart.ID, product.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteCart(ctx, cart.ID))

	_, err = f.carts.FindByID(ctx, cart.ID)
	assert.ErrorIs(t, err, repository.ErrCartNotFound)
	_, err = f.cartItems.FindByID(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrCartItemNotFound)
}
