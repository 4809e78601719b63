package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory fakes. The transaction manager runs the function directly;
// rollback semantics are covered by the repository integration tests.

type memTxManager struct{}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(q repository.DBTX) error) error {
	return fn(nil)
}

type memProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProductRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	p, ok := m.products[id]
	if !ok || p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (m *memProductRepo) WithTx(q repository.DBTX) repository.ProductRepository {
	return m
}

type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *memOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *memOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return repository.ErrOrderNotFound
	}
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *memOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memOrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrderRepo) WithTx(q repository.DBTX) repository.OrderRepository {
	return m
}

type memOrderItemRepo struct {
	items []*domain.OrderItem
}

func (m *memOrderItemRepo) Create(ctx context.Context, item *domain.OrderItem) error {
	copied := *item
	m.items = append(m.items, &copied)
	return nil
}

func (m *memOrderItemRepo) Update(ctx context.Context, item *domain.OrderItem) error {
	for i, existing := range m.items {
		if existing.ID == item.ID {
			copied := *item
			m.items[i] = &copied
			return nil
		}
	}
	return repository.ErrOrderItemNotFound
}

func (m *memOrderItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, existing := range m.items {
		if existing.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrOrderItemNotFound
}

func (m *memOrderItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.OrderItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, repository.ErrOrderItemNotFound
}

func (m *memOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	var out []*domain.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memOrderItemRepo) WithTx(q repository.DBTX) repository.OrderItemRepository {
	return m
}

type memPaymentRepo struct {
	payments map[uuid.UUID]*domain.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (m *memPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	copied := *p
	m.payments[p.ID] = &copied
	return nil
}

func (m *memPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	if _, ok := m.payments[p.ID]; !ok {
		return repository.ErrPaymentNotFound
	}
	copied := *p
	m.payments[p.ID] = &copied
	return nil
}

func (m *memPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.payments[id]; !ok {
		return repository.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (m *memPaymentRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	for _, p := range m.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, repository.ErrPaymentNotFound
}

func (m *memPaymentRepo) List(ctx context.Context) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPaymentRepo) WithTx(q repository.DBTX) repository.PaymentRepository {
	return m
}

type memCartRepo struct {
	carts map[uuid.UUID]*domain.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[uuid.UUID]*domain.Cart)}
}

func (m *memCartRepo) Create(ctx context.Context, c *domain.Cart) error {
	copied := *c
	m.carts[c.ID] = &copied
	return nil
}

func (m *memCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.carts[id]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, id)
	return nil
}

func (m *memCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return c, nil
}

func (m *memCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, repository.ErrCartNotFound
}

type memCartItemRepo struct {
	items []*domain.CartItem
}

func (m *memCartItemRepo) Create(ctx context.Context, item *domain.CartItem) error {
	copied := *item
	m.items = append(m.items, &copied)
	return nil
}

func (m *memCartItemRepo) Update(ctx context.Context, item *domain.CartItem) error {
	for i, existing := range m.items {
		if existing.ID == item.ID {
			copied := *item
			m.items[i] = &copied
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *memCartItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, existing := range m.items {
		if existing.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (m *memCartItemRepo) DeleteByCart(ctx context.Context, cartID uuid.UUID) error {
	kept := m.items[:0]
	for _, item := range m.items {
		if item.CartID != cartID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

func (m *memCartItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	for _, item := range m.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *memCartItemRepo) ListByCart(ctx context.Context, cartID uuid.UUID) ([]*domain.CartItem, error) {
	var out []*domain.CartItem
	for _, item := range m.items {
		if item.CartID == cartID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

type checkoutFixture struct {
	service   OrderService
	products  *memProductRepo
	orders    *memOrderRepo
	items     *memOrderItemRepo
	payments  *memPaymentRepo
	carts     *memCartRepo
	cartItems *memCartItemRepo
}

func newCheckoutFixture() *checkoutFixture {
	logger := zap.NewNop()
	f := &checkoutFixture{
		products:  newMemProductRepo(),
		orders:    newMemOrderRepo(),
		items:     &memOrderItemRepo{},
		payments:  newMemPaymentRepo(),
		carts:     newMemCartRepo(),
		cartItems: &memCartItemRepo{},
	}
	f.service = NewOrderService(
		&memTxManager{},
		f.orders,
		f.items,
		f.products,
		f.payments,
		f.carts,
		f.cartItems,
		logger,
	)
	return f
}

func (f *checkoutFixture) addProduct(price string, stock int) *domain.Product {
	p := &domain.Product{
		ID:        uuid.New(),
		Name:      "Étagère en chêne",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.products.products[p.ID] = p
	return p
}

func TestPlaceOrder_FullCheckout(t *testing.T) {
	f := newCheckoutFixture()
	userID := uuid.New()
	product := f.addProduct("10.00", 5)

	// A cart with one line should be emptied by checkout
	cart := &domain.Cart{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
	require.NoError(t, f.carts.Create(context.Background(), cart))
	require.NoError(t, f.cartItems.Create(context.Background(), &domain.CartItem{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  2,
	}))

	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: userID,
		Lines: []OrderLine{
			{ProductID: product.ID, Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)

	// Order lands in paid state with the recomputed total
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("20.00")),
		"expected total 20.00, got %s", order.TotalPrice)

	// One line item with the right subtotal
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Stock was decremented
	updated, err := f.products.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)

	// Synthetic payment recorded as succeeded
	require.NotNil(t, order.Payment)
	assert.Equal(t, domain.PaymentStatusSucceeded, order.Payment.Status)
	assert.Equal(t, domain.PaymentMethodCard, order.Payment.Method)
	assert.NotEmpty(t, order.Payment.TransactionID)
	assert.True(t, order.Payment.Amount.Equal(order.TotalPrice))

	// Cart was cleared
	remaining, err := f.cartItems.ListByCart(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestPlaceOrder_TrustsPositiveClientTotal(t *testing.T) {
	f := newCheckoutFixture()
	product := f.addProduct("10.00", 5)

	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: uuid.New(),
		Total:  decimal.RequireFromString("42.50"),
		Lines: []OrderLine{
			{ProductID: product.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("42.50")),
		"client-supplied total should be kept, got %s", order.TotalPrice)
}

func TestPlaceOrder_BillingDefaultsToShipping(t *testing.T) {
	f := newCheckoutFixture()
	product := f.addProduct("10.00", 5)
	shippingID := uuid.New()

	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:            uuid.New(),
		ShippingAddressID: &shippingID,
		Lines: []OrderLine{
			{ProductID: product.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, order.BillingAddressID)
	assert.Equal(t, shippingID, *order.BillingAddressID)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture()
	product := f.addProduct("10.00", 1)

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: uuid.New(),
		Lines: []OrderLine{
			{ProductID: product.ID, Quantity: 3, Price: decimal.RequireFromString("10.00")},
		},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "expected InsufficientStockError, got %v", err)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Stock of the refused line is untouched
	updated, findErr := f.products.FindByID(context.Background(), product.ID)
	require.NoError(t, findErr)
	assert.Equal(t, 1, updated.Stock)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newCheckoutFixture()
	missingID := uuid.New()

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: uuid.New(),
		Lines: []OrderLine{
			{ProductID: missingID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
	})

	var notFound *ProductNotFoundError
	require.True(t, errors.As(err, &notFound), "expected ProductNotFoundError, got %v", err)
	assert.Equal(t, missingID, notFound.ProductID)
}

func TestPlaceOrder_EmptyOrderRejected(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: uuid.New(),
	})
	assert.Error(t, err)
}

func TestPlaceOrder_MissingCartIsNotAnError(t *testing.T) {
	f := newCheckoutFixture()
	product := f.addProduct("10.00", 5)

	// No cart exists for this user; checkout must still succeed
	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: uuid.New(),
		Lines: []OrderLine{
			{ProductID: product.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
}

func TestProperty_CheckoutStockAccounting(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("checkout decrements stock by exactly the ordered quantity or fails cleanly", prop.ForAll(
		func(stock int, quantity int, priceCents int) bool {
			f := newCheckoutFixture()
			price := decimal.New(int64(priceCents), -2)
			product := f.addProduct(price.StringFixed(2), stock)

			order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
				UserID: uuid.New(),
				Lines: []OrderLine{
					{ProductID: product.ID, Quantity: quantity, Price: price},
				},
			})

			updated, findErr := f.products.FindByID(context.Background(), product.ID)
			if findErr != nil {
				return false
			}

			if quantity <= stock {
				if err != nil {
					t.Logf("FAIL: expected success with stock %d and quantity %d: %v", stock, quantity, err)
					return false
				}
				expectedTotal := price.Mul(decimal.NewFromInt(int64(quantity)))
				return updated.Stock == stock-quantity &&
					order.Status == domain.OrderStatusPaid &&
					order.TotalPrice.Equal(expectedTotal)
			}

			// Over-ordering fails and leaves the stock untouched
			var stockErr *InsufficientStockError
			return errors.As(err, &stockErr) && updated.Stock == stock
		},
		gen.IntRange(0, 50),
		gen.IntRange(1, 60),
		gen.IntRange(1, 99999),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
