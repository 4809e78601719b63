package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderItemRequest represents an order line creation payload. Lines are
// normally written by checkout; this surface exists for manager repairs.
type OrderItemRequest struct {
	OrderID       uuid.UUID       `json:"order_id" validate:"required"`
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Customization json.RawMessage `json:"customization"`
}

// UpdateOrderItemRequest represents an order line update payload
type UpdateOrderItemRequest struct {
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Customization json.RawMessage `json:"customization"`
}

// OrderItemHandler handles order line endpoints
type OrderItemHandler struct {
	orderItems repository.OrderItemRepository
	orders     repository.OrderRepository
	logger     *zap.Logger
}

// NewOrderItemHandler creates a new OrderItemHandler
func NewOrderItemHandler(orderItems repository.OrderItemRepository, orders repository.OrderRepository, logger *zap.Logger) *OrderItemHandler {
	return &OrderItemHandler{
		orderItems: orderItems,
		orders:     orders,
		logger:     logger,
	}
}

// RegisterRoutes registers all order item routes. Reads are available to
// the owning user; writes are manager-only.
func (h *OrderItemHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/order-items", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/order/{orderId}", h.ListByOrder)

		r.Group(func(r chi.Router) {
			r.Use(managerOnly)

			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// ListByOrder returns an order's lines; clients can only read their own orders
func (h *OrderItemHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.FindByID(r.Context(), orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list order items")
		return
	}

	if user.Role != domain.RoleManager && order.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	items, err := h.orderItems.ListByOrder(r.Context(), orderID)
	if err != nil {
		h.logger.Error("Failed to list order items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list order items")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", items)
}

// Create adds a line to an existing order
func (h *OrderItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderItemRequest
	if !decodeOrderItem(w, r, &req, h.logger) {
		return
	}

	if _, err := h.orders.FindByID(r.Context(), req.OrderID); err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order item")
		return
	}

	item := &domain.OrderItem{
		ID:            uuid.New(),
		OrderID:       req.OrderID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Subtotal:      req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Customization: req.Customization,
		CreatedAt:     time.Now(),
	}

	if err := h.orderItems.Create(r.Context(), item); err != nil {
		h.logger.Error("Failed to create order item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create order item")
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "order item created", item)
}

// Update rewrites a line's quantity, unit price and customization
func (h *OrderItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order item id")
		return
	}

	var req UpdateOrderItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UnitPrice.IsNegative() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "unit_price", Message: "unit_price must not be negative"},
		})
		return
	}

	item, err := h.orderItems.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrOrderItemNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order item not found")
			return
		}

		h.logger.Error("Failed to get order item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order item")
		return
	}

	item.Quantity = req.Quantity
	if !req.UnitPrice.IsZero() {
		item.UnitPrice = req.UnitPrice
	}
	item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if req.Customization != nil {
		item.Customization = req.Customization
	}

	if err := h.orderItems.Update(r.Context(), item); err != nil {
		h.logger.Error("Failed to update order item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order item")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "order item updated", item)
}

// Delete removes a line from an order
func (h *OrderItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order item id")
		return
	}

	if err := h.orderItems.Delete(r.Context(), id); err != nil {
		if err == repository.ErrOrderItemNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order item not found")
			return
		}

		h.logger.Error("Failed to delete order item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete order item")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "order item deleted", nil)
}

func decodeOrderItem(w http.ResponseWriter, r *http.Request, req *OrderItemRequest, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		logger.Debug("Order item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if req.UnitPrice.IsNegative() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "unit_price", Message: "unit_price must not be negative"},
		})
		return false
	}

	return true
}
