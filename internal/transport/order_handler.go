package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderLineRequest is one line of a checkout payload
type OrderLineRequest struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	Price         decimal.Decimal `json:"price"`
	Customization json.RawMessage `json:"customization"`
}

// CreateOrderRequest represents the checkout payload
type CreateOrderRequest struct {
	Items             []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	Total             decimal.Decimal    `json:"total"`
	ShippingAddressID *uuid.UUID         `json:"shipping_address_id"`
	BillingAddressID  *uuid.UUID         `json:"billing_address_id"`
	PaymentMethod     string             `json:"payment_method" validate:"omitempty,oneof=carte_bancaire virement cheque"`
	Notes             string             `json:"notes"`
}

// UpdateOrderRequest represents a manager's order edit
type UpdateOrderRequest struct {
	Status         string `json:"status" validate:"required,oneof='en préparation' 'payée' 'expédiée' 'livrée' 'annulée'"`
	TrackingNumber string `json:"tracking_number"`
	Notes          string `json:"notes"`
}

// OrderHandler handles order and checkout endpoints
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes, all behind authentication
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/user/{userId}", h.ListByUser)

		r.Group(func(r chi.Router) {
			r.Use(managerOnly)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create runs the checkout workflow for the authenticated user
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.PlaceOrderInput{
		UserID:            user.ID,
		Total:             req.Total,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		Notes:             req.Notes,
	}
	for _, line := range req.Items {
		input.Lines = append(input.Lines, service.OrderLine{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Price:         line.Price,
			Customization: line.Customization,
		})
	}

	order, err := h.orders.PlaceOrder(r.Context(), input)
	if err != nil {
		var notFound *service.ProductNotFoundError
		var noStock *service.InsufficientStockError

		switch {
		case errors.As(err, &notFound):
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("product %s not found", notFound.ProductID))
		case errors.As(err, &noStock):
			middleware.RespondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
					noStock.ProductID, noStock.Requested, noStock.Available))
		default:
			h.logger.Error("Checkout failed", zap.Error(err), zap.String("user_id", user.ID.String()))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", user.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, "order placed", order)
}

// List returns all orders for managers, or the caller's own orders otherwise
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		orders []*domain.Order
		err    error
	)
	if user.Role == domain.RoleManager {
		orders, err = h.orders.ListOrders(r.Context())
	} else {
		orders, err = h.orders.ListOrdersByUser(r.Context(), user.ID)
	}
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", orders)
}

// Get returns a single order; clients can only read their own
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	if user.Role != domain.RoleManager && order.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", order)
}

// ListByUser returns a user's orders; clients can only read their own
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if user.Role != domain.RoleManager && userID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list user orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", orders)
}

// Update edits an order's status, tracking number and notes
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req UpdateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	order.Status = domain.OrderStatus(req.Status)
	order.TrackingNumber = req.TrackingNumber
	order.Notes = req.Notes

	if err := h.orders.UpdateOrder(r.Context(), order); err != nil {
		h.logger.Error("Failed to update order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "order updated", order)
}

// Delete removes an order and its dependent rows
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to delete order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "order deleted", nil)
}
