package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCartRequest optionally names the cart owner; defaults to the caller
type CreateCartRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// AddCartItemRequest represents a cart line creation payload
type AddCartItemRequest struct {
	CartID        uuid.UUID       `json:"cart_id" validate:"required"`
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	Customization json.RawMessage `json:"customization"`
}

// UpdateCartItemRequest represents a cart line update payload
type UpdateCartItemRequest struct {
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	Customization json.RawMessage `json:"customization"`
}

// CartResponse carries a cart together with its pruned item list
type CartResponse struct {
	Cart  *domain.Cart       `json:"cart"`
	Items []*domain.CartItem `json:"items"`
}

// CartHandler handles cart and cart item endpoints
type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// RegisterRoutes registers all cart routes, all behind authentication
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Get("/user/{userId}", h.GetByUser)
			r.Delete("/{id}", h.Delete)
		})

		r.Route("/cart-items", func(r chi.Router) {
			r.Get("/cart/{cartId}", h.ListItems)
			r.Post("/", h.AddItem)
			r.Put("/{id}", h.UpdateItem)
			r.Delete("/{id}", h.RemoveItem)
		})
	})
}

// GetByUser returns a user's cart and items, creating the cart on first
// use. Clients can only read their own cart.
func (h *CartHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
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

	cart, err := h.carts.GetOrCreateCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	items, err := h.carts.GetItems(r.Context(), cart.ID)
	if err != nil {
		h.logger.Error("Failed to get cart items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart items")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", CartResponse{Cart: cart, Items: items})
}

// Create returns the caller's cart, creating it if absent. Managers may
// pass another user's id in the body.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// The body is optional: an empty POST creates the caller's own cart
	var req CreateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := user.ID
	if req.UserID != nil {
		if user.Role != domain.RoleManager && *req.UserID != user.ID {
			middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
			return
		}
		userID = *req.UserID
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to create cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create cart")
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "cart ready", cart)
}

// ListItems returns a cart's lines, pruning any whose product is gone
func (h *CartHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	items, err := h.carts.GetItems(r.Context(), cartID)
	if err != nil {
		h.logger.Error("Failed to list cart items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list cart items")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", items)
}

// Delete removes a cart and all its lines
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	if err := h.carts.DeleteCart(r.Context(), id); err != nil {
		if err == repository.ErrCartNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
			return
		}

		h.logger.Error("Failed to delete cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete cart")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "cart deleted", nil)
}

// AddItem appends a line to a cart. Repeated adds of the same product
// create separate lines.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.carts.AddItem(r.Context(), req.CartID, req.ProductID, req.Quantity, req.Customization)
	if err != nil {
		switch err {
		case repository.ErrCartNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Error("Failed to add cart item", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add cart item")
		}
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "item added to cart", item)
}

// UpdateItem changes a line's quantity or customization
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var req UpdateCartItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.carts.UpdateItem(r.Context(), id, req.Quantity, req.Customization)
	if err != nil {
		if err == repository.ErrCartItemNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}

		h.logger.Error("Failed to update cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart item")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "cart item updated", item)
}

// RemoveItem deletes a single cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), id); err != nil {
		if err == repository.ErrCartItemNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}

		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "cart item removed", nil)
}
