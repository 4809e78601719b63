package transport

import (
	"net/http"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressRequest represents an address create/update payload
type AddressRequest struct {
	Street     string  `json:"street" validate:"required"`
	City       string  `json:"city" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Phone      *string `json:"phone"`
	IsDefault  bool    `json:"is_default"`
}

// AddressHandler handles address book endpoints
type AddressHandler struct {
	addresses repository.AddressRepository
	logger    *zap.Logger
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addresses repository.AddressRepository, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{
		addresses: addresses,
		logger:    logger,
	}
}

// RegisterRoutes registers all address routes, all behind authentication
func (h *AddressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/addresses", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/user/{userId}", h.ListByUser)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create adds an address to the authenticated user's address book
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddressRequest
	if !decodeAddress(w, r, &req, h.logger) {
		return
	}

	now := time.Now()
	address := &domain.Address{
		ID:         uuid.New(),
		UserID:     user.ID,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.addresses.Create(r.Context(), address); err != nil {
		h.logger.Error("Failed to create address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create address")
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "address created", address)
}

// ListByUser returns a user's addresses, default first
func (h *AddressHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
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

	addresses, err := h.addresses.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list addresses", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list addresses")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", addresses)
}

// Get returns a single address; clients can only read their own
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address id")
		return
	}

	address, err := h.addresses.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrAddressNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}

		h.logger.Error("Failed to get address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get address")
		return
	}

	if user.Role != domain.RoleManager && address.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", address)
}

// Update replaces an address's fields; clients can only edit their own
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address id")
		return
	}

	var req AddressRequest
	if !decodeAddress(w, r, &req, h.logger) {
		return
	}

	address, err := h.addresses.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrAddressNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}

		h.logger.Error("Failed to get address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update address")
		return
	}

	if user.Role != domain.RoleManager && address.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	address.Street = req.Street
	address.City = req.City
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.Phone = req.Phone
	address.IsDefault = req.IsDefault
	address.UpdatedAt = time.Now()

	if err := h.addresses.Update(r.Context(), address); err != nil {
		h.logger.Error("Failed to update address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update address")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "address updated", address)
}

// Delete removes an address; clients can only delete their own
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address id")
		return
	}

	address, err := h.addresses.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrAddressNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "address not found")
			return
		}

		h.logger.Error("Failed to get address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete address")
		return
	}

	if user.Role != domain.RoleManager && address.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete address", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete address")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "address deleted", nil)
}

func decodeAddress(w http.ResponseWriter, r *http.Request, req *AddressRequest, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		logger.Debug("Address validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}
