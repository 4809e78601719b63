package transport

import (
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

// PaymentRequest represents a manager payment create/update payload.
// Checkout writes payments itself; this surface exists for corrections.
type PaymentRequest struct {
	OrderID       uuid.UUID       `json:"order_id" validate:"required"`
	Method        string          `json:"method" validate:"required,oneof=carte_bancaire virement cheque"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status" validate:"required,oneof='en attente' 'réussi' 'échoué' 'annulé'"`
	TransactionID string          `json:"transaction_id"`
}

// PaymentHandler exposes payment records. Payments are written by the
// checkout workflow, so reads dominate; writes are manager corrections.
type PaymentHandler struct {
	payments repository.PaymentRepository
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments repository.PaymentRepository, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger,
	}
}

// RegisterRoutes registers all payment routes, all behind authentication
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/{id}", h.Get)
		r.Get("/order/{orderId}", h.GetByOrder)

		r.Group(func(r chi.Router) {
			r.Use(managerOnly)
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns every payment, newest first
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list payments", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", payments)
}

// Get returns a single payment by id
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := h.payments.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
			return
		}

		h.logger.Error("Failed to get payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get payment")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", payment)
}

// GetByOrder returns the latest payment recorded for an order
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	payment, err := h.payments.FindByOrder(r.Context(), orderID)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
			return
		}

		h.logger.Error("Failed to get payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get payment")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", payment)
}

// Create records a payment manually
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decodePayment(w, r, &req, h.logger) {
		return
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:            uuid.New(),
		OrderID:       req.OrderID,
		Method:        domain.PaymentMethod(req.Method),
		Amount:        req.Amount,
		Status:        domain.PaymentStatus(req.Status),
		TransactionID: req.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.payments.Create(r.Context(), payment); err != nil {
		h.logger.Error("Failed to create payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create payment")
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "payment created", payment)
}

// Update rewrites a payment record
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req PaymentRequest
	if !decodePayment(w, r, &req, h.logger) {
		return
	}

	payment, err := h.payments.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
			return
		}

		h.logger.Error("Failed to get payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update payment")
		return
	}

	payment.OrderID = req.OrderID
	payment.Method = domain.PaymentMethod(req.Method)
	payment.Amount = req.Amount
	payment.Status = domain.PaymentStatus(req.Status)
	payment.TransactionID = req.TransactionID
	payment.UpdatedAt = time.Now()

	if err := h.payments.Update(r.Context(), payment); err != nil {
		h.logger.Error("Failed to update payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update payment")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "payment updated", payment)
}

// Delete removes a payment record
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	if err := h.payments.Delete(r.Context(), id); err != nil {
		if err == repository.ErrPaymentNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "payment not found")
			return
		}

		h.logger.Error("Failed to delete payment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete payment")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "payment deleted", nil)
}

func decodePayment(w http.ResponseWriter, r *http.Request, req *PaymentRequest, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		logger.Debug("Payment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if req.Amount.IsNegative() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "amount", Message: "amount must not be negative"},
		})
		return false
	}

	return true
}
