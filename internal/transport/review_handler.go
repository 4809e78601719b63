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

// ReviewRequest represents a review create/update payload
type ReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   *string   `json:"comment"`
}

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviews repository.ReviewRepository
	logger  *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews repository.ReviewRepository, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// RegisterRoutes registers all review routes. Reads are public so the
// storefront can show ratings; writes require authentication.
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/product/{productId}", h.ListByProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns every review, newest first
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", reviews)
}

// ListByProduct returns a product's reviews, newest first
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to list product reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "", reviews)
}

// Create adds a review by the authenticated user. Buying the product
// first is not required.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReviewRequest
	if !decodeReview(w, r, &req, h.logger) {
		return
	}

	now := time.Now()
	review := &domain.Review{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.reviews.Create(r.Context(), review); err != nil {
		h.logger.Error("Failed to create review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "review created", review)
}

// Update edits a review; clients can only edit their own
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req ReviewRequest
	if !decodeReview(w, r, &req, h.logger) {
		return
	}

	review, err := h.reviews.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}

		h.logger.Error("Failed to get review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update review")
		return
	}

	if user.Role != domain.RoleManager && review.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	review.UpdatedAt = time.Now()

	if err := h.reviews.Update(r.Context(), review); err != nil {
		h.logger.Error("Failed to update review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update review")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "review updated", review)
}

// Delete removes a review; clients can only delete their own
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	review, err := h.reviews.FindByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}

		h.logger.Error("Failed to get review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	if user.Role != domain.RoleManager && review.UserID != user.ID {
		middleware.RespondWithError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "review deleted", nil)
}

func decodeReview(w http.ResponseWriter, r *http.Request, req *ReviewRequest, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, req); err != nil {
		logger.Debug("Review validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}
