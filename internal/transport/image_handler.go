package transport

import (
	"net/http"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/middleware"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DeleteImageRequest names the stored image to remove
type DeleteImageRequest struct {
	ImageURL string `json:"image_url" validate:"required"`
}

// ImageHandler handles product image upload and removal
type ImageHandler struct {
	images *service.ImageService
	logger *zap.Logger
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(images *service.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger,
	}
}

// RegisterRoutes registers all image routes, manager-only
func (h *ImageHandler) RegisterRoutes(r chi.Router, authMiddleware, managerOnly func(http.Handler) http.Handler) {
	r.Route("/images", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(managerOnly)

		r.Post("/upload", h.Upload)
		r.Delete("/delete", h.Delete)
	})
}

// Upload accepts a multipart form with an "image" field and stores it
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := h.images.Upload(file)
	if err != nil {
		switch err {
		case service.ErrImageTooLarge:
			middleware.RespondWithError(w, http.StatusBadRequest, "image exceeds the maximum allowed size")
		case service.ErrUnsupportedImage:
			middleware.RespondWithError(w, http.StatusBadRequest, "unsupported image type, use jpeg, png or webp")
		default:
			h.logger.Error("Failed to upload image", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to upload image")
		}
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, "image uploaded", map[string]string{"image_url": url})
}

// Delete removes a stored image named by its public URL
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteImageRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.images.Delete(req.ImageURL); err != nil {
		switch err {
		case service.ErrImageNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
		case service.ErrInvalidImageURL:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid image URL")
		default:
			h.logger.Error("Failed to delete image", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete image")
		}
		return
	}

	middleware.RespondWithData(w, http.StatusOK, "image deleted", nil)
}
