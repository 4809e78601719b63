package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrImageTooLarge    = errors.New("image exceeds the maximum allowed size")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidImageURL  = errors.New("invalid image URL")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageService stores uploaded product images in a public directory.
// This is a thin filesystem wrapper, not part of the order workflow.
type ImageService struct {
	dir      string
	baseURL  string
	maxBytes int64
	logger   *zap.Logger
}

// NewImageService creates an ImageService writing into dir, served under
// baseURL
func NewImageService(dir, baseURL string, maxBytes int64, logger *zap.Logger) *ImageService {
	return &ImageService{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Upload reads the image, verifies size and content type, and writes it
// under a collision-resistant generated filename. Returns the public URL.
func (s *ImageService) Upload(r io.Reader) (string, error) {
	// Read one byte past the limit to detect oversize payloads
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooLarge
	}

	mime := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mime.String()]
	if !ok {
		return "", ErrUnsupportedImage
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := uuid.New().String() + ext
	dest := filepath.Join(s.dir, filename)

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Info("Image uploaded",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)

	return s.baseURL + "/" + filename, nil
}

// Delete removes an uploaded image, re-deriving the filename from the
// stored URL.
func (s *ImageService) Delete(imageURL string) error {
	filename := path.Base(imageURL)
	if filename == "." || filename == "/" || filename == "" || strings.Contains(filename, "..") {
		return ErrInvalidImageURL
	}

	dest := filepath.Join(s.dir, filename)
	if err := os.Remove(dest); err != nil {
		if os.IsNotExist(err) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
