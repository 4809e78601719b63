package service

import (
	"context"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"
	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CatalogService manages products and categories
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// ListProducts with activeOnly returns the storefront view.
	ListProducts(ctx context.Context, activeOnly bool) ([]*domain.Product, error)

	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) CatalogService {
	return &catalogService{products: products, categories: categories}
}

// CreateProduct inserts a product, deriving the slug from the name when
// absent. IsActive defaults are the handler's concern: the DTO defaults
// to true unless explicitly disabled.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
		return err
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	return s.products.Create(ctx, product)
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}
	product.UpdatedAt = time.Now()
	return s.products.Update(ctx, product)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	return s.products.List(ctx, activeOnly)
}

// CreateCategory inserts a category, deriving the slug from the name when
// absent
func (s *catalogService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	category.CreatedAt = time.Now()

	return s.categories.Create(ctx, category)
}

func (s *catalogService) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	return s.categories.Update(ctx, category)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}
