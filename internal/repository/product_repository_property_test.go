package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Jonathan-kayembe/E-Commerce-de-Menuiserie-Artisanale-sub000/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func ensureCatalogTables(t *testing.T) {
	t.Helper()

	_, err := testDB.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(255) UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			slug VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create categories table: %v", err)
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			material VARCHAR(100) NOT NULL DEFAULT '',
			color VARCHAR(100) NOT NULL DEFAULT '',
			finish VARCHAR(100) NOT NULL DEFAULT '',
			price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			category_id UUID NOT NULL REFERENCES categories(id),
			image_url TEXT NOT NULL DEFAULT '',
			slug VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create products table: %v", err)
	}
}

func makeTestCategory(t *testing.T, ctx context.Context, repo CategoryRepository) *domain.Category {
	t.Helper()

	suffix := uuid.New().String()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        "Test Category " + suffix,
		Description: "Test category description",
		Slug:        "test-category-" + suffix,
		CreatedAt:   time.Now(),
	}
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	ensureCatalogTables(t)

	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, material string, price float64, stock int) bool {
			ctx := context.Background()

			category := makeTestCategory(t, ctx, categoryRepo)

			// Create product with generated attributes
			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name,
				Description: description,
				Material:    material,
				Color:       "chêne clair",
				Finish:      "huilé",
				Price:       decimal.NewFromFloat(price).Round(2),
				CategoryID:  category.ID,
				ImageURL:    "http://example.com/image.jpg",
				Slug:        "product-" + uuid.New().String(),
				Stock:       stock,
				IsActive:    true,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			// Retrieve the product
			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.ID != product.ID {
				t.Logf("FAIL: ID mismatch. Expected %s, got %s", product.ID, retrieved.ID)
				return false
			}

			if retrieved.Name != product.Name {
				t.Logf("FAIL: Name mismatch. Expected %s, got %s", product.Name, retrieved.Name)
				return false
			}

			if retrieved.Description != product.Description {
				t.Logf("FAIL: Description mismatch. Expected %s, got %s", product.Description, retrieved.Description)
				return false
			}

			if retrieved.Material != product.Material {
				t.Logf("FAIL: Material mismatch. Expected %s, got %s", product.Material, retrieved.Material)
				return false
			}

			// Decimal comparison is exact, no float tolerance needed
			if !retrieved.Price.Equal(product.Price) {
				t.Logf("FAIL: Price mismatch. Expected %s, got %s", product.Price, retrieved.Price)
				return false
			}

			if retrieved.CategoryID != product.CategoryID {
				t.Logf("FAIL: CategoryID mismatch. Expected %s, got %s", product.CategoryID, retrieved.CategoryID)
				return false
			}

			if retrieved.Stock != product.Stock {
				t.Logf("FAIL: Stock mismatch. Expected %d, got %d", product.Stock, retrieved.Stock)
				return false
			}

			if !retrieved.IsActive {
				t.Logf("FAIL: IsActive should be true")
				return false
			}

			if retrieved.CreatedAt.IsZero() {
				t.Logf("FAIL: CreatedAt is zero")
				return false
			}

			if retrieved.UpdatedAt.IsZero() {
				t.Logf("FAIL: UpdatedAt is zero")
				return false
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),       // name
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description
		gen.RegexMatch(`[a-z]{3,20}`),              // material
		gen.Float64Range(0.01, 9999.99),            // price (positive values)
		gen.IntRange(0, 1000),                      // stock (non-negative)
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	ensureCatalogTables(t)

	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("updating a product and retrieving it shows the updated values", prop.ForAll(
		func(name1 string, name2 string, price1 float64, price2 float64, stock1 int, stock2 int) bool {
			ctx := context.Background()

			category := makeTestCategory(t, ctx, categoryRepo)

			// Create initial product
			product := &domain.Product{
				ID:         uuid.New(),
				Name:       name1,
				Price:      decimal.NewFromFloat(price1).Round(2),
				CategoryID: category.ID,
				Slug:       "product-" + uuid.New().String(),
				Stock:      stock1,
				IsActive:   true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			// Update the product with new values
			product.Name = name2
			product.Price = decimal.NewFromFloat(price2).Round(2)
			product.Stock = stock2
			product.IsActive = false
			product.UpdatedAt = time.Now()

			err = productRepo.Update(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			// Retrieve the product
			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != name2 {
				t.Logf("FAIL: Name not updated. Expected %s, got %s", name2, retrieved.Name)
				return false
			}

			if !retrieved.Price.Equal(product.Price) {
				t.Logf("FAIL: Price not updated. Expected %s, got %s", product.Price, retrieved.Price)
				return false
			}

			if retrieved.Stock != stock2 {
				t.Logf("FAIL: Stock not updated. Expected %d, got %d", stock2, retrieved.Stock)
				return false
			}

			if retrieved.IsActive {
				t.Logf("FAIL: IsActive not updated, expected false")
				return false
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // name1
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // name2
		gen.Float64Range(0.01, 9999.99),      // price1
		gen.Float64Range(0.01, 9999.99),      // price2
		gen.IntRange(0, 1000),                // stock1
		gen.IntRange(0, 1000),                // stock2
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductDeletionRemovesFromCatalog(t *testing.T) {
	ensureCatalogTables(t)

	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("deleting a product makes it not retrievable", prop.ForAll(
		func(name string, price float64, stock int) bool {
			ctx := context.Background()

			category := makeTestCategory(t, ctx, categoryRepo)

			product := &domain.Product{
				ID:         uuid.New(),
				Name:       name,
				Price:      decimal.NewFromFloat(price).Round(2),
				CategoryID: category.ID,
				Slug:       "product-" + uuid.New().String(),
				Stock:      stock,
				IsActive:   true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			// Verify product exists
			_, err = productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Product should exist before deletion: %v", err)
				return false
			}

			// Delete the product
			err = productRepo.Delete(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to delete product: %v", err)
				return false
			}

			// Attempt to retrieve the deleted product
			_, err = productRepo.FindByID(ctx, product.ID)
			if err != ErrProductNotFound {
				t.Logf("FAIL: Expected ErrProductNotFound after deletion, got: %v", err)
				return false
			}

			// Cleanup category
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // name
		gen.Float64Range(0.01, 9999.99),      // price
		gen.IntRange(0, 1000),                // stock
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_StockNeverGoesNegative(t *testing.T) {
	ensureCatalogTables(t)

	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("decrementing more than the available stock fails and leaves stock unchanged", prop.ForAll(
		func(stock int, extra int) bool {
			ctx := context.Background()

			category := makeTestCategory(t, ctx, categoryRepo)

			product := &domain.Product{
				ID:         uuid.New(),
				Name:       "Table basse",
				Price:      decimal.NewFromFloat(150.00),
				CategoryID: category.ID,
				Slug:       "product-" + uuid.New().String(),
				Stock:      stock,
				IsActive:   true,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}

			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			// Requesting more than available must fail
			err := productRepo.DecrementStock(ctx, product.ID, stock+extra)
			if err != ErrInsufficientStock {
				t.Logf("FAIL: Expected ErrInsufficientStock, got: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}
			if retrieved.Stock != stock {
				t.Logf("FAIL: Stock changed after refused decrement. Expected %d, got %d", stock, retrieved.Stock)
				return false
			}

			// Draining exactly the available stock must succeed and land on zero
			if stock > 0 {
				if err := productRepo.DecrementStock(ctx, product.ID, stock); err != nil {
					t.Logf("FAIL: Failed to decrement full stock: %v", err)
					return false
				}

				retrieved, err = productRepo.FindByID(ctx, product.ID)
				if err != nil {
					t.Logf("FAIL: Failed to retrieve product: %v", err)
					return false
				}
				if retrieved.Stock != 0 {
					t.Logf("FAIL: Expected zero stock, got %d", retrieved.Stock)
					return false
				}
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.IntRange(0, 100), // stock
		gen.IntRange(1, 50),  // extra quantity beyond stock
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
