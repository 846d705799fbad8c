package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidPrice     = errors.New("price must be positive")
)

// Store owns the catalog. Categories and products are append-only: nothing
// is ever edited or deleted, so a product reference stays valid for the
// lifetime of any cart that holds it. Every mutation persists the full
// catalog synchronously before returning.
type Store interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Category(ctx context.Context, key string) (*models.Category, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	Product(ctx context.Context, key string, index int) (*models.Product, error)
	FindProductByName(ctx context.Context, name string) (string, *models.Product, error)
	CreateCategory(ctx context.Context, displayName string) (*models.Category, error)
	AddProduct(ctx context.Context, key string, product models.Product) error
}

// Slugify derives a category key from its display name: lowercased, spaces
// replaced with underscores.
func Slugify(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(displayName), " ", "_")
}

// defaultCategories is the catalog seeded on first start, before the admin
// has added anything.
func defaultCategories() []models.Category {
	return []models.Category{
		{
			Key:  "t-shirts",
			Name: "👕 Футболки",
			Products: []models.Product{
				{Name: "Футболка белая", Price: 1000, Description: "Мягкая и удобная футболка.", PhotoPath: "images/t-shirt1.jpg"},
				{Name: "Футболка черная", Price: 1200, Description: "Стильная черная футболка.", PhotoPath: "images/t-shirt2.jpg"},
			},
		},
		{
			Key:  "jeans",
			Name: "👖 Джинсы",
			Products: []models.Product{
				{Name: "Джинсы синие", Price: 2000, Description: "Стильные синие джинсы.", PhotoPath: "images/jeans1.jpg"},
				{Name: "Джинсы черные", Price: 2200, Description: "Стильные черные джинсы.", PhotoPath: "images/jeans2.jpg"},
			},
		},
		{
			Key:  "shorts",
			Name: "🩳 Шорты",
			Products: []models.Product{
				{Name: "Шорты спортивные", Price: 1500, Description: "Удобные спортивные шорты.", PhotoPath: "images/shorts1.jpg"},
				{Name: "Шорты джинсовые", Price: 1800, Description: "Стильные джинсовые шорты.", PhotoPath: "images/shorts2.jpg"},
			},
		},
	}
}
