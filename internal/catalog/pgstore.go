package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// PGStore is the Postgres-backed catalog for deployments that run more
// than one bot instance, where a per-process snapshot file would race.
type PGStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS categories (
	key      TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	position SERIAL
);
CREATE TABLE IF NOT EXISTS products (
	id           SERIAL PRIMARY KEY,
	category_key TEXT NOT NULL REFERENCES categories(key),
	name         TEXT NOT NULL,
	price        BIGINT NOT NULL CHECK (price > 0),
	description  TEXT NOT NULL DEFAULT '',
	photo_path   TEXT NOT NULL DEFAULT ''
);`

// NewPGStore connects, ensures the schema and seeds the default catalog
// when the categories table is empty.
func NewPGStore(databaseURL string) (*PGStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PGStore{db: db, logger: util.GetLogger()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories"); err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.seed(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		s.logger.Info("Catalog seeded with defaults")
	}

	return s, nil
}

func (s *PGStore) seed(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range defaultCategories() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (key, name) VALUES ($1, $2)", c.Key, c.Name); err != nil {
			return err
		}
		for _, p := range c.Products {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO products (category_key, name, price, description, photo_path) VALUES ($1, $2, $3, $4, $5)",
				c.Key, p.Name, p.Price, p.Description, p.PhotoPath); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Close closes the database connection
func (s *PGStore) Close() error {
	return s.db.Close()
}

type categoryRow struct {
	Key  string `db:"key"`
	Name string `db:"name"`
}

func (s *PGStore) products(ctx context.Context, key string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT name, price, description, photo_path FROM products WHERE category_key = $1 ORDER BY id", key)
	return products, err
}

// Categories returns all categories with their products, in creation order.
func (s *PGStore) Categories(ctx context.Context) ([]models.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, name FROM categories ORDER BY position"); err != nil {
		return nil, err
	}

	cats := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		products, err := s.products(ctx, r.Key)
		if err != nil {
			return nil, err
		}
		cats = append(cats, models.Category{Key: r.Key, Name: r.Name, Products: products})
	}
	return cats, nil
}

func (s *PGStore) category(ctx context.Context, query, arg string) (*models.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	products, err := s.products(ctx, row.Key)
	if err != nil {
		return nil, err
	}
	return &models.Category{Key: row.Key, Name: row.Name, Products: products}, nil
}

// Category returns the category with the given slug key.
func (s *PGStore) Category(ctx context.Context, key string) (*models.Category, error) {
	return s.category(ctx, "SELECT key, name FROM categories WHERE key = $1", key)
}

// CategoryByName resolves a display name to its category.
func (s *PGStore) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return s.category(ctx, "SELECT key, name FROM categories WHERE name = $1", name)
}

// Product returns the index-th product of a category.
func (s *PGStore) Product(ctx context.Context, key string, index int) (*models.Product, error) {
	if index < 0 {
		return nil, ErrProductNotFound
	}
	if _, err := s.Category(ctx, key); err != nil {
		return nil, err
	}

	var p models.Product
	err := s.db.GetContext(ctx, &p,
		"SELECT name, price, description, photo_path FROM products WHERE category_key = $1 ORDER BY id OFFSET $2 LIMIT 1",
		key, index)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProductByName returns the first product with the given display name
// and the key of the category holding it.
func (s *PGStore) FindProductByName(ctx context.Context, name string) (string, *models.Product, error) {
	var row struct {
		CategoryKey string `db:"category_key"`
		models.Product
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT category_key, name, price, description, photo_path FROM products WHERE name = $1 ORDER BY id LIMIT 1", name)
	if err == sql.ErrNoRows {
		return "", nil, ErrProductNotFound
	}
	if err != nil {
		return "", nil, err
	}
	return row.CategoryKey, &row.Product, nil
}

// CreateCategory inserts an empty category, rejecting slug collisions.
func (s *PGStore) CreateCategory(ctx context.Context, displayName string) (*models.Category, error) {
	key := Slugify(displayName)

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (key, name) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING", key, displayName)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrCategoryExists
	}

	util.CategoriesCreatedTotal.Inc()
	s.logger.Info("Category created", zap.String("key", key), zap.String("name", displayName))
	return &models.Category{Key: key, Name: displayName, Products: []models.Product{}}, nil
}

// AddProduct appends a product to a category.
func (s *PGStore) AddProduct(ctx context.Context, key string, product models.Product) error {
	if product.Price <= 0 {
		return ErrInvalidPrice
	}
	if _, err := s.Category(ctx, key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products (category_key, name, price, description, photo_path) VALUES ($1, $2, $3, $4, $5)",
		key, product.Name, product.Price, product.Description, product.PhotoPath)
	if err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}

	s.logger.Info("Product added",
		zap.String("category", key),
		zap.String("name", product.Name),
		zap.Int64("price", product.Price))
	return nil
}
