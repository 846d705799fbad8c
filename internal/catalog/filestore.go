package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// FileStore keeps the catalog in memory and mirrors every mutation into a
// JSON snapshot file: an object keyed by category slug, in category order.
// The format is the one the shop has always used, so an existing data file
// loads unchanged.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	categories []models.Category
	logger     *zap.Logger
}

// fileCategory is the on-disk shape of one category.
type fileCategory struct {
	Name     string           `json:"name"`
	Products []models.Product `json:"products"`
}

// NewFileStore loads the snapshot at path, seeding and persisting the
// default catalog if the file is missing or holds no categories.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: util.GetLogger(),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.categories = defaultCategories()
		if err := s.persistLocked(s.categories); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		s.logger.Info("Catalog seeded with defaults", zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	default:
		cats, err := decodeCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		if len(cats) == 0 {
			cats = defaultCategories()
			s.categories = cats
			if err := s.persistLocked(cats); err != nil {
				return nil, fmt.Errorf("failed to seed catalog: %w", err)
			}
			s.logger.Info("Empty catalog reseeded with defaults", zap.String("path", path))
			break
		}
		s.categories = cats
		s.logger.Info("Catalog loaded", zap.String("path", path), zap.Int("categories", len(cats)))
	}

	return s, nil
}

// decodeCatalog walks the JSON object token by token so that category
// order in the file is preserved; encoding/json map decoding would lose it.
func decodeCatalog(data []byte) ([]models.Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var cats []models.Category
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected category key, got %v", keyTok)
		}

		var fc fileCategory
		if err := dec.Decode(&fc); err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		if fc.Products == nil {
			fc.Products = []models.Product{}
		}
		cats = append(cats, models.Category{Key: key, Name: fc.Name, Products: fc.Products})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return cats, nil
}

// encodeCatalog writes the object with keys in category order.
func encodeCatalog(cats []models.Category) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cats {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		body, err := json.Marshal(fileCategory{Name: c.Name, Products: c.Products})
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// persistLocked writes the given snapshot atomically (temp file + rename).
// Callers must hold the write lock, or be the constructor. Mutators persist
// a candidate slice and commit it to s.categories only on success, so a
// failed save leaves memory and disk in agreement.
func (s *FileStore) persistLocked(cats []models.Category) error {
	start := time.Now()
	defer func() {
		util.CatalogSaveLatency.Observe(time.Since(start).Seconds())
	}()

	data, err := encodeCatalog(cats)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Categories returns all categories in stable order.
func (s *FileStore) Categories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// Category returns the category with the given slug key.
func (s *FileStore) Category(_ context.Context, key string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.categories {
		if s.categories[i].Key == key {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

// CategoryByName resolves a display name (a main-menu button press) to its
// category.
func (s *FileStore) CategoryByName(_ context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.categories {
		if s.categories[i].Name == name {
			c := s.categories[i]
			return &c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

// Product returns the index-th product of a category. Products are
// append-only, so an index handed out in callback data stays valid.
func (s *FileStore) Product(_ context.Context, key string, index int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.categories {
		if s.categories[i].Key != key {
			continue
		}
		if index < 0 || index >= len(s.categories[i].Products) {
			return nil, ErrProductNotFound
		}
		p := s.categories[i].Products[index]
		return &p, nil
	}
	return nil, ErrCategoryNotFound
}

// FindProductByName scans all categories for a product with the given
// display name and returns its category key.
func (s *FileStore) FindProductByName(_ context.Context, name string) (string, *models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.categories {
		for j := range s.categories[i].Products {
			if s.categories[i].Products[j].Name == name {
				p := s.categories[i].Products[j]
				return s.categories[i].Key, &p, nil
			}
		}
	}
	return "", nil, ErrProductNotFound
}

// CreateCategory appends an empty category. A display name whose slug
// collides with an existing key is rejected rather than silently
// overwriting the old category.
func (s *FileStore) CreateCategory(_ context.Context, displayName string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Slugify(displayName)
	for i := range s.categories {
		if s.categories[i].Key == key {
			return nil, ErrCategoryExists
		}
	}

	c := models.Category{Key: key, Name: displayName, Products: []models.Product{}}
	next := make([]models.Category, len(s.categories), len(s.categories)+1)
	copy(next, s.categories)
	next = append(next, c)
	if err := s.persistLocked(next); err != nil {
		return nil, fmt.Errorf("failed to persist catalog: %w", err)
	}
	s.categories = next

	util.CategoriesCreatedTotal.Inc()
	s.logger.Info("Category created", zap.String("key", key), zap.String("name", displayName))
	return &c, nil
}

// AddProduct appends a product to a category and persists the snapshot.
func (s *FileStore) AddProduct(_ context.Context, key string, product models.Product) error {
	if product.Price <= 0 {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].Key != key {
			continue
		}
		next := make([]models.Category, len(s.categories))
		copy(next, s.categories)
		next[i].Products = append(next[i].Products, product)
		if err := s.persistLocked(next); err != nil {
			return fmt.Errorf("failed to persist catalog: %w", err)
		}
		s.categories = next
		s.logger.Info("Product added",
			zap.String("category", key),
			zap.String("name", product.Name),
			zap.Int64("price", product.Price))
		return nil
	}
	return ErrCategoryNotFound
}
