package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Ledger is the per-user cart. Each Add appends a new entry, even for a
// product already in the cart; entries are never merged.
type Ledger interface {
	Add(ctx context.Context, userID int64, entry models.CartEntry) error
	Entries(ctx context.Context, userID int64) ([]models.CartEntry, error)
	Clear(ctx context.Context, userID int64) error
}

// Total sums price x quantity over the entries.
func Total(entries []models.CartEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Subtotal()
	}
	return total
}

// MemoryLedger keeps carts in process memory. Single-instance default;
// use the Redis ledger when more than one bot instance shares users.
type MemoryLedger struct {
	mu    sync.RWMutex
	carts map[int64][]models.CartEntry
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{carts: make(map[int64][]models.CartEntry)}
}

// Add appends an entry to the user's cart
func (l *MemoryLedger) Add(_ context.Context, userID int64, entry models.CartEntry) error {
	if entry.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.carts[userID] = append(l.carts[userID], entry)
	return nil
}

// Entries returns the user's cart, empty (never nil) for unknown users
func (l *MemoryLedger) Entries(_ context.Context, userID int64) ([]models.CartEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.carts[userID]
	out := make([]models.CartEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// Clear drops the user's cart
func (l *MemoryLedger) Clear(_ context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.carts, userID)
	return nil
}
