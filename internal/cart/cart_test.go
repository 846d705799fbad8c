package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
)

func TestAddKeepsSeparateEntries(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	shirt := models.Product{Name: "Футболка белая", Price: 1000}
	require.NoError(t, l.Add(ctx, 1, models.CartEntry{Product: shirt, Quantity: 2}))
	require.NoError(t, l.Add(ctx, 1, models.CartEntry{Product: shirt, Quantity: 3}))

	entries, err := l.Entries(ctx, 1)
	require.NoError(t, err)

	// Two adds of the same product stay two entries.
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Quantity)
	assert.Equal(t, 3, entries[1].Quantity)
	assert.Equal(t, int64(2*1000+3*1000), Total(entries))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	shirt := models.Product{Name: "Футболка белая", Price: 1000}
	assert.ErrorIs(t, l.Add(ctx, 1, models.CartEntry{Product: shirt, Quantity: 0}), ErrInvalidQuantity)
	assert.ErrorIs(t, l.Add(ctx, 1, models.CartEntry{Product: shirt, Quantity: -2}), ErrInvalidQuantity)

	entries, err := l.Entries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntriesUnknownUser(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	entries, err := l.Entries(ctx, 404)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, int64(0), Total(entries))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	require.NoError(t, l.Add(ctx, 1, models.CartEntry{
		Product: models.Product{Name: "Джинсы синие", Price: 2000}, Quantity: 1,
	}))
	require.NoError(t, l.Clear(ctx, 1))

	entries, err := l.Entries(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTotal(t *testing.T) {
	entries := []models.CartEntry{
		{Product: models.Product{Name: "a", Price: 1000}, Quantity: 2},
		{Product: models.Product{Name: "b", Price: 500}, Quantity: 1},
		{Product: models.Product{Name: "c", Price: 1800}, Quantity: 3},
	}
	assert.Equal(t, int64(2*1000+1*500+3*1800), Total(entries))
}

func TestRedisLedger(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	ctx := context.Background()
	l, err := NewRedisLedger("localhost:6379", "", 0)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Clear(ctx, 99))
	require.NoError(t, l.Add(ctx, 99, models.CartEntry{
		Product: models.Product{Name: "Cap", Price: 500}, Quantity: 2,
	}))

	entries, err := l.Entries(ctx, 99)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Cap", entries[0].Product.Name)
}
