package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Anya-Gubskay/Shop-bot/internal/models"
)

// RedisLedger stores each cart as a Redis list of JSON-encoded entries,
// so carts survive restarts and are shared between bot instances.
type RedisLedger struct {
	rdb *redis.Client
}

// NewRedisLedger connects to Redis and pings it
func NewRedisLedger(addr, password string, db int) (*RedisLedger, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLedger{rdb: rdb}, nil
}

// Close closes the Redis connection
func (l *RedisLedger) Close() error {
	return l.rdb.Close()
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

// Add appends an entry to the user's cart list
func (l *RedisLedger) Add(ctx context.Context, userID int64, entry models.CartEntry) error {
	if entry.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cart entry: %w", err)
	}

	if err := l.rdb.RPush(ctx, cartKey(userID), data).Err(); err != nil {
		return fmt.Errorf("failed to push cart entry: %w", err)
	}
	return nil
}

// Entries returns the user's cart in insertion order
func (l *RedisLedger) Entries(ctx context.Context, userID int64) ([]models.CartEntry, error) {
	raw, err := l.rdb.LRange(ctx, cartKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	entries := make([]models.CartEntry, 0, len(raw))
	for _, item := range raw {
		var e models.CartEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear deletes the user's cart key
func (l *RedisLedger) Clear(ctx context.Context, userID int64) error {
	return l.rdb.Del(ctx, cartKey(userID)).Err()
}
