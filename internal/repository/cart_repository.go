package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"threadmart/internal/domain"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCartNotFound = errors.New("cart not found")
)

const cartKeyPrefix = "cart:"

// CartRepository defines the interface for cart data access. A cart is one
// JSON document per user; every write replaces the whole document.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)
	Delete(ctx context.Context, userID string) error
}

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository
func NewCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	return &cartRepository{client: client, ttl: ttl}
}

// Get retrieves the cart document for a user
func (r *cartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &cart, nil
}

// Save persists the cart document unconditionally
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKeyPrefix+cart.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// SaveIfVersion persists the cart only if the stored document still carries
// expectedVersion, bumping the version on success. A missing document counts
// as version zero. Returns false without error when another writer got there
// first; the caller decides whether to re-read and retry.
func (r *cartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	key := cartKeyPrefix + cart.UserID

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			if expectedVersion != 0 {
				return redis.TxFailedErr
			}
		case err != nil:
			return fmt.Errorf("failed to read cart for version check: %w", err)
		default:
			var stored domain.Cart
			if err := json.Unmarshal(current, &stored); err != nil {
				return fmt.Errorf("failed to decode stored cart: %w", err)
			}
			if stored.Version != expectedVersion {
				return redis.TxFailedErr
			}
		}

		cart.Version = expectedVersion + 1
		data, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if err == redis.TxFailedErr {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Delete removes the cart document for a user
func (r *cartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
