package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pcstore/models"

	"github.com/redis/go-redis/v9"
)

// CartRepository defines the interface for cart storage
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// RedisCartRepository stores carts as JSON blobs keyed by user.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a new instance of RedisCartRepository
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartRepository) getKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *RedisCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	key := r.getKey(userID)
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// No cart found
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	key := r.getKey(cart.UserID)
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisCartRepository) DeleteCart(ctx context.Context, userID string) error {
	key := r.getKey(userID)
	return r.client.Del(ctx, key).Err()
}
