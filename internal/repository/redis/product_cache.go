// Package redis implements the read-through product display cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

const productTTL = 5 * time.Minute

type productCache struct {
	client *redis.Client
}

// NewProductCache creates a ProductCache backed by Redis. Entries expire
// after a short TTL; writes to a product invalidate its entry eagerly.
func NewProductCache(client *redis.Client) repository.ProductCache {
	return &productCache{client: client}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *productCache) Get(ctx context.Context, id int64) (*entity.Product, error) {
	payload, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product from cache: %w", err)
	}

	var p entity.Product
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &p, nil
}

func (c *productCache) Set(ctx context.Context, p *entity.Product) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := c.client.Set(ctx, productKey(p.ID), payload, productTTL).Err(); err != nil {
		return fmt.Errorf("failed to write product to cache: %w", err)
	}
	return nil
}

func (c *productCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached product: %w", err)
	}
	return nil
}
