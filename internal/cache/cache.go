package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"toko_back_end/internal/models"
)

const (
	ProductsKey     = "products:all"
	ProductCacheTTL = time.Hour
)

// ProductCache garde la liste complète des produits dans Redis.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = ProductCacheTTL
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

// Get renvoie false si la clé est absente ou illisible.
func (c *ProductCache) Get(ctx context.Context) ([]models.Product, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, ProductsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(val, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *ProductCache) Set(ctx context.Context, products []models.Product) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if products == nil {
		products = []models.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, ProductsKey, data, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.Del(ctx, ProductsKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
