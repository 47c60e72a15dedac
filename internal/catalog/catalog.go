// Package catalog lit la liste des produits et la filtre côté client.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"toko_back_end/internal/apiclient"
	"toko_back_end/internal/models"
)

// Catalog garde en mémoire la dernière liste de produits chargée.
type Catalog struct {
	api    *apiclient.Client
	logger *zap.Logger

	mu       sync.RWMutex
	products []models.Product
}

func New(api *apiclient.Client, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{api: api, logger: logger}
}

// Load recharge GET /api/products.
func (c *Catalog) Load(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.api.Do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, fmt.Errorf("chargement produits: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	c.logger.Info("✅ Produits chargés", zap.Int("count", len(products)))
	return products, nil
}

func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Search applique le filtre nom + catégorie sur la liste chargée.
func (c *Catalog) Search(term, category string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.products, term, category)
}

func (c *Catalog) Find(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (c *Catalog) Counts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Counts(c.products)
}
