// Package catalog loads the read-only product list of the shop.
package catalog

import (
	"errors"
	"fmt"

	"github.com/drstein77/eshop/internal/models"
)

var (
	ErrDuplicateID   = errors.New("duplicate product id")
	ErrInvalidRecord = errors.New("invalid product record")
)

// Catalog is an immutable list of products indexed by id.
type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// New validates products and builds a catalog. Order is preserved.
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("record %d: empty id: %w", i, ErrInvalidRecord)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q: negative price: %w", p.ID, ErrInvalidRecord)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("product %q: %w", p.ID, ErrDuplicateID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Empty returns a catalog without products.
func Empty() *Catalog {
	c, _ := New(nil)
	return c
}

// Products returns a copy of the products in source order.
func (c *Catalog) Products() []models.Product {
	if c == nil {
		return nil
	}
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Find looks a product up by id.
func (c *Catalog) Find(id string) (models.Product, bool) {
	if c == nil {
		return models.Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
