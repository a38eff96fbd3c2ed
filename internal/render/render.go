// Package render projects catalog and cart state into view models and HTML.
// Everything here is a pure function of its inputs.
package render

import (
	"sort"
	"strings"

	"github.com/drstein77/eshop/internal/models"
	"github.com/shopspring/decimal"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	Products() []models.Product
	Find(id string) (models.Product, bool)
}

// FormatPrice renders d with two decimals, a comma separator and a
// trailing euro sign: 25,50 €.
func FormatPrice(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " €"
}

// FilterProducts keeps the products whose title or description contains
// query, ignoring case. A blank query keeps everything.
func FilterProducts(c Catalog, query string) []models.Product {
	all := c.Products()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// BuildCartView joins the cart against the catalog. Entries whose product
// is unknown are skipped and add nothing to the subtotal.
func BuildCartView(c Catalog, cart models.Cart) models.CartView {
	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	view := models.CartView{Lines: []models.CartLine{}, Subtotal: decimal.Zero}
	for _, id := range ids {
		qty := cart[id]
		view.Count += qty

		p, ok := c.Find(id)
		if !ok {
			continue
		}
		total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		view.Lines = append(view.Lines, models.CartLine{Product: p, Quantity: qty, Total: total})
		view.Subtotal = view.Subtotal.Add(total)
	}
	view.Display = FormatPrice(view.Subtotal)

	return view
}
