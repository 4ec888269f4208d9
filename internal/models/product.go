package models

import "github.com/shopspring/decimal"

// Product represents a catalog entry. Category is nil for uncategorized
// products.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Category    *Category       `json:"category"`
	Tags        []Tag           `json:"tags"`
}

// CategoryID returns the id of the product's category and whether it has one.
func (p Product) CategoryID() (int64, bool) {
	if p.Category == nil {
		return 0, false
	}
	return p.Category.ID, true
}
