// Package recommend proposes products to a customer from their purchase
// history, from what similar customers bought, or from what is in stock.
package recommend

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type OrderHistory interface {
	ProductIDsOrderedBy(ctx context.Context, customerIDs []int64) ([]int64, error)
	CustomersWhoOrdered(ctx context.Context, productIDs []int64) ([]int64, error)
}

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	GetByCategoryIDs(ctx context.Context, categoryIDs []int64) ([]models.Product, error)
}

type StockLookup interface {
	InStock(ctx context.Context) ([]models.Inventory, error)
}

type Strategy string

const (
	StrategyHistory   Strategy = "history"
	StrategySimilar   Strategy = "similar"
	StrategyInventory Strategy = "inventory"
	StrategyAuto      Strategy = "auto"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case "":
		return StrategySimilar, nil
	case StrategyHistory, StrategySimilar, StrategyInventory, StrategyAuto:
		return st, nil
	default:
		return "", fmt.Errorf("unknown recommendation strategy %q", s)
	}
}

// Engine answers recommendation queries for one customer. Its methods only
// read from the stores.
type Engine struct {
	customerID int64
	orders     OrderHistory
	products   ProductLookup
	stock      StockLookup
}

func NewEngine(customerID int64, orders OrderHistory, products ProductLookup, stock StockLookup) *Engine {
	return &Engine{customerID: customerID, orders: orders, products: products, stock: stock}
}

func (e *Engine) Suggest(ctx context.Context, s Strategy) ([]models.Product, error) {
	switch s {
	case StrategyHistory:
		return e.SuggestFromOrderHistory(ctx)
	case StrategyInventory:
		return e.SuggestBasedOnInventory(ctx)
	case StrategyAuto:
		return e.Auto(ctx)
	default:
		return e.SuggestFromSimilarCustomers(ctx)
	}
}

func (e *Engine) ordered(ctx context.Context) ([]int64, error) {
	ids, err := e.orders.ProductIDsOrderedBy(ctx, []int64{e.customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return ids, nil
}

// SuggestFromOrderHistory returns the products sharing a category with
// something the customer ordered, minus what they already ordered.
func (e *Engine) SuggestFromOrderHistory(ctx context.Context) ([]models.Product, error) {
	orderedIDs, err := e.ordered(ctx)
	if err != nil || len(orderedIDs) == 0 {
		return []models.Product{}, err
	}

	ordered, err := e.products.GetByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, err
	}
	var categoryIDs []int64
	for _, p := range ordered {
		if id, ok := p.CategoryID(); ok && !slices.Contains(categoryIDs, id) {
			categoryIDs = append(categoryIDs, id)
		}
	}
	if len(categoryIDs) == 0 {
		return []models.Product{}, nil
	}

	candidates, err := e.products.GetByCategoryIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	return exclude(candidates, orderedIDs), nil
}

// SuggestFromSimilarCustomers returns what other buyers of the customer's
// products also bought, minus what the customer already ordered.
func (e *Engine) SuggestFromSimilarCustomers(ctx context.Context) ([]models.Product, error) {
	orderedIDs, err := e.ordered(ctx)
	if err != nil || len(orderedIDs) == 0 {
		return []models.Product{}, err
	}

	buyers, err := e.orders.CustomersWhoOrdered(ctx, orderedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar customers: %w", err)
	}
	similar := slices.DeleteFunc(buyers, func(id int64) bool { return id == e.customerID })
	if len(similar) == 0 {
		return []models.Product{}, nil
	}

	theirIDs, err := e.orders.ProductIDsOrderedBy(ctx, similar)
	if err != nil {
		return nil, fmt.Errorf("failed to load similar customers' orders: %w", err)
	}
	candidateIDs := slices.DeleteFunc(theirIDs, func(id int64) bool { return slices.Contains(orderedIDs, id) })
	if len(candidateIDs) == 0 {
		return []models.Product{}, nil
	}

	products, err := e.products.GetByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	return dedupe(products), nil
}

// SuggestBasedOnInventory lists in-stock products, most stocked first.
func (e *Engine) SuggestBasedOnInventory(ctx context.Context) ([]models.Product, error) {
	stock, err := e.stock.InStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	if len(stock) == 0 {
		return []models.Product{}, nil
	}

	ids := make([]int64, len(stock))
	for i, inv := range stock {
		ids[i] = inv.ProductID
	}
	products, err := e.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Auto merges the history and similar-customer suggestions and falls back
// to inventory when both are empty.
func (e *Engine) Auto(ctx context.Context) ([]models.Product, error) {
	history, err := e.SuggestFromOrderHistory(ctx)
	if err != nil {
		return nil, err
	}
	similar, err := e.SuggestFromSimilarCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if merged := dedupe(append(history, similar...)); len(merged) > 0 {
		return merged, nil
	}
	return e.SuggestBasedOnInventory(ctx)
}

func exclude(products []models.Product, ids []int64) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return dedupe(out)
}

func dedupe(products []models.Product) []models.Product {
	seen := make(map[int64]struct{}, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
