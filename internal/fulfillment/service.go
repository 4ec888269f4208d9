// Package fulfillment creates orders and order items together with the stock
// decrement they cause, and applies restocks.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultLowStockThreshold = 5

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrNegativeStock     = errors.New("quantity must not be negative")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidPrice      = errors.New("price must be greater than zero with at most 2 decimal places")
)

// StockError reports the product that could not be fulfilled. It matches
// ErrInsufficientStock with errors.Is.
type StockError struct {
	ProductID int64
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested %d)", e.ProductID, e.Requested)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LowStockNotifier is called after an inventory save leaves the quantity
// below the threshold. Its errors are logged and otherwise ignored.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, ev models.LowStockEvent) error
}

type NotifierFunc func(ctx context.Context, ev models.LowStockEvent) error

func (f NotifierFunc) NotifyLowStock(ctx context.Context, ev models.LowStockEvent) error {
	return f(ctx, ev)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (models.Product, error)
}

type CustomerGetter interface {
	GetByID(ctx context.Context, id int64) (models.Customer, error)
}

// ItemRequest asks for Quantity units of a product. Price overrides the
// product's current price as the snapshot when set.
type ItemRequest struct {
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type Service struct {
	orders    repo.OrderRepository
	products  ProductGetter
	customers CustomerGetter
	inventory repo.InventoryRepository

	threshold int
	notifier  LowStockNotifier
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithThreshold(n int) Option {
	return func(s *Service) { s.threshold = n }
}

func WithNotifier(n LowStockNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders repo.OrderRepository, products ProductGetter, customers CustomerGetter, inventory repo.InventoryRepository, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		inventory: inventory,
		threshold: DefaultLowStockThreshold,
		log:       zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder creates an order with all its items. Either every item is
// stored and its stock decremented, or nothing is.
func (s *Service) PlaceOrder(ctx context.Context, customerID int64, items []ItemRequest) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return models.Order{}, err
	}
	lines, err := s.priceItems(ctx, items)
	if err != nil {
		return models.Order{}, err
	}

	var (
		orderID int64
		touched []models.Inventory
	)
	err = s.orders.WithTx(ctx, func(tx repo.OrderTx) error {
		order, err := tx.InsertOrder(ctx, models.Order{
			CustomerID:  customerID,
			OrderDate:   s.now(),
			Status:      models.OrderPending,
			TotalAmount: decimal.Zero,
		})
		if err != nil {
			return err
		}
		orderID = order.ID

		for _, line := range lines {
			line.OrderID = order.ID
			_, inv, err := s.addItem(ctx, tx, line)
			if err != nil {
				return err
			}
			touched = append(touched, inv)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.checkLowStock(ctx, touched...)
	return s.orders.GetByID(ctx, orderID)
}

// AddOrderItem adds one item to an existing order and decrements stock in the
// same transaction.
func (s *Service) AddOrderItem(ctx context.Context, orderID int64, item ItemRequest) (models.OrderItem, error) {
	lines, err := s.priceItems(ctx, []ItemRequest{item})
	if err != nil {
		return models.OrderItem{}, err
	}
	line := lines[0]
	line.OrderID = orderID

	var (
		created models.OrderItem
		inv     models.Inventory
	)
	err = s.orders.WithTx(ctx, func(tx repo.OrderTx) error {
		if _, err := tx.GetOrder(ctx, orderID); err != nil {
			return err
		}
		created, inv, err = s.addItem(ctx, tx, line)
		return err
	})
	if err != nil {
		return models.OrderItem{}, err
	}

	s.checkLowStock(ctx, inv)
	return created, nil
}

func (s *Service) priceItems(ctx context.Context, items []ItemRequest) ([]models.OrderItem, error) {
	lines := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		var price decimal.Decimal
		if it.Price != nil {
			if !it.Price.IsPositive() || !it.Price.Equal(it.Price.Round(2)) {
				return nil, ErrInvalidPrice
			}
			price = *it.Price
		} else {
			p, err := s.products.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			price = p.Price
		}
		lines = append(lines, models.OrderItem{
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			PriceAtTimeOfOrder: price,
		})
	}
	return lines, nil
}

// addItem decrements stock first so that nothing is written for an item that
// cannot be fulfilled.
func (s *Service) addItem(ctx context.Context, tx repo.OrderTx, item models.OrderItem) (models.OrderItem, models.Inventory, error) {
	inv, err := tx.DecrementStock(ctx, item.ProductID, item.Quantity)
	if errors.Is(err, repo.ErrInvalidQuantityChange) || errors.Is(err, repo.ErrInventoryNotFound) {
		return models.OrderItem{}, models.Inventory{}, &StockError{ProductID: item.ProductID, Requested: item.Quantity}
	}
	if err != nil {
		return models.OrderItem{}, models.Inventory{}, fmt.Errorf("failed to decrement stock: %w", err)
	}

	created, err := tx.InsertItem(ctx, item)
	if err != nil {
		return models.OrderItem{}, models.Inventory{}, err
	}
	if err := tx.AddToTotal(ctx, item.OrderID, item.Subtotal()); err != nil {
		return models.OrderItem{}, models.Inventory{}, err
	}
	return created, inv, nil
}

// Restock replaces the quantity and restock date of an inventory record.
// A zero restockedAt means now.
func (s *Service) Restock(ctx context.Context, inventoryID int64, quantity int, restockedAt time.Time) (models.Inventory, error) {
	if quantity < 0 {
		return models.Inventory{}, ErrNegativeStock
	}
	inv, err := s.inventory.GetByID(ctx, inventoryID)
	if err != nil {
		return models.Inventory{}, err
	}
	if restockedAt.IsZero() {
		restockedAt = s.now()
	}
	inv.Quantity = quantity
	inv.LastRestockedDate = restockedAt

	updated, err := s.inventory.Update(ctx, inv)
	if err != nil {
		return models.Inventory{}, err
	}
	s.checkLowStock(ctx, updated)
	return updated, nil
}

// Stock creates the inventory record of a product.
func (s *Service) Stock(ctx context.Context, productID int64, quantity int) (models.Inventory, error) {
	if quantity < 0 {
		return models.Inventory{}, ErrNegativeStock
	}
	inv, err := s.inventory.Create(ctx, models.Inventory{
		ProductID:         productID,
		Quantity:          quantity,
		LastRestockedDate: s.now(),
	})
	if err != nil {
		return models.Inventory{}, err
	}
	s.checkLowStock(ctx, inv)
	return inv, nil
}

func (s *Service) checkLowStock(ctx context.Context, saved ...models.Inventory) {
	for _, inv := range saved {
		if inv.Quantity >= s.threshold {
			continue
		}
		ev := models.LowStockEvent{
			InventoryID: inv.ID,
			ProductID:   inv.ProductID,
			Quantity:    inv.Quantity,
			Threshold:   s.threshold,
			Time:        s.now(),
		}
		if s.notifier == nil {
			s.log.Warn("low stock", zap.Int64("product_id", inv.ProductID), zap.Int("quantity", inv.Quantity))
			continue
		}
		if err := s.notifier.NotifyLowStock(ctx, ev); err != nil {
			s.log.Error("low stock notification failed", zap.Int64("product_id", inv.ProductID), zap.Error(err))
		}
	}
}
