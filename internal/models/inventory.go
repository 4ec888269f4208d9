package models

import "time"

// Inventory is the stock counter of a single product. Quantity is never
// negative.
type Inventory struct {
	ID                int64     `json:"id"`
	ProductID         int64     `json:"product_id"`
	Quantity          int       `json:"quantity"`
	LastRestockedDate time.Time `json:"last_restocked_date"`
}

// LowStockEvent is raised when an inventory save leaves the quantity below
// the configured threshold.
type LowStockEvent struct {
	InventoryID int64     `json:"inventory_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity"`
	Threshold   int       `json:"threshold"`
	Time        time.Time `json:"time"`
}
