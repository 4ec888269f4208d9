package repo

import (
	"context"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type InventoryRepository interface {
	Create(ctx context.Context, inv models.Inventory) (models.Inventory, error)
	GetByID(ctx context.Context, id int64) (models.Inventory, error)
	GetByProductID(ctx context.Context, productID int64) (models.Inventory, error)
	// Update replaces quantity and last_restocked_date of an existing record.
	Update(ctx context.Context, inv models.Inventory) (models.Inventory, error)
	// InStock returns inventories with positive quantity, highest quantity
	// first and ties by product id.
	InStock(ctx context.Context) ([]models.Inventory, error)
}
