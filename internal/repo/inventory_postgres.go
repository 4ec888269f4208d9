package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type PostgresInventoryRepository struct {
	db *sql.DB
}

func NewPostgresInventoryRepository(db *sql.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

const inventoryColumns = `id, product_id, quantity, last_restocked_date`

func scanInventory(row rowScanner) (models.Inventory, error) {
	var inv models.Inventory
	err := row.Scan(&inv.ID, &inv.ProductID, &inv.Quantity, &inv.LastRestockedDate)
	return inv, err
}

func (r *PostgresInventoryRepository) Create(ctx context.Context, inv models.Inventory) (models.Inventory, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if inv.Quantity < 0 {
		return models.Inventory{}, ErrInvalidQuantityChange
	}
	query := `INSERT INTO inventory (product_id, quantity, last_restocked_date) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, inv.ProductID, inv.Quantity, inv.LastRestockedDate).Scan(&inv.ID); err != nil {
		return models.Inventory{}, translatePgError(err)
	}
	return inv, nil
}

func (r *PostgresInventoryRepository) GetByID(ctx context.Context, id int64) (models.Inventory, error) {
	return r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = $1`, id)
}

func (r *PostgresInventoryRepository) GetByProductID(ctx context.Context, productID int64) (models.Inventory, error) {
	return r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE product_id = $1`, productID)
}

func (r *PostgresInventoryRepository) getOne(ctx context.Context, query string, arg any) (models.Inventory, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	inv, err := scanInventory(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Inventory{}, ErrInventoryNotFound
	}
	return inv, err
}

func (r *PostgresInventoryRepository) Update(ctx context.Context, inv models.Inventory) (models.Inventory, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if inv.Quantity < 0 {
		return models.Inventory{}, ErrInvalidQuantityChange
	}
	query := `
		UPDATE inventory
		SET quantity = $1, last_restocked_date = $2
		WHERE id = $3
		RETURNING ` + inventoryColumns
	updated, err := scanInventory(r.db.QueryRowContext(ctx, query, inv.Quantity, inv.LastRestockedDate, inv.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Inventory{}, ErrInventoryNotFound
	}
	return updated, err
}

func (r *PostgresInventoryRepository) InStock(ctx context.Context) ([]models.Inventory, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE quantity > 0 ORDER BY quantity DESC, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
