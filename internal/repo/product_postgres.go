package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productColumns = `p.id, p.name, p.description, p.sku, p.price, c.id, c.name`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p       models.Product
		catID   sql.NullInt64
		catName sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &catID, &catName); err != nil {
		return models.Product{}, err
	}
	if catID.Valid {
		p.Category = &models.Category{ID: catID.Int64, Name: catName.String}
	}
	p.Tags = []models.Tag{}
	return p, nil
}

func categoryIDArg(p models.Product) any {
	if id, ok := p.CategoryID(); ok {
		return id
	}
	return nil
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	query := `INSERT INTO products (name, description, sku, price, category_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = tx.QueryRowContext(ctx, query, p.Name, p.Description, p.SKU, p.Price, categoryIDArg(p)).Scan(&p.ID)
	if err != nil {
		return models.Product{}, translatePgError(err)
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return models.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func replaceTags(ctx context.Context, tx *sql.Tx, productID int64, tags []models.Tag) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear product tags: %w", err)
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, productID, t.ID); err != nil {
			return fmt.Errorf("failed to tag product: %w", err)
		}
	}
	return nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (models.Product, error) {
	return r.getOne(ctx, ` WHERE p.id = $1`, id)
}

func (r *PostgresProductRepository) GetBySKU(ctx context.Context, sku string) (models.Product, error) {
	return r.getOne(ctx, ` WHERE p.sku = $1`, sku)
}

func (r *PostgresProductRepository) getOne(ctx context.Context, where string, arg any) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	products := []models.Product{p}
	if err := r.loadTags(ctx, products); err != nil {
		return models.Product{}, err
	}
	return products[0], nil
}

func (r *PostgresProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, ` WHERE p.id = ANY($1) ORDER BY p.id`, ids)
}

func (r *PostgresProductRepository) GetByCategoryIDs(ctx context.Context, categoryIDs []int64) ([]models.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, ` WHERE p.category_id = ANY($1) ORDER BY p.id`, categoryIDs)
}

func (r *PostgresProductRepository) list(ctx context.Context, tail string, args ...any) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+productFrom+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// loadTags fills the Tags of every product with a single query.
func (r *PostgresProductRepository) loadTags(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pt.product_id, t.id, t.name
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id = ANY($1)
		ORDER BY pt.product_id, t.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load product tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var t models.Tag
		if err := rows.Scan(&productID, &t.ID, &t.Name); err != nil {
			return err
		}
		i := index[productID]
		products[i].Tags = append(products[i].Tags, t)
	}
	return rows.Err()
}

func (r *PostgresProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, int, error) {
	conditions, args, argIdx := filterConditions(pf)

	var totalCount int
	countCtx, cancel := withTimeout(ctx)
	defer cancel()
	countQuery := "SELECT COUNT(*)" + productFrom + " WHERE 1=1" + conditions
	if err := r.db.QueryRowContext(countCtx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	tail := " WHERE 1=1" + conditions + " ORDER BY p.id"
	if pf.Limit != nil && *pf.Limit > 0 {
		tail += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, *pf.Limit)
		argIdx++
	}
	if pf.Offset != nil && *pf.Offset > 0 {
		tail += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, *pf.Offset)
	}

	products, err := r.list(ctx, tail, args...)
	if err != nil {
		return nil, 0, err
	}
	return products, totalCount, nil
}

func filterConditions(pf ProductFilter) (string, []any, int) {
	query := ""
	argIdx := 1
	args := []any{}

	if pf.Name != "" {
		query += fmt.Sprintf(" AND p.name ILIKE $%d", argIdx)
		args = append(args, "%"+pf.Name+"%")
		argIdx++
	}
	if pf.CategoryID != nil {
		query += fmt.Sprintf(" AND p.category_id = $%d", argIdx)
		args = append(args, *pf.CategoryID)
		argIdx++
	}
	if pf.Available {
		query += " AND EXISTS (SELECT 1 FROM inventory i WHERE i.product_id = p.id AND i.quantity > 0)"
	}

	return query, args, argIdx
}

func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, err
	}
	defer tx.Rollback()

	query := `UPDATE products SET name = $1, description = $2, sku = $3, price = $4, category_id = $5 WHERE id = $6`
	res, err := tx.ExecContext(ctx, query, p.Name, p.Description, p.SKU, p.Price, categoryIDArg(p), p.ID)
	if err != nil {
		return models.Product{}, translatePgError(err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Product{}, ErrProductNotFound
	}
	if err := replaceTags(ctx, tx, p.ID, p.Tags); err != nil {
		return models.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
