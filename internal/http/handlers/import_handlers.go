package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"github.com/shopspring/decimal"
)

type csvRow struct {
	Name        string
	SKU         string
	Description string
	Category    string
	Price       decimal.Decimal
	Quantity    *int
}

var requiredColumns = []string{"name", "sku", "price"}

func parseCSV(r io.Reader) ([]csvRow, []ValidationError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	var rowErrs []ValidationError
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV read error: %w", err)
		}

		row := csvRow{
			Name:        field(record, "name"),
			SKU:         field(record, "sku"),
			Description: field(record, "description"),
			Category:    field(record, "category"),
		}
		price, err := decimal.NewFromString(field(record, "price"))
		if err != nil {
			rowErrs = append(rowErrs, ValidationError{Field: "Price", Description: fmt.Sprintf("row %d: invalid price", line)})
			continue
		}
		row.Price = price
		if q := field(record, "quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				rowErrs = append(rowErrs, ValidationError{Field: "Quantity", Description: fmt.Sprintf("row %d: invalid quantity", line)})
				continue
			}
			row.Quantity = &n
		}

		if errs := validateProduct(ProductRequest{Name: row.Name, SKU: row.SKU, Price: row.Price, Quantity: row.Quantity}); len(errs) > 0 {
			for _, e := range errs {
				rowErrs = append(rowErrs, ValidationError{Field: e.Field, Description: fmt.Sprintf("row %d: %s", line, e.Description)})
			}
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

// categoryByName finds a category by name, creating it on first use.
func categoryByName(ctx context.Context, name string) (*models.Category, error) {
	if name == "" {
		return nil, nil
	}
	c, err := categoryRepo.GetByName(ctx, name)
	if errors.Is(err, repo.ErrCategoryNotFound) {
		c, err = categoryRepo.Create(ctx, models.Category{Name: name})
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func setStock(ctx context.Context, productID int64, quantity int) error {
	inv, err := inventoryRepo.GetByProductID(ctx, productID)
	if errors.Is(err, repo.ErrInventoryNotFound) {
		_, err = fulfillmentSvc.Stock(ctx, productID, quantity)
		return err
	}
	if err != nil {
		return err
	}
	_, err = fulfillmentSvc.Restock(ctx, inv.ID, quantity, time.Time{})
	return err
}

func importRow(ctx context.Context, rec csvRow, mode string) (bool, error) {
	category, err := categoryByName(ctx, rec.Category)
	if err != nil {
		return false, err
	}

	existing, err := productRepo.GetBySKU(ctx, rec.SKU)
	switch {
	case err == nil:
		if mode == "skip" {
			return false, fmt.Errorf("product %q already exists", rec.SKU)
		}
		existing.Name = rec.Name
		existing.Description = rec.Description
		existing.Price = rec.Price
		if category != nil {
			existing.Category = category
		}
		if _, err := productRepo.Update(ctx, existing); err != nil {
			return false, err
		}
		if rec.Quantity != nil {
			return true, setStock(ctx, existing.ID, *rec.Quantity)
		}
		return true, nil
	case !errors.Is(err, repo.ErrProductNotFound):
		return false, err
	}

	created, err := productRepo.Create(ctx, models.Product{
		Name:        rec.Name,
		Description: rec.Description,
		SKU:         rec.SKU,
		Price:       rec.Price,
		Category:    category,
	})
	if err != nil {
		return false, err
	}
	if rec.Quantity != nil {
		if _, err := fulfillmentSvc.Stock(ctx, created.ID, *rec.Quantity); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: name, sku, price and optionally description, category, quantity. Existing SKUs are skipped or updated depending on mode.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} ErrorResponse
// @Router /products/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip"
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	rows, errs, err := parseCSV(file)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var imported int
	for _, rec := range rows {
		ok, err := importRow(r.Context(), rec, mode)
		if ok {
			imported++
		}
		if err != nil {
			errs = append(errs, ValidationError{Field: "SKU", Description: fmt.Sprintf("%s: %v", rec.SKU, err)})
		}
	}
	if imported > 0 {
		invalidateAnalytics(r.Context())
	}
	if errs == nil {
		errs = []ValidationError{}
	}

	respond(w, http.StatusOK, ImportProductsResult{ImportedProductsCount: imported, Errors: errs})
}
