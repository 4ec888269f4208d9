package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	mw "github.com/rogerio-castellano/ecommerce-analytics/internal/http/middleware"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"go.uber.org/zap"
)

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalog. When quantity is set an inventory record is created with it.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ValidationError
// @Failure 404 {object} ErrorResponse "Category or tag not found"
// @Failure 409 {object} ErrorResponse "SKU already exists"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}

	if errs := validateProduct(req); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	product := models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SKU:         strings.TrimSpace(req.SKU),
		Price:       req.Price,
	}
	if err := resolveCatalog(r.Context(), &product, req.CategoryID, req.TagIDs); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := productRepo.Create(r.Context(), product)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ProductResponse{Product: created}
	if req.Quantity != nil {
		inv, err := fulfillmentSvc.Stock(r.Context(), created.ID, *req.Quantity)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Quantity = &inv.Quantity
	}
	respond(w, http.StatusCreated, resp)
}

// resolveCatalog loads the category and tags referenced by a product request.
func resolveCatalog(ctx context.Context, p *models.Product, categoryID *int64, tagIDs []int64) error {
	if categoryID != nil {
		c, err := categoryRepo.GetByID(ctx, *categoryID)
		if err != nil {
			return err
		}
		p.Category = &c
	}
	if len(tagIDs) == 0 {
		return nil
	}
	tags, err := tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(uniqueIDs(tagIDs)) {
		return repo.ErrTagNotFound
	}
	p.Tags = tags
	return nil
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen
}

// GetProductsHandler godoc
// @Summary Filter and paginate products
// @Tags products
// @Produce json
// @Param name query string false "Filter by name"
// @Param category_id query int false "Filter by category"
// @Param available query bool false "Only products in stock"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {object} ErrorResponse
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repo.ProductFilter{
		Name:       q.Get("name"),
		CategoryID: parseInt64Ptr(q.Get("category_id")),
		Available:  strings.EqualFold(q.Get("available"), "true"),
		Offset:     parseIntPtr(q.Get("offset")),
		Limit:      parseIntPtr(q.Get("limit")),
	}

	if filter.Limit != nil && *filter.Limit <= 0 {
		errorJSON(w, http.StatusBadRequest, "limit must be greater than zero")
		return
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		errorJSON(w, http.StatusBadRequest, "offset must be zero or positive")
		return
	}

	products, total, err := productRepo.Filter(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respond(w, http.StatusOK, ProductsSearchResult{Data: products, Meta: Meta{TotalCount: total}})
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := productRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ProductResponse{Product: product}
	inv, err := inventoryRepo.GetByProductID(r.Context(), id)
	switch {
	case err == nil:
		resp.Quantity = &inv.Quantity
	case !errors.Is(err, repo.ErrInventoryNotFound):
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, resp)
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ValidationError
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "SKU already exists"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errs := validateProduct(req); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	product := models.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SKU:         strings.TrimSpace(req.SKU),
		Price:       req.Price,
	}
	if err := resolveCatalog(r.Context(), &product, req.CategoryID, req.TagIDs); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := productRepo.Update(r.Context(), product)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ProductResponse{Product: updated}
	if req.Quantity != nil {
		if err := setStock(r.Context(), id, *req.Quantity); err != nil {
			writeError(w, r, err)
			return
		}
		resp.Quantity = req.Quantity
		invalidateAnalytics(r.Context())
	}
	respond(w, http.StatusOK, resp)
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Description Removes the product with its inventory and order items.
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := productRepo.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("product deleted", zap.Int64("product_id", id), zap.Int64("user_id", mw.GetUserID(r)))
	invalidateAnalytics(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
