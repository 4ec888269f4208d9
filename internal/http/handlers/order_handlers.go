package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
)

// CreateOrderHandler godoc
// @Summary Place an order
// @Description Creates the order and its items and decrements stock in one transaction.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body OrderRequest true "Order to place"
// @Success 201 {object} OrderResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Out of stock"
// @Router /orders [post]
func CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}

	order, err := fulfillmentSvc.PlaceOrder(r.Context(), req.CustomerID, req.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	invalidateAnalytics(r.Context())

	resp, err := orderResponse(r, order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, resp)
}

// GetOrderHandler godoc
// @Summary Get an order with its items and tax
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := orderRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := orderResponse(r, order)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, resp)
}

// AddOrderItemHandler godoc
// @Summary Add an item to an existing order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param item body fulfillment.ItemRequest true "Item to add"
// @Success 201 {object} models.OrderItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Out of stock"
// @Router /orders/{id}/items [post]
func AddOrderItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req fulfillment.ItemRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}

	item, err := fulfillmentSvc.AddOrderItem(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	invalidateAnalytics(r.Context())
	respond(w, http.StatusCreated, item)
}

func orderResponse(r *http.Request, o models.Order) (OrderResponse, error) {
	c, err := customerRepo.GetByID(r.Context(), o.CustomerID)
	if err != nil {
		return OrderResponse{}, err
	}
	tax := taxTable.Tax(o, c.Country)
	return OrderResponse{Order: o, Tax: tax, GrandTotal: o.TotalAmount.Add(tax)}, nil
}

// UpdateOrderStatusHandler godoc
// @Summary Change the status of an order
// @Tags orders
// @Accept json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param status body OrderStatusRequest true "PENDING, SHIPPED, DELIVERED or CANCELLED"
// @Success 204 "Updated"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/status [post]
func UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req OrderStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}
	status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		errorJSON(w, http.StatusBadRequest, "invalid order status")
		return
	}

	if err := orderRepo.UpdateStatus(r.Context(), id, status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
