package handlers

import (
	"net/http"
	"time"

	mw "github.com/rogerio-castellano/ecommerce-analytics/internal/http/middleware"
	"go.uber.org/zap"
)

// RestockInventoryHandler godoc
// @Summary Replace the stock of an inventory record
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inventory ID"
// @Param restock body RestockRequest true "New quantity and restock date"
// @Success 200 {object} models.Inventory
// @Failure 400 {object} ErrorResponse
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {object} ErrorResponse
// @Router /inventory/{id} [post]
func RestockInventoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var req RestockRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}
	if req.Quantity == nil {
		respond(w, http.StatusBadRequest, []ValidationError{{Field: "Quantity", Description: "Quantity is required"}})
		return
	}

	var restockedAt time.Time
	if req.LastRestockedDate != "" {
		restockedAt, err = time.Parse(time.RFC3339, req.LastRestockedDate)
		if err != nil {
			restockedAt, err = time.Parse(dateLayout, req.LastRestockedDate)
		}
		if err != nil {
			respond(w, http.StatusBadRequest, []ValidationError{{Field: "LastRestockedDate", Description: "Date must be RFC 3339 or YYYY-MM-DD"}})
			return
		}
	}

	inv, err := fulfillmentSvc.Restock(r.Context(), id, *req.Quantity, restockedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("inventory restocked",
		zap.Int64("inventory_id", inv.ID),
		zap.Int("quantity", inv.Quantity),
		zap.Int64("user_id", mw.GetUserID(r)))
	invalidateAnalytics(r.Context())
	respond(w, http.StatusOK, inv)
}

// GetInventoryHandler godoc
// @Summary Get an inventory record
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param id path int true "Inventory ID"
// @Success 200 {object} models.Inventory
// @Failure 404 {object} ErrorResponse
// @Router /inventory/{id} [get]
func GetInventoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := inventoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, inv)
}
