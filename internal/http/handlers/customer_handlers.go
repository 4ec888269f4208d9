package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/recommend"
)

// CreateCustomerHandler godoc
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customer body CustomerRequest true "Customer to create"
// @Success 201 {object} models.Customer
// @Failure 400 {array} ValidationError
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /customers [post]
func CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := readJSON(w, r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errs := validateCustomer(req); len(errs) > 0 {
		respond(w, http.StatusBadRequest, errs)
		return
	}

	created, err := customerRepo.Create(r.Context(), models.Customer{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Country: strings.ToUpper(strings.TrimSpace(req.Country)),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	invalidateAnalytics(r.Context())
	respond(w, http.StatusCreated, created)
}

// GetCustomerHandler godoc
// @Summary Get a customer with their lifetime value
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} CustomerResponse
// @Failure 404 {object} ErrorResponse
// @Router /customer/{id} [get]
func GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := customerRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ltv, err := customerRepo.LifetimeValue(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, CustomerResponse{Customer: c, LifetimeValue: ltv})
}

// RecommendationHandler godoc
// @Summary Product recommendations for a customer
// @Tags recommendations
// @Produce json
// @Param customerID path int true "Customer ID"
// @Param strategy query string false "similar (default), history, inventory or auto"
// @Success 200 {array} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /recommendation/{customerID} [get]
func RecommendationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "customerID")
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	strategy, err := recommend.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := customerRepo.GetByID(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	engine := recommend.NewEngine(id, orderRepo, productRepo, inventoryRepo)
	products, err := engine.Suggest(r.Context(), strategy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, products)
}
