package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"go.uber.org/zap"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	respond(w, status, ErrorResponse{Error: msg})
}

// writeError maps domain errors to a status code. Unknown errors are logged
// and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fulfillment.ErrInsufficientStock):
		errorJSON(w, http.StatusConflict, "out of stock")
	case errors.Is(err, repo.ErrCustomerNotFound):
		errorJSON(w, http.StatusNotFound, "Customer not found.")
	case errors.Is(err, repo.ErrProductNotFound),
		errors.Is(err, repo.ErrOrderNotFound),
		errors.Is(err, repo.ErrInventoryNotFound),
		errors.Is(err, repo.ErrCategoryNotFound),
		errors.Is(err, repo.ErrTagNotFound):
		errorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrDuplicatedValueUnique):
		errorJSON(w, http.StatusConflict, err.Error())
	case errors.Is(err, fulfillment.ErrInvalidQuantity),
		errors.Is(err, fulfillment.ErrNegativeStock),
		errors.Is(err, fulfillment.ErrEmptyOrder),
		errors.Is(err, fulfillment.ErrInvalidPrice),
		errors.Is(err, analytics.ErrInvalidWindow):
		errorJSON(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
