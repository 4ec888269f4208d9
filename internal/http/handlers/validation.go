package handlers

import (
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field       string `json:"field,omitempty"`
	Description string `json:"description"`
}

func validateProduct(p ProductRequest) []ValidationError {
	errs := []ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{Field: "Name", Description: "Name is required"})
	}
	if strings.TrimSpace(p.SKU) == "" {
		errs = append(errs, ValidationError{Field: "SKU", Description: "SKU is required"})
	}
	if !p.Price.IsPositive() {
		errs = append(errs, ValidationError{Field: "Price", Description: "Price must be greater than zero"})
	} else if !p.Price.Equal(p.Price.Round(2)) {
		errs = append(errs, ValidationError{Field: "Price", Description: "Price cannot have more than 2 decimal places"})
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		errs = append(errs, ValidationError{Field: "Quantity", Description: "Quantity cannot be negative"})
	}
	return errs
}

func validateCustomer(c CustomerRequest) []ValidationError {
	errs := []ValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: "Name", Description: "Name is required"})
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		errs = append(errs, ValidationError{Field: "Email", Description: "Email is invalid"})
	}
	if strings.TrimSpace(c.Country) == "" {
		errs = append(errs, ValidationError{Field: "Country", Description: "Country is required"})
	}
	return errs
}
