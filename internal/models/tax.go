package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxTable holds per-country tax rates keyed by upper-case country code.
type TaxTable struct {
	defaultRate decimal.Decimal
	rates       map[string]decimal.Decimal
}

func NewTaxTable(defaultRate decimal.Decimal, rates map[string]decimal.Decimal) TaxTable {
	t := TaxTable{defaultRate: defaultRate, rates: make(map[string]decimal.Decimal, len(rates))}
	for country, rate := range rates {
		t.rates[strings.ToUpper(strings.TrimSpace(country))] = rate
	}
	return t
}

// ParseTaxTable builds a TaxTable from string rates as they come from config.
func ParseTaxTable(defaultRate string, rates map[string]string) (TaxTable, error) {
	def, err := decimal.NewFromString(defaultRate)
	if err != nil {
		return TaxTable{}, fmt.Errorf("invalid default tax rate %q: %w", defaultRate, err)
	}
	parsed := make(map[string]decimal.Decimal, len(rates))
	for country, r := range rates {
		rate, err := decimal.NewFromString(r)
		if err != nil {
			return TaxTable{}, fmt.Errorf("invalid tax rate %q for %s: %w", r, country, err)
		}
		parsed[country] = rate
	}
	return NewTaxTable(def, parsed), nil
}

func (t TaxTable) Rate(country string) decimal.Decimal {
	if rate, ok := t.rates[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return rate
	}
	return t.defaultRate
}

// Tax returns the tax owed on an order placed by a customer from country.
func (t TaxTable) Tax(o Order, country string) decimal.Decimal {
	return o.TotalAmount.Mul(t.Rate(country))
}
