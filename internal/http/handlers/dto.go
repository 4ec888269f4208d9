package handlers

import (
	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	TagIDs      []int64         `json:"tag_ids,omitempty"`
	// Quantity creates the inventory record when set.
	Quantity *int `json:"quantity,omitempty"`
}

type ProductResponse struct {
	models.Product
	Quantity *int `json:"quantity,omitempty"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []models.Product `json:"data"`
	Meta Meta             `json:"meta,omitempty"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

type CustomerResponse struct {
	models.Customer
	LifetimeValue decimal.Decimal `json:"lifetime_value"`
}

// RestockRequest replaces the stock of an inventory record. A missing
// last_restocked_date means now.
type RestockRequest struct {
	Quantity          *int   `json:"quantity"`
	LastRestockedDate string `json:"last_restocked_date,omitempty"`
}

type OrderRequest struct {
	CustomerID int64                     `json:"customer_id"`
	Items      []fulfillment.ItemRequest `json:"items"`
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	models.Order
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

type SalesAnalyticsResult struct {
	RevenueByCategory  []analytics.CategoryRevenue `json:"revenue_by_category"`
	TopSellingProducts []analytics.CountrySales    `json:"top_selling_products"`
	CustomerChurnRate  float64                     `json:"customer_churn_rate"`
}

type ImportProductsResult struct {
	ImportedProductsCount int               `json:"imported"`
	Errors                []ValidationError `json:"errors"`
}
