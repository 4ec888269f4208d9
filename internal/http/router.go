package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/ecommerce-analytics/internal/docs"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	mw "github.com/rogerio-castellano/ecommerce-analytics/internal/http/middleware"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	requestTimeout = 30 * time.Second
	adminRole      = "admin"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(logger.L()))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(mw.RateLimit)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/token", handlers.TokenHandler)
	r.Post("/token/refresh", handlers.RefreshTokenHandler)

	r.Get("/sales-analytics", handlers.SalesAnalyticsHandler)
	r.Get("/export-sales", handlers.ExportSalesHandler)
	r.Get("/recommendation/{customerID}", handlers.RecommendationHandler)
	r.Get("/products", handlers.GetProductsHandler)
	r.Get("/products/{id}", handlers.GetProductByIDHandler)
	r.Get("/categories", handlers.GetCategoriesHandler)
	r.Get("/tags", handlers.GetTagsHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)

		r.Get("/sales", handlers.SalesHandler)

		r.Get("/inventory/{id}", handlers.GetInventoryHandler)

		r.Post("/customers", handlers.CreateCustomerHandler)
		r.Get("/customer/{id}", handlers.GetCustomerHandler)

		// Catalog and stock changes are reserved to admins.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(adminRole))

			r.Post("/inventory/{id}", handlers.RestockInventoryHandler)

			r.Post("/products", handlers.CreateProductHandler)
			r.Post("/products/import", handlers.ImportProductsHandler)
			r.Put("/products/{id}", handlers.UpdateProductHandler)
			r.Delete("/products/{id}", handlers.DeleteProductHandler)

			r.Post("/categories", handlers.CreateCategoryHandler)
			r.Post("/tags", handlers.CreateTagHandler)
		})

		r.Post("/orders", handlers.CreateOrderHandler)
		r.Get("/orders/{id}", handlers.GetOrderHandler)
		r.Post("/orders/{id}/items", handlers.AddOrderItemHandler)
		r.Post("/orders/{id}/status", handlers.UpdateOrderStatusHandler)
	})

	return r
}
