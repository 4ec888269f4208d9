package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/alerts"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/auth"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/config"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/db"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/fulfillment"
	api "github.com/rogerio-castellano/ecommerce-analytics/internal/http"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/http/handlers"
	rl "github.com/rogerio-castellano/ecommerce-analytics/internal/http/rate_limiter"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/logger"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/redissvc"
	"github.com/rogerio-castellano/ecommerce-analytics/internal/repo"
	"go.uber.org/zap"
)

// @title E-commerce Analytics API
// @version 1.0
// @description Sales analytics, recommendations and inventory for an online store.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(cfg.IsDevelopment()); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	defer database.Close()

	if cfg.Database.Migrate {
		if err := db.Migrate(ctx, database); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
	}

	productRepo := repo.NewPostgresProductRepository(database)
	customerRepo := repo.NewPostgresCustomerRepository(database)
	inventoryRepo := repo.NewPostgresInventoryRepository(database)
	orderRepo := repo.NewPostgresOrderRepository(database)
	userRepo := repo.NewPostgresUserRepository(database)

	handlers.SetLogger(log)
	handlers.SetProductRepo(productRepo)
	handlers.SetCategoryRepo(repo.NewPostgresCategoryRepository(database))
	handlers.SetTagRepo(repo.NewPostgresTagRepository(database))
	handlers.SetCustomerRepo(customerRepo)
	handlers.SetInventoryRepo(inventoryRepo)
	handlers.SetOrderRepo(orderRepo)
	handlers.SetSalesRepo(repo.NewPostgresSalesRepository(database))
	handlers.SetChurnWindow(time.Duration(cfg.Analytics.ChurnWindowDays) * 24 * time.Hour)

	taxes, err := models.ParseTaxTable(cfg.Tax.DefaultRate, cfg.Tax.Rates)
	if err != nil {
		log.Fatal("invalid tax configuration", zap.Error(err))
	}
	handlers.SetTaxTable(taxes)

	// Redis backs the analytics cache, refresh tokens and the low stock
	// queue. Without it the service still runs with in-process fallbacks.
	var refreshStore auth.RefreshStore
	var eventStore alerts.EventStore
	redisService, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, caching and low stock summaries disabled", zap.Error(err))
		memStore := auth.NewMemoryRefreshStore()
		go memStore.StartCleaner(ctx, 30*time.Minute)
		refreshStore = memStore
	} else {
		defer redisService.Close()
		handlers.SetCache(redisService, cfg.Cache.TTL)
		refreshStore = auth.NewRedisRefreshStore(redisService.Rdb())
		eventStore = redisService
	}

	auth.Configure(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := auth.NewAuthService(userRepo, refreshStore)
	handlers.SetAuthService(authService)
	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, "admin"); err != nil {
			log.Fatal("could not create admin user", zap.Error(err))
		}
	}

	notifier := alerts.NewNotifier(log, eventStore, productRepo)
	handlers.SetFulfillmentService(fulfillment.NewService(orderRepo, productRepo, customerRepo, inventoryRepo,
		fulfillment.WithThreshold(cfg.Inventory.LowStockThreshold),
		fulfillment.WithNotifier(notifier),
		fulfillment.WithLogger(log),
	))

	if smtp := cfg.Alerts.SMTP; eventStore != nil && smtp.To != "" {
		sender := alerts.NewSMTPSender(smtp.Host, smtp.Port, smtp.User, smtp.Password)
		summary := alerts.NewSummary(eventStore, sender, smtp.From, strings.Split(smtp.To, ","), log)
		go summary.Start(ctx, cfg.Alerts.SummaryInterval)
	}

	rl.Configure(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go rl.StartVisitorCleanupLoop(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server running", zap.String("addr", cfg.Server.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}
