package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/cache"
	"catalog-service/internal/config"
	"catalog-service/internal/currency"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
)

// @title Catalog Aggregation API
// @version 1.0.0
// @description Storefront catalog resolution service: products, bundles, carts and stock.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8088
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Redis is optional; the cache layer degrades to in-process L1 only
	var redisClient *redis.Client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
	} else {
		redisClient = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (L1 cache only)", err)
			redisClient = nil
		} else {
			log.Println("Redis connected successfully")
		}
		cancel()
	}

	viewCache := cache.NewLayer(redisClient, cache.LayerConfig{
		KeyPrefix: "catalog:",
		L1TTL:     30 * time.Second,
	})
	rateCache := cache.NewLayer(redisClient, cache.LayerConfig{
		KeyPrefix: "currency:",
		L1TTL:     time.Minute,
	})

	// Event publishing is optional and enabled by NATS_URL
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without events)", err)
		} else {
			log.Println("Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if publisher != nil {
			publisher.Close()
		}
	}()

	catalogRepo := repository.NewCatalogRepository(db)
	cartRepo := repository.NewCartRepository(db)

	catalogService := services.NewCatalogService(catalogRepo, viewCache, cfg.ViewCacheTTL, logger)
	cartService := services.NewCartService(cartRepo, catalogRepo, publisher, logger)
	rateProvider := currency.NewRateProvider(cfg.RatesEndpoint, rateCache, cfg.RatesTTL, logger)

	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)
	currencyHandler := handlers.NewCurrencyHandler(rateProvider, logger)
	exportHandler := handlers.NewExportHandler(catalogService, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadyCheck(db))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		storefront := v1.Group("/storefront")
		{
			storefront.GET("/items/:id", catalogHandler.ResolveItem)
			storefront.GET("/products/:id", catalogHandler.ResolveProduct)
			storefront.GET("/bundles/:id", catalogHandler.ResolveBundle)

			storefront.POST("/carts", cartHandler.CreateCart)
			storefront.GET("/carts/:cartId/items", cartHandler.GetCartItems)
			storefront.POST("/carts/:cartId/items", cartHandler.AddItem)
			storefront.PUT("/carts/:cartId/items/:itemId", cartHandler.UpdateItem)
			storefront.DELETE("/carts/:cartId/items/:itemId", cartHandler.RemoveItem)

			storefront.POST("/cart/stock-check", cartHandler.StockCheck)
			storefront.POST("/carts/:cartId/commit-stock", cartHandler.CommitStock)

			storefront.GET("/currency/rates", currencyHandler.GetRates)
			storefront.GET("/currency/convert", currencyHandler.Convert)
		}

		v1.GET("/export/catalog.xlsx", exportHandler.ExportCatalog)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting catalog service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down catalog service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Catalog service stopped")
}
