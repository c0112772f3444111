package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/models"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// NATS (empty disables event publishing)
	NATSURL string

	// Server
	Port        string
	Environment string

	// Currency rates
	RatesEndpoint string
	RatesTTL      time.Duration

	// Item view caching
	ViewCacheTTL time.Duration
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	ratesTTLMin, _ := strconv.Atoi(getEnv("RATES_TTL_MINUTES", "60"))
	viewTTLSec, _ := strconv.Atoi(getEnv("VIEW_CACHE_TTL_SECONDS", "120"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "catalog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		NATSURL: os.Getenv("NATS_URL"),

		Port:        getEnv("PORT", "8088"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RatesEndpoint: getEnv("RATES_ENDPOINT", "https://api.exchangerate.host/latest"),
		RatesTTL:      time.Duration(ratesTTLMin) * time.Minute,

		ViewCacheTTL: time.Duration(viewTTLSec) * time.Second,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate adds missing columns but never drops existing ones.
	// Schema provisioning proper is an external concern; this keeps dev
	// databases usable.
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Color{},
		&models.Size{},
		&models.ProductVariant{},
		&models.VariantSize{},
		&models.VariantImage{},
		&models.VariantVideo{},
		&models.Bundle{},
		&models.BundleItem{},
		&models.BundleImage{},
		&models.BundleVideo{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
