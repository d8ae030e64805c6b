package main

import (
	"context"
	"log"
	"time"

	"pcstore/aws"
	"pcstore/controllers"
	"pcstore/database"
	apperrors "pcstore/errors"
	"pcstore/kafka"
	"pcstore/logger"
	"pcstore/models"
	repositories "pcstore/repository"
	"pcstore/routes"
	"pcstore/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync()

	if err := database.Connect(database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	}); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.DB.AutoMigrate(
		&models.Socket{},
		&models.RamType{},
		&models.FormFactor{},
		&models.StorageInterface{},
		&models.Component{},
		&models.Inventory{},
		&models.ComputerBuild{},
		&models.Order{},
	); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	redisClient := database.NewRedisClient(cfg.RedisURL)

	awsCfg, err := aws.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
	}
	fileStorage := aws.NewS3Storage(awsCfg, cfg.S3Bucket, cfg.S3BaseURL)

	var events kafka.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	gateway, err := services.NewPaypalGateway(
		cfg.PaypalClientID, cfg.PaypalSecret, cfg.PaypalAPIBase,
		cfg.PaypalReturnURL, cfg.PaypalCancelURL,
	)
	if err != nil {
		logger.Log.Fatal("Failed to init PayPal client", zap.Error(err))
	}

	cartTTL, err := time.ParseDuration(cfg.CartTTL)
	if err != nil {
		logger.Log.Fatal("Invalid CART_TTL", zap.Error(err))
	}

	componentRepo := repositories.NewGormComponentRepository(database.DB)
	lookupRepo := repositories.NewGormLookupRepository(database.DB)
	buildRepo := repositories.NewGormBuildRepository(database.DB)
	inventoryRepo := repositories.NewGormInventoryRepository(database.DB)
	orderRepo := repositories.NewGormOrderRepository(database.DB)
	cartRepo := repositories.NewRedisCartRepository(redisClient, cartTTL)

	// The interface classification is resolved once; lookup edits that
	// touch storage interfaces need a restart to be picked up.
	interfaceIndex, err := services.BuildStorageInterfaceIndex(context.Background(), lookupRepo)
	if err != nil {
		logger.Log.Fatal("Failed to build storage interface index", zap.Error(err))
	}

	compatService := services.NewCompatibilityService(interfaceIndex)
	buildService := services.NewBuildService(buildRepo, componentRepo, compatService)
	componentService := services.NewComponentService(componentRepo, inventoryRepo, lookupRepo, buildRepo, fileStorage)
	lookupService := services.NewLookupService(lookupRepo, componentRepo)
	orderService := services.NewOrderService(
		orderRepo, componentRepo, buildRepo, inventoryRepo,
		gateway, fileStorage, events, cfg.TaxRate, cfg.Currency,
	)
	cartService := services.NewCartService(cartRepo, orderService)
	dashboardService := services.NewDashboardService(orderRepo)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(), apperrors.ErrorMiddleware())

	routes.Register(r, routes.Controllers{
		Components: controllers.NewComponentController(componentService),
		Lookups:    controllers.NewLookupController(lookupService),
		Builds:     controllers.NewBuildController(buildService),
		Carts:      controllers.NewCartController(cartService),
		Orders:     controllers.NewOrderController(orderService),
		AdminOrder: controllers.NewAdminOrderController(orderService, dashboardService),
	})

	logger.Log.Info("Starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}
