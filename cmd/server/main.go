package main

import (
	"time"

	"kasir_pos/internal/config"
	"kasir_pos/internal/database"
	"kasir_pos/internal/handlers"
	"kasir_pos/internal/migrations"
	"kasir_pos/internal/redis"
	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"
	"kasir_pos/pkg/midtrans"
	"kasir_pos/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if err := migrations.Seed(db); err != nil {
		logrus.WithError(err).Fatal("Failed to seed default data")
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize outbound clients
	midtransClient := midtrans.NewClient(cfg.MidtransBaseURL, cfg.MidtransServerKey)
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	tableRepo := repository.NewTableRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(productRepo)
	tableService := services.NewTableService(tableRepo)
	settingsService := services.NewSettingsService(settingsRepo, redisClient,
		time.Duration(cfg.SettingsCacheTTL)*time.Second)
	notificationService := services.NewNotificationService(whatsappClient)
	saleService := services.NewSaleService(
		saleRepo,
		productRepo,
		customerRepo,
		inventoryService,
		tableService,
		settingsService,
		midtransClient,
		notificationService,
		redisClient,
		services.GatewayFailurePolicy(cfg.GatewayFailurePolicy),
		cfg.PaymentFinishURL,
	)
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	saleHandler := handlers.NewSaleHandler(saleService)
	midtransHandler := handlers.NewMidtransHandler(saleService)
	catalogHandler := handlers.NewCatalogHandler(productRepo, tableService, settingsService)

	// Setup routes
	router := gin.Default()

	// Gateway webhook
	router.POST("/api/payments/midtrans/notification", midtransHandler.HandleNotification)

	// API endpoints
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		api.POST("/sales", saleHandler.SubmitSale)
		api.GET("/sales", saleHandler.ListSales)
		api.GET("/sales/:invoice", saleHandler.GetSale)
		api.POST("/sales/:invoice/confirm", saleHandler.ConfirmCashPayment)
		api.POST("/sales/:invoice/cancel", saleHandler.CancelSale)

		api.GET("/products", catalogHandler.ListProducts)
		api.POST("/products", catalogHandler.CreateProduct)
		api.PUT("/products/:id", catalogHandler.UpdateProduct)

		api.GET("/tables", catalogHandler.ListTables)
		api.POST("/tables", catalogHandler.CreateTable)
		api.POST("/tables/:id/release", catalogHandler.ReleaseTable)

		api.GET("/settings", catalogHandler.GetSettings)
		api.PUT("/settings", catalogHandler.UpdateSettings)
	}

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
