package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"nivesh/internal/cache"
	"nivesh/internal/config"
	"nivesh/internal/database"
	"nivesh/internal/handlers"
	"nivesh/internal/logger"
	"nivesh/internal/middleware"
	"nivesh/internal/notify"
	"nivesh/internal/payment"
	"nivesh/internal/services"
	"nivesh/internal/validator"

	_ "nivesh/internal/docs" // Import swagger docs
)

// @title           Nivesh API
// @version         1.0
// @description     Nivesh is a portfolio valuation and transaction settlement engine for mutual funds: NAV-driven holding revaluation, purchase/redemption lifecycles with charges, SIP scheduling, and portfolio analytics.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Internal API key for operational endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	gateway := payment.NewGateway()
	notifier := notify.NewLogNotifier()
	invalidator := cache.NewLogInvalidator()

	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	fundService := services.NewFundService(db, invalidator)
	portfolioService := services.NewPortfolioService(db)
	transactionService := services.NewTransactionService(db, portfolioService, gateway, notifier)
	sipService := services.NewSIPService(db, transactionService, notifier)
	analyticsService := services.NewAnalyticsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	fundHandler := handlers.NewFundHandler(fundService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	sipHandler := handlers.NewSIPHandler(sipService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RateLimit(20, 40))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Fund routes
	funds := protected.Group("/funds")
	funds.GET("", fundHandler.ListFunds)
	funds.GET("/:id", fundHandler.GetFund)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.GET("/holdings", portfolioHandler.ListHoldings)
	portfolio.GET("/holdings/:fund_id", portfolioHandler.GetHolding)
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.GET("/performance", analyticsHandler.GetPerformance)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("/purchase", transactionHandler.Purchase)
	transactions.POST("/redeem", transactionHandler.Redeem)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.POST("/:id/cancel", transactionHandler.Cancel)

	// SIP routes
	sips := protected.Group("/sips")
	sips.POST("", sipHandler.Register)
	sips.GET("", sipHandler.ListSIPs)
	sips.GET("/:id", sipHandler.GetSIP)
	sips.POST("/:id/pause", sipHandler.Pause)
	sips.POST("/:id/resume", sipHandler.Resume)
	sips.POST("/:id/cancel", sipHandler.Cancel)

	// Internal operational routes: NAV feed, fund registry, KYC callback,
	// payment webhook, SIP scheduler sweep.
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(appConfig.InternalAPIKey))
	internal.POST("/funds", fundHandler.CreateFund)
	internal.PUT("/funds/:id/nav", fundHandler.UpdateNAV)
	internal.POST("/funds/nav", fundHandler.UpdateNAVBatch)
	internal.PUT("/users/:id/kyc", authHandler.SetKYCStatus)
	internal.POST("/payments/confirm", transactionHandler.ConfirmPayment)
	internal.POST("/sips/execute-due", sipHandler.ExecuteDue)

	log.Infof("Starting Nivesh backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
