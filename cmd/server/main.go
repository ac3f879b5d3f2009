package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/wanderhk/travel-booking-backend/internal/cache"
	"github.com/wanderhk/travel-booking-backend/internal/clock"
	"github.com/wanderhk/travel-booking-backend/internal/config"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/handlers"
	"github.com/wanderhk/travel-booking-backend/internal/middleware"
	"github.com/wanderhk/travel-booking-backend/internal/services"
	"github.com/wanderhk/travel-booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting WanderHK Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize optional Redis quote cache
	var quoteCache *cache.QuoteCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("Redis unavailable, quote cache disabled: %v", err)
		} else {
			quoteCache = cache.NewQuoteCache(redisClient)
			logger.Info("Redis quote cache enabled")
		}
	}

	// Initialize repositories
	inventoryRepo := database.NewInventoryRepository(db)
	quoteRepo := database.NewQuoteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	productRepo := database.NewProductRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret)
	systemClock := clock.NewSystem()
	pricingService := services.NewPricingService()
	quoteService := services.NewQuoteService(
		quoteRepo,
		inventoryRepo,
		pricingService,
		quoteCache,
		systemClock,
		cfg.Booking.QuoteTTL,
		logger,
	)
	bookingService := services.NewBookingService(
		bookingRepo,
		inventoryRepo,
		productRepo,
		quoteService,
		pricingService,
		systemClock,
		cfg.Booking.HoldTTL,
		logger,
	)

	// Start the expiry sweeper
	expiryService := services.NewExpiryService(
		bookingService,
		cfg.Booking.SweepInterval,
		cfg.Booking.SweepBatchSize,
		logger,
	)
	expiryService.Start()

	// Start nightly housekeeping
	cronService := services.NewCronService(quoteService, bookingService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	availabilityHandler := handlers.NewAvailabilityHandler(inventoryRepo)
	inventoryHandler := handlers.NewInventoryHandler(inventoryRepo, productRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public availability calendar
		v1.GET("/products/:id/availability", availabilityHandler.GetAvailability)

		// Quote routes (protected)
		quotes := v1.Group("/quotes")
		quotes.Use(middleware.AuthMiddleware(jwtService))
		{
			quotes.POST("", quoteHandler.CreateQuote)
			quotes.GET("/:id", quoteHandler.GetQuote)
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/confirm", bookingHandler.ConfirmBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		// Supplier inventory routes (protected, supplier role required)
		inventory := v1.Group("/products/:id/inventory")
		inventory.Use(middleware.AuthMiddleware(jwtService))
		inventory.Use(middleware.RequireRole("supplier", "admin"))
		{
			inventory.PUT("", inventoryHandler.UpdateInventory)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	expiryService.Stop()
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
