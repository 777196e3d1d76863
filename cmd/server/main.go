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
	"github.com/sirupsen/logrus"
	"github.com/stayops/hotel-ops-backend/internal/cache"
	"github.com/stayops/hotel-ops-backend/internal/config"
	"github.com/stayops/hotel-ops-backend/internal/database"
	"github.com/stayops/hotel-ops-backend/internal/handlers"
	"github.com/stayops/hotel-ops-backend/internal/middleware"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/internal/services"
	"github.com/stayops/hotel-ops-backend/pkg/jwt"
	"github.com/stayops/hotel-ops-backend/pkg/storage"
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

	logger.Info("Starting Hotel Operations Backend")
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

	// Type assertion needed: db is interface DB, but some repositories need *sqlx.DB
	sqlxDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	hotelRepository := database.NewHotelRepository(db)
	reservationRepository := database.NewReservationRepository(db)
	roomRepository := database.NewRoomRepository(sqlxDB.DB)
	paymentRepository := database.NewPaymentRepository(sqlxDB.DB, logger)

	var refundAuditRepository *database.RefundAuditRepository
	if cfg.Security.EnableAuditLog {
		refundAuditRepository = database.NewRefundAuditRepository(sqlxDB.DB, logger)
	} else {
		logger.Warn("Refund audit logging is disabled")
	}

	// Initialize file storage for room images
	var fileStorage storage.FileStorage
	switch cfg.Storage.Backend {
	case "s3":
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Prefix)
		if err != nil {
			logger.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		logger.Infof("Room images stored in S3 bucket %s", cfg.Storage.S3Bucket)
	default:
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.PublicURL)
		if err != nil {
			logger.Fatalf("Failed to initialize local storage: %v", err)
		}
		logger.Infof("Room images stored under %s", cfg.Storage.BasePath)
	}

	// Initialize analytics cache (optional)
	var analyticsCache *cache.AnalyticsCache
	if cfg.Redis.URL != "" {
		analyticsCache, err = cache.New(cfg.Redis.URL, cfg.Redis.CacheTTL, logger)
		if err != nil {
			logger.Warnf("Analytics cache unavailable, continuing without it: %v", err)
			analyticsCache = nil
		} else {
			defer analyticsCache.Close()
			logger.Info("Analytics cache connected")
		}
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	ownershipService := services.NewOwnershipService(reservationRepository, roomRepository, hotelRepository)
	reservationService := services.NewReservationService(
		ownershipService,
		reservationRepository,
		roomRepository,
		userRepository,
		hotelRepository,
		logger,
		cfg.Server.Timezone,
	)
	roomService := services.NewRoomService(ownershipService, roomRepository, fileStorage, logger)
	paymentService := services.NewPaymentService(paymentRepository, refundAuditRepository, analyticsCache, logger, cfg.Server.Timezone)
	authService := services.NewAuthService(userRepository, jwtService, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	ownerHotelHandler := handlers.NewOwnerHotelHandler(ownershipService)
	ownerReservationHandler := handlers.NewOwnerReservationHandler(reservationService)
	ownerRoomHandler := handlers.NewOwnerRoomHandler(roomService)
	adminPaymentHandler := handlers.NewAdminPaymentHandler(paymentService, cfg.Server.Timezone)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Serve locally stored room images
	if cfg.Storage.Backend != "s3" {
		router.Static(cfg.Storage.PublicURL, cfg.Storage.BasePath)
	}

	// API routes
	api := router.Group("/api")
	{
		// Authentication routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// Hotel owner routes
		owner := api.Group("/owner")
		owner.Use(middleware.AuthMiddleware(jwtService))
		owner.Use(middleware.RequireRole(string(models.RoleOwner), string(models.RoleAdmin)))
		{
			owner.GET("/hotel", ownerHotelHandler.GetHotel)

			owner.GET("/reservations", ownerReservationHandler.GetCalendar)
			owner.GET("/reservations/:id", ownerReservationHandler.GetDetails)
			owner.PUT("/reservations/:id/check-in", ownerReservationHandler.CheckIn)
			owner.PUT("/reservations/:id/check-out", ownerReservationHandler.CheckOut)
			owner.PUT("/reservations/:id/cancel-check", ownerReservationHandler.CancelCheck)
			owner.PUT("/reservations/:id/cancel", ownerReservationHandler.Cancel)

			owner.POST("/rooms", ownerRoomHandler.Register)
			owner.GET("/rooms", ownerRoomHandler.List)
			owner.GET("/rooms/:id", ownerRoomHandler.GetDetails)
			owner.PUT("/rooms/:id", ownerRoomHandler.Update)
			owner.DELETE("/rooms/:id", ownerRoomHandler.Delete)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
		{
			admin.GET("/payments", adminPaymentHandler.List)
			admin.GET("/payments/analytics", adminPaymentHandler.Analytics)
			admin.GET("/payments/:id", adminPaymentHandler.Get)
			admin.PUT("/payments/:id/refund", adminPaymentHandler.Refund)
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
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
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
