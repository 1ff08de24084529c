package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/controllers"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/middleware"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting Procurement API server", zap.String("env", cfg.GoEnv))

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Attachment{},
		&models.Notification{},
		&models.DeviceToken{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	// Initialize attachment storage
	if _, err := services.InitS3Service(); err != nil {
		logger.Fatal("Failed to initialize S3 service", zap.Error(err))
	}

	// Initialize push delivery. Notifications degrade to DB-only records
	// when FCM credentials are not configured.
	if cfg.FCMCredentialsFile != "" {
		if _, err := services.InitPushService(context.Background()); err != nil {
			logger.Error("Failed to initialize push service, continuing without push", zap.Error(err))
		}
	} else {
		logger.Warn("FCM_CREDENTIALS_FILE not set, push delivery disabled")
	}

	services.InitNotificationService(logger)

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.Default())

	registerRoutes(router, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// registerRoutes wires the API surface
func registerRoutes(router *gin.Engine, cfg *config.Config) {
	v1 := router.Group("/api/v1")

	// Public endpoints
	v1.GET("/health", healthCheck)
	v1.GET("/database/status", databaseStatus)

	// Everything else requires a valid token
	auth := v1.Group("")
	auth.Use(middleware.EnsureValidToken(cfg))

	// Users
	auth.POST("/users", controllers.CreateUser)
	auth.GET("/users", controllers.ListUsers)
	auth.GET("/users/me", controllers.GetMyProfile)
	auth.PUT("/users/me", controllers.UpdateMyProfile)

	// Orders and the workflow
	auth.POST("/orders", controllers.CreateOrder)
	auth.GET("/orders", controllers.ListOrders)
	auth.GET("/orders/:id", controllers.GetOrder)
	auth.PUT("/orders/:id", controllers.UpdateOrder)
	auth.PATCH("/orders/:id/status", controllers.TransitionOrderStatus)
	auth.POST("/orders/:id/admin-checked",
		middleware.RequireRole(models.RoleAdmin, models.RoleSubAdmin),
		controllers.UpdateAdminChecked)
	auth.DELETE("/orders/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleSubAdmin),
		controllers.DeleteOrder)

	// Items and attachments
	auth.PATCH("/items/:id/status", controllers.UpdateItemStatus)
	auth.POST("/items/:id/attachments", controllers.UploadItemAttachments)
	auth.DELETE("/attachments/:id", controllers.DeleteAttachment)

	// Notifications and badge counts
	auth.GET("/notifications", controllers.ListNotifications)
	auth.GET("/notifications/unread-count", controllers.GetUnreadCount)
	auth.PATCH("/notifications/:id/read", controllers.MarkNotificationRead)

	// Push token registration
	auth.POST("/devices", controllers.RegisterDevice)
	auth.DELETE("/devices/:token", controllers.UnregisterDevice)
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Procurement API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
