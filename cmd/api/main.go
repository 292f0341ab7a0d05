package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/errors"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"
	"github.com/stockwatch-platform/alert-service/pkg/middleware"
	"github.com/stockwatch-platform/alert-service/pkg/mongodb"
	"github.com/stockwatch-platform/alert-service/pkg/tracing"

	"github.com/stockwatch-platform/alert-service/internal/application"
	mongoRepo "github.com/stockwatch-platform/alert-service/internal/infrastructure/mongodb"
	"github.com/stockwatch-platform/alert-service/internal/infrastructure/queue"
)

const serviceName = "stock-alert-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting stock-alert-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with circuit breaker and instrumentation
	mongoClient, err := mongodb.NewProductionClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with circuit breaker and instrumentation
	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceAlertService)

	// Initialize repositories
	productRepo := mongoRepo.NewProductRepository(mongoClient)
	inventoryRepo := mongoRepo.NewInventoryRepository(mongoClient)
	historyRepo := mongoRepo.NewStockHistoryRepository(mongoClient)
	alertRepo := mongoRepo.NewAlertRepository(mongoClient)
	logger.Info("Repositories initialized")

	// Initialize alert evaluator and dispatcher
	evaluator := application.NewAlertEvaluator(alertRepo, producer, eventFactory, m, logger)
	dispatcher := queue.NewKafkaAlertDispatcher(producer, eventFactory, logger)

	dispatchMode := getEnv("ALERT_DISPATCH", application.DispatchSync)
	logger.Info("Alert dispatch configured", "mode", dispatchMode)

	// Initialize application services
	stockService := application.NewStockService(
		productRepo,
		inventoryRepo,
		historyRepo,
		evaluator,
		dispatcher,
		dispatchMode,
		producer,
		eventFactory,
		m,
		logger,
	)
	alertService := application.NewAlertService(alertRepo, productRepo, inventoryRepo, producer, eventFactory, m, logger)
	productService := application.NewProductService(productRepo, stockService, producer, eventFactory, logger)
	reconciliationService := application.NewReconciliationService(productRepo, inventoryRepo, evaluator, producer, eventFactory, m, logger)

	// Register custom binding validators (product_id, location_id, alert_type, ...)
	middleware.InitValidator()

	// Setup Gin router with middleware
	router := gin.New()

	// Apply standard middleware (includes recovery, request ID, correlation, logging, error handling)
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	// Add metrics middleware
	router.Use(middleware.MetricsMiddlewareWithConfig(m, middleware.DefaultMetricsConfig(serviceName)))

	// Add tracing middleware
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	// Handle 404 and 405 errors
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		products := api.Group("/products")
		{
			products.POST("", createProductHandler(productService, logger))
			products.GET("", listProductsHandler(productService, logger))
			products.GET("/:productId", getProductHandler(productService, logger))
			products.PUT("/:productId", updateProductHandler(productService, logger))
			products.DELETE("/:productId", deleteProductHandler(productService, logger))
		}

		inventory := api.Group("/inventory")
		{
			// Static routes first (must come before wildcard routes)
			inventory.GET("", listInventoryHandler(stockService, logger))
			inventory.GET("/low-stock", lowStockHandler(stockService, logger))

			inventory.POST("/:productId/adjust", adjustStockHandler(stockService, logger))
			inventory.GET("/:productId", getInventoryHandler(stockService, logger))
			inventory.GET("/:productId/history", getHistoryHandler(stockService, logger))
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("", listAlertsHandler(alertService, logger))
			alerts.POST("", createAlertHandler(alertService, logger))
			alerts.POST("/reconcile", reconcileHandler(reconciliationService, logger))
			alerts.GET("/:alertId", getAlertHandler(alertService, logger))
			alerts.POST("/:alertId/acknowledge", acknowledgeAlertHandler(alertService, logger))
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "stockwatch"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func respondWithServiceError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func createProductHandler(service *application.ProductService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ProductID    string `json:"productId" binding:"required,product_id"`
			Name         string `json:"name" binding:"required,safe_string"`
			Description  string `json:"description" binding:"omitempty,safe_string"`
			MinThreshold int    `json:"minThreshold" binding:"required,min=1"`
			InitialStock int    `json:"initialStock" binding:"omitempty,min=0"`
			UserID       string `json:"userId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateProductCommand{
			ProductID:    req.ProductID,
			Name:         req.Name,
			Description:  req.Description,
			MinThreshold: req.MinThreshold,
			InitialStock: req.InitialStock,
			UserID:       req.UserID,
		}

		product, err := service.CreateProduct(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}

func getProductHandler(service *application.ProductService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetProductQuery{ProductID: c.Param("productId")}

		product, err := service.GetProduct(c.Request.Context(), query)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func listProductsHandler(service *application.ProductService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		query := application.ListProductsQuery{
			Limit:  limit,
			Offset: offset,
		}

		products, err := service.ListProducts(c.Request.Context(), query)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func updateProductHandler(service *application.ProductService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name         *string `json:"name"`
			MinThreshold *int    `json:"minThreshold"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.UpdateProductCommand{
			ProductID:    c.Param("productId"),
			Name:         req.Name,
			MinThreshold: req.MinThreshold,
		}

		product, err := service.UpdateProduct(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func deleteProductHandler(service *application.ProductService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteProduct(c.Request.Context(), c.Param("productId")); err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"productId": c.Param("productId"), "deleted": true})
	}
}

func adjustStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			LocationID   string `json:"locationId" binding:"omitempty,location_id"`
			ChangeAmount int    `json:"changeAmount"`
			Reason       string `json:"reason" binding:"required,safe_string"`
			UserID       string `json:"userId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.AdjustStockCommand{
			ProductID:    c.Param("productId"),
			LocationID:   req.LocationID,
			ChangeAmount: req.ChangeAmount,
			Reason:       req.Reason,
			UserID:       req.UserID,
		}

		result, err := service.Adjust(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func listInventoryHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		records, err := service.ListInventory(c.Request.Context(), limit, offset)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, records)
	}
}

func lowStockHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		items, err := service.ListLowStock(c.Request.Context())
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func getInventoryHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		// With an explicit location return the single record, otherwise
		// every location the product is stocked at
		if locationID := c.Query("locationId"); locationID != "" {
			query := application.GetInventoryQuery{
				ProductID:  c.Param("productId"),
				LocationID: locationID,
			}

			record, err := service.GetInventory(c.Request.Context(), query)
			if err != nil {
				respondWithServiceError(responder, err)
				return
			}

			c.JSON(http.StatusOK, record)
			return
		}

		records, err := service.GetInventoryByProduct(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, records)
	}
}

func getHistoryHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		query := application.GetHistoryQuery{
			ProductID: c.Param("productId"),
			Limit:     limit,
			Offset:    offset,
		}

		entries, err := service.GetHistory(c.Request.Context(), query)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, entries)
	}
}

func listAlertsHandler(service *application.AlertService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Status string `form:"status" binding:"omitempty,alert_status"`
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		query := application.ListAlertsQuery{Status: req.Status}

		alerts, err := service.List(c.Request.Context(), query)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, alerts)
	}
}

func getAlertHandler(service *application.AlertService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		alert, err := service.Get(c.Request.Context(), c.Param("alertId"))
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, alert)
	}
}

func createAlertHandler(service *application.AlertService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ProductID    string `json:"productId" binding:"required,product_id"`
			LocationID   string `json:"locationId" binding:"omitempty,location_id"`
			AlertType    string `json:"alertType" binding:"omitempty,alert_type"`
			CurrentStock *int   `json:"currentStock"`
			MinThreshold *int   `json:"minThreshold"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateAlertCommand{
			ProductID:    req.ProductID,
			LocationID:   req.LocationID,
			AlertType:    req.AlertType,
			CurrentStock: req.CurrentStock,
			MinThreshold: req.MinThreshold,
		}

		alert, err := service.Create(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, alert)
	}
}

func acknowledgeAlertHandler(service *application.AlertService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			UserID string `json:"userId"`
		}
		// Body is optional; the acknowledging user defaults to "system"
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		cmd := application.AcknowledgeAlertCommand{
			AlertID: c.Param("alertId"),
			UserID:  req.UserID,
		}

		alert, err := service.Acknowledge(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, alert)
	}
}

func reconcileHandler(service *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		result, err := service.ReconcileAll(c.Request.Context())
		if err != nil {
			respondWithServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
