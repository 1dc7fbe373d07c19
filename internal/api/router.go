package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/api/handlers"
	"github.com/jafarshop/productvariant/internal/api/middleware"
	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/metrics"
	"github.com/jafarshop/productvariant/internal/repository"
)

// Services are the handlers' collaborators
type Services struct {
	Schemas      handlers.SchemaService
	Reader       handlers.ProductReader
	Saver        handlers.VariantSaver
	Cleaner      handlers.ProductCleaner
	Descriptions handlers.DescriptionEditor
	Collections  handlers.CollectionLister
}

// NewRouter creates and configures the Gin router. repos may be nil when no database is configured.
func NewRouter(cfg *config.Config, svc Services, repos *repository.Repositories, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Product Variant API",
			"endpoints": []string{
				"GET /health",
				"GET /metrics",
				"POST /webhooks/shopify/products-create",
				"GET /v1/collections",
				"GET /v1/collections/:handle/schema",
				"GET /v1/products/:id",
				"POST /v1/products/:id/variant",
				"GET /v1/products/:id/block",
				"GET /v1/products/:id/description",
				"POST /v1/products/:id/description",
				"GET /v1/products/:id/events",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	var deliveries repository.WebhookDeliveryRepository
	if repos != nil {
		deliveries = repos.WebhookDelivery
	}

	// Shopify webhook: products/create clears variant fields copied from another product
	router.POST("/webhooks/shopify/products-create",
		middleware.ShopifyWebhook(cfg.ShopifyWebhookSecret, deliveries, logger),
		handlers.HandleProductsCreateWebhook(svc.Cleaner, m, logger),
	)

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.AdminAPIKeyHash, logger))
	{
		v1.GET("/collections", handlers.HandleListCollections(svc.Collections, logger))
		v1.GET("/collections/:handle/schema", handlers.HandleGetSchema(svc.Schemas, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(svc.Reader, svc.Schemas, logger))
		v1.POST("/products/:id/variant", handlers.HandleSaveVariant(svc.Reader, svc.Saver, logger))
		v1.GET("/products/:id/block", handlers.HandleGetBlock(svc.Reader, svc.Schemas, logger))
		v1.GET("/products/:id/description", handlers.HandleGetDescription(svc.Descriptions, logger))
		v1.POST("/products/:id/description", handlers.HandleSaveDescription(svc.Descriptions, logger))
		v1.GET("/products/:id/events", handlers.HandleListEvents(repos, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
