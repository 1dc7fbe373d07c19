package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/api/middleware"
	"github.com/jafarshop/productvariant/internal/metrics"
)

// ShopifyProductWebhookBody is the part of the products/create payload the handler reads
type ShopifyProductWebhookBody struct {
	ID                int64  `json:"id"`
	AdminGraphQLAPIID string `json:"admin_graphql_api_id"`
	Title             string `json:"title"`
}

// HandleProductsCreateWebhook handles POST /webhooks/shopify/products-create.
// Configure the Shopify webhook topic products/create. Signature and delivery dedupe are handled by middleware.ShopifyWebhook.
func HandleProductsCreateWebhook(cleaner ProductCleaner, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ShopifyProductWebhookBody
		if err := c.ShouldBindJSON(&body); err != nil {
			m.RecordWebhookEvent("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}

		productID := strings.TrimSpace(body.AdminGraphQLAPIID)
		if productID == "" {
			m.RecordWebhookEvent("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: Missing product ID"})
			return
		}

		result, err := cleaner.ClearOnCreate(c.Request.Context(), productID)
		if err != nil {
			m.RecordWebhookEvent("error")
			logger.Error("Shopify webhook: failed to clear metafields", zap.String("product_id", productID), zap.Error(err))
			// 500 so Shopify retries the delivery
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		if len(result.Errors) > 0 {
			m.RecordWebhookEvent("error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Metafields delete encountered errors", "errors": result.Errors})
			return
		}

		status := "cleared"
		if result.Skipped {
			status = "skipped"
		}
		m.RecordWebhookEvent(status)
		c.Set(middleware.WebhookResultKey, status)

		resp := gin.H{
			"ok":         true,
			"status":     status,
			"product_id": productID,
			"topic":      c.GetHeader(middleware.WebhookTopicHeader),
		}
		if result.Skipped {
			resp["reason"] = result.Reason
		} else {
			resp["deleted"] = result.Deleted
		}
		c.JSON(http.StatusOK, resp)
	}
}
