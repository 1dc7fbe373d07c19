package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/repository"
)

const (
	WebhookIDHeader    = "X-Shopify-Webhook-Id"
	WebhookHMACHeader  = "X-Shopify-Hmac-Sha256"
	WebhookTopicHeader = "X-Shopify-Topic"

	// WebhookResultKey holds the result the handler wants recorded for the delivery
	WebhookResultKey = "webhook_result"
)

// VerifyShopifyHMAC checks the base64 HMAC-SHA256 header against the raw body
func VerifyShopifyHMAC(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	// constant-time compare
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// ShopifyWebhook verifies the webhook signature and skips deliveries already processed.
// A delivery is recorded only after the handler answered 2xx, so failed deliveries are retried by Shopify.
// deliveries may be nil, which disables dedupe.
func ShopifyWebhook(secret string, deliveries repository.WebhookDeliveryRepository, logger *zap.Logger) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopify webhook not configured"})
			c.Abort()
			return
		}

		// Shopify HMAC is computed over the raw bytes
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			c.Abort()
			return
		}
		if !VerifyShopifyHMAC(secret, body, c.GetHeader(WebhookHMACHeader)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		deliveryID := strings.TrimSpace(c.GetHeader(WebhookIDHeader))
		if deliveries == nil || deliveryID == "" {
			c.Next()
			return
		}

		existing, err := deliveries.GetByID(c.Request.Context(), deliveryID)
		if err != nil {
			// Processing twice is harmless; deletes are idempotent
			logger.Error("Failed to check webhook delivery", zap.String("webhook_id", deliveryID), zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			logger.Info("Skipping replayed webhook delivery", zap.String("webhook_id", deliveryID))
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "duplicate", "result": existing.Result})
			c.Abort()
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		result, _ := c.Get(WebhookResultKey)
		resultStr, _ := result.(string)
		delivery := &domain.WebhookDelivery{
			ID:        deliveryID,
			Topic:     c.GetHeader(WebhookTopicHeader),
			ProductID: productIDFromBody(body),
			Result:    resultStr,
		}
		if err := deliveries.Create(c.Request.Context(), delivery); err != nil {
			logger.Warn("Failed to record webhook delivery", zap.String("webhook_id", deliveryID), zap.Error(err))
		}
	}
}

func productIDFromBody(raw []byte) string {
	var body struct {
		AdminGraphQLAPIID string `json:"admin_graphql_api_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.AdminGraphQLAPIID
}
