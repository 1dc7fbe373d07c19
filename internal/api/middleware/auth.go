package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

// AuthMiddleware authenticates admin requests with a bearer API key checked against a bcrypt hash.
// Without a configured hash every request is refused with 503.
func AuthMiddleware(apiKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	apiKeyHash = strings.TrimSpace(apiKeyHash)
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin API key not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		// Extract Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		apiKey := strings.TrimSpace(parts[1])
		if apiKey == "" {
			unauthorized(c, "missing API key")
			return
		}

		if !VerifyAPIKey(apiKey, apiKeyHash) {
			logger.Warn("Rejected admin API key", zap.String("path", c.Request.URL.Path))
			unauthorized(c, "invalid API key")
			return
		}

		c.Next()
	}
}

// HashAPIKey hashes an API key using bcrypt, for ADMIN_API_KEY_HASH
func HashAPIKey(apiKey string) (string, error) {
	// Use a cost of 10 for API keys (faster than passwords)
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey verifies an API key against a hash
func VerifyAPIKey(apiKey, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
	return err == nil
}

func unauthorized(c *gin.Context, message string) {
	err := &apperrors.ErrUnauthorized{Message: message}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}
