package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
)

// SaveDescriptionRequest is the body of POST /v1/products/:id/description
type SaveDescriptionRequest struct {
	Groups []domain.DescriptionGroup `json:"groups"`
}

// HandleGetDescription handles GET /v1/products/:id/description
func HandleGetDescription(editor DescriptionEditor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		desc, err := editor.ReadDescription(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, desc)
	}
}

// HandleSaveDescription handles POST /v1/products/:id/description
func HandleSaveDescription(editor DescriptionEditor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		var body SaveDescriptionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		if err := editor.SaveDescription(c.Request.Context(), productID, body.Groups); err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Product description saved successfully."})
	}
}
