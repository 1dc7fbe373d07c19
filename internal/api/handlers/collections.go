package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleListCollections handles GET /v1/collections?query=
func HandleListCollections(lister CollectionLister, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		collections, err := lister.ListCollections(c.Request.Context(), strings.TrimSpace(c.Query("query")))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections})
	}
}
