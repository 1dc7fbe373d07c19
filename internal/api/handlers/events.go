package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/repository"
)

const maxEventListLimit = 200

// EventResponse is one audit row of a product
type EventResponse struct {
	ID               string                 `json:"id"`
	CollectionHandle string                 `json:"collection_handle"`
	Outcome          domain.Outcome         `json:"outcome"`
	Detail           map[string]interface{} `json:"detail,omitempty"`
	CreatedAt        string                 `json:"created_at"`
}

// HandleListEvents handles GET /v1/products/:id/events
func HandleListEvents(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if repos == nil || repos.AssignmentEvent == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit trail not configured"})
			return
		}

		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			if n > maxEventListLimit {
				n = maxEventListLimit
			}
			limit = n
		}

		events, err := repos.AssignmentEvent.ListByProductID(c.Request.Context(), productID, limit)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		out := make([]EventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, EventResponse{
				ID:               e.ID.String(),
				CollectionHandle: e.CollectionHandle,
				Outcome:          e.Outcome,
				Detail:           e.Detail,
				CreatedAt:        e.CreatedAt.Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"product_id": productID, "events": out})
	}
}
