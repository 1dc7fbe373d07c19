package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

const editPathPrefix = "/app/product-variant/"

// ProductResponse is the product page payload: current values plus the form to fill in
type ProductResponse struct {
	Product   *domain.ProductSnapshot `json:"product"`
	Supported bool                    `json:"supported"`
	Schema    *domain.Schema          `json:"schema,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// SaveVariantRequest is the body of POST /v1/products/:id/variant.
// The collection is always read from the product; collection fields, when given, must match it.
type SaveVariantRequest struct {
	CollectionHandle string            `json:"collection_handle"`
	CollectionID     string            `json:"collection_id"`
	Values           map[string]string `json:"values"`
}

// BlockResponse is the admin product block payload
type BlockResponse struct {
	Supported        bool   `json:"supported"`
	CollectionHandle string `json:"collection_handle"`
	EditPath         string `json:"edit_path,omitempty"`
	Message          string `json:"message,omitempty"`
}

// HandleGetSchema handles GET /v1/collections/:handle/schema
func HandleGetSchema(schemas SchemaService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		schema, err := schemas.ResolveSchema(c.Request.Context(), c.Param("handle"))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, schema)
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(reader ProductReader, schemas SchemaService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		snapshot, err := reader.ReadProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		resp := ProductResponse{Product: snapshot}
		schema, err := schemas.ResolveSchema(c.Request.Context(), snapshot.CollectionHandle)
		var unsupported *apperrors.ErrUnsupportedCollection
		switch {
		case errors.As(err, &unsupported):
			resp.Message = unsupportedCollectionMessage(schemas.SupportedHandles())
		case err != nil:
			respondError(c, err, logger)
			return
		default:
			resp.Supported = true
			resp.Schema = schema
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleSaveVariant handles POST /v1/products/:id/variant
func HandleSaveVariant(reader ProductReader, saver VariantSaver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		var body SaveVariantRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		snapshot, err := reader.ReadProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		req, mismatch := snapshot.SaveRequestFor(body.CollectionHandle, body.CollectionID, body.Values)
		if mismatch != "" {
			logger.Warn("Save collection does not match product",
				zap.String("product_id", productID),
				zap.String("collection_handle", body.CollectionHandle),
				zap.String("collection_id", body.CollectionID),
			)
			c.JSON(http.StatusUnprocessableEntity, domain.SaveResult{
				Outcome:  domain.OutcomeValidationFailed,
				State:    domain.SaveStateValidationFailed,
				Messages: []string{mismatch},
			})
			return
		}

		result := saver.Save(c.Request.Context(), req)
		c.JSON(saveStatus(result.Outcome), result)
	}
}

func saveStatus(outcome domain.Outcome) int {
	switch outcome {
	case domain.OutcomeSucceeded:
		return http.StatusOK
	case domain.OutcomeValidationFailed:
		return http.StatusUnprocessableEntity
	case domain.OutcomeDuplicateFound:
		return http.StatusConflict
	case domain.OutcomeWriteFailed:
		return http.StatusBadRequest
	case domain.OutcomeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleGetBlock handles GET /v1/products/:id/block
func HandleGetBlock(reader ProductReader, schemas SchemaService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		snapshot, err := reader.ReadProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err, logger)
			return
		}

		resp := BlockResponse{CollectionHandle: snapshot.CollectionHandle}
		for _, handle := range schemas.SupportedHandles() {
			if handle == snapshot.CollectionHandle {
				resp.Supported = true
				break
			}
		}
		if resp.Supported {
			numeric, _ := domain.NumericID(productID)
			resp.EditPath = editPathPrefix + numeric
		} else {
			resp.Message = unsupportedCollectionMessage(schemas.SupportedHandles())
		}
		c.JSON(http.StatusOK, resp)
	}
}

func unsupportedCollectionMessage(handles []string) string {
	return "This product is not part of a supported collection (" + strings.Join(handles, ", ") + ")."
}
