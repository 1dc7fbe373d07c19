package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

// SchemaService resolves collection forms
type SchemaService interface {
	ResolveSchema(ctx context.Context, handle string) (*domain.Schema, error)
	SupportedHandles() []string
}

// ProductReader loads a product's current variant fields
type ProductReader interface {
	ReadProduct(ctx context.Context, productID string) (*domain.ProductSnapshot, error)
}

// VariantSaver runs the guarded save
type VariantSaver interface {
	Save(ctx context.Context, req domain.SaveRequest) domain.SaveResult
}

// ProductCleaner clears variant fields on product creation
type ProductCleaner interface {
	ClearOnCreate(ctx context.Context, productID string) (*domain.ClearResult, error)
}

// CollectionLister lists store collections for rule setup
type CollectionLister interface {
	ListCollections(ctx context.Context, search string) ([]domain.CollectionSummary, error)
}

// DescriptionEditor reads and writes the grouped product description
type DescriptionEditor interface {
	ReadDescription(ctx context.Context, productID string) (*domain.Description, error)
	SaveDescription(ctx context.Context, productID string, groups []domain.DescriptionGroup) error
}

// productIDParam normalizes the :id path parameter to a product GID, answering 400 when it is malformed
func productIDParam(c *gin.Context) (string, bool) {
	id, err := domain.ProductGID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id", "details": err.Error()})
		return "", false
	}
	return id, true
}

// respondError maps service errors to HTTP answers
func respondError(c *gin.Context, err error, logger *zap.Logger) {
	var (
		notFound    *apperrors.ErrNotFound
		validation  *apperrors.ErrValidation
		unsupported *apperrors.ErrUnsupportedCollection
		upstream    *apperrors.ErrUpstreamUnavailable
		conflict    *apperrors.ErrConflict
		gqlErrs     *shopify.GraphQLErrors
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &unsupported):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":                 unsupported.Error(),
			"supported":             false,
			"supported_collections": unsupported.Supported,
		})
	case errors.As(err, &upstream):
		logger.Warn("Shopify unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopify unavailable, try again later"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &gqlErrs):
		logger.Error("Shopify rejected query", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "shopify rejected the request", "details": gqlErrs.Messages()})
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
