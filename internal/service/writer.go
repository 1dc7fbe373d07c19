package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
)

// MetafieldSetter writes variant fields with a single metafieldsSet call
type MetafieldSetter struct {
	client        GraphQLClient
	namespace     string
	metafieldType string
	logger        *zap.Logger
}

// NewMetafieldSetter creates a new metafield writer
func NewMetafieldSetter(client GraphQLClient, namespace, metafieldType string, logger *zap.Logger) *MetafieldSetter {
	return &MetafieldSetter{client: client, namespace: namespace, metafieldType: metafieldType, logger: logger}
}

// WriteMetafields upserts one metafield per required field. Shopify applies the batch atomically,
// so the result is either OK or carries every userError.
func (w *MetafieldSetter) WriteMetafields(ctx context.Context, productID string, requiredFields []string, values map[string]string) (*domain.WriteResult, error) {
	metafields := make([]shopify.MetafieldsSetInput, 0, len(requiredFields))
	for _, label := range requiredFields {
		metafields = append(metafields, shopify.MetafieldsSetInput{
			OwnerID:   productID,
			Namespace: w.namespace,
			Key:       domain.FieldKey(label),
			Type:      w.metafieldType,
			Value:     values[label],
		})
	}

	variables := map[string]interface{}{
		"metafields": metafields,
	}
	resp, err := w.client.Execute(ctx, shopify.MetafieldsSetMutation, variables)
	if err != nil {
		return nil, fmt.Errorf("metafieldsSet: %w", err)
	}

	var result struct {
		MetafieldsSet struct {
			UserErrors []shopify.UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse metafieldsSet response: %w", err)
	}

	if len(result.MetafieldsSet.UserErrors) > 0 {
		w.logger.Warn("metafieldsSet returned userErrors",
			zap.String("product_id", productID),
			zap.Int("errors", len(result.MetafieldsSet.UserErrors)),
		)
		return &domain.WriteResult{OK: false, Errors: userErrorsToFieldErrors(result.MetafieldsSet.UserErrors)}, nil
	}

	w.logger.Info("Set product variant metafields", zap.String("product_id", productID), zap.Int("fields", len(metafields)))
	return &domain.WriteResult{OK: true}, nil
}
