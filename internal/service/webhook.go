package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

// ProductCleaner removes variant fields copied onto newly created products (e.g. a duplicated listing)
type ProductCleaner struct {
	client GraphQLClient
	cfg    config.MetafieldConfig
	keys   []string
	logger *zap.Logger
}

// NewProductCleaner creates a cleaner for every field key used by the collection rules
func NewProductCleaner(client GraphQLClient, cfg config.MetafieldConfig, rules []domain.CollectionRule, logger *zap.Logger) *ProductCleaner {
	seen := make(map[string]bool)
	var keys []string
	for _, rule := range rules {
		for _, label := range rule.Fields {
			key := domain.FieldKey(label)
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return &ProductCleaner{client: client, cfg: cfg, keys: keys, logger: logger}
}

// Keys returns the metafield keys cleared on create
func (c *ProductCleaner) Keys() []string {
	return append([]string(nil), c.keys...)
}

// ClearOnCreate deletes the variant metafields of a new product unless its system source opts out.
// userErrors are returned in the result, not as an error.
func (c *ProductCleaner) ClearOnCreate(ctx context.Context, productID string) (*domain.ClearResult, error) {
	source, err := c.systemSource(ctx, productID)
	if err != nil {
		return nil, err
	}
	if c.cfg.SkipSystemSource != "" && source == c.cfg.SkipSystemSource {
		c.logger.Info("Skipping metafield clearing for managed product",
			zap.String("product_id", productID),
			zap.String("system_source", source),
		)
		return &domain.ClearResult{
			ProductID: productID,
			Skipped:   true,
			Reason:    fmt.Sprintf("product managed by %s", source),
		}, nil
	}

	inputs := make([]shopify.MetafieldIdentifierInput, 0, len(c.keys))
	for _, key := range c.keys {
		inputs = append(inputs, shopify.MetafieldIdentifierInput{
			OwnerID:   productID,
			Namespace: c.cfg.Namespace,
			Key:       key,
		})
	}
	resp, err := c.client.Execute(ctx, shopify.MetafieldsDeleteMutation, map[string]interface{}{
		"metafields": inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("metafieldsDelete: %w", err)
	}

	var result struct {
		MetafieldsDelete struct {
			DeletedMetafields []*struct {
				Key string `json:"key"`
			} `json:"deletedMetafields"`
			UserErrors []shopify.UserError `json:"userErrors"`
		} `json:"metafieldsDelete"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse metafieldsDelete response: %w", err)
	}

	out := &domain.ClearResult{ProductID: productID}
	// Identifiers without a stored metafield come back as null entries.
	for _, d := range result.MetafieldsDelete.DeletedMetafields {
		if d != nil {
			out.Deleted = append(out.Deleted, d.Key)
		}
	}
	if len(result.MetafieldsDelete.UserErrors) > 0 {
		out.Errors = userErrorsToFieldErrors(result.MetafieldsDelete.UserErrors)
		c.logger.Error("Metafield deletion returned userErrors",
			zap.String("product_id", productID),
			zap.Int("errors", len(out.Errors)),
		)
		return out, nil
	}

	c.logger.Info("Cleared variant metafields", zap.String("product_id", productID), zap.Strings("deleted", out.Deleted))
	return out, nil
}

func (c *ProductCleaner) systemSource(ctx context.Context, productID string) (string, error) {
	resp, err := c.client.Execute(ctx, shopify.ProductMetafieldQuery, map[string]interface{}{
		"id":        productID,
		"namespace": c.cfg.Namespace,
		"key":       c.cfg.SystemSourceKey,
	})
	if err != nil {
		return "", fmt.Errorf("read system source: %w", err)
	}
	var result struct {
		Product *struct {
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("parse system source response: %w", err)
	}
	if result.Product == nil {
		return "", &apperrors.ErrNotFound{Resource: "product", ID: productID}
	}
	if result.Product.Metafield == nil {
		return "", nil
	}
	return result.Product.Metafield.Value, nil
}
