package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

// ProductReader loads a product's collection and current variant field values
type ProductReader struct {
	client    GraphQLClient
	rules     RuleLookup
	namespace string
	logger    *zap.Logger
}

// NewProductReader creates a new product reader
func NewProductReader(client GraphQLClient, rules RuleLookup, namespace string, logger *zap.Logger) *ProductReader {
	return &ProductReader{client: client, rules: rules, namespace: namespace, logger: logger}
}

// ReadProduct returns the product's first collection and the values of that collection's required fields.
// Metafields whose key is not derived from a required field label are ignored.
// A product outside every supported collection comes back with no values.
func (r *ProductReader) ReadProduct(ctx context.Context, productID string) (*domain.ProductSnapshot, error) {
	variables := map[string]interface{}{
		"id":        productID,
		"namespace": r.namespace,
	}
	resp, err := r.client.Execute(ctx, shopify.ProductVariantFieldsQuery, variables)
	if err != nil {
		return nil, fmt.Errorf("read product %s: %w", productID, err)
	}

	var result struct {
		Product *struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Collections struct {
				Nodes []struct {
					ID     string `json:"id"`
					Handle string `json:"handle"`
				} `json:"nodes"`
			} `json:"collections"`
			Metafields struct {
				Nodes []struct {
					Key   string `json:"key"`
					Value string `json:"value"`
				} `json:"nodes"`
			} `json:"metafields"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse product response: %w", err)
	}
	if result.Product == nil {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: productID}
	}

	snapshot := &domain.ProductSnapshot{
		ProductID: result.Product.ID,
		Title:     result.Product.Title,
		Values:    map[string]string{},
	}
	if len(result.Product.Collections.Nodes) > 0 {
		first := result.Product.Collections.Nodes[0]
		snapshot.CollectionHandle = first.Handle
		snapshot.CollectionID = first.ID
	}

	rule, err := r.rules.Rule(snapshot.CollectionHandle)
	if err != nil {
		var unsupported *apperrors.ErrUnsupportedCollection
		if errors.As(err, &unsupported) {
			r.logger.Debug("Product is outside supported collections",
				zap.String("product_id", productID),
				zap.String("collection_handle", snapshot.CollectionHandle),
			)
			return snapshot, nil
		}
		return nil, err
	}

	for _, mf := range result.Product.Metafields.Nodes {
		if label, ok := domain.FieldLabel(mf.Key, rule.Fields); ok {
			snapshot.Values[label] = mf.Value
		}
	}
	return snapshot, nil
}
