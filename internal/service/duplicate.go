package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
)

// DuplicateChecker searches Shopify for another product in the collection holding the same field values
type DuplicateChecker struct {
	client    GraphQLClient
	namespace string
	logger    *zap.Logger
}

// NewDuplicateChecker creates a new duplicate checker
func NewDuplicateChecker(client GraphQLClient, namespace string, logger *zap.Logger) *DuplicateChecker {
	return &DuplicateChecker{client: client, namespace: namespace, logger: logger}
}

// BuildQuery derives the conjunctive search for the given values, one term per required field
func (d *DuplicateChecker) BuildQuery(collectionID string, requiredFields []string, values map[string]string) domain.DuplicateQuery {
	q := domain.DuplicateQuery{CollectionID: collectionID}
	for _, label := range requiredFields {
		q.Terms = append(q.Terms, domain.DuplicateTerm{
			Namespace: d.namespace,
			Key:       domain.FieldKey(label),
			Value:     values[label],
		})
	}
	return q
}

// FindDuplicate returns true when a product other than productID, in the collection,
// matches every required field exactly. An empty field list never matches.
func (d *DuplicateChecker) FindDuplicate(ctx context.Context, productID, collectionID string, requiredFields []string, values map[string]string) (bool, error) {
	if len(requiredFields) == 0 {
		return false, nil
	}
	if collectionID == "" {
		return false, fmt.Errorf("duplicate check: collection id is required")
	}

	query := d.BuildQuery(collectionID, requiredFields, values)
	variables := map[string]interface{}{
		"query":        query.String(),
		"collectionId": collectionID,
	}
	resp, err := d.client.Execute(ctx, shopify.ProductSearchQuery, variables)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}

	var result struct {
		Products struct {
			Nodes []struct {
				ID           string `json:"id"`
				InCollection bool   `json:"inCollection"`
			} `json:"nodes"`
		} `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return false, fmt.Errorf("parse product search response: %w", err)
	}

	for _, node := range result.Products.Nodes {
		if node.InCollection && node.ID != productID {
			d.logger.Info("Duplicate variant combination found",
				zap.String("product_id", productID),
				zap.String("collection_id", collectionID),
			)
			return true, nil
		}
	}
	return false, nil
}
