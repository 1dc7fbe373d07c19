package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
)

const collectionsPageSize = 50

// CollectionLister lists store collections so operators can pick handles for the rule table
type CollectionLister struct {
	client    GraphQLClient
	supported map[string]bool
	logger    *zap.Logger
}

func NewCollectionLister(client GraphQLClient, supportedHandles []string, logger *zap.Logger) *CollectionLister {
	supported := make(map[string]bool, len(supportedHandles))
	for _, h := range supportedHandles {
		supported[h] = true
	}
	return &CollectionLister{client: client, supported: supported, logger: logger}
}

// ListCollections returns every collection matching search (Shopify search syntax, empty for all)
func (l *CollectionLister) ListCollections(ctx context.Context, search string) ([]domain.CollectionSummary, error) {
	var (
		cursor string
		out    []domain.CollectionSummary
	)
	for {
		variables := map[string]interface{}{"first": collectionsPageSize}
		if search != "" {
			variables["query"] = search
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		resp, err := l.client.Execute(ctx, shopify.CollectionsQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("list collections: %w", err)
		}

		var result struct {
			Collections struct {
				Nodes []struct {
					ID     string `json:"id"`
					Title  string `json:"title"`
					Handle string `json:"handle"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"collections"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse collections response: %w", err)
		}

		for _, node := range result.Collections.Nodes {
			out = append(out, domain.CollectionSummary{
				ID:        node.ID,
				Title:     node.Title,
				Handle:    node.Handle,
				Supported: l.supported[node.Handle],
			})
		}

		page := result.Collections.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		cursor = page.EndCursor
	}

	l.logger.Debug("Listed collections", zap.Int("count", len(out)), zap.String("query", search))
	return out, nil
}
