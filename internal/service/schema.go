package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

const (
	definitionsPageSize  = 100
	choicesValidationKey = "choices"
)

// SchemaResolver turns a collection handle into the form a merchant fills in
type SchemaResolver struct {
	client    GraphQLClient
	rules     map[string]domain.CollectionRule
	handles   []string
	namespace string
	cache     DefinitionCache
	logger    *zap.Logger
}

// NewSchemaResolver creates a resolver over a static rule table. cache may be nil.
func NewSchemaResolver(client GraphQLClient, rules []domain.CollectionRule, namespace string, cache DefinitionCache, logger *zap.Logger) *SchemaResolver {
	byHandle := make(map[string]domain.CollectionRule, len(rules))
	handles := make([]string, 0, len(rules))
	for _, rule := range rules {
		byHandle[rule.Handle] = rule
		handles = append(handles, rule.Handle)
	}
	return &SchemaResolver{
		client:    client,
		rules:     byHandle,
		handles:   handles,
		namespace: namespace,
		cache:     cache,
		logger:    logger,
	}
}

// SupportedHandles returns the configured collection handles in table order
func (r *SchemaResolver) SupportedHandles() []string {
	return append([]string(nil), r.handles...)
}

// Rule returns the rule for a handle without touching Shopify
func (r *SchemaResolver) Rule(handle string) (domain.CollectionRule, error) {
	rule, ok := r.rules[handle]
	if !ok {
		return domain.CollectionRule{}, &apperrors.ErrUnsupportedCollection{Handle: handle, Supported: r.SupportedHandles()}
	}
	return rule, nil
}

// ResolveSchema returns the required fields of the collection and the allowed choices of each.
// A field without a choices validation gets an empty list, meaning free text.
func (r *SchemaResolver) ResolveSchema(ctx context.Context, handle string) (*domain.Schema, error) {
	rule, err := r.Rule(handle)
	if err != nil {
		return nil, err
	}

	definitions, err := r.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	schema := &domain.Schema{
		CollectionHandle: rule.Handle,
		RequiredFields:   append([]string(nil), rule.Fields...),
		Choices:          make(map[string][]string, len(rule.Fields)),
	}
	for _, label := range rule.Fields {
		choices := []string{}
		if def, ok := findDefinition(definitions, label); ok && def.Choices != nil {
			choices = def.Choices
		}
		schema.Choices[label] = choices
	}
	return schema, nil
}

// findDefinition matches by definition name, then by derived key
func findDefinition(definitions []domain.FieldDefinition, label string) (domain.FieldDefinition, bool) {
	for _, def := range definitions {
		if def.Name == label {
			return def, true
		}
	}
	key := domain.FieldKey(label)
	for _, def := range definitions {
		if def.Key == key {
			return def, true
		}
	}
	return domain.FieldDefinition{}, false
}

// Definitions returns every product metafield definition of the namespace, cached when a cache is configured
func (r *SchemaResolver) Definitions(ctx context.Context) ([]domain.FieldDefinition, error) {
	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, r.namespace)
		if err != nil {
			r.logger.Warn("Definition cache read failed, querying Shopify", zap.String("namespace", r.namespace), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	definitions, err := r.fetchDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, r.namespace, definitions); err != nil {
			r.logger.Warn("Definition cache write failed", zap.String("namespace", r.namespace), zap.Error(err))
		}
	}
	return definitions, nil
}

func (r *SchemaResolver) fetchDefinitions(ctx context.Context) ([]domain.FieldDefinition, error) {
	var (
		cursor string
		out    []domain.FieldDefinition
	)
	for {
		variables := map[string]interface{}{
			"first":     definitionsPageSize,
			"namespace": r.namespace,
		}
		if cursor != "" {
			variables["after"] = cursor
		}

		resp, err := r.client.Execute(ctx, shopify.MetafieldDefinitionsQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("fetch metafield definitions: %w", err)
		}

		var result struct {
			MetafieldDefinitions struct {
				Nodes []struct {
					Name        string `json:"name"`
					Key         string `json:"key"`
					Validations []struct {
						Name  string `json:"name"`
						Value string `json:"value"`
					} `json:"validations"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"metafieldDefinitions"`
		}
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("parse metafield definitions response: %w", err)
		}

		for _, node := range result.MetafieldDefinitions.Nodes {
			def := domain.FieldDefinition{Name: node.Name, Key: node.Key}
			for _, v := range node.Validations {
				if v.Name != choicesValidationKey {
					continue
				}
				var choices []string
				if err := json.Unmarshal([]byte(v.Value), &choices); err != nil {
					return nil, fmt.Errorf("parse choices of %s.%s: %w", r.namespace, node.Key, err)
				}
				def.Choices = choices
			}
			out = append(out, def)
		}

		page := result.MetafieldDefinitions.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		cursor = page.EndCursor
	}
	return out, nil
}
