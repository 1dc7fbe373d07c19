package service

import (
	"context"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
)

// GraphQLClient is the part of the Shopify client the services depend on
type GraphQLClient interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)
}

// RuleLookup resolves the static required-field rule of a collection
type RuleLookup interface {
	Rule(handle string) (domain.CollectionRule, error)
}

// DuplicateFinder reports whether another product of the collection holds the same field tuple
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, productID, collectionID string, requiredFields []string, values map[string]string) (bool, error)
}

// MetafieldWriter persists the required fields of a product in one batch
type MetafieldWriter interface {
	WriteMetafields(ctx context.Context, productID string, requiredFields []string, values map[string]string) (*domain.WriteResult, error)
}

func userErrorsToFieldErrors(in []shopify.UserError) []domain.FieldError {
	out := make([]domain.FieldError, 0, len(in))
	for _, e := range in {
		out = append(out, domain.FieldError{Field: e.Field, Message: e.Message, Code: e.Code})
	}
	return out
}
