package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

var weddingFields = []string{"Group Name", "Style", "Metal"}

func weddingProduct(id, group, style, metal string) *fakeProduct {
	return &fakeProduct{
		ID:               id,
		CollectionID:     "gid://shopify/Collection/10",
		CollectionHandle: "wedding-rings",
		Metafields: map[string]string{
			"custom.group_name": group,
			"custom.style":      style,
			"custom.metal":      metal,
		},
	}
}

func TestFindDuplicate(t *testing.T) {
	t.Parallel()

	values := map[string]string{"Group Name": "Aria", "Style": "Band", "Metal": "Platinum"}

	t.Run("other_product_with_same_tuple", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.addProduct(weddingProduct("gid://shopify/Product/1", "Aria", "Band", "Platinum"))
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dup {
			t.Fatalf("expected duplicate")
		}
		want := `collection_id:10 AND metafields.custom.group_name:"Aria" AND metafields.custom.style:"Band" AND metafields.custom.metal:"Platinum"`
		if len(admin.searches) != 1 || admin.searches[0] != want {
			t.Fatalf("expected search %q, got %v", want, admin.searches)
		}
	})

	t.Run("own_product_is_not_a_duplicate", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.addProduct(weddingProduct("gid://shopify/Product/1", "Aria", "Band", "Platinum"))
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/1", "gid://shopify/Collection/10", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dup {
			t.Fatalf("expected no duplicate when only the saving product matches")
		}
	})

	t.Run("partial_match_is_not_a_duplicate", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.addProduct(weddingProduct("gid://shopify/Product/1", "Aria", "Band", "Yellow Gold"))
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dup {
			t.Fatalf("expected no duplicate for a different metal")
		}
	})

	t.Run("other_collection_is_not_a_duplicate", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		other := weddingProduct("gid://shopify/Product/1", "Aria", "Band", "Platinum")
		other.CollectionID = "gid://shopify/Collection/99"
		other.CollectionHandle = "engagement-rings"
		admin.addProduct(other)
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dup {
			t.Fatalf("expected no duplicate across collections")
		}
	})

	t.Run("quotes_in_values_are_escaped", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.addProduct(weddingProduct("gid://shopify/Product/1", `The "Aria"`, "Band", "Platinum"))
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		quoted := map[string]string{"Group Name": `The "Aria"`, "Style": "Band", "Metal": "Platinum"}
		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, quoted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dup {
			t.Fatalf("expected duplicate for escaped value")
		}
	})

	t.Run("empty_fields_never_query", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		dup, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", nil, nil)
		if err != nil || dup {
			t.Fatalf("expected false without error, got %v %v", dup, err)
		}
		if admin.callCount("productSearch") != 0 {
			t.Fatalf("expected no search call")
		}
	})

	t.Run("graphql_errors_are_not_false", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.failWith["productSearch"] = &shopify.GraphQLErrors{
			Operation: "productSearch",
			Errors:    []shopify.GraphQLError{{Message: "Field 'inCollection' doesn't accept argument 'id'"}},
		}
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		_, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, values)
		var gqlErrs *shopify.GraphQLErrors
		if !errors.As(err, &gqlErrs) {
			t.Fatalf("expected GraphQLErrors, got %v", err)
		}
	})

	t.Run("upstream_failure", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.failWith["productSearch"] = &apperrors.ErrUpstreamUnavailable{Operation: "productSearch"}
		checker := NewDuplicateChecker(admin, "custom", zaptest.NewLogger(t))

		_, err := checker.FindDuplicate(context.Background(), "gid://shopify/Product/2", "gid://shopify/Collection/10", weddingFields, values)
		var upstream *apperrors.ErrUpstreamUnavailable
		if !errors.As(err, &upstream) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})
}
