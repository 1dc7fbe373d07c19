package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

func TestWriteMetafields(t *testing.T) {
	t.Parallel()

	values := map[string]string{"Group Name": "Aria", "Style": "Band", "Metal": "Platinum"}

	t.Run("single_batched_call", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.addProduct(&fakeProduct{ID: "gid://shopify/Product/1"})
		writer := NewMetafieldSetter(admin, "custom", "single_line_text_field", zaptest.NewLogger(t))

		result, err := writer.WriteMetafields(context.Background(), "gid://shopify/Product/1", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.OK {
			t.Fatalf("expected OK, got %+v", result)
		}
		if admin.callCount("metafieldsSet") != 1 {
			t.Fatalf("expected one metafieldsSet call, got %d", admin.callCount("metafieldsSet"))
		}
		if v, _ := admin.metafield("gid://shopify/Product/1", "custom", "group_name"); v != "Aria" {
			t.Fatalf("expected group_name stored, got %q", v)
		}
	})

	t.Run("every_user_error_is_returned", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.userErrors["metafieldsSet"] = []shopify.UserError{
			{Field: []string{"metafields", "0", "value"}, Message: "Value is too long", Code: "TOO_LONG"},
			{Field: []string{"metafields", "2", "value"}, Message: "Value is invalid", Code: "INVALID"},
		}
		writer := NewMetafieldSetter(admin, "custom", "single_line_text_field", zaptest.NewLogger(t))

		result, err := writer.WriteMetafields(context.Background(), "gid://shopify/Product/1", weddingFields, values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.OK || len(result.Errors) != 2 {
			t.Fatalf("expected two field errors, got %+v", result)
		}
		if result.Errors[1].Code != "INVALID" || result.Errors[1].Field[1] != "2" {
			t.Fatalf("unexpected second error %+v", result.Errors[1])
		}
	})

	t.Run("upstream_failure", func(t *testing.T) {
		t.Parallel()

		admin := newFakeAdmin()
		admin.failWith["metafieldsSet"] = &apperrors.ErrUpstreamUnavailable{Operation: "metafieldsSet", StatusCode: 502}
		writer := NewMetafieldSetter(admin, "custom", "single_line_text_field", zaptest.NewLogger(t))

		_, err := writer.WriteMetafields(context.Background(), "gid://shopify/Product/1", weddingFields, values)
		var upstream *apperrors.ErrUpstreamUnavailable
		if !errors.As(err, &upstream) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})
}
