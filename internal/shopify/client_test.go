package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/metrics"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.ShopifyConfig{
		ShopDomain:  server.URL,
		AccessToken: "shpat_test",
		APIVersion:  "2025-01",
	}, metrics.NewMetrics(), zaptest.NewLogger(t))
}

func TestExecute(t *testing.T) {
	t.Parallel()

	t.Run("sends_token_and_variables", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/admin/api/2025-01/graphql.json" {
				http.NotFound(w, r)
				return
			}
			if got := r.Header.Get("X-Shopify-Access-Token"); got != "shpat_test" {
				t.Errorf("expected access token header, got %q", got)
			}
			var req GraphQLRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Variables["id"] != "gid://shopify/Product/1" {
				t.Errorf("expected id variable, got %v", req.Variables["id"])
			}
			_, _ = fmt.Fprint(w, `{"data":{"product":{"id":"gid://shopify/Product/1"}}}`)
		})

		resp, err := client.Execute(context.Background(), ProductMetafieldQuery, map[string]interface{}{"id": "gid://shopify/Product/1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(resp.Data), "gid://shopify/Product/1") {
			t.Fatalf("expected data passthrough, got %s", resp.Data)
		}
	})

	t.Run("non_200_is_upstream_unavailable", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = fmt.Fprint(w, "bad gateway")
		})

		_, err := client.Execute(context.Background(), ProductMetafieldQuery, nil)
		var upstream *apperrors.ErrUpstreamUnavailable
		if !errors.As(err, &upstream) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
		if upstream.StatusCode != http.StatusBadGateway || upstream.Operation != "productMetafield" {
			t.Fatalf("unexpected upstream error fields: %+v", upstream)
		}
	})

	t.Run("graphql_errors_fail_loudly", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `{"errors":[{"message":"Field 'nope' doesn't exist"},{"message":"second"}]}`)
		})

		_, err := client.Execute(context.Background(), ProductSearchQuery, nil)
		var gqlErr *GraphQLErrors
		if !errors.As(err, &gqlErr) {
			t.Fatalf("expected GraphQLErrors, got %v", err)
		}
		if len(gqlErr.Messages()) != 2 || gqlErr.Operation != "productSearch" {
			t.Fatalf("expected both messages for productSearch, got %+v", gqlErr)
		}
	})

	t.Run("throttled_is_upstream_unavailable", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`)
		})

		_, err := client.Execute(context.Background(), ProductSearchQuery, nil)
		var upstream *apperrors.ErrUpstreamUnavailable
		if !errors.As(err, &upstream) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})

	t.Run("unreachable_host_is_upstream_unavailable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := NewClient(config.ShopifyConfig{ShopDomain: url, AccessToken: "x", APIVersion: "2025-01"}, nil, zaptest.NewLogger(t))
		_, err := client.Execute(context.Background(), ProductSearchQuery, nil)
		var upstream *apperrors.ErrUpstreamUnavailable
		if !errors.As(err, &upstream) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})

	t.Run("cancelled_context_does_not_reach_server", func(t *testing.T) {
		t.Parallel()

		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, _ = fmt.Fprint(w, `{"data":{}}`)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Execute(ctx, ProductSearchQuery, nil)
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if called {
			t.Fatal("expected no request after cancellation")
		}
	})
}

func TestOperationName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		MetafieldDefinitionsQuery: "metafieldDefinitions",
		ProductVariantFieldsQuery: "productVariantFields",
		MetafieldsSetMutation:     "metafieldsSet",
		MetafieldsDeleteMutation:  "metafieldsDelete",
		"{ shop { name } }":       "anonymous",
	}
	for query, want := range cases {
		if got := operationName(query); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestNewClientEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient(config.ShopifyConfig{ShopDomain: "demo.myshopify.com/", APIVersion: "2025-01"}, nil, zaptest.NewLogger(t))
	if client.endpoint != "https://demo.myshopify.com/admin/api/2025-01/graphql.json" {
		t.Fatalf("unexpected endpoint %s", client.endpoint)
	}
}
