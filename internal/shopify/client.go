package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/metrics"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewClient creates a new Shopify GraphQL client
func NewClient(cfg config.ShopifyConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	// Bare shop domains get https; an explicit scheme is kept (local proxies, tests)
	shopDomain := strings.TrimSuffix(strings.TrimSpace(cfg.ShopDomain), "/")
	if !strings.HasPrefix(shopDomain, "http://") && !strings.HasPrefix(shopDomain, "https://") {
		shopDomain = "https://" + shopDomain
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		endpoint:    fmt.Sprintf("%s/admin/api/%s/graphql.json", shopDomain, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// GraphQLErrors is returned when Shopify accepted the request but rejected the query itself
type GraphQLErrors struct {
	Operation string
	Errors    []GraphQLError
}

func (e *GraphQLErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("graphQL errors (%s): %s", e.Operation, strings.Join(messages, "; "))
}

// Messages returns every error message in order
func (e *GraphQLErrors) Messages() []string {
	out := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err.Message
	}
	return out
}

var operationNamePattern = regexp.MustCompile(`(?m)^\s*(?:query|mutation)\s+([A-Za-z_][A-Za-z0-9_]*)`)

func operationName(query string) string {
	if m := operationNamePattern.FindStringSubmatch(query); len(m) == 2 {
		return m[1]
	}
	return "anonymous"
}

// Execute executes a GraphQL query/mutation.
// Transport failures, non-200 answers and throttling come back as *errors.ErrUpstreamUnavailable;
// a rejected query comes back as *GraphQLErrors.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	op := operationName(query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &apperrors.ErrUpstreamUnavailable{Operation: op, Err: err}
		}
	}

	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveShopifyRequest(op, "transport_error", time.Since(start))
		c.logger.Warn("Shopify request failed", zap.String("operation", op), zap.Error(err))
		return nil, &apperrors.ErrUpstreamUnavailable{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveShopifyRequest(op, "transport_error", time.Since(start))
		return nil, &apperrors.ErrUpstreamUnavailable{Operation: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.ObserveShopifyRequest(op, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		c.logger.Warn("Shopify API error",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 512)),
		)
		return nil, &apperrors.ErrUpstreamUnavailable{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body: %s", truncate(string(body), 512)),
		}
	}

	var graphQLResp GraphQLResponse
	if err := json.Unmarshal(body, &graphQLResp); err != nil {
		c.metrics.ObserveShopifyRequest(op, "decode_error", time.Since(start))
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, truncate(string(body), 512))
	}

	if len(graphQLResp.Errors) > 0 {
		if isThrottled(graphQLResp.Errors) {
			c.metrics.ObserveShopifyRequest(op, "throttled", time.Since(start))
			return nil, &apperrors.ErrUpstreamUnavailable{Operation: op, Err: fmt.Errorf("throttled")}
		}
		c.metrics.ObserveShopifyRequest(op, "graphql_error", time.Since(start))
		gqlErr := &GraphQLErrors{Operation: op, Errors: graphQLResp.Errors}
		c.logger.Error("Shopify rejected query", zap.String("operation", op), zap.Error(gqlErr))
		return nil, gqlErr
	}

	c.metrics.ObserveShopifyRequest(op, "ok", time.Since(start))
	return &graphQLResp, nil
}

func isThrottled(errs []GraphQLError) bool {
	for _, e := range errs {
		if code, ok := e.Extensions["code"].(string); ok && strings.EqualFold(code, "THROTTLED") {
			return true
		}
		if strings.Contains(strings.ToLower(e.Message), "throttled") {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
