package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/shopify"
)

// RequiredScopes are the Admin API scopes the reader, duplicate check and writers need
var RequiredScopes = []string{"read_products", "write_products"}

// ScopeReport compares the token's granted scopes with RequiredScopes
type ScopeReport struct {
	Granted []string `json:"granted"`
	Missing []string `json:"missing"`
}

// AccessChecker verifies the configured access token before operators rely on it
type AccessChecker struct {
	client GraphQLClient
	logger *zap.Logger
}

func NewAccessChecker(client GraphQLClient, logger *zap.Logger) *AccessChecker {
	return &AccessChecker{client: client, logger: logger}
}

// CheckScopes reports which of RequiredScopes the token lacks. A write scope implies its read scope.
func (a *AccessChecker) CheckScopes(ctx context.Context) (*ScopeReport, error) {
	resp, err := a.client.Execute(ctx, shopify.AccessScopesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("query access scopes: %w", err)
	}

	var result struct {
		CurrentAppInstallation struct {
			AccessScopes []struct {
				Handle string `json:"handle"`
			} `json:"accessScopes"`
		} `json:"currentAppInstallation"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse access scopes response: %w", err)
	}

	granted := make(map[string]bool)
	report := &ScopeReport{Granted: []string{}, Missing: []string{}}
	for _, s := range result.CurrentAppInstallation.AccessScopes {
		granted[s.Handle] = true
		report.Granted = append(report.Granted, s.Handle)
	}
	sort.Strings(report.Granted)

	for _, scope := range RequiredScopes {
		if granted[scope] {
			continue
		}
		if resource, ok := strings.CutPrefix(scope, "read_"); ok && granted["write_"+resource] {
			continue
		}
		report.Missing = append(report.Missing, scope)
	}

	if len(report.Missing) > 0 {
		a.logger.Warn("Access token is missing scopes", zap.Strings("missing", report.Missing))
	}
	return report, nil
}
