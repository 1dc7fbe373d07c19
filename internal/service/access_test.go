package service

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestAccessChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		scopes      []string
		wantMissing []string
	}{
		{name: "all_granted", scopes: []string{"write_products", "read_products"}, wantMissing: []string{}},
		{name: "write_implies_read", scopes: []string{"write_products"}, wantMissing: []string{}},
		{name: "read_only_token", scopes: []string{"read_products"}, wantMissing: []string{"write_products"}},
		{name: "nothing_granted", scopes: nil, wantMissing: []string{"read_products", "write_products"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			admin := newFakeAdmin()
			admin.scopes = tt.scopes
			report, err := NewAccessChecker(admin, zaptest.NewLogger(t)).CheckScopes(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(report.Missing, tt.wantMissing) {
				t.Fatalf("expected missing %v, got %v", tt.wantMissing, report.Missing)
			}
			if len(report.Granted) != len(tt.scopes) {
				t.Fatalf("expected %d granted scopes, got %v", len(tt.scopes), report.Granted)
			}
		})
	}
}
