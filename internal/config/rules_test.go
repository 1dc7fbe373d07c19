package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseCollectionRules(t *testing.T) {
	t.Parallel()

	rules, err := ParseCollectionRules([]byte(`
collections:
  - handle: wedding-rings
    fields: [Group Name, Style, Metal]
  - handle: bands
    fields:
      - Metal
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if !reflect.DeepEqual(rules[0].Fields, []string{"Group Name", "Style", "Metal"}) {
		t.Fatalf("expected declared field order, got %v", rules[0].Fields)
	}
}

func TestParseCollectionRulesValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":            `collections: []`,
		"duplicate_handle": "collections:\n  - handle: a\n    fields: [X]\n  - handle: a\n    fields: [Y]\n",
		"empty_label":      "collections:\n  - handle: a\n    fields: [\"\"]\n",
		"duplicate_label":  "collections:\n  - handle: a\n    fields: [X, X]\n",
		"invalid_yaml":     "collections: [",
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseCollectionRules([]byte(input)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}

	t.Run("labels_sharing_a_key_are_rejected", func(t *testing.T) {
		t.Parallel()

		_, err := ParseCollectionRules([]byte("collections:\n  - handle: wedding-rings\n    fields: [Group Name, group name]\n"))
		if err == nil || !strings.Contains(err.Error(), `same key "group_name"`) {
			t.Fatalf("expected same-key error, got %v", err)
		}
	})

	t.Run("handles_are_trimmed", func(t *testing.T) {
		t.Parallel()

		rules, err := ParseCollectionRules([]byte("collections:\n  - handle: \" wedding-rings \"\n    fields: [Metal]\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rules[0].Handle != "wedding-rings" {
			t.Fatalf("expected trimmed handle, got %q", rules[0].Handle)
		}
	})

	t.Run("padded_duplicate_handle", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseCollectionRules([]byte("collections:\n  - handle: a\n    fields: [X]\n  - handle: \" a\"\n    fields: [Y]\n")); err == nil {
			t.Fatal("expected duplicate handle error")
		}
	})
}

func TestLoadCollectionRules(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("collections:\n  - handle: wedding-rings\n    fields: [Metal]\n"), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	rules, err := LoadCollectionRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules[0].Handle != "wedding-rings" {
		t.Fatalf("expected wedding-rings, got %s", rules[0].Handle)
	}

	_, err = LoadCollectionRules(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read collection rules") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestDefaultCollectionRulesAreValid(t *testing.T) {
	t.Parallel()

	if err := ValidateCollectionRules(DefaultCollectionRules()); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
}
