package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/jafarshop/productvariant/internal/domain"
)

type rulesFile struct {
	Collections []domain.CollectionRule `yaml:"collections"`
}

// LoadCollectionRules reads the collection rule table from a YAML file:
//
//	collections:
//	  - handle: wedding-rings
//	    fields: [Group Name, Style, Metal]
func LoadCollectionRules(path string) ([]domain.CollectionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection rules: %w", err)
	}
	return ParseCollectionRules(data)
}

// ParseCollectionRules decodes and validates a YAML rule table
func ParseCollectionRules(data []byte) ([]domain.CollectionRule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse collection rules: %w", err)
	}
	if err := ValidateCollectionRules(file.Collections); err != nil {
		return nil, err
	}
	return file.Collections, nil
}

// ValidateCollectionRules enforces unique handles and non-empty field labels whose stored keys are unique.
// Handles are trimmed in place.
func ValidateCollectionRules(rules []domain.CollectionRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("collection rules: at least one collection is required")
	}
	handles := make(map[string]bool, len(rules))
	for i := range rules {
		handle := strings.TrimSpace(rules[i].Handle)
		if handle == "" {
			return fmt.Errorf("collection rules: empty handle")
		}
		if handles[handle] {
			return fmt.Errorf("collection rules: duplicate handle %q", handle)
		}
		handles[handle] = true
		rules[i].Handle = handle

		// label for each stored key; FieldLabel can only map a key back to one label
		keys := make(map[string]string, len(rules[i].Fields))
		for _, label := range rules[i].Fields {
			if strings.TrimSpace(label) == "" {
				return fmt.Errorf("collection rules: %s has an empty field label", handle)
			}
			key := domain.FieldKey(label)
			if prev, ok := keys[key]; ok {
				if prev == label {
					return fmt.Errorf("collection rules: %s lists %q twice", handle, label)
				}
				return fmt.Errorf("collection rules: %s: %q and %q map to the same key %q", handle, prev, label, key)
			}
			keys[key] = label
		}
	}
	return nil
}
