package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
	apperrors "github.com/jafarshop/productvariant/pkg/errors"
)

const descriptionMetafieldType = "json"

// DescriptionService reads and writes the grouped product description metafield
type DescriptionService struct {
	client    GraphQLClient
	namespace string
	key       string
	logger    *zap.Logger
}

// NewDescriptionService creates a new description service
func NewDescriptionService(client GraphQLClient, cfg config.MetafieldConfig, logger *zap.Logger) *DescriptionService {
	return &DescriptionService{
		client:    client,
		namespace: cfg.DescriptionNamespace,
		key:       cfg.DescriptionKey,
		logger:    logger,
	}
}

// ReadDescription loads the description groups in stored order. A product without the metafield has no groups.
func (s *DescriptionService) ReadDescription(ctx context.Context, productID string) (*domain.Description, error) {
	resp, err := s.client.Execute(ctx, shopify.ProductMetafieldQuery, map[string]interface{}{
		"id":        productID,
		"namespace": s.namespace,
		"key":       s.key,
	})
	if err != nil {
		return nil, fmt.Errorf("read description: %w", err)
	}

	var result struct {
		Product *struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse description response: %w", err)
	}
	if result.Product == nil {
		return nil, &apperrors.ErrNotFound{Resource: "product", ID: productID}
	}

	desc := &domain.Description{
		ProductID: result.Product.ID,
		Title:     result.Product.Title,
		Groups:    []domain.DescriptionGroup{},
	}
	if result.Product.Metafield == nil || strings.TrimSpace(result.Product.Metafield.Value) == "" {
		return desc, nil
	}
	groups, err := ParseDescription([]byte(result.Product.Metafield.Value))
	if err != nil {
		return nil, err
	}
	desc.Groups = groups
	return desc, nil
}

// SaveDescription normalizes the groups and stores them as one JSON metafield
func (s *DescriptionService) SaveDescription(ctx context.Context, productID string, groups []domain.DescriptionGroup) error {
	normalized, err := NormalizeDescription(groups)
	if err != nil {
		return err
	}
	value, err := EncodeDescription(normalized)
	if err != nil {
		return err
	}

	resp, err := s.client.Execute(ctx, shopify.MetafieldsSetMutation, map[string]interface{}{
		"metafields": []shopify.MetafieldsSetInput{{
			OwnerID:   productID,
			Namespace: s.namespace,
			Key:       s.key,
			Type:      descriptionMetafieldType,
			Value:     string(value),
		}},
	})
	if err != nil {
		return fmt.Errorf("save description: %w", err)
	}

	var result struct {
		MetafieldsSet struct {
			UserErrors []shopify.UserError `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse metafieldsSet response: %w", err)
	}
	if errs := result.MetafieldsSet.UserErrors; len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Message)
		}
		return &apperrors.ErrValidation{Message: strings.Join(messages, ", ")}
	}

	s.logger.Info("Saved product description", zap.String("product_id", productID), zap.Int("groups", len(normalized)))
	return nil
}

// NormalizeDescription trims names and keys, drops blank groups and blank keys,
// and rejects repeated group names or repeated keys inside a group.
func NormalizeDescription(groups []domain.DescriptionGroup) ([]domain.DescriptionGroup, error) {
	out := make([]domain.DescriptionGroup, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, &apperrors.ErrValidation{
				Message: "Group name must be unique.",
				Fields:  map[string]string{"name": name},
			}
		}
		seen[name] = true

		fields := make([]domain.DescriptionField, 0, len(g.Fields))
		keys := make(map[string]bool, len(g.Fields))
		for _, f := range g.Fields {
			key := strings.TrimSpace(f.Key)
			if key == "" {
				continue
			}
			if keys[key] {
				return nil, &apperrors.ErrValidation{
					Message: fmt.Sprintf("Field key must be unique within group %q.", name),
					Fields:  map[string]string{"key": key},
				}
			}
			keys[key] = true
			fields = append(fields, domain.DescriptionField{Key: key, Value: f.Value})
		}
		out = append(out, domain.DescriptionGroup{Name: name, Fields: fields})
	}
	return out, nil
}

// EncodeDescription renders groups as a JSON object of objects, keeping group and field order
func EncodeDescription(groups []domain.DescriptionGroup) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, g.Name); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, f := range g.Fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, f.Key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONString(&buf, f.Value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// ParseDescription decodes a stored description, keeping the order of groups and fields.
// Non-string field values are kept as their JSON text.
func ParseDescription(data []byte) ([]domain.DescriptionGroup, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	invalid := func(err error) error {
		return &apperrors.ErrValidation{Message: fmt.Sprintf("stored product description is not valid JSON: %v", err)}
	}

	if err := expectDelim(dec, '{'); err != nil {
		return nil, invalid(err)
	}
	groups := []domain.DescriptionGroup{}
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, invalid(err)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, invalid(fmt.Errorf("group %q: %w", name, err))
		}
		group := domain.DescriptionGroup{Name: name, Fields: []domain.DescriptionField{}}
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, invalid(err)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, invalid(err)
			}
			group.Fields = append(group.Fields, domain.DescriptionField{Key: key, Value: rawValue(raw)})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, invalid(err)
		}
		groups = append(groups, group)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, invalid(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(errors.New("trailing data after object"))
	}
	return groups, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
