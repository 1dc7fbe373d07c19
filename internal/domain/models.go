package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CollectionRule lists the fields a product of the collection must carry, in display order
type CollectionRule struct {
	Handle string   `yaml:"handle" json:"handle"`
	Fields []string `yaml:"fields" json:"fields"`
}

// FieldDefinition is a product metafield definition as stored in Shopify.
// Empty Choices means the field is free text.
type FieldDefinition struct {
	Name    string   `json:"name"`
	Key     string   `json:"key"`
	Choices []string `json:"choices"`
}

// Schema is the resolved form for a collection
type Schema struct {
	CollectionHandle string              `json:"collection_handle"`
	RequiredFields   []string            `json:"required_fields"`
	Choices          map[string][]string `json:"choices"`
}

// CollectionSummary is one store collection, flagged when a collection rule covers its handle
type CollectionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Handle    string `json:"handle"`
	Supported bool   `json:"supported"`
}

// ProductSnapshot is what the reader returns for one product
type ProductSnapshot struct {
	ProductID        string            `json:"product_id"`
	Title            string            `json:"title"`
	CollectionHandle string            `json:"collection_handle"`
	CollectionID     string            `json:"collection_id"`
	Values           map[string]string `json:"values"`
}

// SaveRequestFor builds the save request for this product. The collection always comes from the
// product; a non-empty handle or id from the caller must match it, otherwise the message says why.
func (p *ProductSnapshot) SaveRequestFor(handle, collectionID string, values map[string]string) (SaveRequest, string) {
	handle = strings.TrimSpace(handle)
	collectionID = strings.TrimSpace(collectionID)
	if handle != "" && handle != p.CollectionHandle {
		return SaveRequest{}, "Collection " + handle + " does not match the product's collection " + p.CollectionHandle + "."
	}
	if collectionID != "" && collectionID != p.CollectionID {
		return SaveRequest{}, "Collection id " + collectionID + " does not match the product's collection."
	}
	return SaveRequest{
		ProductID:        p.ProductID,
		CollectionHandle: p.CollectionHandle,
		CollectionID:     p.CollectionID,
		Values:           values,
	}, ""
}

// SaveRequest is a single product assignment submitted for saving. It lives for one request only.
type SaveRequest struct {
	ProductID        string            `json:"product_id"`
	CollectionHandle string            `json:"collection_handle"`
	CollectionID     string            `json:"collection_id"`
	Values           map[string]string `json:"values"`
}

// DuplicateTerm is one equality condition of a DuplicateQuery
type DuplicateTerm struct {
	Namespace string
	Key       string
	Value     string
}

// DuplicateQuery is the product search used to find another product holding the same field tuple.
// All terms are joined with AND: a duplicate must match every required field.
type DuplicateQuery struct {
	CollectionID string
	Terms        []DuplicateTerm
}

// String renders the query in Shopify search syntax
func (q DuplicateQuery) String() string {
	parts := make([]string, 0, len(q.Terms)+1)
	if id, ok := NumericID(q.CollectionID); ok {
		parts = append(parts, "collection_id:"+id)
	}
	for _, t := range q.Terms {
		parts = append(parts, "metafields."+t.Namespace+"."+t.Key+":"+quoteSearchValue(t.Value))
	}
	return strings.Join(parts, " AND ")
}

func quoteSearchValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// FieldError is a per-field error reported by Shopify
type FieldError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// WriteResult is the outcome of a batched metafield upsert
type WriteResult struct {
	OK     bool         `json:"ok"`
	Errors []FieldError `json:"errors,omitempty"`
}

// SaveResult is returned by the orchestrator for every save request
type SaveResult struct {
	Outcome       Outcome      `json:"outcome"`
	State         SaveState    `json:"state"`
	MissingFields []string     `json:"missing_fields,omitempty"`
	Errors        []FieldError `json:"errors,omitempty"`
	Messages      []string     `json:"messages"`
}

// ClearResult is the outcome of clearing variant metafields on product creation
type ClearResult struct {
	ProductID string       `json:"product_id"`
	Skipped   bool         `json:"skipped"`
	Reason    string       `json:"reason,omitempty"`
	Deleted   []string     `json:"deleted,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// DescriptionField is one key/value row inside a description group
type DescriptionField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DescriptionGroup is a named block of the product description
type DescriptionGroup struct {
	Name   string             `json:"name"`
	Fields []DescriptionField `json:"fields"`
}

// Description is the grouped product description stored as a JSON metafield
type Description struct {
	ProductID string             `json:"product_id"`
	Title     string             `json:"title"`
	Groups    []DescriptionGroup `json:"groups"`
}

// AssignmentEvent is an audit record of one save attempt
type AssignmentEvent struct {
	ID               uuid.UUID
	ProductID        string
	CollectionHandle string
	Outcome          Outcome
	Detail           map[string]interface{} // JSONB
	CreatedAt        time.Time
}

// WebhookDelivery records a processed Shopify webhook delivery
type WebhookDelivery struct {
	ID        string // X-Shopify-Webhook-Id
	Topic     string
	ProductID string
	Result    string
	CreatedAt time.Time
}
