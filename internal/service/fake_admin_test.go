package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/shopify"
)

type fakeProduct struct {
	ID               string
	Title            string
	CollectionID     string
	CollectionHandle string
	Metafields       map[string]string // "namespace.key" -> value
}

type fakeCollection struct {
	ID     string
	Title  string
	Handle string
}

type fakeDefinition struct {
	Name    string
	Key     string
	Choices []string
}

// fakeAdmin is an in-memory Admin API answering the operations the services send
type fakeAdmin struct {
	mu          sync.Mutex
	products    map[string]*fakeProduct
	definitions []fakeDefinition
	collections []fakeCollection
	scopes      []string
	calls       map[string]int
	searches    []string

	// failWith makes every call for the operation return the error
	failWith   map[string]error
	userErrors map[string][]shopify.UserError
	pageSize   int
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		products:   make(map[string]*fakeProduct),
		calls:      make(map[string]int),
		failWith:   make(map[string]error),
		userErrors: make(map[string][]shopify.UserError),
	}
}

func (f *fakeAdmin) addProduct(p *fakeProduct) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Metafields == nil {
		p.Metafields = make(map[string]string)
	}
	f.products[p.ID] = p
}

func (f *fakeAdmin) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAdmin) metafield(productID, namespace, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return "", false
	}
	v, ok := p.Metafields[namespace+"."+key]
	return v, ok
}

func (f *fakeAdmin) Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var op string
	switch query {
	case shopify.MetafieldDefinitionsQuery:
		op = "metafieldDefinitions"
	case shopify.ProductVariantFieldsQuery:
		op = "productVariantFields"
	case shopify.ProductSearchQuery:
		op = "productSearch"
	case shopify.ProductMetafieldQuery:
		op = "productMetafield"
	case shopify.CollectionsQuery:
		op = "collections"
	case shopify.AccessScopesQuery:
		op = "accessScopes"
	case shopify.MetafieldsSetMutation:
		op = "metafieldsSet"
	case shopify.MetafieldsDeleteMutation:
		op = "metafieldsDelete"
	default:
		return nil, fmt.Errorf("fake admin: unknown query")
	}
	f.calls[op]++
	if err := f.failWith[op]; err != nil {
		return nil, err
	}

	var data interface{}
	switch op {
	case "metafieldDefinitions":
		data = f.definitionsPage(variables)
	case "productVariantFields":
		data = f.productVariantFields(variables)
	case "productSearch":
		data = f.productSearch(variables)
	case "productMetafield":
		data = f.productMetafield(variables)
	case "collections":
		data = f.collectionsPage(variables)
	case "accessScopes":
		scopes := []map[string]string{}
		for _, s := range f.scopes {
			scopes = append(scopes, map[string]string{"handle": s})
		}
		data = map[string]interface{}{
			"currentAppInstallation": map[string]interface{}{"accessScopes": scopes},
		}
	case "metafieldsSet":
		data = f.metafieldsSet(variables)
	case "metafieldsDelete":
		data = f.metafieldsDelete(variables)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &shopify.GraphQLResponse{Data: raw}, nil
}

// pageBounds applies pageSize and the cursor-N convention to a list of total items
func (f *fakeAdmin) pageBounds(variables map[string]interface{}, total int) (int, int) {
	size := f.pageSize
	if size <= 0 {
		size = total
	}
	start := 0
	if after, ok := variables["after"].(string); ok {
		fmt.Sscanf(after, "cursor-%d", &start)
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

func (f *fakeAdmin) collectionsPage(variables map[string]interface{}) interface{} {
	start, end := f.pageBounds(variables, len(f.collections))
	nodes := []map[string]string{}
	for _, c := range f.collections[start:end] {
		nodes = append(nodes, map[string]string{"id": c.ID, "title": c.Title, "handle": c.Handle})
	}
	return map[string]interface{}{
		"collections": map[string]interface{}{
			"nodes": nodes,
			"pageInfo": map[string]interface{}{
				"hasNextPage": end < len(f.collections),
				"endCursor":   fmt.Sprintf("cursor-%d", end),
			},
		},
	}
}

func (f *fakeAdmin) definitionsPage(variables map[string]interface{}) interface{} {
	start, end := f.pageBounds(variables, len(f.definitions))

	nodes := []map[string]interface{}{}
	for _, d := range f.definitions[start:end] {
		validations := []map[string]string{}
		if d.Choices != nil {
			b, _ := json.Marshal(d.Choices)
			validations = append(validations, map[string]string{"name": "choices", "value": string(b)})
		}
		nodes = append(nodes, map[string]interface{}{"name": d.Name, "key": d.Key, "validations": validations})
	}
	return map[string]interface{}{
		"metafieldDefinitions": map[string]interface{}{
			"nodes": nodes,
			"pageInfo": map[string]interface{}{
				"hasNextPage": end < len(f.definitions),
				"endCursor":   fmt.Sprintf("cursor-%d", end),
			},
		},
	}
}

func (f *fakeAdmin) productVariantFields(variables map[string]interface{}) interface{} {
	p, ok := f.products[variables["id"].(string)]
	if !ok {
		return map[string]interface{}{"product": nil}
	}
	namespace := variables["namespace"].(string)
	collections := []map[string]string{}
	if p.CollectionID != "" {
		collections = append(collections, map[string]string{"id": p.CollectionID, "handle": p.CollectionHandle})
	}
	metafields := []map[string]string{}
	for nk, v := range p.Metafields {
		if strings.HasPrefix(nk, namespace+".") {
			metafields = append(metafields, map[string]string{"key": strings.TrimPrefix(nk, namespace+"."), "value": v})
		}
	}
	return map[string]interface{}{
		"product": map[string]interface{}{
			"id":          p.ID,
			"title":       p.Title,
			"collections": map[string]interface{}{"nodes": collections},
			"metafields":  map[string]interface{}{"nodes": metafields},
		},
	}
}

var searchTermPattern = regexp.MustCompile(`metafields\.(\w+)\.(\w+):"((?:[^"\\]|\\.)*)"`)
var collectionTermPattern = regexp.MustCompile(`collection_id:(\d+)`)

func (f *fakeAdmin) productSearch(variables map[string]interface{}) interface{} {
	query := variables["query"].(string)
	collectionID := variables["collectionId"].(string)
	f.searches = append(f.searches, query)

	restrictTo := ""
	if m := collectionTermPattern.FindStringSubmatch(query); m != nil {
		restrictTo = m[1]
	}
	terms := searchTermPattern.FindAllStringSubmatch(query, -1)

	nodes := []map[string]interface{}{}
	for _, p := range f.products {
		if restrictTo != "" {
			if id, _ := domain.NumericID(p.CollectionID); id != restrictTo {
				continue
			}
		}
		match := true
		for _, t := range terms {
			want := strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(t[3])
			if p.Metafields[t[1]+"."+t[2]] != want {
				match = false
				break
			}
		}
		if match {
			nodes = append(nodes, map[string]interface{}{"id": p.ID, "inCollection": p.CollectionID == collectionID})
		}
	}
	return map[string]interface{}{"products": map[string]interface{}{"nodes": nodes}}
}

func (f *fakeAdmin) productMetafield(variables map[string]interface{}) interface{} {
	p, ok := f.products[variables["id"].(string)]
	if !ok {
		return map[string]interface{}{"product": nil}
	}
	var metafield interface{}
	if v, ok := p.Metafields[variables["namespace"].(string)+"."+variables["key"].(string)]; ok {
		metafield = map[string]string{"value": v}
	}
	return map[string]interface{}{
		"product": map[string]interface{}{"id": p.ID, "title": p.Title, "metafield": metafield},
	}
}

func (f *fakeAdmin) metafieldsSet(variables map[string]interface{}) interface{} {
	if errs := f.userErrors["metafieldsSet"]; len(errs) > 0 {
		return map[string]interface{}{"metafieldsSet": map[string]interface{}{"metafields": nil, "userErrors": errs}}
	}
	inputs := variables["metafields"].([]shopify.MetafieldsSetInput)
	for _, in := range inputs {
		if p, ok := f.products[in.OwnerID]; ok {
			p.Metafields[in.Namespace+"."+in.Key] = in.Value
		}
	}
	return map[string]interface{}{"metafieldsSet": map[string]interface{}{"metafields": []interface{}{}, "userErrors": []interface{}{}}}
}

func (f *fakeAdmin) metafieldsDelete(variables map[string]interface{}) interface{} {
	if errs := f.userErrors["metafieldsDelete"]; len(errs) > 0 {
		return map[string]interface{}{"metafieldsDelete": map[string]interface{}{"deletedMetafields": nil, "userErrors": errs}}
	}
	inputs := variables["metafields"].([]shopify.MetafieldIdentifierInput)
	deleted := []interface{}{}
	for _, in := range inputs {
		p, ok := f.products[in.OwnerID]
		nk := in.Namespace + "." + in.Key
		if !ok {
			deleted = append(deleted, nil)
			continue
		}
		if _, exists := p.Metafields[nk]; !exists {
			deleted = append(deleted, nil)
			continue
		}
		delete(p.Metafields, nk)
		deleted = append(deleted, map[string]string{"key": in.Key, "namespace": in.Namespace, "ownerId": in.OwnerID})
	}
	return map[string]interface{}{"metafieldsDelete": map[string]interface{}{"deletedMetafields": deleted, "userErrors": []interface{}{}}}
}
