package shopify

// MetafieldDefinitionsQuery fetches product metafield definitions of one namespace with their validations.
// The "choices" validation value is a JSON array of allowed strings.
const MetafieldDefinitionsQuery = `
query metafieldDefinitions($first: Int!, $after: String, $namespace: String!) {
  metafieldDefinitions(first: $first, after: $after, ownerType: PRODUCT, namespace: $namespace) {
    nodes {
      name
      key
      validations {
        name
        value
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}
`

// ProductVariantFieldsQuery fetches the product's first collection and its metafields in one namespace.
// Only the first collection is considered.
const ProductVariantFieldsQuery = `
query productVariantFields($id: ID!, $namespace: String!) {
  product(id: $id) {
    id
    title
    collections(first: 1) {
      nodes {
        id
        handle
      }
    }
    metafields(first: 50, namespace: $namespace) {
      nodes {
        key
        value
      }
    }
  }
}
`

// ProductSearchQuery finds products matching a search string and flags membership in one collection
const ProductSearchQuery = `
query productSearch($query: String!, $collectionId: ID!) {
  products(first: 10, query: $query) {
    nodes {
      id
      inCollection(id: $collectionId)
    }
  }
}
`

// ProductMetafieldQuery fetches a single metafield value of a product
const ProductMetafieldQuery = `
query productMetafield($id: ID!, $namespace: String!, $key: String!) {
  product(id: $id) {
    id
    title
    metafield(namespace: $namespace, key: $key) {
      value
    }
  }
}
`

// CollectionsQuery pages through the store's collections
const CollectionsQuery = `
query collections($first: Int!, $after: String, $query: String) {
  collections(first: $first, after: $after, query: $query) {
    nodes {
      id
      title
      handle
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}
`

// AccessScopesQuery lists the scopes granted to the app's access token
const AccessScopesQuery = `
query accessScopes {
  currentAppInstallation {
    accessScopes {
      handle
    }
  }
}
`
