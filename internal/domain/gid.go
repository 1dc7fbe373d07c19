package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const productGIDPrefix = "gid://shopify/Product/"

// ProductGID accepts a numeric product id or a product GID and returns the GID
func ProductGID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, productGIDPrefix) {
		if _, ok := NumericID(id); !ok {
			return "", fmt.Errorf("invalid product GID: %s", id)
		}
		return id, nil
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return "", fmt.Errorf("invalid product id: %q", id)
	}
	return productGIDPrefix + id, nil
}

// NumericID extracts the trailing numeric id of a GID (gid://shopify/Collection/123 -> "123")
func NumericID(gid string) (string, bool) {
	parts := strings.Split(gid, "/")
	if len(parts) < 4 || !strings.HasPrefix(gid, "gid://") {
		return "", false
	}
	last := parts[len(parts)-1]
	if _, err := strconv.ParseInt(last, 10, 64); err != nil {
		return "", false
	}
	return last, true
}
