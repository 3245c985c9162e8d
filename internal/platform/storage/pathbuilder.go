package storage

import (
	"fmt"
	"strings"
)

// AssetKind selects the storage layout for catalog image objects.
type AssetKind string

const (
	AssetKindProductImage  AssetKind = "product-image"
	AssetKindOfferImage    AssetKind = "offer-image"
	AssetKindCategoryImage AssetKind = "category-image"
)

// ObjectPath composes the bucket object key for a catalog image. The owner ID
// is the product, offer, or category the image belongs to.
func ObjectPath(kind AssetKind, ownerID, fileName string) (string, error) {
	owner, err := validateSegment("ownerID", ownerID)
	if err != nil {
		return "", err
	}
	name, err := validateSegment("fileName", fileName)
	if err != nil {
		return "", err
	}

	switch kind {
	case AssetKindProductImage:
		return fmt.Sprintf("catalog/products/%s/%s", owner, name), nil
	case AssetKindOfferImage:
		return fmt.Sprintf("catalog/offers/%s/%s", owner, name), nil
	case AssetKindCategoryImage:
		return fmt.Sprintf("catalog/categories/%s/%s", owner, name), nil
	default:
		return "", fmt.Errorf("storage: unsupported asset kind %q", kind)
	}
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
