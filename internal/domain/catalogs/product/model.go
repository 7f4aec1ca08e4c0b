// Package product provides the Product catalog. Only names are consumed by
// supplier analytics, to label top products.
package product

import (
	"context"

	"supplyscope/internal/core/entity"
	"supplyscope/internal/core/id"
)

// Product is a sellable item.
type Product struct {
	entity.Catalog

	SKU *string `db:"sku" json:"sku,omitempty"`
}

// NewProduct creates a new Product.
func NewProduct(name string) *Product {
	return &Product{Catalog: entity.NewCatalog(name)}
}

// Repository defines product data access.
type Repository interface {
	// NamesByIDs returns id → name for the ids that exist. Missing ids are omitted.
	NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)

	Create(ctx context.Context, p *Product) error
}
