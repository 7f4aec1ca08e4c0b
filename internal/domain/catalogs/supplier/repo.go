package supplier

import (
	"context"

	"supplyscope/internal/core/id"
)

// Repository defines supplier data access.
type Repository interface {
	// GetByID returns NotFound AppError when the supplier does not exist.
	GetByID(ctx context.Context, id id.ID) (*Supplier, error)

	// List returns all suppliers; soft-deleted ones only when includeDeleted is set.
	List(ctx context.Context, includeDeleted bool) ([]Supplier, error)

	Create(ctx context.Context, s *Supplier) error
}
