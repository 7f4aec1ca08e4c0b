package batch

import (
	"context"

	"supplyscope/internal/core/id"
)

// Repository is the read side of the batch store.
// Implementations return batches ordered by created_at, then id, so that
// "first batch of a group" is stable across reads.
type Repository interface {
	ListBySupplier(ctx context.Context, supplierID id.ID) ([]Batch, error)
	ListAll(ctx context.Context) ([]Batch, error)
}

// Writer is used by seeding and import tooling.
type Writer interface {
	Create(ctx context.Context, b *Batch) error
}
