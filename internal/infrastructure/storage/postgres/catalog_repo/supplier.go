package catalog_repo

import (
	"context"

	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/catalogs/supplier"
	"supplyscope/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	base *BaseCatalogRepo[*supplier.Supplier]
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		base: NewBaseCatalogRepo[*supplier.Supplier](
			txm,
			supplierTable,
			"supplier",
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// GetByID returns the supplier, soft-deleted or not.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	return r.base.GetByID(ctx, supplierID)
}

// List returns suppliers ordered by name.
func (r *SupplierRepo) List(ctx context.Context, includeDeleted bool) ([]supplier.Supplier, error) {
	ptrs, err := r.base.ListAll(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]supplier.Supplier, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out, nil
}

// Create inserts a supplier after validating it.
func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	if err := s.Validate(ctx); err != nil {
		return err
	}
	return r.base.Create(ctx, s)
}
