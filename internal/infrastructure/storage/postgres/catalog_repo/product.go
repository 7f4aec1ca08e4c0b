package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/catalogs/product"
	"supplyscope/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	base *BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		base: NewBaseCatalogRepo[*product.Product](
			txm,
			productTable,
			"product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

type productName struct {
	ID   id.ID  `db:"id"`
	Name string `db:"name"`
}

func (r *ProductRepo) namesQuery(ids []id.ID) squirrel.SelectBuilder {
	return r.base.Builder().
		Select("id", "name").
		From(productTable).
		Where(squirrel.Eq{"id": ids})
}

// NamesByIDs resolves product names, soft-deleted products included, so that
// historical batches keep their labels.
func (r *ProductRepo) NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	names := make(map[id.ID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	sql, args, err := r.namesQuery(ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []productName
	if err := pgxscan.Select(ctx, r.base.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("product names: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Create inserts a product after validating it.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return r.base.Create(ctx, p)
}
