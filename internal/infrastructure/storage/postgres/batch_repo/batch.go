// Package batch_repo provides the PostgreSQL batch store.
package batch_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/infrastructure/storage/postgres"
)

const batchTable = "inv_batches"

// BatchRepo implements batch.Repository and batch.Writer.
// Reads are ordered by created_at, then id; the first batch of a reconstructed
// order depends on it.
type BatchRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var (
	_ batch.Repository = (*BatchRepo)(nil)
	_ batch.Writer     = (*BatchRepo)(nil)
)

// NewBatchRepo creates a new batch repository.
func NewBatchRepo(txm *postgres.TxManager) *BatchRepo {
	return &BatchRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[batch.Batch](),
	}
}

// Columns returns the stored columns in insert order.
func (r *BatchRepo) Columns() []string {
	return r.cols
}

func (r *BatchRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BatchRepo) listQuery(supplierID *id.ID) squirrel.SelectBuilder {
	q := r.builder().
		Select(r.cols...).
		From(batchTable)
	if supplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *supplierID})
	}
	return q.OrderBy("created_at NULLS FIRST", "id")
}

func (r *BatchRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]batch.Batch, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []batch.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return items, nil
}

// ListBySupplier returns the batches of one supplier.
func (r *BatchRepo) ListBySupplier(ctx context.Context, supplierID id.ID) ([]batch.Batch, error) {
	return r.list(ctx, r.listQuery(&supplierID))
}

// ListAll returns every batch.
func (r *BatchRepo) ListAll(ctx context.Context) ([]batch.Batch, error) {
	return r.list(ctx, r.listQuery(nil))
}

func (r *BatchRepo) insertQuery(b *batch.Batch) squirrel.InsertBuilder {
	return r.builder().
		Insert(batchTable).
		SetMap(postgres.FilterColumns(postgres.StructToMap(b), r.cols))
}

// Create inserts a batch after validating it.
func (r *BatchRepo) Create(ctx context.Context, b *batch.Batch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}

	sql, args, err := r.insertQuery(b).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// CreateMany validates and bulk-loads batches with COPY. Requires a
// transaction in ctx.
func (r *BatchRepo) CreateMany(ctx context.Context, batches []batch.Batch) (int64, error) {
	maps := make([]map[string]any, len(batches))
	for i := range batches {
		if err := batches[i].Validate(ctx); err != nil {
			return 0, err
		}
		maps[i] = postgres.StructToMap(&batches[i])
	}

	return postgres.NewBulkInserter(r.txm).
		CopyFromSlice(ctx, batchTable, r.cols, postgres.RowsFromMaps(r.cols, maps))
}
