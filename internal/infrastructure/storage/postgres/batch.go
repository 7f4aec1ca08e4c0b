package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BulkInserter loads rows through the COPY protocol. It is used for seeding,
// where row-by-row INSERTs would dominate the run time.
type BulkInserter struct {
	txManager *TxManager
}

// NewBulkInserter creates a new bulk inserter.
func NewBulkInserter(txManager *TxManager) *BulkInserter {
	return &BulkInserter{txManager: txManager}
}

// CopyFromSlice inserts rows into table. Each row must match columns.
// Requires a transaction in ctx.
func (b *BulkInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// RowsFromMaps projects column maps (as produced by StructToMap) onto columns.
func RowsFromMaps(columns []string, maps []map[string]any) [][]any {
	rows := make([][]any, len(maps))
	for i, m := range maps {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = m[col]
		}
		rows[i] = row
	}
	return rows
}
