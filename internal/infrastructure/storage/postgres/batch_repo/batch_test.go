package batch_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/batch"
)

const selectCols = "id, supplier_id, product_id, quantity_received, quantity_remaining, cost_price, " +
	"status, created_at, expected_delivery_date, date_received, notes"

func TestListQuery(t *testing.T) {
	repo := NewBatchRepo(nil)

	tests := []struct {
		name     string
		supplier *id.ID
		wantSQL  string
		wantArgs int
	}{
		{
			name:    "all",
			wantSQL: "SELECT " + selectCols + " FROM inv_batches ORDER BY created_at NULLS FIRST, id",
		},
		{
			name:     "by supplier",
			supplier: ptr(id.New()),
			wantSQL:  "SELECT " + selectCols + " FROM inv_batches WHERE supplier_id = $1 ORDER BY created_at NULLS FIRST, id",
			wantArgs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.supplier).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestInsertQuery(t *testing.T) {
	repo := NewBatchRepo(nil)
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	b := &batch.Batch{
		ID:         id.New(),
		SupplierID: id.New(),
		ProductID:  id.New(),
		Status:     batch.StatusPending,
		CreatedAt:  &created,
		Notes:      "Receipt: R-1",
	}

	sql, args, err := repo.insertQuery(b).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO inv_batches")
	assert.Contains(t, sql, "$11")
	assert.Len(t, args, 11)
	assert.Contains(t, args, "Receipt: R-1")
}

func ptr[T any](v T) *T { return &v }
