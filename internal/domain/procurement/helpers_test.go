package procurement

import (
	"time"

	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/batch"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

type batchOpt func(*batch.Batch)

func received(d string) batchOpt { return func(b *batch.Batch) { b.DateReceived = date(d) } }
func expected(d string) batchOpt { return func(b *batch.Batch) { b.ExpectedDeliveryDate = date(d) } }
func created(d string) batchOpt  { return func(b *batch.Batch) { b.CreatedAt = date(d) } }
func notes(n string) batchOpt    { return func(b *batch.Batch) { b.Notes = n } }
func ofProduct(p id.ID) batchOpt { return func(b *batch.Batch) { b.ProductID = p } }

func cost(price string, qty int) batchOpt {
	return func(b *batch.Batch) {
		b.CostPrice = types.ValidMoney(types.MustMoney(price))
		b.QuantityReceived = qty
	}
}

func newBatch(supplierID id.ID, status batch.Status, opts ...batchOpt) batch.Batch {
	b := batch.Batch{
		ID:         id.New(),
		SupplierID: supplierID,
		ProductID:  id.New(),
		Status:     status,
		CreatedAt:  date("2024-01-01"),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func statuses(ss ...batch.Status) []batch.Batch {
	sid := id.New()
	out := make([]batch.Batch, len(ss))
	for i, s := range ss {
		out[i] = newBatch(sid, s)
	}
	return out
}
