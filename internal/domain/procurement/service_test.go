package procurement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyscope/internal/core/apperror"
	"supplyscope/internal/core/id"
	"supplyscope/internal/core/tx"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/domain/catalogs/product"
	"supplyscope/internal/domain/catalogs/supplier"
	"supplyscope/pkg/logger"
)

type fakeSuppliers struct {
	items []supplier.Supplier
	err   error
}

func (f *fakeSuppliers) GetByID(ctx context.Context, sid id.ID) (*supplier.Supplier, error) {
	for i := range f.items {
		if f.items[i].ID == sid {
			s := f.items[i]
			return &s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", sid)
}

func (f *fakeSuppliers) List(ctx context.Context, includeDeleted bool) ([]supplier.Supplier, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []supplier.Supplier
	for _, s := range f.items {
		if includeDeleted || !s.IsDeleted() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSuppliers) Create(ctx context.Context, s *supplier.Supplier) error {
	f.items = append(f.items, *s)
	return nil
}

type fakeBatches struct {
	items []batch.Batch
	err   error
}

func (f *fakeBatches) ListBySupplier(ctx context.Context, sid id.ID) ([]batch.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []batch.Batch
	for _, b := range f.items {
		if b.SupplierID == sid {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBatches) ListAll(ctx context.Context) ([]batch.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]batch.Batch(nil), f.items...), nil
}

type fakeProducts struct {
	names map[id.ID]string
	err   error
}

func (f *fakeProducts) NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[id.ID]string)
	for _, pid := range ids {
		if n, ok := f.names[pid]; ok {
			out[pid] = n
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, p *product.Product) error { return nil }

type recorded struct {
	report      string
	items       int
	failures    int
	unavailable bool
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *fakeRecorder) ObserveReport(report string, elapsed time.Duration, items, failures int, unavailable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{report, items, failures, unavailable})
}

type fixture struct {
	suppliers *fakeSuppliers
	batches   *fakeBatches
	products  *fakeProducts
	recorder  *fakeRecorder
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		suppliers: &fakeSuppliers{},
		batches:   &fakeBatches{},
		products:  &fakeProducts{names: map[id.ID]string{}},
		recorder:  &fakeRecorder{},
	}
	f.svc = NewService(f.suppliers, f.batches, f.products, tx.Passthrough{}, DefaultConfig(),
		WithClock(func() time.Time { return *date("2024-06-30") }),
		WithRecorder(f.recorder),
		WithLogger(logger.NewNop()),
	)
	return f
}

func (f *fixture) addSupplier(name, createdDay string) *supplier.Supplier {
	s := supplier.NewSupplier(name)
	s.CreatedAt = *date(createdDay)
	f.suppliers.items = append(f.suppliers.items, *s)
	return s
}

func (f *fixture) add(bs ...batch.Batch) {
	f.batches.items = append(f.batches.items, bs...)
}

// addCompleted adds n on-time received orders one month apart.
func (f *fixture) addCompleted(sid id.ID, n int, productID id.ID) {
	start := *date("2024-01-05")
	for i := 0; i < n; i++ {
		c := start.AddDate(0, i, 0)
		d := c.AddDate(0, 0, 3)
		b := newBatch(sid, batch.StatusActive, cost("100", 40), ofProduct(productID))
		b.CreatedAt, b.ExpectedDeliveryDate, b.DateReceived = &c, &d, &d
		f.add(b)
	}
}

func TestService_ReconstructOrders(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("Acme", "2023-12-01")
	f.add(
		newBatch(s.ID, batch.StatusActive, received("2024-01-05")),
		newBatch(s.ID, batch.StatusActive, received("2024-01-05")),
		newBatch(s.ID, batch.StatusPending, expected("2024-02-10")),
	)
	other := f.addSupplier("Other", "2023-12-01")
	f.add(newBatch(other.ID, batch.StatusActive, received("2024-01-05")))

	ctx := context.Background()
	orders, err := f.svc.ReconstructOrders(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Batches, 2)

	again, err := f.svc.ReconstructOrders(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, orders, again)
}

func TestService_ReconstructOrders_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReconstructOrders(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))

	s := f.addSupplier("Broken", "2023-12-01")
	b := newBatch(s.ID, batch.StatusActive)
	b.CreatedAt = nil
	f.add(b)

	_, err = f.svc.ReconstructOrders(ctx, s.ID)
	assert.True(t, apperror.IsDataIntegrity(err))
}

func TestService_ScoreSupplier(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("Acme", "2024-01-01")
	apples := id.New()
	f.products.names[apples] = "Apples"
	f.addCompleted(s.ID, 3, apples)

	perf, err := f.svc.ScoreSupplier(context.Background(), s.ID)
	require.NoError(t, err)

	require.NotNil(t, perf.Rating)
	assert.Equal(t, 3, perf.CompletedOrders)
	assert.Equal(t, 100, perf.OnTimeDeliveryPercentage)
	require.Len(t, perf.TopProducts, 1)
	assert.Equal(t, "Apples", perf.TopProducts[0].ProductName)
	assert.Equal(t, 120, perf.TopProducts[0].Quantity)
}

func TestService_ScoreSupplier_Unratable(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("Slow", "2024-01-01")
	f.add(newBatch(s.ID, batch.StatusPending, expected("2024-07-01")))

	perf, err := f.svc.ScoreSupplier(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, perf.Rating)
	assert.Equal(t, NotRatable, perf.RatingLabel())
}

func TestService_EndToEndExample(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("S", "2023-12-01")
	f.add(
		newBatch(s.ID, batch.StatusActive, received("2024-01-05")),
		newBatch(s.ID, batch.StatusActive, received("2024-01-05")),
		newBatch(s.ID, batch.StatusPending, expected("2024-02-10"), created("2024-02-01")),
		newBatch(s.ID, batch.StatusInactive, received("2024-03-15")),
	)
	ctx := context.Background()

	top := f.svc.GetTopPerformers(ctx)
	assert.False(t, top.Unavailable)
	assert.Empty(t, top.Performers)

	active := f.svc.GetActiveOrders(ctx)
	assert.False(t, active.Unavailable)
	require.Len(t, active.Orders, 1)
	assert.Equal(t, "2024-02-10", active.Orders[0].DateKey)
	assert.Equal(t, s.ID, active.Orders[0].SupplierID)
}

func TestService_GetActiveOrders_IsolatesBrokenSupplier(t *testing.T) {
	f := newFixture(t)
	good := f.addSupplier("Good", "2023-12-01")
	bad := f.addSupplier("Bad", "2023-12-01")

	f.add(newBatch(good.ID, batch.StatusPending, expected("2024-07-01")))
	broken := newBatch(bad.ID, batch.StatusPending)
	broken.CreatedAt = nil
	f.add(broken, newBatch(bad.ID, batch.StatusPending, expected("2024-07-02")))

	res := f.svc.GetActiveOrders(context.Background())

	assert.False(t, res.Unavailable)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, good.ID, res.Orders[0].SupplierID)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, bad.ID, res.Failures[0].SupplierID)
	assert.Equal(t, "Bad", res.Failures[0].SupplierName)

	require.Len(t, f.recorder.calls, 1)
	assert.Equal(t, recorded{ReportActiveOrders, 1, 1, false}, f.recorder.calls[0])
}

func TestService_Reports_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.addSupplier("Acme", "2023-12-01")
	f.batches.err = errors.New("connection refused")
	ctx := context.Background()

	active := f.svc.GetActiveOrders(ctx)
	assert.True(t, active.Unavailable)
	assert.Contains(t, active.Error, "connection refused")
	assert.NotNil(t, active.Orders)
	assert.Empty(t, active.Orders)

	f.batches.err = nil
	f.suppliers.err = errors.New("timeout")
	top := f.svc.GetTopPerformers(ctx)
	assert.True(t, top.Unavailable)
	assert.Empty(t, top.Performers)
}

func TestService_GetTopPerformers(t *testing.T) {
	f := newFixture(t)
	apples, pears := id.New(), id.New()
	f.products.names[apples] = "Apples"

	steady := f.addSupplier("Steady", "2024-01-01")
	f.addCompleted(steady.ID, 4, apples)

	twoOrders := f.addSupplier("Two Orders", "2024-01-01")
	f.addCompleted(twoOrders.ID, 2, apples)

	gone := f.addSupplier("Gone", "2024-01-01")
	gone.MarkDeleted()
	f.suppliers.items[len(f.suppliers.items)-1] = *gone
	f.addCompleted(gone.ID, 5, apples)

	f.addSupplier("No Batches", "2024-01-01")

	other := f.addSupplier("Other", "2024-01-01")
	f.addCompleted(other.ID, 3, pears)

	res := f.svc.GetTopPerformers(context.Background())

	assert.False(t, res.Unavailable)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Performers, 2)

	names := []string{res.Performers[0].SupplierName, res.Performers[1].SupplierName}
	assert.ElementsMatch(t, []string{"Steady", "Other"}, names)
	assert.GreaterOrEqual(t, res.Performers[0].CompositeScore, res.Performers[1].CompositeScore)

	for _, p := range res.Performers {
		require.Len(t, p.TopProducts, 1)
		if p.SupplierName == "Steady" {
			assert.Equal(t, "Apples", p.TopProducts[0].ProductName)
		} else {
			assert.Equal(t, UnknownProductName, p.TopProducts[0].ProductName)
		}
	}
}

func TestService_GetTopPerformers_NameLookupFailure(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("Steady", "2024-01-01")
	apples := id.New()
	f.products.names[apples] = "Apples"
	f.products.err = errors.New("products table locked")
	f.addCompleted(s.ID, 3, apples)

	res := f.svc.GetTopPerformers(context.Background())

	require.Len(t, res.Performers, 1)
	assert.Equal(t, UnknownProductName, res.Performers[0].TopProducts[0].ProductName)
}

func TestService_ScoreSupplier_NameLookupFailure(t *testing.T) {
	f := newFixture(t)
	s := f.addSupplier("Steady", "2024-01-01")
	apples := id.New()
	f.products.names[apples] = "Apples"
	f.products.err = errors.New("catalog down")
	f.addCompleted(s.ID, 3, apples)

	perf, err := f.svc.ScoreSupplier(context.Background(), s.ID)
	require.NoError(t, err)

	require.NotNil(t, perf.Rating)
	assert.Equal(t, 3, perf.CompletedOrders)
	require.Len(t, perf.TopProducts, 1)
	assert.Equal(t, UnknownProductName, perf.TopProducts[0].ProductName)
	assert.Equal(t, 120, perf.TopProducts[0].Quantity)
}

func TestService_GetActiveOrders_IncludesDeletedSuppliers(t *testing.T) {
	f := newFixture(t)
	live := f.addSupplier("Live", "2023-12-01")
	gone := f.addSupplier("Gone", "2023-12-01")
	gone.MarkDeleted()
	f.suppliers.items[len(f.suppliers.items)-1] = *gone

	f.add(
		newBatch(live.ID, batch.StatusPending, expected("2024-07-01"), created("2024-06-20")),
		newBatch(gone.ID, batch.StatusPending, expected("2024-07-05"), created("2024-06-25")),
	)
	f.addCompleted(gone.ID, 3, id.New())

	active := f.svc.GetActiveOrders(context.Background())
	require.Len(t, active.Orders, 2)
	assert.Equal(t, gone.ID, active.Orders[0].SupplierID)
	assert.Equal(t, live.ID, active.Orders[1].SupplierID)

	top := f.svc.GetTopPerformers(context.Background())
	assert.Empty(t, top.Performers)
}
