package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "supplyscope/internal/core/context"
	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/procurement"
	"supplyscope/pkg/logger"
)

type stubReports struct {
	calls  atomic.Int32
	active *procurement.ActiveOrdersResult
	top    *procurement.TopPerformersResult
}

func (s *stubReports) GetActiveOrders(ctx context.Context) *procurement.ActiveOrdersResult {
	s.calls.Add(1)
	return s.active
}

func (s *stubReports) GetTopPerformers(ctx context.Context) *procurement.TopPerformersResult {
	return s.top
}

func TestRefresh_Summary(t *testing.T) {
	reports := &stubReports{
		active: &procurement.ActiveOrdersResult{
			Orders:   make([]procurement.Order, 3),
			Failures: []procurement.Failure{{SupplierID: id.New(), SupplierName: "Broken"}},
		},
		top: &procurement.TopPerformersResult{
			Performers: []procurement.RankedPerformance{
				{Performance: procurement.Performance{SupplierName: "Acme"}},
				{Performance: procurement.Performance{SupplierName: "Fresh Farms"}},
			},
		},
	}

	var traced bool
	r := NewRefresher(reports, logger.NewNop(), WithPoolObserver(func(ctx context.Context) {
		traced = appctx.GetTrace(ctx) != nil
	}))

	s := r.Refresh(context.Background())

	assert.Equal(t, 3, s.ActiveOrders)
	assert.Equal(t, []string{"Acme", "Fresh Farms"}, s.TopPerformers)
	assert.Equal(t, 1, s.Failures)
	assert.False(t, s.Unavailable)
	assert.True(t, traced)
}

func TestRefresh_Unavailable(t *testing.T) {
	reports := &stubReports{
		active: &procurement.ActiveOrdersResult{Orders: []procurement.Order{}, Unavailable: true, Error: "timeout"},
		top:    &procurement.TopPerformersResult{Performers: []procurement.RankedPerformance{}},
	}

	s := NewRefresher(reports, logger.NewNop()).Refresh(context.Background())

	assert.True(t, s.Unavailable)
	assert.Zero(t, s.ActiveOrders)
	assert.Empty(t, s.TopPerformers)
}

func TestRun_StopsOnCancel(t *testing.T) {
	reports := &stubReports{
		active: &procurement.ActiveOrdersResult{Orders: []procurement.Order{}},
		top:    &procurement.TopPerformersResult{Performers: []procurement.RankedPerformance{}},
	}
	r := NewRefresher(reports, logger.NewNop(), WithInterval(time.Hour), WithRunOnStart(true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return reports.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Equal(t, int32(1), reports.calls.Load())
}
