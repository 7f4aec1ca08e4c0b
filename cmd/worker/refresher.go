package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	appctx "supplyscope/internal/core/context"
	"supplyscope/internal/domain/procurement"
	"supplyscope/pkg/logger"
)

// Reports is the part of procurement.Service the worker refreshes.
type Reports interface {
	GetActiveOrders(ctx context.Context) *procurement.ActiveOrdersResult
	GetTopPerformers(ctx context.Context) *procurement.TopPerformersResult
}

// Summary is the outcome of one refresh run.
type Summary struct {
	ActiveOrders  int
	TopPerformers []string
	Failures      int
	Unavailable   bool
	Duration      time.Duration
}

// Refresher periodically recomputes both cross-supplier reports.
type Refresher struct {
	reports     Reports
	log         *logger.Logger
	interval    time.Duration
	runOnStart  bool
	observePool func(ctx context.Context)
}

// Option customizes a Refresher.
type Option func(*Refresher)

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) { r.interval = d }
}

// WithRunOnStart refreshes immediately instead of waiting for the first tick.
func WithRunOnStart(v bool) Option {
	return func(r *Refresher) { r.runOnStart = v }
}

// WithPoolObserver registers a hook run after every refresh.
func WithPoolObserver(fn func(ctx context.Context)) Option {
	return func(r *Refresher) { r.observePool = fn }
}

// NewRefresher creates a refresher with a 5 minute default interval.
func NewRefresher(reports Reports, log *logger.Logger, opts ...Option) *Refresher {
	r := &Refresher{
		reports:  reports,
		log:      log.WithComponent("worker"),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run refreshes on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if r.runOnStart {
		r.Refresh(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh computes both reports concurrently and logs a summary.
func (r *Refresher) Refresh(ctx context.Context) Summary {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	start := time.Now()

	var (
		active *procurement.ActiveOrdersResult
		top    *procurement.TopPerformersResult
	)
	var g errgroup.Group
	g.Go(func() error {
		active = r.reports.GetActiveOrders(ctx)
		return nil
	})
	g.Go(func() error {
		top = r.reports.GetTopPerformers(ctx)
		return nil
	})
	_ = g.Wait()

	s := Summary{
		ActiveOrders: len(active.Orders),
		Failures:     len(active.Failures) + len(top.Failures),
		Unavailable:  active.Unavailable || top.Unavailable,
		Duration:     time.Since(start),
	}
	for _, p := range top.Performers {
		s.TopPerformers = append(s.TopPerformers, p.SupplierName)
	}

	log := r.log.WithContext(ctx)
	if s.Unavailable {
		log.Warnw("report refresh incomplete",
			"active_orders_error", active.Error,
			"top_performers_error", top.Error,
		)
	}
	log.Infow("reports refreshed",
		"active_orders", s.ActiveOrders,
		"top_performers", s.TopPerformers,
		"supplier_failures", s.Failures,
		"unavailable", s.Unavailable,
		"duration_ms", s.Duration.Milliseconds(),
	)

	if r.observePool != nil {
		r.observePool(ctx)
	}
	return s
}
