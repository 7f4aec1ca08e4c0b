package procurement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"supplyscope/internal/core/id"
	"supplyscope/internal/core/tx"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/domain/catalogs/product"
	"supplyscope/internal/domain/catalogs/supplier"
	"supplyscope/pkg/logger"
)

var tracer = otel.Tracer("supplyscope/procurement")

// Report names used for logging and metrics.
const (
	ReportActiveOrders  = "active_orders"
	ReportTopPerformers = "top_performers"
)

// Recorder receives report computation measurements.
type Recorder interface {
	ObserveReport(report string, elapsed time.Duration, items, failures int, unavailable bool)
}

// Config bundles scoring and ranking parameters.
type Config struct {
	Scoring ScoringConfig `mapstructure:"scoring"`
	Report  ReportConfig  `mapstructure:"report"`
}

// DefaultConfig returns production parameters.
func DefaultConfig() Config {
	return Config{
		Scoring: DefaultScoringConfig(),
		Report:  DefaultReportConfig(),
	}
}

// Failure describes a supplier skipped by a cross-supplier report.
type Failure struct {
	SupplierID   id.ID  `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	Reason       string `json:"reason"`
}

// ActiveOrdersResult is the in-flight orders view. When source data could not
// be loaded Unavailable is set and Orders is empty.
type ActiveOrdersResult struct {
	Orders      []Order   `json:"orders"`
	Unavailable bool      `json:"unavailable"`
	Error       string    `json:"error,omitempty"`
	Failures    []Failure `json:"failures,omitempty"`
}

// TopPerformersResult is the ranked supplier view, with the same failure
// semantics as ActiveOrdersResult.
type TopPerformersResult struct {
	Performers  []RankedPerformance `json:"performers"`
	Unavailable bool                `json:"unavailable"`
	Error       string              `json:"error,omitempty"`
	Failures    []Failure           `json:"failures,omitempty"`
}

// Service exposes order reconstruction, supplier scoring and cross-supplier
// reports on top of the supplier, batch and product stores.
type Service struct {
	suppliers supplier.Repository
	batches   batch.Repository
	products  product.Repository
	txm       tx.ReadOnlyManager
	cfg       Config

	now      func() time.Time
	recorder Recorder
	log      *logger.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the reference time used for scoring.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.WithComponent("procurement") }
}

// NewService creates a new procurement service.
func NewService(
	suppliers supplier.Repository,
	batches batch.Repository,
	products product.Repository,
	txm tx.ReadOnlyManager,
	cfg Config,
	opts ...Option,
) *Service {
	s := &Service{
		suppliers: suppliers,
		batches:   batches,
		products:  products,
		txm:       txm,
		cfg:       cfg,
		now:       time.Now,
		log:       logger.Default().WithComponent("procurement"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReconstructOrders returns the synthetic purchase orders of one supplier.
func (s *Service) ReconstructOrders(ctx context.Context, supplierID id.ID) ([]Order, error) {
	ctx, span := tracer.Start(ctx, "procurement.ReconstructOrders")
	defer span.End()
	span.SetAttributes(attribute.String("supplier.id", supplierID.String()))

	var orders []Order
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		if _, err := s.suppliers.GetByID(ctx, supplierID); err != nil {
			return err
		}
		batches, err := s.batches.ListBySupplier(ctx, supplierID)
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		orders, err = ReconstructOrders(supplierID, batches)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return orders, nil
}

// ScoreSupplier returns the performance scorecard of one supplier.
func (s *Service) ScoreSupplier(ctx context.Context, supplierID id.ID) (*Performance, error) {
	ctx, span := tracer.Start(ctx, "procurement.ScoreSupplier")
	defer span.End()
	span.SetAttributes(attribute.String("supplier.id", supplierID.String()))

	var perf Performance
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		sup, err := s.suppliers.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		batches, err := s.batches.ListBySupplier(ctx, supplierID)
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		orders, err := ReconstructOrders(supplierID, batches)
		if err != nil {
			return err
		}

		perf = BuildPerformance(sup, orders, nil, s.now(), s.cfg.Scoring)
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	LabelProducts(perf.TopProducts, s.productNames(ctx, volumeIDs(perf.TopProducts)))

	s.log.WithContext(ctx).Debugw("supplier scored",
		"supplier_id", supplierID,
		"rating", perf.RatingLabel(),
		"completed_orders", perf.CompletedOrders,
	)
	return &perf, nil
}

// GetActiveOrders returns every supplier's in-flight orders, newest first.
// Soft-deleted suppliers are included. It never fails: unavailable data and
// per-supplier problems are reported in the result.
func (s *Service) GetActiveOrders(ctx context.Context) *ActiveOrdersResult {
	ctx, span := tracer.Start(ctx, "procurement.GetActiveOrders")
	defer span.End()
	start := time.Now()

	result := &ActiveOrdersResult{Orders: []Order{}}
	defer func() {
		s.observe(ReportActiveOrders, start, len(result.Orders), len(result.Failures), result.Unavailable)
	}()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.log.WithContext(ctx).Warnw("active orders unavailable", "error", err)
		result.Unavailable = true
		result.Error = err.Error()
		return result
	}

	var all []Order
	for i := range snap.suppliers {
		sup := &snap.suppliers[i]
		orders, err := ReconstructOrders(sup.ID, snap.batchesBySupplier[sup.ID])
		if err != nil {
			result.Failures = append(result.Failures, s.failure(ctx, sup, err))
			continue
		}
		all = append(all, orders...)
	}

	result.Orders = ActiveOrders(all)
	return result
}

// GetTopPerformers ranks suppliers by rating and purchased value. Suppliers
// that are soft-deleted, have no batches, or have too few completed orders are
// left out.
func (s *Service) GetTopPerformers(ctx context.Context) *TopPerformersResult {
	ctx, span := tracer.Start(ctx, "procurement.GetTopPerformers")
	defer span.End()
	start := time.Now()

	result := &TopPerformersResult{Performers: []RankedPerformance{}}
	defer func() {
		s.observe(ReportTopPerformers, start, len(result.Performers), len(result.Failures), result.Unavailable)
	}()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.log.WithContext(ctx).Warnw("top performers unavailable", "error", err)
		result.Unavailable = true
		result.Error = err.Error()
		return result
	}

	now := s.now()
	perfs := make([]Performance, 0, len(snap.suppliers))
	for i := range snap.suppliers {
		sup := &snap.suppliers[i]
		batches := snap.batchesBySupplier[sup.ID]
		if sup.IsDeleted() || len(batches) == 0 {
			continue
		}
		orders, err := ReconstructOrders(sup.ID, batches)
		if err != nil {
			result.Failures = append(result.Failures, s.failure(ctx, sup, err))
			continue
		}
		perfs = append(perfs, BuildPerformance(sup, orders, nil, now, s.cfg.Scoring))
	}

	ranked := TopPerformers(perfs, s.cfg.Report)
	s.labelTopProducts(ctx, ranked)

	result.Performers = ranked
	return result
}

// snapshot is one consistent read of suppliers and their batches.
type snapshot struct {
	suppliers         []supplier.Supplier
	batchesBySupplier map[id.ID][]batch.Batch
}

// loadSnapshot fetches all suppliers, soft-deleted ones included, and all
// batches concurrently. Batches of unknown suppliers are dropped.
func (s *Service) loadSnapshot(ctx context.Context) (*snapshot, error) {
	var (
		suppliers []supplier.Supplier
		batches   []batch.Batch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suppliers, err = s.suppliers.List(gctx, true)
		if err != nil {
			return fmt.Errorf("list suppliers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		batches, err = s.batches.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[id.ID]struct{}, len(suppliers))
	for _, sup := range suppliers {
		known[sup.ID] = struct{}{}
	}
	sort.SliceStable(suppliers, func(i, j int) bool {
		if suppliers[i].Name != suppliers[j].Name {
			return suppliers[i].Name < suppliers[j].Name
		}
		return id.Less(suppliers[i].ID, suppliers[j].ID)
	})

	bySupplier := make(map[id.ID][]batch.Batch, len(suppliers))
	for _, b := range batches {
		if _, ok := known[b.SupplierID]; !ok {
			continue
		}
		bySupplier[b.SupplierID] = append(bySupplier[b.SupplierID], b)
	}

	return &snapshot{suppliers: suppliers, batchesBySupplier: bySupplier}, nil
}

// labelTopProducts resolves product names for the ranked suppliers. A failed
// lookup leaves the products labelled as unknown rather than failing the report.
func (s *Service) labelTopProducts(ctx context.Context, ranked []RankedPerformance) {
	seen := make(map[id.ID]struct{})
	var ids []id.ID
	for _, r := range ranked {
		for _, p := range r.TopProducts {
			if _, ok := seen[p.ProductID]; !ok {
				seen[p.ProductID] = struct{}{}
				ids = append(ids, p.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return
	}

	names := s.productNames(ctx, ids)
	for i := range ranked {
		LabelProducts(ranked[i].TopProducts, names)
	}
}

// productNames looks up product names. A failed lookup is logged and yields
// nil, so callers label the products as unknown.
func (s *Service) productNames(ctx context.Context, ids []id.ID) map[id.ID]string {
	if len(ids) == 0 {
		return nil
	}
	names, err := s.products.NamesByIDs(ctx, ids)
	if err != nil {
		s.log.WithContext(ctx).Warnw("product name lookup failed", "error", err)
		return nil
	}
	return names
}

func (s *Service) failure(ctx context.Context, sup *supplier.Supplier, err error) Failure {
	s.log.WithContext(ctx).Warnw("supplier skipped",
		"supplier_id", sup.ID,
		"supplier_name", sup.Name,
		"error", err,
	)
	return Failure{SupplierID: sup.ID, SupplierName: sup.Name, Reason: err.Error()}
}

func (s *Service) observe(report string, start time.Time, items, failures int, unavailable bool) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveReport(report, time.Since(start), items, failures, unavailable)
}

func volumeIDs(volumes []ProductVolume) []id.ID {
	ids := make([]id.ID, 0, len(volumes))
	for _, v := range volumes {
		ids = append(ids, v.ProductID)
	}
	return ids
}
