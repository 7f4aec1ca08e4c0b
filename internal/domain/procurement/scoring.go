package procurement

import (
	"fmt"
	"math"
	"sort"
	"time"

	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/catalogs/supplier"
)

const (
	day         = 24 * time.Hour
	maxRating   = 5.0
	maxTopItems = 3

	// UnknownProductName labels products missing from the catalog.
	UnknownProductName = "Unknown product"
	// NotRatable is the display value of a missing rating.
	NotRatable = "N/A"
)

// ScoringConfig holds the weights and saturating benchmarks of the supplier
// rating. Weights sum to 1.
type ScoringConfig struct {
	OnTimeWeight      float64 `mapstructure:"on_time_weight"`
	FrequencyWeight   float64 `mapstructure:"frequency_weight"`
	ValueWeight       float64 `mapstructure:"value_weight"`
	ConsistencyWeight float64 `mapstructure:"consistency_weight"`

	// Deliveries up to GracePeriodDays late earn GraceCredit instead of 1.
	GracePeriodDays int     `mapstructure:"grace_period_days"`
	GraceCredit     float64 `mapstructure:"grace_credit"`

	// Orders per month at which the frequency factor saturates.
	OrdersPerMonthBenchmark float64 `mapstructure:"orders_per_month_benchmark"`
	DaysPerMonth            float64 `mapstructure:"days_per_month"`

	// Average received order value at which the value factor saturates.
	OrderValueBenchmark float64 `mapstructure:"order_value_benchmark"`

	// Below MinConsistencyDates distinct order dates consistency is NeutralConsistency.
	MinConsistencyDates int     `mapstructure:"min_consistency_dates"`
	NeutralConsistency  float64 `mapstructure:"neutral_consistency"`
}

// DefaultScoringConfig returns the production weights and benchmarks.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		OnTimeWeight:            0.40,
		FrequencyWeight:         0.25,
		ValueWeight:             0.20,
		ConsistencyWeight:       0.15,
		GracePeriodDays:         3,
		GraceCredit:             0.7,
		OrdersPerMonthBenchmark: 2,
		DaysPerMonth:            30,
		OrderValueBenchmark:     10000,
		MinConsistencyDates:     3,
		NeutralConsistency:      50,
	}
}

// Factors are the rating and its four intermediate percentages.
// Rating is nil when no completed order carries both delivery dates.
type Factors struct {
	Rating             *float64 `json:"rating"`
	OnTimeDeliveryRate float64  `json:"onTimeDeliveryRate"`
	FrequencyScore     float64  `json:"frequencyScore"`
	ValueScore         float64  `json:"valueScore"`
	ConsistencyScore   float64  `json:"consistencyScore"`
}

// ProductVolume is a product's received quantity from one supplier.
type ProductVolume struct {
	ProductID   id.ID  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// Performance is the derived scorecard of a supplier.
type Performance struct {
	SupplierID   id.ID  `json:"supplierId"`
	SupplierName string `json:"supplierName"`

	Factors

	OnTimeDeliveryPercentage int `json:"onTimeDeliveryPercentage"`

	CompletedOrders   int             `json:"completedOrders"`
	TotalOrders       int             `json:"totalOrders"`
	TotalValue        types.Money     `json:"totalValue"`
	AverageOrderValue types.Money     `json:"averageOrderValue"`
	LastOrderDate     *time.Time      `json:"lastOrderDate,omitempty"`
	TopProducts       []ProductVolume `json:"topProducts"`
}

// Ratable reports whether a rating could be computed.
func (p *Performance) Ratable() bool {
	return p.Rating != nil
}

// RatingLabel formats the rating for display, NotRatable when absent.
func (p *Performance) RatingLabel() string {
	if p.Rating == nil {
		return NotRatable
	}
	return fmt.Sprintf("%.1f", *p.Rating)
}

// ratedOrders returns the completed orders that carry both an expected and a
// delivered date.
func ratedOrders(orders []Order) []Order {
	var rated []Order
	for _, o := range orders {
		if o.Status == StatusReceived && o.ExpectedDeliveryDate != nil && o.DeliveredDate != nil {
			rated = append(rated, o)
		}
	}
	return rated
}

// DelayDays is the delivery delay rounded up to whole days; negative when early.
func DelayDays(expected, delivered time.Time) int {
	return int(math.Ceil(float64(delivered.Sub(expected)) / float64(day)))
}

// DeliveryCredit scores one delivery: 1 on time or early, GraceCredit within
// the grace period, 0 beyond it.
func DeliveryCredit(delayDays int, cfg ScoringConfig) float64 {
	switch {
	case delayDays <= 0:
		return 1
	case delayDays <= cfg.GracePeriodDays:
		return cfg.GraceCredit
	default:
		return 0
	}
}

func onTimeRate(rated []Order, cfg ScoringConfig) float64 {
	if len(rated) == 0 {
		return 0
	}
	var credit float64
	for _, o := range rated {
		credit += DeliveryCredit(DelayDays(*o.ExpectedDeliveryDate, *o.DeliveredDate), cfg)
	}
	return credit / float64(len(rated)) * 100
}

// OnTimeDeliveryPercentage is the standalone on-time metric, rounded to the
// nearest integer. 0 when no order qualifies.
func OnTimeDeliveryPercentage(orders []Order, cfg ScoringConfig) int {
	return int(math.Round(onTimeRate(ratedOrders(orders), cfg)))
}

func frequencyScore(totalOrders int, supplierCreatedAt, now time.Time, cfg ScoringConfig) float64 {
	daysActive := math.Max(1, math.Ceil(float64(now.Sub(supplierCreatedAt))/float64(day)))
	ordersPerMonth := float64(totalOrders) / (daysActive / cfg.DaysPerMonth)
	return math.Min(ordersPerMonth/cfg.OrdersPerMonthBenchmark, 1) * 100
}

func valueScore(rated []Order, cfg ScoringConfig) float64 {
	total := types.Zero()
	for _, o := range rated {
		total = total.Add(o.TotalCost)
	}
	avg := types.Float(total) / float64(len(rated))
	return math.Min(avg/cfg.OrderValueBenchmark*100, 100)
}

func consistencyScore(orders []Order, cfg ScoringConfig) float64 {
	seen := make(map[string]struct{}, len(orders))
	days := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		d := o.OrderDate.UTC().Truncate(day)
		k := d.Format(dateKeyLayout)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		days = append(days, d)
	}
	if len(days) < cfg.MinConsistencyDates {
		return cfg.NeutralConsistency
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	gaps := make([]float64, 0, len(days)-1)
	var sum float64
	for i := 1; i < len(days); i++ {
		g := days[i].Sub(days[i-1]).Hours() / 24
		gaps = append(gaps, g)
		sum += g
	}
	mean := sum / float64(len(gaps))
	if mean == 0 {
		return cfg.NeutralConsistency
	}

	var sq float64
	for _, g := range gaps {
		sq += (g - mean) * (g - mean)
	}
	stdDev := math.Sqrt(sq / float64(len(gaps)))

	return clamp(100-(stdDev/mean)*100, 0, 100)
}

// ComputeRating derives the weighted 0-5 rating of a supplier from all its
// orders. now is the reference time for the supplier's activity window.
func ComputeRating(orders []Order, supplierCreatedAt, now time.Time, cfg ScoringConfig) Factors {
	rated := ratedOrders(orders)
	if len(rated) == 0 {
		return Factors{}
	}

	f := Factors{
		OnTimeDeliveryRate: onTimeRate(rated, cfg),
		FrequencyScore:     frequencyScore(len(orders), supplierCreatedAt, now, cfg),
		ValueScore:         valueScore(rated, cfg),
		ConsistencyScore:   consistencyScore(orders, cfg),
	}

	weighted := f.OnTimeDeliveryRate*cfg.OnTimeWeight +
		f.FrequencyScore*cfg.FrequencyWeight +
		f.ValueScore*cfg.ValueWeight +
		f.ConsistencyScore*cfg.ConsistencyWeight

	rating := math.Round(clamp(weighted/100*maxRating, 0, maxRating)*10) / 10
	f.Rating = &rating
	return f
}

// BuildPerformance assembles the scorecard of s. productNames may be nil;
// unknown products are labelled UnknownProductName.
func BuildPerformance(s *supplier.Supplier, orders []Order, productNames map[id.ID]string, now time.Time, cfg ScoringConfig) Performance {
	p := Performance{
		SupplierID:               s.ID,
		SupplierName:             s.Name,
		Factors:                  ComputeRating(orders, s.CreatedAt, now, cfg),
		OnTimeDeliveryPercentage: OnTimeDeliveryPercentage(orders, cfg),
		TotalOrders:              len(orders),
		TotalValue:               types.Zero(),
		AverageOrderValue:        types.Zero(),
	}

	for i := range orders {
		o := &orders[i]
		if o.IsCompleted() {
			p.CompletedOrders++
		}
		p.TotalValue = p.TotalValue.Add(o.TotalCost)
		if p.LastOrderDate == nil || o.OrderDate.After(*p.LastOrderDate) {
			last := o.OrderDate
			p.LastOrderDate = &last
		}
	}
	if p.TotalOrders > 0 {
		p.AverageOrderValue = p.TotalValue.Div(types.NewMoneyFromInt(int64(p.TotalOrders)))
	}

	p.TopProducts = topProducts(orders, productNames)
	return p
}

func topProducts(orders []Order, names map[id.ID]string) []ProductVolume {
	qty := make(map[id.ID]int)
	for _, o := range orders {
		for _, b := range o.Batches {
			qty[b.ProductID] += b.QuantityReceived
		}
	}

	volumes := make([]ProductVolume, 0, len(qty))
	for pid, q := range qty {
		volumes = append(volumes, ProductVolume{ProductID: pid, Quantity: q})
	}
	sort.Slice(volumes, func(i, j int) bool {
		if volumes[i].Quantity != volumes[j].Quantity {
			return volumes[i].Quantity > volumes[j].Quantity
		}
		return id.Less(volumes[i].ProductID, volumes[j].ProductID)
	})
	if len(volumes) > maxTopItems {
		volumes = volumes[:maxTopItems]
	}

	LabelProducts(volumes, names)
	return volumes
}

// LabelProducts fills product names in place.
func LabelProducts(volumes []ProductVolume, names map[id.ID]string) {
	for i := range volumes {
		if name, ok := names[volumes[i].ProductID]; ok {
			volumes[i].ProductName = name
		} else {
			volumes[i].ProductName = UnknownProductName
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
