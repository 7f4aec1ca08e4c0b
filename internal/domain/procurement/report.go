package procurement

import (
	"math"
	"sort"

	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
)

// ReportConfig controls the top performers ranking.
type ReportConfig struct {
	// Suppliers with fewer completed orders are not ranked at all.
	MinCompletedOrders int `mapstructure:"min_completed_orders"`
	Limit              int `mapstructure:"limit"`

	RatingWeight float64 `mapstructure:"rating_weight"`
	ValueWeight  float64 `mapstructure:"value_weight"`

	// Total value is scaled by ValueDivisor and capped at ValueCap before weighting.
	ValueDivisor float64 `mapstructure:"value_divisor"`
	ValueCap     float64 `mapstructure:"value_cap"`
}

// DefaultReportConfig returns the production ranking parameters.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		MinCompletedOrders: 3,
		Limit:              10,
		RatingWeight:       0.6,
		ValueWeight:        0.4,
		ValueDivisor:       100000,
		ValueCap:           5,
	}
}

// RankedPerformance is a supplier scorecard with its ranking score.
type RankedPerformance struct {
	Performance
	CompositeScore float64 `json:"compositeScore"`
}

// ActiveOrders keeps the in-flight orders, newest order date first.
func ActiveOrders(orders []Order) []Order {
	active := make([]Order, 0)
	for _, o := range orders {
		if o.Status.IsActive() {
			active = append(active, o)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		if a.SupplierID != b.SupplierID {
			return id.Less(a.SupplierID, b.SupplierID)
		}
		return a.DateKey < b.DateKey
	})
	return active
}

// IsEligible reports whether p may appear in the top performers list.
// Ineligibility is not an error; the supplier is simply left out.
func IsEligible(p *Performance, cfg ReportConfig) bool {
	return p.CompletedOrders >= cfg.MinCompletedOrders && p.Ratable()
}

// CompositeScore blends the rating with a capped total value boost.
func CompositeScore(p *Performance, cfg ReportConfig) float64 {
	if p.Rating == nil {
		return 0
	}
	value := math.Min(types.Float(p.TotalValue)/cfg.ValueDivisor, cfg.ValueCap)
	return *p.Rating*cfg.RatingWeight + value*cfg.ValueWeight
}

// TopPerformers ranks eligible suppliers by composite score, descending, and
// returns at most cfg.Limit of them.
func TopPerformers(perfs []Performance, cfg ReportConfig) []RankedPerformance {
	ranked := make([]RankedPerformance, 0, len(perfs))
	for i := range perfs {
		p := &perfs[i]
		if !IsEligible(p, cfg) {
			continue
		}
		ranked = append(ranked, RankedPerformance{
			Performance:    *p,
			CompositeScore: CompositeScore(p, cfg),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.SupplierName != b.SupplierName {
			return a.SupplierName < b.SupplierName
		}
		return id.Less(a.SupplierID, b.SupplierID)
	})

	if cfg.Limit > 0 && len(ranked) > cfg.Limit {
		ranked = ranked[:cfg.Limit]
	}
	return ranked
}
