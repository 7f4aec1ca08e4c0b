// Package procurement reconstructs purchase orders from batch records and rates
// suppliers on them. There is no stored order entity: an order is the set of a
// supplier's batches that share a calendar day.
package procurement

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"supplyscope/internal/core/apperror"
	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/batch"
)

// OrderStatus is the aggregate status of a reconstructed order.
type OrderStatus string

const (
	StatusPendingDelivery   OrderStatus = "Pending Delivery"
	StatusReceived          OrderStatus = "Received"
	StatusDepleted          OrderStatus = "Depleted"
	StatusPartiallyReceived OrderStatus = "Partially Received"
	StatusMixed             OrderStatus = "Mixed Status"
)

// IsActive reports whether the order is still in flight.
func (s OrderStatus) IsActive() bool {
	return s == StatusPendingDelivery || s == StatusPartiallyReceived
}

const dateKeyLayout = "2006-01-02"

var receiptRE = regexp.MustCompile(`Receipt:\s*([^|]+)`)

// Order is a purchase order inferred from batches. It is recomputed on every
// read and never stored.
type Order struct {
	SupplierID id.ID         `json:"supplierId"`
	DateKey    string        `json:"dateKey"`
	ReceiptID  string        `json:"receiptId"`
	Batches    []batch.Batch `json:"batches"`
	Status     OrderStatus   `json:"status"`
	TotalCost  types.Money   `json:"totalCost"`

	// OrderDate is the earliest createdAt in the group.
	OrderDate time.Time `json:"orderDate"`

	// Taken from the first batch of the group.
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate,omitempty"`
	DeliveredDate        *time.Time `json:"deliveredDate,omitempty"`

	ItemCount     int `json:"itemCount"`
	TotalQuantity int `json:"totalQuantity"`
}

// IsCompleted reports whether the order counts as a completed order.
func (o *Order) IsCompleted() bool {
	return o.Status == StatusReceived
}

// DateKey returns the calendar day a batch is bucketed under.
// Priority: dateReceived, then expectedDeliveryDate, then createdAt, each
// truncated to the UTC day. A batch with none of them is a data integrity
// violation.
func DateKey(b *batch.Batch) (string, error) {
	switch {
	case b.DateReceived != nil:
		return formatDay(*b.DateReceived), nil
	case b.ExpectedDeliveryDate != nil:
		return formatDay(*b.ExpectedDeliveryDate), nil
	case b.CreatedAt != nil:
		return formatDay(*b.CreatedAt), nil
	}
	return "", apperror.NewDataIntegrity("batch", b.ID.String(),
		"no date received, expected delivery date or created at to group by")
}

func formatDay(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// GroupBatchesByDate buckets batches by DateKey. Batches keep their input
// order inside each bucket.
func GroupBatchesByDate(batches []batch.Batch) (map[string][]batch.Batch, error) {
	groups := make(map[string][]batch.Batch)
	for i := range batches {
		key, err := DateKey(&batches[i])
		if err != nil {
			return nil, err
		}
		groups[key] = append(groups[key], batches[i])
	}
	return groups, nil
}

// DeriveOrderStatus evaluates the group predicates in fixed order; the first
// match wins.
func DeriveOrderStatus(group []batch.Batch) OrderStatus {
	var pending, active, inactive int
	for _, b := range group {
		switch b.Status {
		case batch.StatusPending:
			pending++
		case batch.StatusActive:
			active++
		case batch.StatusInactive:
			inactive++
		}
	}

	n := len(group)
	switch {
	case pending == n:
		return StatusPendingDelivery
	case active == n:
		return StatusReceived
	case inactive == n:
		return StatusDepleted
	case pending > 0:
		return StatusPartiallyReceived
	default:
		return StatusMixed
	}
}

// ExtractReceiptID recovers a receipt id embedded as "Receipt: <id>" in notes.
// Without one it synthesizes SR-<dateKey without dashes>.
func ExtractReceiptID(notes, dateKey string) string {
	if m := receiptRE.FindStringSubmatch(notes); m != nil {
		if receipt := strings.TrimSpace(m[1]); receipt != "" {
			return receipt
		}
	}
	return "SR-" + strings.ReplaceAll(dateKey, "-", "")
}

// BuildOrder assembles one order from a non-empty date group.
func BuildOrder(supplierID id.ID, dateKey string, group []batch.Batch) Order {
	order := Order{
		SupplierID: supplierID,
		DateKey:    dateKey,
		Batches:    group,
		Status:     DeriveOrderStatus(group),
		TotalCost:  types.Zero(),
		ItemCount:  len(group),
	}

	var earliest *time.Time
	for i := range group {
		b := &group[i]
		order.TotalCost = order.TotalCost.Add(b.LineCost())
		order.TotalQuantity += b.QuantityReceived
		if b.CreatedAt != nil && (earliest == nil || b.CreatedAt.Before(*earliest)) {
			earliest = b.CreatedAt
		}
	}

	if earliest != nil {
		order.OrderDate = *earliest
	} else {
		// every batch was keyed by a delivery date; the key itself is the best order date
		order.OrderDate, _ = time.Parse(dateKeyLayout, dateKey)
	}

	if len(group) > 0 {
		first := group[0]
		order.ReceiptID = ExtractReceiptID(first.Notes, dateKey)
		order.ExpectedDeliveryDate = first.ExpectedDeliveryDate
		order.DeliveredDate = first.DateReceived
	} else {
		order.ReceiptID = ExtractReceiptID("", dateKey)
	}

	return order
}

// ReconstructOrders partitions one supplier's batches into orders, sorted by
// date key ascending. Identical input yields identical output.
func ReconstructOrders(supplierID id.ID, batches []batch.Batch) ([]Order, error) {
	for i := range batches {
		if batches[i].SupplierID != supplierID {
			return nil, apperror.NewDataIntegrity("batch", batches[i].ID.String(),
				"batch belongs to supplier "+batches[i].SupplierID.String())
		}
	}

	groups, err := GroupBatchesByDate(batches)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	orders := make([]Order, 0, len(keys))
	for _, k := range keys {
		orders = append(orders, BuildOrder(supplierID, k, groups[k]))
	}
	return orders, nil
}
