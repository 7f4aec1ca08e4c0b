// Package batch provides the inventory Batch: one receipt of one product from one supplier.
// Batches are the only persisted trace of purchasing; orders are derived from them.
package batch

import (
	"context"
	"time"

	"supplyscope/internal/core/apperror"
	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
)

// Status is the lifecycle state of a batch.
type Status string

const (
	StatusPending  Status = "pending"  // ordered, not yet received
	StatusActive   Status = "active"   // received, stock remaining
	StatusInactive Status = "inactive" // depleted or expired
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Batch is a single inventory receipt record.
// A batch never changes supplier after creation.
type Batch struct {
	ID         id.ID `db:"id" json:"id"`
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`
	ProductID  id.ID `db:"product_id" json:"productId"`

	QuantityReceived  int `db:"quantity_received" json:"quantityReceived"`
	QuantityRemaining int `db:"quantity_remaining" json:"quantityRemaining"`

	// CostPrice is the cost per unit; absent values count as zero in totals
	CostPrice types.NullMoney `db:"cost_price" json:"costPrice"`

	Status Status `db:"status" json:"status"`

	// CreatedAt is when the order was placed. Contractually always present.
	CreatedAt            *time.Time `db:"created_at" json:"createdAt"`
	ExpectedDeliveryDate *time.Time `db:"expected_delivery_date" json:"expectedDeliveryDate,omitempty"`
	DateReceived         *time.Time `db:"date_received" json:"dateReceived,omitempty"`

	// Notes is free text; may carry "Receipt: <id>"
	Notes string `db:"notes" json:"notes"`
}

// LineCost returns costPrice × quantityReceived.
func (b *Batch) LineCost() types.Money {
	return types.LineTotal(types.OrZero(b.CostPrice), b.QuantityReceived)
}

// Validate implements entity.Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(b.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if b.QuantityReceived < 0 {
		return apperror.NewValidation("quantity received must not be negative").
			WithDetail("field", "quantityReceived")
	}
	if b.QuantityRemaining < 0 || b.QuantityRemaining > b.QuantityReceived {
		return apperror.NewValidation("quantity remaining must be between 0 and quantity received").
			WithDetail("field", "quantityRemaining")
	}
	if b.CostPrice.Valid && b.CostPrice.Decimal.IsNegative() {
		return apperror.NewValidation("cost price must not be negative").
			WithDetail("field", "costPrice")
	}
	if !b.Status.IsValid() {
		return apperror.NewValidation("invalid batch status").
			WithDetail("field", "status").
			WithDetail("value", string(b.Status))
	}
	if b.CreatedAt == nil {
		return apperror.NewValidation("created at is required").
			WithDetail("field", "createdAt")
	}
	return nil
}
