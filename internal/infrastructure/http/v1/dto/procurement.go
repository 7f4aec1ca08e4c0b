package dto

import (
	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/domain/procurement"
)

// --- Orders ---

// BatchResponse is one batch inside a reconstructed order.
type BatchResponse struct {
	ID                   string  `json:"id"`
	ProductID            string  `json:"productId"`
	QuantityReceived     int     `json:"quantityReceived"`
	QuantityRemaining    int     `json:"quantityRemaining"`
	CostPrice            *string `json:"costPrice"`
	Status               string  `json:"status"`
	CreatedAt            *string `json:"createdAt"`
	ExpectedDeliveryDate *string `json:"expectedDeliveryDate"`
	DateReceived         *string `json:"dateReceived"`
	Notes                string  `json:"notes,omitempty"`
}

// OrderResponse is a purchase order reconstructed from batches.
type OrderResponse struct {
	SupplierID           string          `json:"supplierId"`
	DateKey              string          `json:"dateKey"`
	ReceiptID            string          `json:"receiptId"`
	Status               string          `json:"status"`
	TotalCost            string          `json:"totalCost"`
	OrderDate            string          `json:"orderDate"`
	ExpectedDeliveryDate *string         `json:"expectedDeliveryDate"`
	DeliveredDate        *string         `json:"deliveredDate"`
	ItemCount            int             `json:"itemCount"`
	TotalQuantity        int             `json:"totalQuantity"`
	Batches              []BatchResponse `json:"batches"`
}

// SupplierOrdersResponse lists one supplier's orders, oldest first.
type SupplierOrdersResponse struct {
	SupplierID string          `json:"supplierId"`
	Orders     []OrderResponse `json:"orders"`
	Count      int             `json:"count"`
}

// FromBatch converts a batch to its response DTO.
func FromBatch(b *batch.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                   b.ID.String(),
		ProductID:            b.ProductID.String(),
		QuantityReceived:     b.QuantityReceived,
		QuantityRemaining:    b.QuantityRemaining,
		Status:               string(b.Status),
		CreatedAt:            formatTimePtr(b.CreatedAt),
		ExpectedDeliveryDate: formatTimePtr(b.ExpectedDeliveryDate),
		DateReceived:         formatTimePtr(b.DateReceived),
		Notes:                b.Notes,
	}
	if b.CostPrice.Valid {
		price := formatMoney(b.CostPrice.Decimal)
		resp.CostPrice = &price
	}
	return resp
}

// FromOrder converts a reconstructed order to its response DTO.
func FromOrder(o *procurement.Order) OrderResponse {
	resp := OrderResponse{
		SupplierID:           o.SupplierID.String(),
		DateKey:              o.DateKey,
		ReceiptID:            o.ReceiptID,
		Status:               string(o.Status),
		TotalCost:            formatMoney(o.TotalCost),
		OrderDate:            formatTime(o.OrderDate),
		ExpectedDeliveryDate: formatTimePtr(o.ExpectedDeliveryDate),
		DeliveredDate:        formatTimePtr(o.DeliveredDate),
		ItemCount:            o.ItemCount,
		TotalQuantity:        o.TotalQuantity,
		Batches:              make([]BatchResponse, len(o.Batches)),
	}
	for i := range o.Batches {
		resp.Batches[i] = FromBatch(&o.Batches[i])
	}
	return resp
}

// FromOrders converts a list of orders.
func FromOrders(orders []procurement.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = FromOrder(&orders[i])
	}
	return out
}

// FromSupplierOrders builds the supplier orders response.
func FromSupplierOrders(supplierID id.ID, orders []procurement.Order) *SupplierOrdersResponse {
	return &SupplierOrdersResponse{
		SupplierID: supplierID.String(),
		Orders:     FromOrders(orders),
		Count:      len(orders),
	}
}

// FromActiveOrders converts the active orders report.
func FromActiveOrders(r *procurement.ActiveOrdersResult) *ReportResponse[OrderResponse] {
	items := FromOrders(r.Orders)
	return &ReportResponse[OrderResponse]{
		Items:       items,
		Count:       len(items),
		Unavailable: r.Unavailable,
		Error:       r.Error,
		Failures:    fromFailures(r.Failures),
	}
}

// --- Performance ---

// ProductVolumeResponse is one of a supplier's top products.
type ProductVolumeResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// PerformanceResponse is a supplier scorecard. Rating is null when the
// supplier has no measurable deliveries; RatingLabel then reads "N/A".
type PerformanceResponse struct {
	SupplierID               string                  `json:"supplierId"`
	SupplierName             string                  `json:"supplierName"`
	Rating                   *float64                `json:"rating"`
	RatingLabel              string                  `json:"ratingLabel"`
	OnTimeDeliveryRate       float64                 `json:"onTimeDeliveryRate"`
	FrequencyScore           float64                 `json:"frequencyScore"`
	ValueScore               float64                 `json:"valueScore"`
	ConsistencyScore         float64                 `json:"consistencyScore"`
	OnTimeDeliveryPercentage int                     `json:"onTimeDeliveryPercentage"`
	CompletedOrders          int                     `json:"completedOrders"`
	TotalOrders              int                     `json:"totalOrders"`
	TotalValue               string                  `json:"totalValue"`
	AverageOrderValue        string                  `json:"averageOrderValue"`
	LastOrderDate            *string                 `json:"lastOrderDate"`
	TopProducts              []ProductVolumeResponse `json:"topProducts"`
}

// TopPerformerResponse is a ranked scorecard.
type TopPerformerResponse struct {
	PerformanceResponse
	Rank           int     `json:"rank"`
	CompositeScore float64 `json:"compositeScore"`
}

// FromPerformance converts a scorecard to its response DTO.
func FromPerformance(p *procurement.Performance) PerformanceResponse {
	resp := PerformanceResponse{
		SupplierID:               p.SupplierID.String(),
		SupplierName:             p.SupplierName,
		Rating:                   p.Rating,
		RatingLabel:              p.RatingLabel(),
		OnTimeDeliveryRate:       round2(p.OnTimeDeliveryRate),
		FrequencyScore:           round2(p.FrequencyScore),
		ValueScore:               round2(p.ValueScore),
		ConsistencyScore:         round2(p.ConsistencyScore),
		OnTimeDeliveryPercentage: p.OnTimeDeliveryPercentage,
		CompletedOrders:          p.CompletedOrders,
		TotalOrders:              p.TotalOrders,
		TotalValue:               formatMoney(p.TotalValue),
		AverageOrderValue:        formatMoney(p.AverageOrderValue),
		LastOrderDate:            formatTimePtr(p.LastOrderDate),
		TopProducts:              make([]ProductVolumeResponse, len(p.TopProducts)),
	}
	for i, v := range p.TopProducts {
		resp.TopProducts[i] = ProductVolumeResponse{
			ProductID:   v.ProductID.String(),
			ProductName: v.ProductName,
			Quantity:    v.Quantity,
		}
	}
	return resp
}

// FromTopPerformers converts the top performers report.
func FromTopPerformers(r *procurement.TopPerformersResult) *ReportResponse[TopPerformerResponse] {
	items := make([]TopPerformerResponse, len(r.Performers))
	for i := range r.Performers {
		rp := &r.Performers[i]
		items[i] = TopPerformerResponse{
			PerformanceResponse: FromPerformance(&rp.Performance),
			Rank:                i + 1,
			CompositeScore:      round2(rp.CompositeScore),
		}
	}
	return &ReportResponse[TopPerformerResponse]{
		Items:       items,
		Count:       len(items),
		Unavailable: r.Unavailable,
		Error:       r.Error,
		Failures:    fromFailures(r.Failures),
	}
}
