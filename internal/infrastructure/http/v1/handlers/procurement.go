package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"supplyscope/internal/core/id"
	"supplyscope/internal/domain/procurement"
	"supplyscope/internal/infrastructure/http/v1/dto"
)

// ProcurementService is the part of procurement.Service the handlers use.
type ProcurementService interface {
	ReconstructOrders(ctx context.Context, supplierID id.ID) ([]procurement.Order, error)
	ScoreSupplier(ctx context.Context, supplierID id.ID) (*procurement.Performance, error)
	GetActiveOrders(ctx context.Context) *procurement.ActiveOrdersResult
	GetTopPerformers(ctx context.Context) *procurement.TopPerformersResult
}

// ProcurementHandler serves reconstructed orders, supplier scorecards and
// cross-supplier reports.
type ProcurementHandler struct {
	*BaseHandler
	service ProcurementService
}

// NewProcurementHandler creates a new procurement handler.
func NewProcurementHandler(base *BaseHandler, service ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes mounts the handler under rg.
func (h *ProcurementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("/:id/orders", h.GetSupplierOrders)
		suppliers.GET("/:id/performance", h.GetSupplierPerformance)
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/active-orders", h.GetActiveOrders)
		reports.GET("/top-performers", h.GetTopPerformers)
	}
}

// GetSupplierOrders handles GET /suppliers/:id/orders
func (h *ProcurementHandler) GetSupplierOrders(c *gin.Context) {
	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	orders, err := h.service.ReconstructOrders(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplierOrders(supplierID, orders))
}

// GetSupplierPerformance handles GET /suppliers/:id/performance
func (h *ProcurementHandler) GetSupplierPerformance(c *gin.Context) {
	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	perf, err := h.service.ScoreSupplier(c.Request.Context(), supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPerformance(perf))
}

// GetActiveOrders handles GET /reports/active-orders.
// The report never fails; unavailability is part of the body.
func (h *ProcurementHandler) GetActiveOrders(c *gin.Context) {
	h.OK(c, dto.FromActiveOrders(h.service.GetActiveOrders(c.Request.Context())))
}

// GetTopPerformers handles GET /reports/top-performers
func (h *ProcurementHandler) GetTopPerformers(c *gin.Context) {
	h.OK(c, dto.FromTopPerformers(h.service.GetTopPerformers(c.Request.Context())))
}
