package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// MetricsHandler serves the dashboard summary
type MetricsHandler struct {
	ledger Ledger
	logger *slog.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(logger *slog.Logger, l Ledger) *MetricsHandler {
	return &MetricsHandler{ledger: l, logger: logger}
}

// Get handles GET /api/v1/metrics
func (h *MetricsHandler) Get(c *gin.Context) {
	RespondOK(c, newMetricsResponse(h.ledger.Metrics()))
}

func newMetricsResponse(m ledger.DashboardMetrics) MetricsResponse {
	return MetricsResponse{
		TotalRevenue:   m.TotalRevenue.String(),
		TotalCost:      m.TotalCost.String(),
		TotalExpenses:  m.TotalExpenses.String(),
		Profit:         m.Profit.String(),
		InventoryValue: m.InventoryValue.String(),
		TotalProducts:  m.TotalProducts,
		LowStockCount:  m.LowStockCount,
	}
}
