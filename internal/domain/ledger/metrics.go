package ledger

import "github.com/shopspring/decimal"

// LowStockThreshold is the stock level below which a product counts as low
const LowStockThreshold = 10

// DashboardMetrics is a derived view over the current registry and log. It is
// recomputed on every read and never persisted.
type DashboardMetrics struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	Profit         decimal.Decimal `json:"profit"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
}

// ComputeMetrics derives the dashboard summary from a snapshot. An empty
// snapshot yields zero-valued metrics.
func ComputeMetrics(snap Snapshot) DashboardMetrics {
	m := DashboardMetrics{
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalExpenses:  decimal.Zero,
		InventoryValue: decimal.Zero,
		TotalProducts:  len(snap.Products),
	}

	for i := range snap.Transactions {
		txn := &snap.Transactions[i]
		switch txn.Type {
		case TransactionTypeSale:
			m.TotalRevenue = m.TotalRevenue.Add(txn.TotalAmount)
		case TransactionTypePurchase:
			m.TotalCost = m.TotalCost.Add(txn.TotalAmount)
		case TransactionTypeExpense:
			m.TotalExpenses = m.TotalExpenses.Add(txn.TotalAmount)
		}
	}
	m.Profit = m.TotalRevenue.Sub(m.TotalCost).Sub(m.TotalExpenses)

	for i := range snap.Products {
		p := &snap.Products[i]
		m.InventoryValue = m.InventoryValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
		if p.Quantity < LowStockThreshold {
			m.LowStockCount++
		}
	}

	return m
}
