package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeMetrics(t *testing.T) {
	t.Run("EmptySnapshot", func(t *testing.T) {
		m := ComputeMetrics(Snapshot{})

		assert.True(t, m.TotalRevenue.IsZero())
		assert.True(t, m.TotalCost.IsZero())
		assert.True(t, m.TotalExpenses.IsZero())
		assert.True(t, m.Profit.IsZero())
		assert.True(t, m.InventoryValue.IsZero())
		assert.Zero(t, m.TotalProducts)
		assert.Zero(t, m.LowStockCount)
	})

	t.Run("AggregatesByTransactionType", func(t *testing.T) {
		snap := Snapshot{
			Transactions: []Transaction{
				{Type: TransactionTypeSale, TotalAmount: decimal.RequireFromString("124.95")},
				{Type: TransactionTypeSale, TotalAmount: decimal.RequireFromString("79.92")},
				{Type: TransactionTypePurchase, TotalAmount: decimal.RequireFromString("160.00")},
				{Type: TransactionTypeExpense, TotalAmount: decimal.RequireFromString("500.00")},
			},
		}

		m := ComputeMetrics(snap)

		assert.True(t, decimal.RequireFromString("204.87").Equal(m.TotalRevenue))
		assert.True(t, decimal.RequireFromString("160.00").Equal(m.TotalCost))
		assert.True(t, decimal.RequireFromString("500.00").Equal(m.TotalExpenses))
		assert.True(t, decimal.RequireFromString("-455.13").Equal(m.Profit),
			"profit is revenue minus cost minus expenses, got %s", m.Profit)
	})

	t.Run("ExpenseOnlyLogYieldsNegativeProfit", func(t *testing.T) {
		snap := Snapshot{
			Transactions: []Transaction{
				{Type: TransactionTypeExpense, TotalAmount: decimal.RequireFromString("500.00")},
			},
		}

		m := ComputeMetrics(snap)

		assert.True(t, decimal.RequireFromString("-500.00").Equal(m.Profit))
	})

	t.Run("InventoryValueUsesCostPrice", func(t *testing.T) {
		snap := Snapshot{
			Products: []Product{
				{Name: "Coffee", Quantity: 45, CostPrice: decimal.RequireFromString("12.50")},
				{Name: "Tea", Quantity: 8, CostPrice: decimal.RequireFromString("8.00")},
			},
		}

		m := ComputeMetrics(snap)

		// 45*12.50 + 8*8.00
		assert.True(t, decimal.RequireFromString("626.50").Equal(m.InventoryValue))
		assert.Equal(t, 2, m.TotalProducts)
	})

	t.Run("LowStockCountsBelowThreshold", func(t *testing.T) {
		snap := Snapshot{
			Products: []Product{
				{Name: "At threshold", Quantity: LowStockThreshold},
				{Name: "Just below", Quantity: LowStockThreshold - 1},
				{Name: "Empty", Quantity: 0},
				{Name: "Negative", Quantity: -3},
				{Name: "Plenty", Quantity: 100},
			},
		}

		m := ComputeMetrics(snap)

		assert.Equal(t, 3, m.LowStockCount, "strictly below the threshold counts as low")
	})
}
