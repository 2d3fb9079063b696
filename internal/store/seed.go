package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// DemoSnapshot is the dataset a fresh installation starts with, so the
// dashboard has something to show before the merchant records anything. It is
// a fixture, not business logic.
func DemoSnapshot() ledger.Snapshot {
	now := time.Now()
	day := 24 * time.Hour

	coffee := demoProduct("Premium Coffee Beans", 45, "12.50", "24.99", "Beverages", now)
	tea := demoProduct("Organic Green Tea", 8, "8.00", "15.99", "Beverages", now)
	chocolate := demoProduct("Artisan Chocolate Bar", 32, "4.50", "9.99", "Snacks", now)
	honey := demoProduct("Fresh Honey Jar", 3, "15.00", "28.99", "Food", now)

	transactions := []ledger.Transaction{
		demoTransaction(ledger.TransactionTypeSale, now.Add(-1*day), "124.95", ledger.TransactionItem{
			ID:          uuid.New(),
			ProductName: coffee.Name,
			ProductID:   &coffee.ID,
			Quantity:    5,
			UnitPrice:   decimal.RequireFromString("24.99"),
			TotalPrice:  decimal.RequireFromString("124.95"),
		}),
		demoTransaction(ledger.TransactionTypePurchase, now.Add(-2*day), "160.00", ledger.TransactionItem{
			ID:          uuid.New(),
			ProductName: tea.Name,
			Quantity:    20,
			UnitPrice:   decimal.RequireFromString("8.00"),
			TotalPrice:  decimal.RequireFromString("160.00"),
		}),
		demoTransaction(ledger.TransactionTypeSale, now.Add(-3*day), "79.92", ledger.TransactionItem{
			ID:          uuid.New(),
			ProductName: chocolate.Name,
			ProductID:   &chocolate.ID,
			Quantity:    8,
			UnitPrice:   decimal.RequireFromString("9.99"),
			TotalPrice:  decimal.RequireFromString("79.92"),
		}),
		demoTransaction(ledger.TransactionTypeExpense, now.Add(-4*day), "500.00", ledger.TransactionItem{
			ID:          uuid.New(),
			ProductName: "Shop Rent",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("500.00"),
			TotalPrice:  decimal.RequireFromString("500.00"),
		}),
	}

	return ledger.Snapshot{
		Products:     []ledger.Product{coffee, tea, chocolate, honey},
		Transactions: transactions,
	}
}

func demoProduct(name string, quantity int, costPrice, sellingPrice, category string, now time.Time) ledger.Product {
	return ledger.Product{
		ID:           uuid.New(),
		Name:         name,
		Quantity:     quantity,
		CostPrice:    decimal.RequireFromString(costPrice),
		SellingPrice: decimal.RequireFromString(sellingPrice),
		Category:     category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func demoTransaction(typ ledger.TransactionType, at time.Time, total string, items ...ledger.TransactionItem) ledger.Transaction {
	return ledger.Transaction{
		ID:          uuid.New(),
		Type:        typ,
		Items:       items,
		TotalAmount: decimal.RequireFromString(total),
		Date:        at,
		CreatedAt:   at,
	}
}
