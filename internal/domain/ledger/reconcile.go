package ledger

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultMarkup is the selling-price markup applied to products created
// implicitly by purchase reconciliation.
var defaultMarkup = decimal.RequireFromString("1.5")

// QuantityAdjustment changes the stock level of an existing product
type QuantityAdjustment struct {
	ProductID uuid.UUID
	Change    int
}

// Delta is the set of registry changes a transaction implies. Adjustments
// target existing products; Creations describe products the registry does not
// have yet.
type Delta struct {
	Adjustments []QuantityAdjustment
	Creations   []ProductSpec
}

// Empty reports whether the delta changes nothing
func (d Delta) Empty() bool {
	return len(d.Adjustments) == 0 && len(d.Creations) == 0
}

// Reconcile maps a transaction onto the registry changes it implies. It is a
// pure function: the registry is only read, never written.
//
//   - sale: each item with a product back-reference decrements that product's
//     stock; items without one have no registry effect (resolving the
//     reference is the intake source's job).
//   - purchase: each item increments the first product whose name matches
//     case-insensitively, or creates a new product priced at the item's unit
//     price with the default markup.
//   - expense: no registry effect.
func Reconcile(txn *Transaction, registry []Product) (Delta, error) {
	var delta Delta

	switch txn.Type {
	case TransactionTypeSale:
		for _, item := range txn.Items {
			if item.ProductID == nil {
				continue
			}
			delta.Adjustments = append(delta.Adjustments, QuantityAdjustment{
				ProductID: *item.ProductID,
				Change:    -item.Quantity,
			})
		}

	case TransactionTypePurchase:
		for _, item := range txn.Items {
			if id, ok := matchByName(registry, item.ProductName); ok {
				delta.Adjustments = append(delta.Adjustments, QuantityAdjustment{
					ProductID: id,
					Change:    item.Quantity,
				})
				continue
			}
			// Two items naming the same unknown product must end up as a
			// single creation.
			if i, ok := pendingCreation(delta.Creations, item.ProductName); ok {
				delta.Creations[i].Quantity += item.Quantity
				continue
			}
			delta.Creations = append(delta.Creations, ProductSpec{
				Name:         item.ProductName,
				Quantity:     item.Quantity,
				CostPrice:    item.UnitPrice,
				SellingPrice: item.UnitPrice.Mul(defaultMarkup),
			})
		}

	case TransactionTypeExpense:
		// Expenses affect metrics only, never the registry.

	default:
		return Delta{}, ErrInvalidTransactionType
	}

	return delta, nil
}

// matchByName returns the first registry entry whose name matches
// case-insensitively, in registry order.
func matchByName(registry []Product, name string) (uuid.UUID, bool) {
	for i := range registry {
		if registry[i].MatchesName(name) {
			return registry[i].ID, true
		}
	}
	return uuid.Nil, false
}

func pendingCreation(creations []ProductSpec, name string) (int, bool) {
	for i := range creations {
		if strings.EqualFold(creations[i].Name, name) {
			return i, true
		}
	}
	return 0, false
}
