package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common validation errors
var (
	ErrEmptyProductName = errors.New("product name cannot be empty")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
)

// Product is an entry in the inventory registry. The name doubles as a
// case-insensitive matching key for purchase reconciliation.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Category     string          `json:"category,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductSpec carries the caller-supplied fields for a new product
type ProductSpec struct {
	Name         string
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Category     string
}

// NewProduct creates a new registry entry with the given spec
func NewProduct(spec ProductSpec) (*Product, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, ErrEmptyProductName
	}
	if spec.CostPrice.IsNegative() || spec.SellingPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	if spec.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}

	now := time.Now()
	return &Product{
		ID:           uuid.New(),
		Name:         spec.Name,
		Quantity:     spec.Quantity,
		CostPrice:    spec.CostPrice,
		SellingPrice: spec.SellingPrice,
		Category:     spec.Category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MatchesName reports whether the product name equals the given name,
// ignoring case.
func (p *Product) MatchesName(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// ProductPatch enumerates the updatable product fields. Nil fields are left
// untouched; there is no way to update a field the patch does not name.
type ProductPatch struct {
	Name         *string
	Quantity     *int
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	Category     *string
}

// Apply validates the patch and applies it to the product, refreshing
// UpdatedAt. The product is left unchanged when validation fails.
func (p *Product) Apply(patch ProductPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrEmptyProductName
	}
	if patch.CostPrice != nil && patch.CostPrice.IsNegative() {
		return ErrNegativePrice
	}
	if patch.SellingPrice != nil && patch.SellingPrice.IsNegative() {
		return ErrNegativePrice
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.CostPrice != nil {
		p.CostPrice = *patch.CostPrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	p.UpdatedAt = time.Now()
	return nil
}

// ErrProductNotFound indicates a missing registry entry
type ErrProductNotFound struct {
	ProductID uuid.UUID
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + e.ProductID.String()
}

// Is implements the errors.Is interface for ErrProductNotFound
func (e ErrProductNotFound) Is(target error) bool {
	t, ok := target.(ErrProductNotFound)
	if !ok {
		return false
	}
	// An empty target ProductID matches any ErrProductNotFound
	if t.ProductID == uuid.Nil {
		return true
	}
	return e.ProductID == t.ProductID
}
