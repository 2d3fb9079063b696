package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType tags a recorded transaction
type TransactionType string

const (
	TransactionTypeSale     TransactionType = "sale"
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeExpense  TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypePurchase, TransactionTypeExpense:
		return true
	}
	return false
}

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrNoItems                = errors.New("transaction must contain at least one item")
	ErrNonPositiveQuantity    = errors.New("item quantity must be positive")
	ErrTotalMismatch          = errors.New("total amount does not match the sum of item totals")
)

// amountEpsilon bounds the rounding drift tolerated between a transaction's
// total amount and the sum of its item totals.
var amountEpsilon = decimal.New(1, -2) // 0.01

// TransactionItem is a single line of a transaction. ProductID is the
// back-reference used for sale-side stock decrements; ProductName is the
// free-text key used for purchase matching.
type TransactionItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Transaction is an immutable entry in the append-only log. Date is the
// business date supplied by the caller; CreatedAt is the insertion timestamp
// that orders the log.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	Type        TransactionType   `json:"type"`
	Items       []TransactionItem `json:"items"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Date        time.Time         `json:"date"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ItemSpec carries the caller-supplied fields for a transaction line
type ItemSpec struct {
	ProductName string
	ProductID   *uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// TransactionSpec carries the caller-supplied fields for a new transaction
type TransactionSpec struct {
	Type        TransactionType
	Items       []ItemSpec
	TotalAmount decimal.Decimal
	Date        time.Time
}

// NewTransaction validates the spec and builds a transaction with a fresh ID
// and insertion timestamp. The total amount must match the sum of the item
// totals within a cent; a zero business date defaults to the current time.
func NewTransaction(spec TransactionSpec) (*Transaction, error) {
	if !spec.Type.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if len(spec.Items) == 0 {
		return nil, ErrNoItems
	}

	sum := decimal.Zero
	for _, item := range spec.Items {
		if strings.TrimSpace(item.ProductName) == "" {
			return nil, ErrEmptyProductName
		}
		if item.Quantity <= 0 {
			return nil, ErrNonPositiveQuantity
		}
		if item.UnitPrice.IsNegative() || item.TotalPrice.IsNegative() {
			return nil, ErrNegativePrice
		}
		sum = sum.Add(item.TotalPrice)
	}
	if spec.TotalAmount.Sub(sum).Abs().GreaterThan(amountEpsilon) {
		return nil, ErrTotalMismatch
	}

	date := spec.Date
	if date.IsZero() {
		date = time.Now()
	}

	items := make([]TransactionItem, len(spec.Items))
	for i, item := range spec.Items {
		items[i] = TransactionItem{
			ID:          uuid.New(),
			ProductName: item.ProductName,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}

	return &Transaction{
		ID:          uuid.New(),
		Type:        spec.Type,
		Items:       items,
		TotalAmount: spec.TotalAmount,
		Date:        date,
		CreatedAt:   time.Now(),
	}, nil
}

// IsValidationError reports whether err was caused by malformed caller input,
// as opposed to a missing product or an infrastructure failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyProductName,
		ErrNegativePrice,
		ErrNegativeQuantity,
		ErrInvalidTransactionType,
		ErrNoItems,
		ErrNonPositiveQuantity,
		ErrTotalMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
