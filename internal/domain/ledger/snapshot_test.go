package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Clone(t *testing.T) {
	productID := uuid.New()
	snap := Snapshot{
		Products: []Product{
			{ID: productID, Name: "Coffee", Quantity: 45, CostPrice: decimal.RequireFromString("12.50")},
		},
		Transactions: []Transaction{
			{
				ID:   uuid.New(),
				Type: TransactionTypeSale,
				Items: []TransactionItem{
					{ID: uuid.New(), ProductName: "Coffee", ProductID: &productID, Quantity: 5},
				},
				TotalAmount: decimal.RequireFromString("124.95"),
			},
		},
	}

	clone := snap.Clone()

	require.Equal(t, snap, clone)

	// Mutating the clone must not reach back into the original.
	clone.Products[0].Quantity = 0
	clone.Transactions[0].Items[0].Quantity = 99
	*clone.Transactions[0].Items[0].ProductID = uuid.New()

	assert.Equal(t, 45, snap.Products[0].Quantity)
	assert.Equal(t, 5, snap.Transactions[0].Items[0].Quantity)
	assert.Equal(t, productID, *snap.Transactions[0].Items[0].ProductID)
}

func TestSnapshot_CloneEmpty(t *testing.T) {
	clone := Snapshot{}.Clone()
	assert.Nil(t, clone.Products)
	assert.Nil(t, clone.Transactions)
}

func TestSnapshotErrors_Is(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		err := ErrSnapshotNotFound{Key: "ledgerai"}

		assert.ErrorIs(t, err, ErrSnapshotNotFound{})
		assert.ErrorIs(t, err, ErrSnapshotNotFound{Key: "ledgerai"})
		assert.NotErrorIs(t, err, ErrSnapshotNotFound{Key: "other"})
	})

	t.Run("Corrupt", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := ErrSnapshotCorrupt{Key: "ledgerai", Err: cause}

		assert.ErrorIs(t, err, ErrSnapshotCorrupt{})
		assert.ErrorIs(t, err, cause, "corrupt error should unwrap to its cause")
		assert.NotErrorIs(t, err, ErrSnapshotNotFound{})
	})
}
