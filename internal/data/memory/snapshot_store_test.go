package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadBeforeSave", func(t *testing.T) {
		store := NewSnapshotStore()

		_, err := store.Load(ctx)

		assert.ErrorIs(t, err, ledger.ErrSnapshotNotFound{})
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		store := NewSnapshotStore()
		snap := ledger.Snapshot{
			Products: []ledger.Product{{ID: uuid.New(), Name: "Coffee", Quantity: 45}},
		}

		require.NoError(t, store.Save(ctx, snap))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap, loaded)
	})

	t.Run("SaveReplacesPreviousSnapshot", func(t *testing.T) {
		store := NewSnapshotStore()
		require.NoError(t, store.Save(ctx, ledger.Snapshot{
			Products: []ledger.Product{{Name: "Coffee"}, {Name: "Tea"}},
		}))
		require.NoError(t, store.Save(ctx, ledger.Snapshot{
			Products: []ledger.Product{{Name: "Honey"}},
		}))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Products, 1)
		assert.Equal(t, "Honey", loaded.Products[0].Name)
	})

	t.Run("StoredSnapshotIsIsolatedFromCaller", func(t *testing.T) {
		store := NewSnapshotStore()
		snap := ledger.Snapshot{
			Products: []ledger.Product{{Name: "Coffee", Quantity: 45}},
		}
		require.NoError(t, store.Save(ctx, snap))

		snap.Products[0].Quantity = 0
		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 45, loaded.Products[0].Quantity)

		loaded.Products[0].Quantity = 1
		again, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 45, again.Products[0].Quantity)
	})
}
