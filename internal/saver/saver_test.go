package saver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerai/merchant-ledger/internal/config"
	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

type recordingSnapshotStore struct {
	mu       sync.Mutex
	saved    []ledger.Snapshot
	failures int // number of saves to fail before succeeding
}

func (s *recordingSnapshotStore) Load(_ context.Context) (ledger.Snapshot, error) {
	return ledger.Snapshot{}, ledger.ErrSnapshotNotFound{}
}

func (s *recordingSnapshotStore) Save(_ context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *recordingSnapshotStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func (s *recordingSnapshotStore) lastSaved() ledger.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[len(s.saved)-1]
}

func newTestSaver(t *testing.T, store ledger.SnapshotStore, maxAttempts int) *Saver {
	t.Helper()
	s, err := New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		store,
		&config.SnapshotConfig{
			SaveMaxAttempts:  maxAttempts,
			SaveRetryBackoff: time.Millisecond,
			SaveTimeout:      time.Second,
		},
		&config.WorkerPoolConfig{Size: 2},
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func snapshotWithProducts(n int) ledger.Snapshot {
	products := make([]ledger.Product, n)
	for i := range products {
		products[i] = ledger.Product{
			Name:      "Coffee",
			Quantity:  i,
			CostPrice: decimal.RequireFromString("12.50"),
		}
	}
	return ledger.Snapshot{Products: products}
}

func TestSaver_EnqueueSaves(t *testing.T) {
	store := &recordingSnapshotStore{}
	s := newTestSaver(t, store, 3)

	s.Enqueue(snapshotWithProducts(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	require.Equal(t, 1, store.savedCount())
	assert.Len(t, store.lastSaved().Products, 1)
}

func TestSaver_RetriesFailedSaves(t *testing.T) {
	store := &recordingSnapshotStore{failures: 2}
	s := newTestSaver(t, store, 3)

	s.Enqueue(snapshotWithProducts(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	assert.Equal(t, 1, store.savedCount(), "third attempt should succeed")
}

func TestSaver_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &recordingSnapshotStore{failures: 10}
	s := newTestSaver(t, store, 2)

	s.Enqueue(snapshotWithProducts(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx), "a failed save still drains the queue")

	assert.Zero(t, store.savedCount())
}

func TestSaver_LatestSnapshotWins(t *testing.T) {
	store := &recordingSnapshotStore{}
	s := newTestSaver(t, store, 1)

	for i := 1; i <= 20; i++ {
		s.Enqueue(snapshotWithProducts(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	require.NotZero(t, store.savedCount())
	assert.Len(t, store.lastSaved().Products, 20, "the final state must always land")
	assert.LessOrEqual(t, store.savedCount(), 20, "intermediate snapshots may coalesce")
}

func TestSaver_FlushHonorsContext(t *testing.T) {
	store := &recordingSnapshotStore{}
	s := newTestSaver(t, store, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An idle saver flushes instantly even with a canceled context.
	assert.NoError(t, s.Flush(ctx))
}
