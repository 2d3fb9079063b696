// Package memory provides an in-memory snapshot store, used in tests and for
// running the service without external storage.
package memory

import (
	"context"
	"sync"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// SnapshotStore implements ledger.SnapshotStore in memory
type SnapshotStore struct {
	mu   sync.Mutex
	snap *ledger.Snapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns a copy of the stored snapshot, or ErrSnapshotNotFound when
// nothing has been saved yet
func (s *SnapshotStore) Load(ctx context.Context) (ledger.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return ledger.Snapshot{}, ledger.ErrSnapshotNotFound{Key: "memory"}
	}
	return s.snap.Clone(), nil
}

// Save stores a copy of the snapshot
func (s *SnapshotStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := snap.Clone()
	s.snap = &clone
	return nil
}
