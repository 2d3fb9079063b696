// Package saver persists ledger snapshots asynchronously. Saves are
// best-effort side effects of mutations: they never block or fail the
// mutation they follow, and failed saves are retried a bounded number of
// times with exponential backoff.
package saver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ledgerai/merchant-ledger/internal/config"
	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// Saver writes snapshots to a SnapshotStore through a worker pool. Only the
// latest enqueued snapshot matters; when saves fall behind, intermediate
// snapshots are coalesced away.
type Saver struct {
	snapshots   ledger.SnapshotStore
	pool        *ants.Pool
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
	saveTimeout time.Duration

	mu       sync.Mutex
	pending  *ledger.Snapshot
	inFlight bool
}

// New creates a saver backed by a worker pool
func New(logger *slog.Logger, snapshots ledger.SnapshotStore, snapCfg *config.SnapshotConfig, poolCfg *config.WorkerPoolConfig) (*Saver, error) {
	pool, err := ants.NewPool(poolCfg.Size)
	if err != nil {
		return nil, err
	}

	return &Saver{
		snapshots:   snapshots,
		pool:        pool,
		logger:      logger,
		maxAttempts: snapCfg.SaveMaxAttempts,
		backoff:     snapCfg.SaveRetryBackoff,
		saveTimeout: snapCfg.SaveTimeout,
	}, nil
}

// Enqueue schedules the snapshot for persistence and returns immediately.
// A snapshot enqueued while another save is running replaces any snapshot
// still waiting its turn.
func (s *Saver) Enqueue(snap ledger.Snapshot) {
	s.mu.Lock()
	s.pending = &snap
	if s.inFlight {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	if err := s.pool.Submit(s.drain); err != nil {
		s.logger.Error("Failed to submit snapshot save to worker pool", "error", err)
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}
}

// drain saves pending snapshots until none remain. Runs on a pool worker;
// the inFlight flag guarantees a single drainer at a time.
func (s *Saver) drain() {
	for {
		s.mu.Lock()
		snap := s.pending
		s.pending = nil
		if snap == nil {
			s.inFlight = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.save(*snap)
	}
}

func (s *Saver) save(snap ledger.Snapshot) {
	backoff := s.backoff
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		err := s.snapshots.Save(ctx, snap)
		cancel()
		if err == nil {
			if attempt > 1 {
				s.logger.Info("Snapshot save succeeded after retry", "attempt", attempt)
			}
			return
		}

		s.logger.Warn("Snapshot save failed",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"error", err,
		)
		if attempt < s.maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	s.logger.Error("Giving up on snapshot save", "attempts", s.maxAttempts)
}

// Flush blocks until every enqueued snapshot has been processed or the
// context expires. Intended for shutdown.
func (s *Saver) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		idle := !s.inFlight && s.pending == nil
		s.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases the worker pool
func (s *Saver) Close() {
	s.logger.Info("Shutting down snapshot saver", "running_workers", s.pool.Running())
	s.pool.Release()
}
