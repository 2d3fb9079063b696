// Package postgres provides the PostgreSQL implementation of the ledger
// snapshot store. A snapshot is one upserted row per key with the registry
// and log serialized as JSONB (ISO-8601 timestamps, decimal strings).
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
	"github.com/ledgerai/merchant-ledger/internal/platform/persistence"
)

// SnapshotStore implements ledger.SnapshotStore on PostgreSQL
type SnapshotStore struct {
	querier persistence.Querier
	key     string
	logger  *slog.Logger
}

// NewSnapshotStore creates a PostgreSQL snapshot store.
// It expects db.Pool() to satisfy persistence.Querier.
func NewSnapshotStore(logger *slog.Logger, db *persistence.PostgresDB, key string) *SnapshotStore {
	return &SnapshotStore{
		querier: db.Pool(),
		key:     key,
		logger:  logger,
	}
}

// Load retrieves the stored snapshot. Returns ErrSnapshotNotFound when no row
// exists for the key and ErrSnapshotCorrupt when the stored JSON fails to
// parse.
func (s *SnapshotStore) Load(ctx context.Context) (ledger.Snapshot, error) {
	query := `
		SELECT products, transactions
		FROM ledger_snapshots
		WHERE key = $1
	`

	var productsJSON, transactionsJSON []byte
	err := s.querier.QueryRow(ctx, query, s.key).Scan(&productsJSON, &transactionsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Snapshot{}, ledger.ErrSnapshotNotFound{Key: s.key}
		}
		s.logger.Error("Failed to load ledger snapshot", "key", s.key, "error", err)
		return ledger.Snapshot{}, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(productsJSON, &snap.Products); err != nil {
		return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
	}
	if err := json.Unmarshal(transactionsJSON, &snap.Transactions); err != nil {
		return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
	}

	return snap, nil
}

// Save upserts the stored snapshot for the key
func (s *SnapshotStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	productsJSON, err := json.Marshal(snap.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	transactionsJSON, err := json.Marshal(snap.Transactions)
	if err != nil {
		return fmt.Errorf("failed to marshal transactions: %w", err)
	}

	query := `
		INSERT INTO ledger_snapshots (key, products, transactions, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET products = EXCLUDED.products, transactions = EXCLUDED.transactions, updated_at = now()
	`

	if _, err := s.querier.Exec(ctx, query, s.key, productsJSON, transactionsJSON); err != nil {
		s.logger.Error("Failed to save ledger snapshot", "key", s.key, "error", err)
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}

	s.logger.Debug("Saved ledger snapshot",
		"key", s.key,
		"products", len(snap.Products),
		"transactions", len(snap.Transactions),
	)
	return nil
}
