// Package store holds the live ledger state: the product registry and the
// append-only transaction log, owned as a single consistency domain. All
// mutations are serialized through one mutex so reconciliation reads and
// writes never interleave.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// PersistFunc receives a fresh snapshot after every successful mutation. It
// must not block; persistence is best-effort and never fails the mutation.
type PersistFunc func(snap ledger.Snapshot)

// Ledger is the single writer of product and transaction state
type Ledger struct {
	mu           sync.RWMutex
	products     []ledger.Product
	transactions []ledger.Transaction // newest-first

	persist PersistFunc
	logger  *slog.Logger
}

// Open loads the stored snapshot and builds the ledger from it. A missing,
// corrupt, or unreadable snapshot degrades to the seeded demo dataset instead
// of failing startup.
func Open(ctx context.Context, logger *slog.Logger, snapshots ledger.SnapshotStore, persist PersistFunc) (*Ledger, error) {
	snap, err := snapshots.Load(ctx)
	switch {
	case err == nil:
		logger.Info("Loaded ledger snapshot",
			"products", len(snap.Products),
			"transactions", len(snap.Transactions),
		)
	case errors.Is(err, ledger.ErrSnapshotNotFound{}):
		logger.Info("No stored ledger snapshot, seeding demo data")
		snap = DemoSnapshot()
	default:
		logger.Warn("Failed to load ledger snapshot, seeding demo data", "error", err)
		snap = DemoSnapshot()
	}

	return &Ledger{
		products:     snap.Products,
		transactions: snap.Transactions,
		persist:      persist,
		logger:       logger,
	}, nil
}

// AddProduct creates a product from the spec and appends it to the registry
func (l *Ledger) AddProduct(spec ledger.ProductSpec) (ledger.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := ledger.NewProduct(spec)
	if err != nil {
		return ledger.Product{}, err
	}
	l.products = append(l.products, *p)

	l.logger.Info("Product added", "product_id", p.ID.String(), "name", p.Name)
	l.persistLocked()
	return *p, nil
}

// UpdateProduct applies a field-mask patch to the product with the given ID.
// Returns ErrProductNotFound if the ID is absent; no partial update occurs on
// validation failure.
func (l *Ledger) UpdateProduct(id uuid.UUID, patch ledger.ProductPatch) (ledger.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.indexLocked(id)
	if !ok {
		return ledger.Product{}, ledger.ErrProductNotFound{ProductID: id}
	}

	updated := l.products[i]
	if err := updated.Apply(patch); err != nil {
		return ledger.Product{}, err
	}
	l.products[i] = updated

	l.logger.Info("Product updated", "product_id", id.String())
	l.persistLocked()
	return updated, nil
}

// RecordTransaction validates the spec, inserts the transaction at the head
// of the log, and applies the reconciliation delta to the registry. Log and
// registry change together or not at all: the whole delta is resolved against
// the registry before anything is mutated.
func (l *Ledger) RecordTransaction(spec ledger.TransactionSpec) (ledger.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, err := ledger.NewTransaction(spec)
	if err != nil {
		return ledger.Transaction{}, err
	}

	delta, err := ledger.Reconcile(txn, l.products)
	if err != nil {
		return ledger.Transaction{}, err
	}

	// Resolve every adjustment target before applying any of them.
	indexes := make([]int, len(delta.Adjustments))
	for i, adj := range delta.Adjustments {
		idx, ok := l.indexLocked(adj.ProductID)
		if !ok {
			return ledger.Transaction{}, ledger.ErrProductNotFound{ProductID: adj.ProductID}
		}
		indexes[i] = idx
	}
	created := make([]ledger.Product, 0, len(delta.Creations))
	for _, cs := range delta.Creations {
		p, err := ledger.NewProduct(cs)
		if err != nil {
			return ledger.Transaction{}, err
		}
		created = append(created, *p)
	}

	l.transactions = append([]ledger.Transaction{*txn}, l.transactions...)

	now := time.Now()
	for i, adj := range delta.Adjustments {
		p := &l.products[indexes[i]]
		p.Quantity += adj.Change
		p.UpdatedAt = now
		if p.Quantity < 0 {
			// Over-selling is allowed; the dashboard flags the stock level.
			l.logger.Warn("Product stock went negative",
				"product_id", p.ID.String(),
				"name", p.Name,
				"quantity", p.Quantity,
			)
		}
	}
	l.products = append(l.products, created...)

	l.logger.Info("Transaction recorded",
		"transaction_id", txn.ID.String(),
		"type", string(txn.Type),
		"items", len(txn.Items),
		"total_amount", txn.TotalAmount.String(),
	)
	l.persistLocked()
	return cloneTransaction(*txn), nil
}

// Snapshot returns a deep copy of the current registry and log
func (l *Ledger) Snapshot() ledger.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// Products returns a copy of the registry in registry order
func (l *Ledger) Products() []ledger.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ledger.Product, len(l.products))
	copy(out, l.products)
	return out
}

// Transactions returns a copy of the log, newest-first
func (l *Ledger) Transactions() []ledger.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ledger.Transaction, len(l.transactions))
	for i, txn := range l.transactions {
		out[i] = cloneTransaction(txn)
	}
	return out
}

// Metrics computes the dashboard summary from the current state
func (l *Ledger) Metrics() ledger.DashboardMetrics {
	return ledger.ComputeMetrics(l.Snapshot())
}

func (l *Ledger) snapshotLocked() ledger.Snapshot {
	return ledger.Snapshot{
		Products:     l.products,
		Transactions: l.transactions,
	}.Clone()
}

func (l *Ledger) persistLocked() {
	if l.persist == nil {
		return
	}
	l.persist(l.snapshotLocked())
}

func (l *Ledger) indexLocked(id uuid.UUID) (int, bool) {
	for i := range l.products {
		if l.products[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func cloneTransaction(txn ledger.Transaction) ledger.Transaction {
	snap := ledger.Snapshot{Transactions: []ledger.Transaction{txn}}.Clone()
	return snap.Transactions[0]
}
