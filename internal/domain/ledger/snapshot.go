package ledger

import "context"

// Snapshot is a point-in-time copy of the product registry and transaction
// log. Products keep registry order; transactions are newest-first.
type Snapshot struct {
	Products     []Product     `json:"products"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{}
	if s.Products != nil {
		out.Products = make([]Product, len(s.Products))
		copy(out.Products, s.Products)
	}
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		for i, txn := range s.Transactions {
			out.Transactions[i] = cloneTransaction(txn)
		}
	}
	return out
}

func cloneTransaction(txn Transaction) Transaction {
	items := make([]TransactionItem, len(txn.Items))
	for i, item := range txn.Items {
		items[i] = item
		if item.ProductID != nil {
			id := *item.ProductID
			items[i].ProductID = &id
		}
	}
	txn.Items = items
	return txn
}

// SnapshotStore persists a named snapshot of the ledger state
type SnapshotStore interface {
	// Load retrieves the stored snapshot.
	// Returns ErrSnapshotNotFound when nothing has been stored yet and
	// ErrSnapshotCorrupt when the stored data fails to parse.
	Load(ctx context.Context) (Snapshot, error)

	// Save durably replaces the stored snapshot
	Save(ctx context.Context, snap Snapshot) error
}

// ErrSnapshotNotFound indicates no snapshot has been stored under the key
type ErrSnapshotNotFound struct {
	Key string
}

func (e ErrSnapshotNotFound) Error() string {
	return "snapshot not found: " + e.Key
}

// Is implements the errors.Is interface for ErrSnapshotNotFound
func (e ErrSnapshotNotFound) Is(target error) bool {
	t, ok := target.(ErrSnapshotNotFound)
	if !ok {
		return false
	}
	// An empty target key matches any ErrSnapshotNotFound
	if t.Key == "" {
		return true
	}
	return e.Key == t.Key
}

// ErrSnapshotCorrupt indicates stored data that fails to parse into the
// expected shape
type ErrSnapshotCorrupt struct {
	Key string
	Err error
}

func (e ErrSnapshotCorrupt) Error() string {
	return "snapshot corrupt: " + e.Key + ": " + e.Err.Error()
}

func (e ErrSnapshotCorrupt) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for ErrSnapshotCorrupt
func (e ErrSnapshotCorrupt) Is(target error) bool {
	t, ok := target.(ErrSnapshotCorrupt)
	if !ok {
		return false
	}
	if t.Key == "" {
		return true
	}
	return e.Key == t.Key
}
