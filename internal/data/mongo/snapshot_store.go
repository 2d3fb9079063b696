// Package mongo provides the MongoDB implementation of the ledger snapshot
// store. A snapshot is persisted as two named collections, one for the
// product registry and one for the transaction log, with an explicit position
// field preserving ordering.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// SnapshotStore implements ledger.SnapshotStore on MongoDB
type SnapshotStore struct {
	db     *mongo.Database
	key    string
	logger *slog.Logger
}

// NewSnapshotStore creates a MongoDB snapshot store. The key names the
// snapshot and prefixes both collections.
func NewSnapshotStore(logger *slog.Logger, db *mongo.Database, key string) *SnapshotStore {
	return &SnapshotStore{
		db:     db,
		key:    key,
		logger: logger,
	}
}

func (s *SnapshotStore) productsCollection() *mongo.Collection {
	return s.db.Collection(s.key + "_products")
}

func (s *SnapshotStore) transactionsCollection() *mongo.Collection {
	return s.db.Collection(s.key + "_transactions")
}

// Load retrieves the stored snapshot. Returns ErrSnapshotNotFound when both
// collections are empty and ErrSnapshotCorrupt when stored documents fail to
// parse back into domain entities.
func (s *SnapshotStore) Load(ctx context.Context) (ledger.Snapshot, error) {
	var productDocs []productDoc
	cursor, err := s.productsCollection().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"pos": 1}))
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to query products: %w", err)
	}
	if err := cursor.All(ctx, &productDocs); err != nil {
		return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
	}

	var transactionDocs []transactionDoc
	cursor, err = s.transactionsCollection().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"pos": 1}))
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to query transactions: %w", err)
	}
	if err := cursor.All(ctx, &transactionDocs); err != nil {
		return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
	}

	if len(productDocs) == 0 && len(transactionDocs) == 0 {
		return ledger.Snapshot{}, ledger.ErrSnapshotNotFound{Key: s.key}
	}

	snap := ledger.Snapshot{
		Products:     make([]ledger.Product, 0, len(productDocs)),
		Transactions: make([]ledger.Transaction, 0, len(transactionDocs)),
	}
	for _, doc := range productDocs {
		p, err := doc.toDomain()
		if err != nil {
			return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
		}
		snap.Products = append(snap.Products, p)
	}
	for _, doc := range transactionDocs {
		txn, err := doc.toDomain()
		if err != nil {
			return ledger.Snapshot{}, ledger.ErrSnapshotCorrupt{Key: s.key, Err: err}
		}
		snap.Transactions = append(snap.Transactions, txn)
	}

	return snap, nil
}

// Save replaces the stored snapshot with the given one
func (s *SnapshotStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	productDocs := make([]interface{}, len(snap.Products))
	for i, p := range snap.Products {
		productDocs[i] = newProductDoc(p, i)
	}
	transactionDocs := make([]interface{}, len(snap.Transactions))
	for i, txn := range snap.Transactions {
		transactionDocs[i] = newTransactionDoc(txn, i)
	}

	if err := s.replaceAll(ctx, s.productsCollection(), productDocs); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	if err := s.replaceAll(ctx, s.transactionsCollection(), transactionDocs); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	s.logger.Debug("Saved ledger snapshot",
		"key", s.key,
		"products", len(snap.Products),
		"transactions", len(snap.Transactions),
	)
	return nil
}

func (s *SnapshotStore) replaceAll(ctx context.Context, col *mongo.Collection, docs []interface{}) error {
	if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

// Document shapes. Monetary values are stored as decimal strings so no
// precision is lost in transit.

type productDoc struct {
	ID           string    `bson:"_id"`
	Pos          int       `bson:"pos"`
	Name         string    `bson:"name"`
	Quantity     int       `bson:"quantity"`
	CostPrice    string    `bson:"cost_price"`
	SellingPrice string    `bson:"selling_price"`
	Category     string    `bson:"category,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type transactionItemDoc struct {
	ID          string `bson:"id"`
	ProductName string `bson:"product_name"`
	ProductID   string `bson:"product_id,omitempty"`
	Quantity    int    `bson:"quantity"`
	UnitPrice   string `bson:"unit_price"`
	TotalPrice  string `bson:"total_price"`
}

type transactionDoc struct {
	ID          string               `bson:"_id"`
	Pos         int                  `bson:"pos"`
	Type        string               `bson:"type"`
	Items       []transactionItemDoc `bson:"items"`
	TotalAmount string               `bson:"total_amount"`
	Date        time.Time            `bson:"date"`
	CreatedAt   time.Time            `bson:"created_at"`
}

func newProductDoc(p ledger.Product, pos int) productDoc {
	return productDoc{
		ID:           p.ID.String(),
		Pos:          pos,
		Name:         p.Name,
		Quantity:     p.Quantity,
		CostPrice:    p.CostPrice.String(),
		SellingPrice: p.SellingPrice.String(),
		Category:     p.Category,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDoc) toDomain() (ledger.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("bad product id %q: %w", d.ID, err)
	}
	costPrice, err := decimal.NewFromString(d.CostPrice)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("bad cost price %q: %w", d.CostPrice, err)
	}
	sellingPrice, err := decimal.NewFromString(d.SellingPrice)
	if err != nil {
		return ledger.Product{}, fmt.Errorf("bad selling price %q: %w", d.SellingPrice, err)
	}
	return ledger.Product{
		ID:           id,
		Name:         d.Name,
		Quantity:     d.Quantity,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		Category:     d.Category,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func newTransactionDoc(txn ledger.Transaction, pos int) transactionDoc {
	items := make([]transactionItemDoc, len(txn.Items))
	for i, item := range txn.Items {
		items[i] = transactionItemDoc{
			ID:          item.ID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			TotalPrice:  item.TotalPrice.String(),
		}
		if item.ProductID != nil {
			items[i].ProductID = item.ProductID.String()
		}
	}
	return transactionDoc{
		ID:          txn.ID.String(),
		Pos:         pos,
		Type:        string(txn.Type),
		Items:       items,
		TotalAmount: txn.TotalAmount.String(),
		Date:        txn.Date,
		CreatedAt:   txn.CreatedAt,
	}
}

func (d transactionDoc) toDomain() (ledger.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("bad transaction id %q: %w", d.ID, err)
	}
	totalAmount, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("bad total amount %q: %w", d.TotalAmount, err)
	}
	txnType := ledger.TransactionType(d.Type)
	if !txnType.Valid() {
		return ledger.Transaction{}, fmt.Errorf("bad transaction type %q", d.Type)
	}

	items := make([]ledger.TransactionItem, len(d.Items))
	for i, itemDoc := range d.Items {
		itemID, err := uuid.Parse(itemDoc.ID)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("bad item id %q: %w", itemDoc.ID, err)
		}
		unitPrice, err := decimal.NewFromString(itemDoc.UnitPrice)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("bad unit price %q: %w", itemDoc.UnitPrice, err)
		}
		totalPrice, err := decimal.NewFromString(itemDoc.TotalPrice)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("bad total price %q: %w", itemDoc.TotalPrice, err)
		}
		items[i] = ledger.TransactionItem{
			ID:          itemID,
			ProductName: itemDoc.ProductName,
			Quantity:    itemDoc.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  totalPrice,
		}
		if itemDoc.ProductID != "" {
			productID, err := uuid.Parse(itemDoc.ProductID)
			if err != nil {
				return ledger.Transaction{}, fmt.Errorf("bad item product id %q: %w", itemDoc.ProductID, err)
			}
			items[i].ProductID = &productID
		}
	}

	return ledger.Transaction{
		ID:          id,
		Type:        txnType,
		Items:       items,
		TotalAmount: totalAmount,
		Date:        d.Date,
		CreatedAt:   d.CreatedAt,
	}, nil
}
