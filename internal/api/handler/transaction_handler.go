package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// TransactionHandler handles transaction log requests
type TransactionHandler struct {
	ledger Ledger
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, l Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: l, logger: logger}
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	spec, err := req.toSpec()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	txn, err := h.ledger.RecordTransaction(spec)
	if err != nil {
		switch {
		case ledger.IsValidationError(err):
			RespondBadRequest(c, err.Error())
		case isNotFound(err):
			RespondNotFound(c, err.Error())
		default:
			h.logger.Error("Failed to record transaction", "type", req.Type, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, newTransactionResponse(txn))
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	transactions := h.ledger.Transactions()

	out := make([]TransactionResponse, len(transactions))
	for i, txn := range transactions {
		out[i] = newTransactionResponse(txn)
	}
	RespondOK(c, out)
}

func (r CreateTransactionRequest) toSpec() (ledger.TransactionSpec, error) {
	items := make([]ledger.ItemSpec, len(r.Items))
	for i, item := range r.Items {
		spec := ledger.ItemSpec{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
		if item.ProductID != "" {
			id, err := uuid.Parse(item.ProductID)
			if err != nil {
				return ledger.TransactionSpec{}, errors.New("invalid product ID format in items")
			}
			spec.ProductID = &id
		}
		items[i] = spec
	}
	return ledger.TransactionSpec{
		Type:        ledger.TransactionType(r.Type),
		Items:       items,
		TotalAmount: r.TotalAmount,
		Date:        r.Date,
	}, nil
}

func newTransactionResponse(txn ledger.Transaction) TransactionResponse {
	items := make([]TransactionItemResponse, len(txn.Items))
	for i, item := range txn.Items {
		items[i] = TransactionItemResponse{
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
	return TransactionResponse{
		ID:          txn.ID.String(),
		Type:        string(txn.Type),
		Items:       items,
		TotalAmount: txn.TotalAmount.String(),
		Date:        txn.Date.UTC().Format(time.RFC3339),
		CreatedAt:   txn.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrProductNotFound{})
}
