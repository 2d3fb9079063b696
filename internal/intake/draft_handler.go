// Package intake feeds externally produced transaction drafts into the
// ledger. Drafts arrive as JSON messages on a Kafka topic, typically produced
// by the receipt-scan bot, and are recorded through the same path manual
// entry uses. Drafts that cannot be decoded or fail validation go to the DLQ;
// retrying them would not change the outcome.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
	"github.com/ledgerai/merchant-ledger/internal/platform/messaging/producers"
)

// TransactionDraft is the wire format for intake messages
type TransactionDraft struct {
	Type          string          `json:"type"`
	Items         []DraftItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Date          time.Time       `json:"date"`
	Source        string          `json:"source,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// DraftItem is a single line of a transaction draft
type DraftItem struct {
	ProductName string          `json:"product_name"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Recorder is the ledger surface the intake needs
type Recorder interface {
	RecordTransaction(spec ledger.TransactionSpec) (ledger.Transaction, error)
}

// DraftHandler handles incoming transaction draft messages from Kafka
type DraftHandler struct {
	recorder Recorder
	dlq      producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewDraftHandler creates a new intake handler
func NewDraftHandler(logger *slog.Logger, recorder Recorder, dlq producers.DeadLetterPublisher) *DraftHandler {
	return &DraftHandler{
		recorder: recorder,
		dlq:      dlq,
		logger:   logger,
	}
}

// HandleMessage processes one draft message. Returning nil commits the
// offset; returning an error leaves the message for redelivery.
func (h *DraftHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var draft TransactionDraft
	if err := json.Unmarshal(value, &draft); err != nil {
		h.logger.Error("Failed to unmarshal transaction draft",
			"error", err,
			"message_key", string(key),
		)
		return h.reject(ctx, key, value, fmt.Sprintf("undecodable draft: %s", err))
	}

	logger := h.logger
	if draft.CorrelationID != "" {
		logger = h.logger.With("correlation_id", draft.CorrelationID)
	}

	spec := draft.toSpec()
	txn, err := h.recorder.RecordTransaction(spec)
	if err != nil {
		logger.Warn("Transaction draft rejected",
			"source", draft.Source,
			"type", draft.Type,
			"error", err,
		)
		if ledger.IsValidationError(err) || errors.Is(err, ledger.ErrProductNotFound{}) {
			return h.reject(ctx, key, value, fmt.Sprintf("draft rejected: %s", err))
		}
		return fmt.Errorf("recording transaction draft failed: %w", err)
	}

	logger.Info("Transaction draft recorded",
		"transaction_id", txn.ID.String(),
		"type", string(txn.Type),
		"source", draft.Source,
	)
	return nil
}

// reject routes an unprocessable draft to the DLQ. The offset is committed
// when the DLQ accepts the message; without a DLQ the message is dropped.
func (h *DraftHandler) reject(ctx context.Context, key []byte, value []byte, reason string) error {
	if h.dlq == nil {
		h.logger.Warn("Dropping unprocessable draft, no DLQ configured", "reason", reason)
		return nil
	}
	if err := h.dlq.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish draft to DLQ",
			"dlq_error", err,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to publish draft to DLQ: %w", err)
	}
	return nil
}

func (d TransactionDraft) toSpec() ledger.TransactionSpec {
	items := make([]ledger.ItemSpec, len(d.Items))
	for i, item := range d.Items {
		items[i] = ledger.ItemSpec{
			ProductName: item.ProductName,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	return ledger.TransactionSpec{
		Type:        ledger.TransactionType(d.Type),
		Items:       items,
		TotalAmount: d.TotalAmount,
		Date:        d.Date,
	}
}
