package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

// Ledger is the store surface the HTTP handlers need
type Ledger interface {
	AddProduct(spec ledger.ProductSpec) (ledger.Product, error)
	UpdateProduct(id uuid.UUID, patch ledger.ProductPatch) (ledger.Product, error)
	RecordTransaction(spec ledger.TransactionSpec) (ledger.Transaction, error)
	Products() []ledger.Product
	Transactions() []ledger.Transaction
	Metrics() ledger.DashboardMetrics
}

// ProductHandler handles product registry requests
type ProductHandler struct {
	ledger Ledger
	logger *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(logger *slog.Logger, l Ledger) *ProductHandler {
	return &ProductHandler{ledger: l, logger: logger}
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	p, err := h.ledger.AddProduct(ledger.ProductSpec{
		Name:         req.Name,
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Category:     req.Category,
	})
	if err != nil {
		if ledger.IsValidationError(err) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to add product", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, newProductResponse(p))
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	products := h.ledger.Products()

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = newProductResponse(p)
	}
	RespondOK(c, out)
}

// Update handles PATCH /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid product ID format")
		return
	}

	// A patch is a field mask; a misspelled field must fail loudly instead
	// of silently updating nothing.
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	var req UpdateProductRequest
	if err := decoder.Decode(&req); err != nil {
		RespondBadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	p, err := h.ledger.UpdateProduct(id, ledger.ProductPatch{
		Name:         req.Name,
		Quantity:     req.Quantity,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Category:     req.Category,
	})
	if err != nil {
		switch {
		case ledger.IsValidationError(err):
			RespondBadRequest(c, err.Error())
		case isNotFound(err):
			RespondNotFound(c, "Product not found")
		default:
			h.logger.Error("Failed to update product", "product_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, newProductResponse(p))
}

func newProductResponse(p ledger.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Quantity:     p.Quantity,
		CostPrice:    p.CostPrice.String(),
		SellingPrice: p.SellingPrice.String(),
		Category:     p.Category,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
