package handler

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to add a product to the registry
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Quantity     int             `json:"quantity" binding:"min=0"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Category     string          `json:"category"`
}

// UpdateProductRequest represents a partial product update. Only the listed
// fields are updatable; requests carrying unknown fields are rejected.
type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Quantity     *int             `json:"quantity"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Category     *string          `json:"category"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	CostPrice    string `json:"cost_price"`
	SellingPrice string `json:"selling_price"`
	Category     string `json:"category,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// TransactionItemRequest represents one line of a transaction to record
type TransactionItemRequest struct {
	ProductName string          `json:"product_name" binding:"required"`
	ProductID   string          `json:"product_id,omitempty"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// CreateTransactionRequest represents a request to record a transaction
type CreateTransactionRequest struct {
	Type        string                   `json:"type" binding:"required,oneof=sale purchase expense"`
	Items       []TransactionItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	Date        time.Time                `json:"date"`
}

// TransactionItemResponse represents a transaction line in API responses
type TransactionItemResponse struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	ProductID   string `json:"product_id,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string                    `json:"id"`
	Type        string                    `json:"type"`
	Items       []TransactionItemResponse `json:"items"`
	TotalAmount string                    `json:"total_amount"`
	Date        string                    `json:"date"`
	CreatedAt   string                    `json:"created_at"`
}

// MetricsResponse represents the dashboard summary in API responses
type MetricsResponse struct {
	TotalRevenue   string `json:"total_revenue"`
	TotalCost      string `json:"total_cost"`
	TotalExpenses  string `json:"total_expenses"`
	Profit         string `json:"profit"`
	InventoryValue string `json:"inventory_value"`
	TotalProducts  int    `json:"total_products"`
	LowStockCount  int    `json:"low_stock_count"`
}

// TelegramAuthRequest represents a Mini-App session request
type TelegramAuthRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// TelegramUserResponse represents the authenticated identity
type TelegramUserResponse struct {
	TelegramID   int64  `json:"telegram_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// TelegramAuthResponse represents an established session
type TelegramAuthResponse struct {
	Token string               `json:"token"`
	User  TelegramUserResponse `json:"user"`
}
