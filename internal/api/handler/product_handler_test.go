package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerai/merchant-ledger/internal/domain/ledger"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AddProduct(spec ledger.ProductSpec) (ledger.Product, error) {
	args := m.Called(spec)
	return args.Get(0).(ledger.Product), args.Error(1)
}

func (m *MockLedger) UpdateProduct(id uuid.UUID, patch ledger.ProductPatch) (ledger.Product, error) {
	args := m.Called(id, patch)
	return args.Get(0).(ledger.Product), args.Error(1)
}

func (m *MockLedger) RecordTransaction(spec ledger.TransactionSpec) (ledger.Transaction, error) {
	args := m.Called(spec)
	return args.Get(0).(ledger.Transaction), args.Error(1)
}

func (m *MockLedger) Products() []ledger.Product {
	args := m.Called()
	return args.Get(0).([]ledger.Product)
}

func (m *MockLedger) Transactions() []ledger.Transaction {
	args := m.Called()
	return args.Get(0).([]ledger.Transaction)
}

func (m *MockLedger) Metrics() ledger.DashboardMetrics {
	args := m.Called()
	return args.Get(0).(ledger.DashboardMetrics)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// decodeData unmarshals the "data" field of the response envelope into out.
func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var envelope Response
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Data, "'data' field should not be nil")
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, out))
}

func decodeError(t *testing.T, body []byte) *ErrorInfo {
	t.Helper()
	var envelope Response
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotNil(t, envelope.Error, "'error' field should not be nil")
	return envelope.Error
}

func sampleProduct() ledger.Product {
	now := time.Now()
	return ledger.Product{
		ID:           uuid.New(),
		Name:         "Premium Coffee Beans",
		Quantity:     45,
		CostPrice:    decimal.RequireFromString("12.50"),
		SellingPrice: decimal.RequireFromString("24.99"),
		Category:     "Beverages",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		expected := sampleProduct()
		mockLedger.On("AddProduct", mock.MatchedBy(func(spec ledger.ProductSpec) bool {
			return spec.Name == "Premium Coffee Beans" && spec.Quantity == 45
		})).Return(expected, nil)

		router := setupTestRouter()
		router.POST("/products", handler.Create)

		jsonBody, _ := json.Marshal(CreateProductRequest{
			Name:         "Premium Coffee Beans",
			Quantity:     45,
			CostPrice:    decimal.RequireFromString("12.50"),
			SellingPrice: decimal.RequireFromString("24.99"),
			Category:     "Beverages",
		})
		req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp ProductResponse
		decodeData(t, rr.Body.Bytes(), &resp)
		assert.Equal(t, expected.ID.String(), resp.ID)
		assert.Equal(t, "12.5", resp.CostPrice)
		mockLedger.AssertExpectations(t)
	})

	t.Run("MissingName", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		router := setupTestRouter()
		router.POST("/products", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"quantity":5}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockLedger.AssertNotCalled(t, "AddProduct")
	})

	t.Run("DomainValidationFailure", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		mockLedger.On("AddProduct", mock.Anything).Return(ledger.Product{}, ledger.ErrNegativePrice)

		router := setupTestRouter()
		router.POST("/products", handler.Create)

		jsonBody, _ := json.Marshal(CreateProductRequest{
			Name:      "Tea",
			CostPrice: decimal.RequireFromString("-1"),
		})
		req, _ := http.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, rr.Body.Bytes()).Code)
	})
}

func TestProductHandler_List(t *testing.T) {
	mockLedger := new(MockLedger)
	handler := NewProductHandler(testHandlerLogger(), mockLedger)

	mockLedger.On("Products").Return([]ledger.Product{sampleProduct(), sampleProduct()})

	router := setupTestRouter()
	router.GET("/products", handler.List)

	req, _ := http.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []ProductResponse
	decodeData(t, rr.Body.Bytes(), &resp)
	assert.Len(t, resp, 2)
}

func TestProductHandler_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		updated := sampleProduct()
		updated.Quantity = 30
		mockLedger.On("UpdateProduct", updated.ID, mock.MatchedBy(func(patch ledger.ProductPatch) bool {
			return patch.Quantity != nil && *patch.Quantity == 30 && patch.Name == nil
		})).Return(updated, nil)

		router := setupTestRouter()
		router.PATCH("/products/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPatch, "/products/"+updated.ID.String(), bytes.NewBufferString(`{"quantity":30}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp ProductResponse
		decodeData(t, rr.Body.Bytes(), &resp)
		assert.Equal(t, 30, resp.Quantity)
		mockLedger.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		router := setupTestRouter()
		router.PATCH("/products/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPatch, "/products/not-a-uuid", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockLedger.AssertNotCalled(t, "UpdateProduct")
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		router := setupTestRouter()
		router.PATCH("/products/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPatch, "/products/"+uuid.New().String(), bytes.NewBufferString(`{"quantitty":30}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockLedger.AssertNotCalled(t, "UpdateProduct")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockLedger := new(MockLedger)
		handler := NewProductHandler(testHandlerLogger(), mockLedger)

		id := uuid.New()
		mockLedger.On("UpdateProduct", id, mock.Anything).
			Return(ledger.Product{}, ledger.ErrProductNotFound{ProductID: id})

		router := setupTestRouter()
		router.PATCH("/products/:id", handler.Update)

		req, _ := http.NewRequest(http.MethodPatch, "/products/"+id.String(), bytes.NewBufferString(`{"quantity":1}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rr.Body.Bytes()).Code)
	})
}
