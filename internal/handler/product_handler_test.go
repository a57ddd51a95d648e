package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: "P001", Name: "Product 1", Price: decimal.NewFromInt(10), Category: "Cat1", CreatedAt: time.Now()},
		{ID: "P002", Name: "Product 2", Price: decimal.NewFromInt(20), Category: "Cat2", CreatedAt: time.Now()},
	}

	tests := []struct {
		name           string
		queryParams    string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		limit          int
		offset         int
	}{
		{
			name:           "Success with default pagination",
			queryParams:    "",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          10,
			offset:         0,
		},
		{
			name:           "Success with custom pagination",
			queryParams:    "?limit=5&offset=10",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
			limit:          5,
			offset:         10,
		},
		{
			name:           "Invalid limit parameter",
			queryParams:    "?limit=invalid",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Invalid offset parameter",
			queryParams:    "?offset=invalid",
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
		{
			name:           "Service error",
			queryParams:    "",
			mockError:      model.NewStorageError("get products", errors.New("database error")),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
			limit:          10,
			offset:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetAll", mock.Anything, tt.limit, tt.offset).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/products"+tt.queryParams, nil)
			w := serve(handler.GetAll, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
				assert.Len(t, products, 2)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	testProduct := &model.Product{
		ID:        "P001",
		Name:      "Product 1",
		Price:     decimal.NewFromInt(10),
		Category:  "Cat1",
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name           string
		productID      string
		mockReturn     *model.Product
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			productID:      "P001",
			mockReturn:     testProduct,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Product not found",
			productID:      "P999",
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Storage failure",
			productID:      "P001",
			mockError:      model.NewStorageError("get product", errors.New("database error")),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.mockReturn != nil {
				mockService.On("GetByID", mock.Anything, tt.productID).Return(tt.mockReturn, nil)
			} else {
				mockService.On("GetByID", mock.Anything, tt.productID).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/products/"+tt.productID, nil)
			req.SetPathValue("id", tt.productID)
			w := serve(handler.GetByID, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetAll_ByIDs(t *testing.T) {
	logger := zerolog.Nop()

	capProduct := model.Product{
		ID:    "P002",
		Name:  "Canvas Cap",
		Price: decimal.NewFromInt(15),
		Variants: []model.ProductVariant{
			{ProductID: "P002", Size: "ONE", Color: "Black", Stock: 4},
		},
	}

	tests := []struct {
		name           string
		query          string
		expectIDs      []string
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectType     string
	}{
		{
			name:           "Products for a cart",
			query:          "?ids=P002,P404",
			expectIDs:      []string{"P002", "P404"},
			mockReturn:     []model.Product{capProduct},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Pagination is ignored",
			query:          "?ids=P002&limit=invalid",
			expectIDs:      []string{"P002"},
			mockReturn:     []model.Product{capProduct},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Too many IDs",
			query:          "?ids=a,b",
			expectIDs:      []string{"a", "b"},
			mockError:      model.NewValidationError("ids", "at most 100 product IDs may be requested"),
			expectedStatus: http.StatusBadRequest,
			expectType:     model.ErrCodeValidation,
		},
		{
			name:           "Storage failure",
			query:          "?ids=P002",
			expectIDs:      []string{"P002"},
			mockError:      model.NewStorageError("get products", errors.New("database error")),
			expectedStatus: http.StatusInternalServerError,
			expectType:     model.ErrCodeStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, logger)

			if tt.mockError != nil {
				mockService.On("GetByIDs", mock.Anything, tt.expectIDs).Return(nil, tt.mockError)
			} else {
				mockService.On("GetByIDs", mock.Anything, tt.expectIDs).Return(tt.mockReturn, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil)
			w := serve(handler.GetAll, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var products []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
				require.Len(t, products, 1)
				assert.Equal(t, 4, products[0].Variants[0].Stock)
			} else {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectType, resp.Type)
			}
			mockService.AssertExpectations(t)
			mockService.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
