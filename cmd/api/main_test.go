package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/application"
	"github.com/stockwatch-platform/alert-service/internal/domain"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/middleware"
)

// failingProductRepo returns an error from every read so handlers can be
// exercised against a broken store
type failingProductRepo struct{}

func (f *failingProductRepo) Save(ctx context.Context, product *domain.Product) error {
	return errors.New("store down")
}

func (f *failingProductRepo) FindByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	return nil, errors.New("store down")
}

func (f *failingProductRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return nil, errors.New("store down")
}

func (f *failingProductRepo) Delete(ctx context.Context, productID string) error {
	return errors.New("store down")
}

func newProductTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.InitValidator()

	logger := logging.New(logging.DefaultConfig("test"))
	service := application.NewProductService(&failingProductRepo{}, nil, nil, nil, logger)

	router := gin.New()
	router.POST("/api/v1/products", createProductHandler(service, logger))
	router.GET("/api/v1/products", listProductsHandler(service, logger))
	return router
}

func TestListProductsHandler_StoreFailure(t *testing.T) {
	router := newProductTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "code")
}

func TestCreateProductHandler_RejectsMalformedProductID(t *testing.T) {
	router := newProductTestRouter()

	body := `{"productId": "bad id!", "name": "Widget", "minThreshold": 5}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "productId")
}

func TestCreateProductHandler_RejectsZeroThreshold(t *testing.T) {
	router := newProductTestRouter()

	body := `{"productId": "PROD-1", "name": "Widget", "minThreshold": 0}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
