package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

func newProductServiceFixture() (*ProductService, *stockFixture) {
	stock := newStockFixture(DispatchSync)
	service := NewProductService(stock.products, stock.service, nil, nil, newTestLogger())
	return service, stock
}

func TestProductService_CreateProduct(t *testing.T) {
	service, stock := newProductServiceFixture()

	dto, err := service.CreateProduct(context.Background(), CreateProductCommand{
		ProductID:    "PROD-1",
		Name:         "Widget",
		MinThreshold: 5,
		InitialStock: 10,
		UserID:       "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROD-1", dto.ProductID)
	assert.Equal(t, 5, dto.MinThreshold)

	// Initial stock goes through the regular adjustment path
	record, err := stock.inventory.FindByProductAndLocation(context.Background(), "PROD-1", domain.DefaultLocationID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 10, record.CurrentStock)
	require.Len(t, stock.history.entries, 1)
	assert.Equal(t, InitialStockReason, stock.history.entries[0].Reason)
}

func TestProductService_CreateProduct_LowInitialStockRaisesAlert(t *testing.T) {
	service, stock := newProductServiceFixture()

	_, err := service.CreateProduct(context.Background(), CreateProductCommand{
		ProductID:    "PROD-1",
		Name:         "Widget",
		MinThreshold: 5,
		InitialStock: 2,
	})
	require.NoError(t, err)
	require.Len(t, stock.alerts.alerts, 1)
	assert.Equal(t, 2, stock.alerts.alerts[0].CurrentStock)
}

func TestProductService_CreateProduct_Duplicate(t *testing.T) {
	service, _ := newProductServiceFixture()

	_, err := service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: 5})
	require.NoError(t, err)

	_, err = service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: 5})
	assert.Error(t, err)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	service, _ := newProductServiceFixture()

	_, err := service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "", Name: "Widget", MinThreshold: 5})
	assert.Error(t, err)

	_, err = service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: -1})
	assert.Error(t, err)

	// A threshold of 0 would never alert
	_, err = service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: 0})
	assert.Error(t, err)

	_, err = service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: 5, InitialStock: -1})
	assert.Error(t, err)
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	service, _ := newProductServiceFixture()

	_, err := service.CreateProduct(context.Background(), CreateProductCommand{ProductID: "PROD-1", Name: "Widget", MinThreshold: 5})
	require.NoError(t, err)

	threshold := 8
	name := "Gadget"
	dto, err := service.UpdateProduct(context.Background(), UpdateProductCommand{ProductID: "PROD-1", Name: &name, MinThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", dto.Name)
	assert.Equal(t, 8, dto.MinThreshold)

	require.NoError(t, service.DeleteProduct(context.Background(), "PROD-1"))
	_, err = service.GetProduct(context.Background(), GetProductQuery{ProductID: "PROD-1"})
	assert.Error(t, err)

	assert.Error(t, service.DeleteProduct(context.Background(), "PROD-1"))
}

func TestProductService_ListProducts(t *testing.T) {
	service, _ := newProductServiceFixture()

	for _, id := range []string{"PROD-1", "PROD-2", "PROD-3"} {
		_, err := service.CreateProduct(context.Background(), CreateProductCommand{ProductID: id, Name: "Widget", MinThreshold: 5})
		require.NoError(t, err)
	}

	products, err := service.ListProducts(context.Background(), ListProductsQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, products, 2)

	rest, err := service.ListProducts(context.Background(), ListProductsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestProductService_ListProducts_StoreFailure(t *testing.T) {
	service, stock := newProductServiceFixture()
	stock.products.findErr = errors.New("store down")

	_, err := service.ListProducts(context.Background(), ListProductsQuery{Limit: 10})
	assert.Error(t, err)
}
