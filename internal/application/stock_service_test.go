package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

type stockFixture struct {
	products   *fakeProductRepo
	inventory  *fakeInventoryRepo
	history    *fakeHistoryRepo
	alerts     *fakeAlertRepo
	dispatcher *fakeDispatcher
	evaluator  *AlertEvaluator
	service    *StockService
}

func newStockFixture(dispatchMode string) *stockFixture {
	logger := newTestLogger()
	m := newTestMetrics()

	f := &stockFixture{
		products:   &fakeProductRepo{},
		inventory:  &fakeInventoryRepo{},
		history:    &fakeHistoryRepo{},
		alerts:     &fakeAlertRepo{},
		dispatcher: &fakeDispatcher{},
	}
	f.evaluator = NewAlertEvaluator(f.alerts, nil, nil, m, logger)
	f.service = NewStockService(f.products, f.inventory, f.history, f.evaluator, f.dispatcher, dispatchMode, nil, nil, m, logger)
	return f
}

func (f *stockFixture) addProduct(t *testing.T, productID string, minThreshold int) {
	t.Helper()
	product, err := domain.NewProduct(productID, "Widget", minThreshold)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), product))
}

func TestStockService_Adjust_CreatesInventoryRecord(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	result, err := f.service.Adjust(context.Background(), AdjustStockCommand{
		ProductID:    "PROD-1",
		ChangeAmount: 10,
		Reason:       "initial stock",
		UserID:       "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PreviousStock)
	assert.Equal(t, 10, result.CurrentStock)
	assert.Equal(t, 10, result.ChangeAmount)
	assert.Equal(t, domain.DefaultLocationID, result.LocationID)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, 0, f.history.entries[0].PreviousStock)
	assert.Equal(t, 10, f.history.entries[0].NewStock)

	// Stock above the threshold raises nothing
	assert.Empty(t, f.alerts.alerts)
}

func TestStockService_Adjust_LowStockRaisesOneAlert(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 10, Reason: "initial stock"})
	require.NoError(t, err)

	result, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: -6, Reason: "sale"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.CurrentStock)

	require.Len(t, f.alerts.alerts, 1)
	alert := f.alerts.alerts[0]
	assert.Equal(t, domain.AlertStatusNew, alert.Status)
	assert.Equal(t, 4, alert.CurrentStock)
	assert.Equal(t, 5, alert.MinThreshold)
	assert.Equal(t, domain.AlertOriginAdjustment, alert.Origin)

	// A further drop reuses the active alert instead of creating a second one
	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: -1, Reason: "sale"})
	require.NoError(t, err)
	assert.Len(t, f.alerts.alerts, 1)
}

func TestStockService_Adjust_NewAlertAfterAcknowledgement(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 4, Reason: "initial stock"})
	require.NoError(t, err)
	require.Len(t, f.alerts.alerts, 1)

	_, err = f.alerts.alerts[0].Acknowledge("alice")
	require.NoError(t, err)

	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: -1, Reason: "sale"})
	require.NoError(t, err)
	assert.Len(t, f.alerts.alerts, 2)
}

func TestStockService_Adjust_EqualToThresholdIsNotLow(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 5, Reason: "initial stock"})
	require.NoError(t, err)
	assert.Empty(t, f.alerts.alerts)
}

func TestStockService_Adjust_NegativeStockRejected(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 10, Reason: "initial stock"})
	require.NoError(t, err)

	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: -11, Reason: "sale"})
	require.Error(t, err)

	// The rejected adjustment leaves no trace
	record, findErr := f.inventory.FindByProductAndLocation(context.Background(), "PROD-1", domain.DefaultLocationID)
	require.NoError(t, findErr)
	assert.Equal(t, 10, record.CurrentStock)
	assert.Len(t, f.history.entries, 1)
	assert.Empty(t, f.alerts.alerts)
}

func TestStockService_Adjust_ZeroDelta(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	result, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 0, Reason: "cycle count"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PreviousStock)
	assert.Equal(t, 0, result.CurrentStock)
	assert.Len(t, f.history.entries, 1)
}

func TestStockService_Adjust_Validation(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "", ChangeAmount: 1, Reason: "x"})
	assert.Error(t, err)

	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 1, Reason: ""})
	assert.Error(t, err)
	assert.Empty(t, f.history.entries)

	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "missing", ChangeAmount: 1, Reason: "x"})
	assert.Error(t, err)
}

func TestStockService_Adjust_AlertStoreFailureDoesNotFailAdjustment(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)
	f.alerts.insertErr = errors.New("alert store down")

	result, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 3, Reason: "initial stock"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.CurrentStock)
	assert.Len(t, f.history.entries, 1)
}

func TestStockService_Adjust_QueueDispatch(t *testing.T) {
	f := newStockFixture(DispatchQueue)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 3, Reason: "initial stock"})
	require.NoError(t, err)

	// Evaluation is deferred to the queue
	require.Len(t, f.dispatcher.requests, 1)
	req := f.dispatcher.requests[0]
	assert.Equal(t, "PROD-1", req.ProductID)
	assert.Equal(t, 3, req.CurrentStock)
	assert.Equal(t, 5, req.MinThreshold)
	assert.NotEmpty(t, req.RequestID)
	assert.Empty(t, f.alerts.alerts)
}

func TestStockService_Adjust_QueueFailureFallsBackToSync(t *testing.T) {
	f := newStockFixture(DispatchQueue)
	f.addProduct(t, "PROD-1", 5)
	f.dispatcher.dispatchErr = errors.New("broker unavailable")

	result, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 3, Reason: "initial stock"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.CurrentStock)

	// The alert is raised synchronously instead of being lost
	require.Len(t, f.alerts.alerts, 1)
	assert.Equal(t, domain.AlertOriginAdjustment, f.alerts.alerts[0].Origin)
}

func TestStockService_GetHistoryAndInventory(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-1", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: 10, Reason: "initial stock"})
	require.NoError(t, err)
	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-1", ChangeAmount: -2, Reason: "sale"})
	require.NoError(t, err)

	inv, err := f.service.GetInventory(context.Background(), GetInventoryQuery{ProductID: "PROD-1"})
	require.NoError(t, err)
	assert.Equal(t, 8, inv.CurrentStock)

	history, err := f.service.GetHistory(context.Background(), GetHistoryQuery{ProductID: "PROD-1"})
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first
	assert.Equal(t, -2, history[0].ChangeAmount)
	assert.Equal(t, 10, history[1].ChangeAmount)

	_, err = f.service.GetInventory(context.Background(), GetInventoryQuery{ProductID: "missing"})
	assert.Error(t, err)
}

func TestStockService_ListLowStock(t *testing.T) {
	f := newStockFixture(DispatchSync)
	f.addProduct(t, "PROD-LOW", 5)
	f.addProduct(t, "PROD-OK", 5)
	f.addProduct(t, "PROD-EMPTY", 5)

	_, err := f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-LOW", ChangeAmount: 2, Reason: "initial stock"})
	require.NoError(t, err)
	// Split across two locations, 3+3 >= 5
	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-OK", LocationID: "main", ChangeAmount: 3, Reason: "initial stock"})
	require.NoError(t, err)
	_, err = f.service.Adjust(context.Background(), AdjustStockCommand{ProductID: "PROD-OK", LocationID: "backroom", ChangeAmount: 3, Reason: "initial stock"})
	require.NoError(t, err)

	low, err := f.service.ListLowStock(context.Background())
	require.NoError(t, err)
	// Products with no inventory records are not reported
	require.Len(t, low, 1)
	assert.Equal(t, "PROD-LOW", low[0].ProductID)
	assert.Equal(t, 2, low[0].TotalStock)
	assert.Equal(t, 5, low[0].MinThreshold)

	records, err := f.service.ListInventory(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
