package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

func newAlertServiceFixture() (*AlertService, *fakeAlertRepo, *fakeProductRepo, *fakeInventoryRepo) {
	alerts := &fakeAlertRepo{}
	products := &fakeProductRepo{}
	inventory := &fakeInventoryRepo{}
	service := NewAlertService(alerts, products, inventory, nil, nil, newTestMetrics(), newTestLogger())
	return service, alerts, products, inventory
}

func newActiveAlert(t *testing.T, productID string) *domain.Alert {
	t.Helper()
	alert, err := domain.NewAlert(productID, "main", domain.AlertTypeLow, 2, 5, domain.AlertOriginAdjustment)
	require.NoError(t, err)
	return alert
}

func TestAlertService_Acknowledge(t *testing.T) {
	service, alerts, _, _ := newAlertServiceFixture()
	alert := newActiveAlert(t, "PROD-1")
	alerts.alerts = append(alerts.alerts, alert)

	dto, err := service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: alert.AlertID, UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.AlertStatusAcknowledged), dto.Status)
	assert.Equal(t, "alice", dto.AcknowledgedBy)
	require.NotNil(t, dto.AcknowledgedAt)
}

func TestAlertService_Acknowledge_Idempotent(t *testing.T) {
	service, alerts, _, _ := newAlertServiceFixture()
	alert := newActiveAlert(t, "PROD-1")
	alerts.alerts = append(alerts.alerts, alert)

	first, err := service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: alert.AlertID, UserID: "alice"})
	require.NoError(t, err)

	second, err := service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: alert.AlertID, UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "alice", second.AcknowledgedBy)
	assert.Equal(t, first.AcknowledgedAt.Unix(), second.AcknowledgedAt.Unix())
}

func TestAlertService_Acknowledge_DefaultsToSystem(t *testing.T) {
	service, alerts, _, _ := newAlertServiceFixture()
	alert := newActiveAlert(t, "PROD-1")
	alerts.alerts = append(alerts.alerts, alert)

	dto, err := service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: alert.AlertID})
	require.NoError(t, err)
	assert.Equal(t, "system", dto.AcknowledgedBy)
}

func TestAlertService_Acknowledge_NotFound(t *testing.T) {
	service, _, _, _ := newAlertServiceFixture()

	_, err := service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: "missing"})
	assert.Error(t, err)
}

func TestAlertService_List(t *testing.T) {
	service, alerts, _, _ := newAlertServiceFixture()

	older := newActiveAlert(t, "PROD-1")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newActiveAlert(t, "PROD-2")
	alerts.alerts = append(alerts.alerts, older, newer)

	listed, err := service.List(context.Background(), ListAlertsQuery{})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// Newest first
	assert.Equal(t, "PROD-2", listed[0].ProductID)
	assert.Equal(t, "PROD-1", listed[1].ProductID)

	_, err = service.Acknowledge(context.Background(), AcknowledgeAlertCommand{AlertID: older.AlertID, UserID: "alice"})
	require.NoError(t, err)

	active, err := service.List(context.Background(), ListAlertsQuery{Status: "NEW"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "PROD-2", active[0].ProductID)

	acked, err := service.List(context.Background(), ListAlertsQuery{Status: "ACKNOWLEDGED"})
	require.NoError(t, err)
	require.Len(t, acked, 1)
}

func TestAlertService_List_UnknownStatus(t *testing.T) {
	service, _, _, _ := newAlertServiceFixture()

	_, err := service.List(context.Background(), ListAlertsQuery{Status: "CLOSED"})
	assert.Error(t, err)
}

func TestAlertService_Create(t *testing.T) {
	service, alerts, products, inventory := newAlertServiceFixture()

	product, err := domain.NewProduct("PROD-1", "Widget", 5)
	require.NoError(t, err)
	require.NoError(t, products.Save(context.Background(), product))

	record := domain.NewInventoryRecord("PROD-1", "main")
	_, err = record.ApplyChange(2, "initial stock", "")
	require.NoError(t, err)
	require.NoError(t, inventory.Save(context.Background(), record))

	dto, err := service.Create(context.Background(), CreateAlertCommand{ProductID: "PROD-1", AlertType: "LOW"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.AlertStatusNew), dto.Status)
	assert.Equal(t, 2, dto.CurrentStock)
	assert.Equal(t, 5, dto.MinThreshold)
	assert.Equal(t, domain.AlertOriginManual, dto.Origin)
	assert.Len(t, alerts.alerts, 1)

	// A second direct creation reuses the active alert
	again, err := service.Create(context.Background(), CreateAlertCommand{ProductID: "PROD-1", AlertType: "LOW"})
	require.NoError(t, err)
	assert.Equal(t, dto.AlertID, again.AlertID)
	assert.Len(t, alerts.alerts, 1)
}

func TestAlertService_Create_ProductNotFound(t *testing.T) {
	service, _, _, _ := newAlertServiceFixture()

	_, err := service.Create(context.Background(), CreateAlertCommand{ProductID: "missing", AlertType: "LOW"})
	assert.Error(t, err)
}

func TestAlertService_Create_ExplicitSnapshots(t *testing.T) {
	service, _, products, _ := newAlertServiceFixture()

	product, err := domain.NewProduct("PROD-1", "Widget", 5)
	require.NoError(t, err)
	require.NoError(t, products.Save(context.Background(), product))

	stock := 1
	threshold := 9
	dto, err := service.Create(context.Background(), CreateAlertCommand{
		ProductID:    "PROD-1",
		AlertType:    "LOW",
		CurrentStock: &stock,
		MinThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, dto.CurrentStock)
	assert.Equal(t, 9, dto.MinThreshold)
}
