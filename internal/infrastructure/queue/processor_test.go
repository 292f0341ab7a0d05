package queue

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch-platform/alert-service/internal/application"
	"github.com/stockwatch-platform/alert-service/internal/domain"
	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"
)

type fakeAlertRepo struct {
	alerts    []*domain.Alert
	insertErr error
	failOn    string
}

func (f *fakeAlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	for i, existing := range f.alerts {
		if existing.AlertID == alert.AlertID {
			f.alerts[i] = alert
			return nil
		}
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertRepo) InsertIfNoActive(ctx context.Context, alert *domain.Alert) (*domain.Alert, bool, error) {
	if f.insertErr != nil {
		return nil, false, f.insertErr
	}
	if f.failOn != "" && alert.ProductID == f.failOn {
		return nil, false, errors.New("storage unavailable")
	}
	for _, existing := range f.alerts {
		if existing.ProductID == alert.ProductID && existing.IsActive() {
			return existing, false, nil
		}
	}
	f.alerts = append(f.alerts, alert)
	return alert, true, nil
}

func (f *fakeAlertRepo) FindByAlertID(ctx context.Context, alertID string) (*domain.Alert, error) {
	for _, alert := range f.alerts {
		if alert.AlertID == alertID {
			return alert, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) FindActiveByProduct(ctx context.Context, productID string) (*domain.Alert, error) {
	for _, alert := range f.alerts {
		if alert.ProductID == productID && alert.IsActive() {
			return alert, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) FindByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	var matched []*domain.Alert
	for _, alert := range f.alerts {
		if alert.Status == status {
			matched = append(matched, alert)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (f *fakeAlertRepo) FindAll(ctx context.Context) ([]*domain.Alert, error) {
	return append([]*domain.Alert(nil), f.alerts...), nil
}

func newTestProcessor(repo *fakeAlertRepo) *AlertRequestProcessor {
	logger := logging.New(logging.DefaultConfig("test"))
	m := metrics.New(metrics.DefaultConfig("test"))
	evaluator := application.NewAlertEvaluator(repo, nil, nil, m, logger)
	return NewAlertRequestProcessor(evaluator, logger)
}

func alertRequestEvent(productID string, currentStock, minThreshold int, requestID string) *cloudevents.CloudEvent {
	factory := cloudevents.NewEventFactory(cloudevents.SourceAlertService)
	return factory.CreateAlertRequestedEvent(context.Background(),
		productID, "main", currentStock, minThreshold, string(domain.AlertTypeLow), requestID)
}

func TestAlertRequestProcessor_CreatesAlertForLowStock(t *testing.T) {
	repo := &fakeAlertRepo{}
	processor := newTestProcessor(repo)

	err := processor.Handle(context.Background(), alertRequestEvent("PROD-1", 3, 5, "req-1"))
	require.NoError(t, err)

	require.Len(t, repo.alerts, 1)
	alert := repo.alerts[0]
	assert.Equal(t, "PROD-1", alert.ProductID)
	assert.Equal(t, 3, alert.CurrentStock)
	assert.Equal(t, 5, alert.MinThreshold)
	assert.Equal(t, domain.AlertOriginQueue, alert.Origin)
	assert.Equal(t, domain.AlertStatusNew, alert.Status)
}

func TestAlertRequestProcessor_StockAtThresholdIsNotLow(t *testing.T) {
	repo := &fakeAlertRepo{}
	processor := newTestProcessor(repo)

	err := processor.Handle(context.Background(), alertRequestEvent("PROD-1", 5, 5, "req-1"))
	require.NoError(t, err)
	assert.Empty(t, repo.alerts)
}

func TestAlertRequestProcessor_RedeliveryIsANoOp(t *testing.T) {
	repo := &fakeAlertRepo{}
	processor := newTestProcessor(repo)

	event := alertRequestEvent("PROD-1", 3, 5, "req-1")
	require.NoError(t, processor.Handle(context.Background(), event))
	require.NoError(t, processor.Handle(context.Background(), event))

	// The active alert is reused rather than duplicated
	assert.Len(t, repo.alerts, 1)
}

func TestAlertRequestProcessor_DecodesMapPayload(t *testing.T) {
	repo := &fakeAlertRepo{}
	processor := newTestProcessor(repo)

	// The consumer parses JSON into a generic map before the handler
	// sees the event
	event := &cloudevents.CloudEvent{
		SpecVersion: "1.0",
		Type:        cloudevents.AlertRequested,
		Source:      cloudevents.SourceAlertService,
		ID:          "evt-1",
		Data: map[string]interface{}{
			"productId":    "PROD-1",
			"locationId":   "main",
			"currentStock": float64(2),
			"minThreshold": float64(5),
			"alertType":    "LOW",
			"requestId":    "req-1",
		},
	}

	require.NoError(t, processor.Handle(context.Background(), event))
	require.Len(t, repo.alerts, 1)
	assert.Equal(t, 2, repo.alerts[0].CurrentStock)
}

func TestAlertRequestProcessor_DropsMalformedPayload(t *testing.T) {
	repo := &fakeAlertRepo{}
	processor := newTestProcessor(repo)

	event := &cloudevents.CloudEvent{
		SpecVersion: "1.0",
		Type:        cloudevents.AlertRequested,
		ID:          "evt-bad",
		Data:        "not an alert request",
	}

	// Malformed messages are dropped, not retried
	require.NoError(t, processor.Handle(context.Background(), event))
	assert.Empty(t, repo.alerts)
}

func TestAlertRequestProcessor_StoreFailureIsRetryable(t *testing.T) {
	repo := &fakeAlertRepo{insertErr: errors.New("connection reset")}
	processor := newTestProcessor(repo)

	err := processor.Handle(context.Background(), alertRequestEvent("PROD-1", 3, 5, "req-1"))
	require.Error(t, err)
}

func TestAlertRequestProcessor_BatchReportsPartialFailure(t *testing.T) {
	repo := &fakeAlertRepo{failOn: "PROD-BAD"}
	processor := newTestProcessor(repo)

	events := []*cloudevents.CloudEvent{
		alertRequestEvent("PROD-1", 3, 5, "req-1"),
		alertRequestEvent("PROD-BAD", 1, 5, "req-2"),
		alertRequestEvent("PROD-2", 4, 5, "req-3"),
	}

	result := processor.ProcessBatch(context.Background(), events)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "req-2")

	// The failing message did not stop the others
	assert.Len(t, repo.alerts, 2)
}
