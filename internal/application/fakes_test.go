package application

import (
	"context"
	"sort"

	"github.com/stockwatch-platform/alert-service/internal/domain"
	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"
)

type fakeProductRepo struct {
	products []*domain.Product
	saveErr  error
	findErr  error
}

func (f *fakeProductRepo) Save(ctx context.Context, product *domain.Product) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for i, existing := range f.products {
		if existing.ProductID == product.ProductID {
			f.products[i] = product
			return nil
		}
	}
	f.products = append(f.products, product)
	return nil
}

func (f *fakeProductRepo) FindByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, product := range f.products {
		if product.ProductID == productID {
			return product, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if offset >= len(f.products) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(f.products) {
		end = len(f.products)
	}
	return f.products[offset:end], nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, productID string) error {
	for i, product := range f.products {
		if product.ProductID == productID {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeInventoryRepo struct {
	records []*domain.InventoryRecord
	saveErr error
	findErr error
}

func (f *fakeInventoryRepo) Save(ctx context.Context, record *domain.InventoryRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for i, existing := range f.records {
		if existing.ProductID == record.ProductID && existing.LocationID == record.LocationID {
			f.records[i] = record
			return nil
		}
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeInventoryRepo) FindByProductAndLocation(ctx context.Context, productID, locationID string) (*domain.InventoryRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, record := range f.records {
		if record.ProductID == productID && record.LocationID == locationID {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeInventoryRepo) FindByProduct(ctx context.Context, productID string) ([]*domain.InventoryRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.InventoryRecord, 0)
	for _, record := range f.records {
		if record.ProductID == productID {
			results = append(results, record)
		}
	}
	return results, nil
}

func (f *fakeInventoryRepo) FindAll(ctx context.Context, limit, offset int) ([]*domain.InventoryRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.records, nil
}

type fakeHistoryRepo struct {
	entries   []*domain.StockHistoryEntry
	appendErr error
}

func (f *fakeHistoryRepo) Append(ctx context.Context, entry *domain.StockHistoryEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistoryRepo) FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*domain.StockHistoryEntry, error) {
	results := make([]*domain.StockHistoryEntry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ProductID == productID {
			results = append(results, f.entries[i])
		}
	}
	return results, nil
}

type fakeAlertRepo struct {
	alerts    []*domain.Alert
	saveErr   error
	insertErr error
	findErr   error
}

func (f *fakeAlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	if f.saveErr != nil {
		return f.saveErr
	}
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
	for _, existing := range f.alerts {
		if existing.ProductID == alert.ProductID && existing.IsActive() {
			return existing, false, nil
		}
	}
	f.alerts = append(f.alerts, alert)
	return alert, true, nil
}

func (f *fakeAlertRepo) FindByAlertID(ctx context.Context, alertID string) (*domain.Alert, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, alert := range f.alerts {
		if alert.AlertID == alertID {
			return alert, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) FindActiveByProduct(ctx context.Context, productID string) (*domain.Alert, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, alert := range f.alerts {
		if alert.ProductID == productID && alert.IsActive() {
			return alert, nil
		}
	}
	return nil, nil
}

func (f *fakeAlertRepo) FindByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Alert, 0)
	for _, alert := range f.alerts {
		if alert.Status == status {
			results = append(results, alert)
		}
	}
	sortAlertsNewestFirst(results)
	return results, nil
}

func (f *fakeAlertRepo) FindAll(ctx context.Context) ([]*domain.Alert, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	results := make([]*domain.Alert, len(f.alerts))
	copy(results, f.alerts)
	sortAlertsNewestFirst(results)
	return results, nil
}

func sortAlertsNewestFirst(alerts []*domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
}

type fakeDispatcher struct {
	requests    []AlertRequest
	dispatchErr error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req AlertRequest) error {
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.requests = append(f.requests, req)
	return nil
}

type fakePublisher struct {
	events     []*cloudevents.CloudEvent
	publishErr error
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, event)
	return nil
}

func newTestLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("test"))
}
