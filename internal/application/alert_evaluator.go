package application

import (
	"context"
	"fmt"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// EventPublisher publishes CloudEvents to a topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error
}

// AlertDispatcher hands an evaluation request to the alert request queue
type AlertDispatcher interface {
	Dispatch(ctx context.Context, req AlertRequest) error
}

// AlertEvaluator decides whether a stock level warrants an alert.
// Stock at or above the threshold never raises one; below it, the
// evaluator creates at most one NEW alert per product.
type AlertEvaluator struct {
	alerts       domain.AlertRepository
	publisher    EventPublisher
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewAlertEvaluator creates a new AlertEvaluator
func NewAlertEvaluator(
	alerts domain.AlertRepository,
	publisher EventPublisher,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *AlertEvaluator {
	return &AlertEvaluator{
		alerts:       alerts,
		publisher:    publisher,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// Evaluate checks the stock level against the threshold and raises an
// alert when stock is strictly below it. It returns the active alert
// (freshly created or reused) and whether a new one was created.
func (e *AlertEvaluator) Evaluate(ctx context.Context, productID, locationID string, currentStock, minThreshold int, alertType domain.AlertType, origin string) (*domain.Alert, bool, error) {
	if currentStock >= minThreshold {
		return nil, false, nil
	}

	e.publishLowStockDetected(ctx, productID, locationID, currentStock, minThreshold)

	candidate, err := domain.NewAlert(productID, locationID, alertType, currentStock, minThreshold, origin)
	if err != nil {
		return nil, false, err
	}

	alert, created, err := e.alerts.InsertIfNoActive(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store alert: %w", err)
	}

	if !created {
		e.metrics.RecordAlertDeduplicated(origin)
		e.logger.Info("Reused active alert", "productId", productID, "alertId", alert.AlertID, "origin", origin)
		return alert, false, nil
	}

	e.metrics.RecordAlertCreated(origin)
	e.logger.Info("Created low stock alert",
		"alertId", alert.AlertID,
		"productId", productID,
		"currentStock", currentStock,
		"minThreshold", minThreshold,
		"origin", origin,
	)

	e.publishAlertCreated(ctx, alert)

	return alert, true, nil
}

// publishLowStockDetected emits the LowStockDetected event each time an
// evaluation finds stock below the threshold, whether or not a new alert
// results. Publishing is best effort.
func (e *AlertEvaluator) publishLowStockDetected(ctx context.Context, productID, locationID string, currentStock, minThreshold int) {
	if e.publisher == nil || e.eventFactory == nil {
		return
	}

	event := e.eventFactory.CreateLowStockDetectedEvent(ctx, productID, locationID, currentStock, minThreshold)
	if err := e.publisher.PublishEvent(ctx, kafka.Topics.InventoryEvents, event); err != nil {
		e.logger.Warn("Failed to publish low stock detected event", "productId", productID, "error", err)
	}
}

// publishAlertCreated emits the AlertCreated event. Publishing is best
// effort and never fails the evaluation.
func (e *AlertEvaluator) publishAlertCreated(ctx context.Context, alert *domain.Alert) {
	if e.publisher == nil || e.eventFactory == nil {
		return
	}

	event := e.eventFactory.CreateAlertCreatedEvent(ctx,
		alert.AlertID,
		alert.ProductID,
		alert.LocationID,
		string(alert.AlertType),
		alert.MinThreshold,
		alert.CurrentStock,
		alert.Origin,
	)

	if err := e.publisher.PublishEvent(ctx, kafka.Topics.AlertEvents, event); err != nil {
		e.logger.Warn("Failed to publish alert created event", "alertId", alert.AlertID, "error", err)
	}
}
