package queue

import (
	"context"
	"fmt"

	"github.com/stockwatch-platform/alert-service/internal/application"
	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
)

// KafkaAlertDispatcher publishes alert evaluation requests to the alert
// request topic instead of evaluating them inline. The worker consumes
// the topic and performs the evaluation asynchronously.
type KafkaAlertDispatcher struct {
	producer     application.EventPublisher
	eventFactory *cloudevents.EventFactory
	logger       *logging.Logger
}

// NewKafkaAlertDispatcher creates a new KafkaAlertDispatcher
func NewKafkaAlertDispatcher(
	producer application.EventPublisher,
	eventFactory *cloudevents.EventFactory,
	logger *logging.Logger,
) *KafkaAlertDispatcher {
	return &KafkaAlertDispatcher{
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// Dispatch enqueues an alert request. The event is keyed by product so
// requests for the same product land on the same partition in order.
func (d *KafkaAlertDispatcher) Dispatch(ctx context.Context, req application.AlertRequest) error {
	event := d.eventFactory.CreateAlertRequestedEvent(ctx,
		req.ProductID,
		req.LocationID,
		req.CurrentStock,
		req.MinThreshold,
		req.AlertType,
		req.RequestID,
	)

	if err := d.producer.PublishEvent(ctx, kafka.Topics.AlertRequests, event); err != nil {
		return fmt.Errorf("failed to enqueue alert request: %w", err)
	}

	d.logger.Info("Enqueued alert request",
		"productId", req.ProductID,
		"requestId", req.RequestID,
		"topic", kafka.Topics.AlertRequests,
	)
	return nil
}
