package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stockwatch-platform/alert-service/internal/application"
	"github.com/stockwatch-platform/alert-service/internal/domain"
	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
)

// AlertRequestProcessor consumes alert requests from the queue and runs
// them through the evaluator. Delivery is at least once: redelivered
// requests are harmless because the evaluator reuses the product's
// active alert instead of creating a second one.
type AlertRequestProcessor struct {
	evaluator *application.AlertEvaluator
	logger    *logging.Logger
}

// NewAlertRequestProcessor creates a new AlertRequestProcessor
func NewAlertRequestProcessor(evaluator *application.AlertEvaluator, logger *logging.Logger) *AlertRequestProcessor {
	return &AlertRequestProcessor{
		evaluator: evaluator,
		logger:    logger,
	}
}

// Handle processes a single alert request event.
func (p *AlertRequestProcessor) Handle(ctx context.Context, event *cloudevents.CloudEvent) error {
	req, err := decodeAlertRequest(event)
	if err != nil {
		// A malformed payload will never parse on redelivery either,
		// so log it and drop the message.
		p.logger.Error("Dropping malformed alert request", "eventId", event.ID, "error", err)
		return nil
	}

	alert, created, err := p.evaluator.Evaluate(ctx,
		req.ProductID,
		req.LocationID,
		req.CurrentStock,
		req.MinThreshold,
		domain.AlertType(req.AlertType),
		domain.AlertOriginQueue,
	)
	if err != nil {
		return fmt.Errorf("failed to evaluate alert request %s: %w", req.RequestID, err)
	}

	if alert == nil {
		p.logger.Info("Alert request needs no alert",
			"productId", req.ProductID,
			"requestId", req.RequestID,
		)
		return nil
	}

	p.logger.Info("Processed alert request",
		"productId", req.ProductID,
		"requestId", req.RequestID,
		"alertId", alert.AlertID,
		"created", created,
	)
	return nil
}

// ProcessBatch runs a batch of alert request events, isolating failures
// so one bad message does not stop the rest of the batch.
func (p *AlertRequestProcessor) ProcessBatch(ctx context.Context, events []*cloudevents.CloudEvent) application.BatchResultDTO {
	result := application.BatchResultDTO{Processed: len(events)}

	for _, event := range events {
		if err := p.Handle(ctx, event); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("event %s: %v", event.ID, err))
			continue
		}
		result.Succeeded++
	}

	if result.Failed > 0 {
		p.logger.Warn("Alert request batch completed with failures",
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
		)
	}
	return result
}

// decodeAlertRequest extracts the typed payload from the event. The
// consumer unmarshals Data into a generic map, so it goes through JSON
// once more to reach the typed struct.
func decodeAlertRequest(event *cloudevents.CloudEvent) (*application.AlertRequest, error) {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	var data cloudevents.AlertRequestedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert request: %w", err)
	}

	if data.ProductID == "" {
		return nil, fmt.Errorf("alert request is missing productId")
	}

	return &application.AlertRequest{
		ProductID:    data.ProductID,
		LocationID:   data.LocationID,
		CurrentStock: data.CurrentStock,
		MinThreshold: data.MinThreshold,
		AlertType:    data.AlertType,
		RequestID:    data.RequestID,
	}, nil
}
