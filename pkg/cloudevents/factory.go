package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for stockwatch domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	event := &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	return event
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *CloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}

// CreateStockAdjustedEvent creates a StockAdjusted event
func (f *EventFactory) CreateStockAdjustedEvent(
	ctx context.Context,
	productID string,
	locationID string,
	previousStock int,
	currentStock int,
	changeAmount int,
	reason string,
	userID string,
) *CloudEvent {
	data := StockAdjustedData{
		ProductID:     productID,
		LocationID:    locationID,
		PreviousStock: previousStock,
		CurrentStock:  currentStock,
		ChangeAmount:  changeAmount,
		Reason:        reason,
		UserID:        userID,
	}
	return f.CreateEvent(ctx, StockAdjusted, "inventory/"+productID, data)
}

// CreateLowStockDetectedEvent creates a LowStockDetected event
func (f *EventFactory) CreateLowStockDetectedEvent(
	ctx context.Context,
	productID string,
	locationID string,
	currentStock int,
	minThreshold int,
) *CloudEvent {
	data := LowStockDetectedData{
		ProductID:    productID,
		LocationID:   locationID,
		CurrentStock: currentStock,
		MinThreshold: minThreshold,
	}
	return f.CreateEvent(ctx, LowStockDetected, "inventory/"+productID, data)
}

// CreateAlertCreatedEvent creates an AlertCreated event
func (f *EventFactory) CreateAlertCreatedEvent(
	ctx context.Context,
	alertID string,
	productID string,
	locationID string,
	alertType string,
	threshold int,
	currentStock int,
	origin string,
) *CloudEvent {
	data := AlertCreatedData{
		AlertID:      alertID,
		ProductID:    productID,
		LocationID:   locationID,
		AlertType:    alertType,
		Threshold:    threshold,
		CurrentStock: currentStock,
		Origin:       origin,
	}
	return f.CreateEvent(ctx, AlertCreated, "alert/"+alertID, data)
}

// CreateAlertAcknowledgedEvent creates an AlertAcknowledged event
func (f *EventFactory) CreateAlertAcknowledgedEvent(
	ctx context.Context,
	alertID string,
	productID string,
	acknowledgedBy string,
	acknowledgedAt time.Time,
) *CloudEvent {
	data := AlertAcknowledgedData{
		AlertID:        alertID,
		ProductID:      productID,
		AcknowledgedBy: acknowledgedBy,
		AcknowledgedAt: acknowledgedAt,
	}
	return f.CreateEvent(ctx, AlertAcknowledged, "alert/"+alertID, data)
}

// CreateAlertRequestedEvent creates an AlertRequested message for async evaluation
func (f *EventFactory) CreateAlertRequestedEvent(
	ctx context.Context,
	productID string,
	locationID string,
	currentStock int,
	minThreshold int,
	alertType string,
	requestID string,
) *CloudEvent {
	data := AlertRequestedData{
		ProductID:    productID,
		LocationID:   locationID,
		CurrentStock: currentStock,
		MinThreshold: minThreshold,
		AlertType:    alertType,
		RequestID:    requestID,
	}
	event := f.CreateEvent(ctx, AlertRequested, "inventory/"+productID, data)
	event.RequestID = requestID
	return event
}

// CreateReconciliationCompletedEvent creates a ReconciliationCompleted event
func (f *EventFactory) CreateReconciliationCompletedEvent(
	ctx context.Context,
	productsScanned int,
	createdCount int,
	createdAlertIDs []string,
) *CloudEvent {
	data := ReconciliationCompletedData{
		ProductsScanned: productsScanned,
		CreatedCount:    createdCount,
		CreatedAlertIDs: createdAlertIDs,
	}
	return f.CreateEvent(ctx, ReconciliationCompleted, "reconciliation", data)
}

// CreateProductCreatedEvent creates a ProductCreated event
func (f *EventFactory) CreateProductCreatedEvent(
	ctx context.Context,
	productID string,
	name string,
	minThreshold int,
	initialStock int,
) *CloudEvent {
	data := ProductCreatedData{
		ProductID:    productID,
		Name:         name,
		MinThreshold: minThreshold,
		InitialStock: initialStock,
	}
	return f.CreateEvent(ctx, ProductCreated, "product/"+productID, data)
}
