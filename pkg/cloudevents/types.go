package cloudevents

import (
	"time"
)

// EventType constants for stockwatch domain events
const (
	// Inventory events
	StockAdjusted    = "stockwatch.inventory.stock-adjusted"
	LowStockDetected = "stockwatch.inventory.low-stock-detected"

	// Alert events
	AlertCreated      = "stockwatch.alert.created"
	AlertAcknowledged = "stockwatch.alert.acknowledged"
	AlertRequested    = "stockwatch.alert.requested"

	// Reconciliation events
	ReconciliationCompleted = "stockwatch.reconciliation.completed"

	// Product events
	ProductCreated = "stockwatch.product.created"
)

// Source constants for event sources
const (
	SourceAlertService = "/stockwatch/alert-service"
	SourceAlertWorker  = "/stockwatch/alert-worker"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// Extension attributes carried inline for correlation
	CorrelationID string `json:"correlationid,omitempty"`
	RequestID     string `json:"requestid,omitempty"`
}

// StockAdjustedData represents the data payload for StockAdjusted events
type StockAdjustedData struct {
	ProductID     string `json:"productId"`
	LocationID    string `json:"locationId"`
	PreviousStock int    `json:"previousStock"`
	CurrentStock  int    `json:"currentStock"`
	ChangeAmount  int    `json:"changeAmount"`
	Reason        string `json:"reason"`
	UserID        string `json:"userId,omitempty"`
}

// LowStockDetectedData represents the data payload for LowStockDetected events
type LowStockDetectedData struct {
	ProductID    string `json:"productId"`
	LocationID   string `json:"locationId"`
	CurrentStock int    `json:"currentStock"`
	MinThreshold int    `json:"minThreshold"`
}

// AlertCreatedData represents the data payload for AlertCreated events
type AlertCreatedData struct {
	AlertID      string `json:"alertId"`
	ProductID    string `json:"productId"`
	LocationID   string `json:"locationId"`
	AlertType    string `json:"alertType"`
	Threshold    int    `json:"threshold"`
	CurrentStock int    `json:"currentStock"`
	Origin       string `json:"origin"`
}

// AlertAcknowledgedData represents the data payload for AlertAcknowledged events
type AlertAcknowledgedData struct {
	AlertID        string    `json:"alertId"`
	ProductID      string    `json:"productId"`
	AcknowledgedBy string    `json:"acknowledgedBy"`
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

// AlertRequestedData represents the data payload for AlertRequested messages
// placed on the alert request topic for asynchronous evaluation.
type AlertRequestedData struct {
	ProductID    string `json:"productId"`
	LocationID   string `json:"locationId"`
	CurrentStock int    `json:"currentStock"`
	MinThreshold int    `json:"minThreshold"`
	AlertType    string `json:"alertType"`
	RequestID    string `json:"requestId"`
}

// ReconciliationCompletedData represents the data payload for ReconciliationCompleted events
type ReconciliationCompletedData struct {
	ProductsScanned int      `json:"productsScanned"`
	CreatedCount    int      `json:"createdCount"`
	CreatedAlertIDs []string `json:"createdAlertIds,omitempty"`
}

// ProductCreatedData represents the data payload for ProductCreated events
type ProductCreatedData struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	MinThreshold int    `json:"minThreshold"`
	InitialStock int    `json:"initialStock"`
}
