package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ProductCreatedEvent is published when a product is registered
type ProductCreatedEvent struct {
	ProductID    string    `json:"productId"`
	Name         string    `json:"name"`
	MinThreshold int       `json:"minThreshold"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (e *ProductCreatedEvent) EventType() string     { return "stockwatch.product.created" }
func (e *ProductCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StockAdjustedEvent is published when stock is adjusted
type StockAdjustedEvent struct {
	ProductID     string    `json:"productId"`
	LocationID    string    `json:"locationId"`
	PreviousStock int       `json:"previousStock"`
	CurrentStock  int       `json:"currentStock"`
	ChangeAmount  int       `json:"changeAmount"`
	Reason        string    `json:"reason"`
	UserID        string    `json:"userId,omitempty"`
	AdjustedAt    time.Time `json:"adjustedAt"`
}

func (e *StockAdjustedEvent) EventType() string     { return "stockwatch.inventory.stock-adjusted" }
func (e *StockAdjustedEvent) OccurredAt() time.Time { return e.AdjustedAt }

// LowStockDetectedEvent is published when stock falls below the minimum threshold
type LowStockDetectedEvent struct {
	ProductID    string    `json:"productId"`
	LocationID   string    `json:"locationId"`
	CurrentStock int       `json:"currentStock"`
	MinThreshold int       `json:"minThreshold"`
	DetectedAt   time.Time `json:"detectedAt"`
}

func (e *LowStockDetectedEvent) EventType() string     { return "stockwatch.inventory.low-stock-detected" }
func (e *LowStockDetectedEvent) OccurredAt() time.Time { return e.DetectedAt }

// AlertCreatedEvent is published when a new alert is raised
type AlertCreatedEvent struct {
	AlertID      string    `json:"alertId"`
	ProductID    string    `json:"productId"`
	LocationID   string    `json:"locationId,omitempty"`
	AlertType    string    `json:"alertType"`
	CurrentStock int       `json:"currentStock"`
	MinThreshold int       `json:"minThreshold"`
	Origin       string    `json:"origin"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (e *AlertCreatedEvent) EventType() string     { return "stockwatch.alert.created" }
func (e *AlertCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// AlertAcknowledgedEvent is published when an alert is acknowledged
type AlertAcknowledgedEvent struct {
	AlertID        string    `json:"alertId"`
	ProductID      string    `json:"productId"`
	AcknowledgedBy string    `json:"acknowledgedBy"`
	AcknowledgedAt time.Time `json:"acknowledgedAt"`
}

func (e *AlertAcknowledgedEvent) EventType() string     { return "stockwatch.alert.acknowledged" }
func (e *AlertAcknowledgedEvent) OccurredAt() time.Time { return e.AcknowledgedAt }
