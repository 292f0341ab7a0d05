package application

import "time"

// ProductDTO represents a product in responses
type ProductDTO struct {
	ProductID    string    `json:"productId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	MinThreshold int       `json:"minThreshold"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// InventoryDTO represents the current stock for a product at a location
type InventoryDTO struct {
	ProductID    string    `json:"productId"`
	LocationID   string    `json:"locationId"`
	CurrentStock int       `json:"currentStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AdjustmentResultDTO is the outcome of a stock adjustment
type AdjustmentResultDTO struct {
	ProductID     string `json:"productId"`
	LocationID    string `json:"locationId"`
	PreviousStock int    `json:"previousStock"`
	CurrentStock  int    `json:"currentStock"`
	ChangeAmount  int    `json:"changeAmount"`
}

// HistoryEntryDTO represents one entry of the adjustment history
type HistoryEntryDTO struct {
	ProductID     string    `json:"productId"`
	LocationID    string    `json:"locationId"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	ChangeAmount  int       `json:"changeAmount"`
	Reason        string    `json:"reason"`
	UserID        string    `json:"userId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AlertDTO represents an alert in responses
type AlertDTO struct {
	AlertID        string     `json:"alertId"`
	ProductID      string     `json:"productId"`
	LocationID     string     `json:"locationId,omitempty"`
	AlertType      string     `json:"alertType"`
	Status         string     `json:"status"`
	CurrentStock   int        `json:"currentStock"`
	MinThreshold   int        `json:"minThreshold"`
	Origin         string     `json:"origin,omitempty"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// LowStockItemDTO is a product whose summed stock sits below its threshold
type LowStockItemDTO struct {
	ProductID    string `json:"productId"`
	TotalStock   int    `json:"totalStock"`
	MinThreshold int    `json:"minThreshold"`
}

// CreatedAlertDTO identifies an alert raised by a reconciliation sweep
type CreatedAlertDTO struct {
	AlertID     string `json:"alertId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// ReconciliationResultDTO is the outcome of a full reconciliation sweep
type ReconciliationResultDTO struct {
	ProductsScanned int               `json:"productsScanned"`
	CreatedCount    int               `json:"createdCount"`
	CreatedAlerts   []CreatedAlertDTO `json:"createdAlerts"`
}

// BatchResultDTO reports the outcome of a batch of queue messages
type BatchResultDTO struct {
	Processed int      `json:"processed"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
