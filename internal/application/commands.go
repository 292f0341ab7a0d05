package application

// CreateProductCommand represents the command to register a new product
type CreateProductCommand struct {
	ProductID    string
	Name         string
	Description  string
	MinThreshold int
	InitialStock int
	UserID       string
}

// UpdateProductCommand represents the command to update a product
type UpdateProductCommand struct {
	ProductID    string
	Name         *string
	MinThreshold *int
}

// AdjustStockCommand represents the command to apply a signed stock delta
type AdjustStockCommand struct {
	ProductID    string
	LocationID   string
	ChangeAmount int
	Reason       string
	UserID       string
}

// AcknowledgeAlertCommand represents the command to acknowledge an alert
type AcknowledgeAlertCommand struct {
	AlertID string
	UserID  string
}

// CreateAlertCommand represents the command to raise an alert directly,
// bypassing stock evaluation. Snapshots default from the current product
// and inventory state when omitted.
type CreateAlertCommand struct {
	ProductID    string
	LocationID   string
	AlertType    string
	CurrentStock *int
	MinThreshold *int
}

// AlertRequest is an asynchronous evaluation request carried on the
// alert request topic
type AlertRequest struct {
	ProductID    string `json:"productId"`
	LocationID   string `json:"locationId"`
	CurrentStock int    `json:"currentStock"`
	MinThreshold int    `json:"minThreshold"`
	AlertType    string `json:"alertType"`
	RequestID    string `json:"requestId"`
}

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ProductID string
}

// ListProductsQuery represents the query to list products with pagination
type ListProductsQuery struct {
	Limit  int
	Offset int
}

// GetInventoryQuery represents the query to get inventory for a product
type GetInventoryQuery struct {
	ProductID  string
	LocationID string
}

// GetHistoryQuery represents the query to read the adjustment history for a product
type GetHistoryQuery struct {
	ProductID string
	Limit     int
	Offset    int
}

// ListAlertsQuery represents the query to list alerts, optionally by status
type ListAlertsQuery struct {
	Status string
}
