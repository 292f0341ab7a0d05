package domain

import "context"

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByProductID(ctx context.Context, productID string) (*Product, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Product, error)
	Delete(ctx context.Context, productID string) error
}

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	Save(ctx context.Context, record *InventoryRecord) error
	FindByProductAndLocation(ctx context.Context, productID, locationID string) (*InventoryRecord, error)
	FindByProduct(ctx context.Context, productID string) ([]*InventoryRecord, error)
	FindAll(ctx context.Context, limit, offset int) ([]*InventoryRecord, error)
}

// StockHistoryRepository defines the interface for the append-only adjustment log
type StockHistoryRepository interface {
	Append(ctx context.Context, entry *StockHistoryEntry) error
	FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*StockHistoryEntry, error)
}

// AlertRepository defines the interface for alert persistence
type AlertRepository interface {
	Save(ctx context.Context, alert *Alert) error
	// InsertIfNoActive inserts the alert unless a NEW alert already exists
	// for the product. It returns the stored active alert and whether the
	// insert happened.
	InsertIfNoActive(ctx context.Context, alert *Alert) (*Alert, bool, error)
	FindByAlertID(ctx context.Context, alertID string) (*Alert, error)
	FindActiveByProduct(ctx context.Context, productID string) (*Alert, error)
	FindByStatus(ctx context.Context, status AlertStatus) ([]*Alert, error)
	FindAll(ctx context.Context) ([]*Alert, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
