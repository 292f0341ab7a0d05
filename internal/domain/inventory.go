package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLocationID is used when an adjustment does not name a location
const DefaultLocationID = "main"

// InventoryRecord tracks the current stock for one product at one location
type InventoryRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ProductID    string             `bson:"productId"`
	LocationID   string             `bson:"locationId"`
	CurrentStock int                `bson:"currentStock"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-"`
}

// NewInventoryRecord creates a new inventory record with zero stock
func NewInventoryRecord(productID, locationID string) *InventoryRecord {
	if locationID == "" {
		locationID = DefaultLocationID
	}
	now := time.Now()
	return &InventoryRecord{
		ProductID:    productID,
		LocationID:   locationID,
		CurrentStock: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}
}

// ApplyChange applies a signed stock delta and returns the previous stock.
// A zero delta is a valid correction marker and still produces history.
func (r *InventoryRecord) ApplyChange(changeAmount int, reason, userID string) (int, error) {
	if reason == "" {
		return 0, ErrEmptyReason
	}

	previous := r.CurrentStock
	next := previous + changeAmount
	if next < 0 {
		return 0, ErrNegativeStock
	}

	r.CurrentStock = next
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(&StockAdjustedEvent{
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		PreviousStock: previous,
		CurrentStock:  next,
		ChangeAmount:  changeAmount,
		Reason:        reason,
		UserID:        userID,
		AdjustedAt:    r.UpdatedAt,
	})

	return previous, nil
}

// IsBelowThreshold reports whether stock is strictly below the threshold.
// Stock equal to the threshold is not low.
func (r *InventoryRecord) IsBelowThreshold(minThreshold int) bool {
	return r.CurrentStock < minThreshold
}

// Domain event methods
func (r *InventoryRecord) AddDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

func (r *InventoryRecord) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}

func (r *InventoryRecord) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}
