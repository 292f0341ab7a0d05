package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockHistoryEntry is an append-only record of one stock adjustment.
// Entries are never updated or deleted after insertion.
type StockHistoryEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ProductID     string             `bson:"productId"`
	LocationID    string             `bson:"locationId"`
	PreviousStock int                `bson:"previousStock"`
	NewStock      int                `bson:"newStock"`
	ChangeAmount  int                `bson:"changeAmount"`
	Reason        string             `bson:"reason"`
	UserID        string             `bson:"userId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// NewStockHistoryEntry creates a history entry for an applied adjustment
func NewStockHistoryEntry(productID, locationID string, previousStock, newStock, changeAmount int, reason, userID string) *StockHistoryEntry {
	return &StockHistoryEntry{
		ProductID:     productID,
		LocationID:    locationID,
		PreviousStock: previousStock,
		NewStock:      newStock,
		ChangeAmount:  changeAmount,
		Reason:        reason,
		UserID:        userID,
		CreatedAt:     time.Now(),
	}
}
