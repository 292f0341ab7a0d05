package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog entry that carries the low-stock threshold
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ProductID    string             `bson:"productId"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description,omitempty"`
	MinThreshold int                `bson:"minThreshold"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-"`
}

// NewProduct creates a new Product aggregate
func NewProduct(productID, name string, minThreshold int) (*Product, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}
	// A threshold of 0 would make the product unable to ever alert
	if minThreshold < 1 {
		return nil, ErrInvalidThreshold
	}

	now := time.Now()
	product := &Product{
		ProductID:    productID,
		Name:         name,
		MinThreshold: minThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	product.AddDomainEvent(&ProductCreatedEvent{
		ProductID:    productID,
		Name:         name,
		MinThreshold: minThreshold,
		CreatedAt:    now,
	})

	return product, nil
}

// UpdateThreshold changes the minimum stock threshold
func (p *Product) UpdateThreshold(minThreshold int) error {
	if minThreshold < 1 {
		return ErrInvalidThreshold
	}
	p.MinThreshold = minThreshold
	p.UpdatedAt = time.Now()
	return nil
}

// Rename updates the product name
func (p *Product) Rename(name string) {
	p.Name = name
	p.UpdatedAt = time.Now()
}

// Domain event methods
func (p *Product) AddDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}

func (p *Product) ClearDomainEvents() {
	p.DomainEvents = make([]DomainEvent, 0)
}

func (p *Product) GetDomainEvents() []DomainEvent {
	return p.DomainEvents
}
