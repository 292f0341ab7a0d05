package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "NEW"
	AlertStatusProcessing   AlertStatus = "PROCESSING"
	AlertStatusSent         AlertStatus = "SENT"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
)

// statusRank orders the lifecycle. Transitions only move forward.
var statusRank = map[AlertStatus]int{
	AlertStatusNew:          0,
	AlertStatusProcessing:   1,
	AlertStatusSent:         2,
	AlertStatusAcknowledged: 3,
}

// IsValid reports whether the status is a known lifecycle state
func (s AlertStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// AlertType classifies the threshold breach
type AlertType string

const (
	AlertTypeLow  AlertType = "LOW"
	AlertTypeHigh AlertType = "HIGH"
)

// IsValid reports whether the alert type is known
func (t AlertType) IsValid() bool {
	return t == AlertTypeLow || t == AlertTypeHigh
}

// AlertOrigin records which path raised the alert
const (
	AlertOriginAdjustment     = "adjustment"
	AlertOriginQueue          = "queue"
	AlertOriginReconciliation = "reconciliation"
	AlertOriginManual         = "manual"
)

// Alert is a low-stock notification for a product.
// At most one alert in status NEW exists per product at any time.
// Alerts are never deleted and never move backward in the lifecycle.
type Alert struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	AlertID        string             `bson:"alertId"`
	ProductID      string             `bson:"productId"`
	LocationID     string             `bson:"locationId,omitempty"`
	AlertType      AlertType          `bson:"alertType"`
	Status         AlertStatus        `bson:"status"`
	CurrentStock   int                `bson:"currentStock"`
	MinThreshold   int                `bson:"minThreshold"`
	Origin         string             `bson:"origin"`
	AcknowledgedBy string             `bson:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time         `bson:"acknowledgedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
	DomainEvents   []DomainEvent      `bson:"-"`
}

// NewAlert creates a new alert in status NEW with snapshots of the
// stock, threshold and location at detection time. The locationID may
// be empty when the breach was detected against stock summed across
// locations.
func NewAlert(productID, locationID string, alertType AlertType, currentStock, minThreshold int, origin string) (*Alert, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}
	if !alertType.IsValid() {
		alertType = AlertTypeLow
	}

	now := time.Now()
	alert := &Alert{
		AlertID:      uuid.New().String(),
		ProductID:    productID,
		LocationID:   locationID,
		AlertType:    alertType,
		Status:       AlertStatusNew,
		CurrentStock: currentStock,
		MinThreshold: minThreshold,
		Origin:       origin,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}

	alert.AddDomainEvent(&AlertCreatedEvent{
		AlertID:      alert.AlertID,
		ProductID:    productID,
		LocationID:   locationID,
		AlertType:    string(alertType),
		CurrentStock: currentStock,
		MinThreshold: minThreshold,
		Origin:       origin,
		CreatedAt:    now,
	})

	return alert, nil
}

// CanTransitionTo reports whether the lifecycle allows the move
func (a *Alert) CanTransitionTo(target AlertStatus) bool {
	from, ok := statusRank[a.Status]
	if !ok {
		return false
	}
	to, ok := statusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// MarkProcessing moves the alert into PROCESSING
func (a *Alert) MarkProcessing() error {
	if !a.CanTransitionTo(AlertStatusProcessing) {
		return ErrInvalidStatusTransition
	}
	a.Status = AlertStatusProcessing
	a.UpdatedAt = time.Now()
	return nil
}

// MarkSent moves the alert into SENT
func (a *Alert) MarkSent() error {
	if !a.CanTransitionTo(AlertStatusSent) {
		return ErrInvalidStatusTransition
	}
	a.Status = AlertStatusSent
	a.UpdatedAt = time.Now()
	return nil
}

// Acknowledge moves the alert to ACKNOWLEDGED and stamps who did it.
// Acknowledging an already acknowledged alert is a no-op: the original
// acknowledger and timestamp are preserved.
func (a *Alert) Acknowledge(userID string) (bool, error) {
	if a.Status == AlertStatusAcknowledged {
		return false, nil
	}
	if !a.CanTransitionTo(AlertStatusAcknowledged) {
		return false, ErrInvalidStatusTransition
	}

	if userID == "" {
		userID = "system"
	}

	now := time.Now()
	a.Status = AlertStatusAcknowledged
	a.AcknowledgedBy = userID
	a.AcknowledgedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(&AlertAcknowledgedEvent{
		AlertID:        a.AlertID,
		ProductID:      a.ProductID,
		AcknowledgedBy: userID,
		AcknowledgedAt: now,
	})

	return true, nil
}

// IsActive reports whether the alert is still in status NEW
func (a *Alert) IsActive() bool {
	return a.Status == AlertStatusNew
}

// Domain event methods
func (a *Alert) AddDomainEvent(event DomainEvent) {
	a.DomainEvents = append(a.DomainEvents, event)
}

func (a *Alert) ClearDomainEvents() {
	a.DomainEvents = make([]DomainEvent, 0)
}

func (a *Alert) GetDomainEvents() []DomainEvent {
	return a.DomainEvents
}
