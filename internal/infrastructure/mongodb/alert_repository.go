package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockwatch-platform/alert-service/internal/domain"
	storage "github.com/stockwatch-platform/alert-service/pkg/mongodb"
)

type AlertRepository struct {
	collection *storage.CircuitBreakerCollection
}

func NewAlertRepository(client *storage.CircuitBreakerClient) *AlertRepository {
	repo := &AlertRepository{
		collection: client.Collection("alerts"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

// ensureIndexes creates the alert indexes. The partial unique index on
// productId over NEW alerts is what enforces the one-active-alert-per-
// product invariant under concurrent inserts.
func (r *AlertRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "alertId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "productId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.AlertStatusNew)}),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	for _, index := range indexes {
		r.collection.CreateIndex(ctx, index)
	}
}

func (r *AlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	alert.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"alertId": alert.AlertID}
	update := bson.M{"$set": alert}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// InsertIfNoActive inserts the alert unless the product already has one
// in status NEW. The duplicate key error from the partial unique index
// signals the existing alert, which is then returned instead.
func (r *AlertRepository) InsertIfNoActive(ctx context.Context, alert *domain.Alert) (*domain.Alert, bool, error) {
	_, err := r.collection.InsertOne(ctx, alert)
	if err == nil {
		return alert, true, nil
	}

	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}

	existing, findErr := r.FindActiveByProduct(ctx, alert.ProductID)
	if findErr != nil {
		return nil, false, findErr
	}
	if existing == nil {
		// The competing alert left NEW between our insert and lookup.
		// Surface the conflict; the caller may retry.
		return nil, false, domain.ErrDuplicateActiveAlert
	}

	return existing, false, nil
}

func (r *AlertRepository) FindByAlertID(ctx context.Context, alertID string) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.collection.FindOne(ctx, bson.M{"alertId": alertID}).Decode(&alert)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &alert, err
}

func (r *AlertRepository) FindActiveByProduct(ctx context.Context, productID string) (*domain.Alert, error) {
	var alert domain.Alert
	filter := bson.M{"productId": productID, "status": string(domain.AlertStatusNew)}
	err := r.collection.FindOne(ctx, filter).Decode(&alert)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &alert, err
}

func (r *AlertRepository) FindByStatus(ctx context.Context, status domain.AlertStatus) ([]*domain.Alert, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []*domain.Alert
	err = cursor.All(ctx, &alerts)
	return alerts, err
}

func (r *AlertRepository) FindAll(ctx context.Context) ([]*domain.Alert, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []*domain.Alert
	err = cursor.All(ctx, &alerts)
	return alerts, err
}
