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

type InventoryRepository struct {
	collection *storage.CircuitBreakerCollection
}

func NewInventoryRepository(client *storage.CircuitBreakerClient) *InventoryRepository {
	repo := &InventoryRepository{
		collection: client.Collection("inventory"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *InventoryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "locationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "currentStock", Value: 1}}},
	}
	for _, index := range indexes {
		r.collection.CreateIndex(ctx, index)
	}
}

func (r *InventoryRepository) Save(ctx context.Context, record *domain.InventoryRecord) error {
	record.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"productId": record.ProductID, "locationId": record.LocationID}
	update := bson.M{"$set": bson.M{
		"productId":    record.ProductID,
		"locationId":   record.LocationID,
		"currentStock": record.CurrentStock,
		"updatedAt":    record.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"createdAt": record.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *InventoryRepository) FindByProductAndLocation(ctx context.Context, productID, locationID string) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.collection.FindOne(ctx, bson.M{"productId": productID, "locationId": locationID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &record, err
}

func (r *InventoryRepository) FindByProduct(ctx context.Context, productID string) ([]*domain.InventoryRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.InventoryRecord
	err = cursor.All(ctx, &records)
	return records, err
}

func (r *InventoryRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.InventoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "productId", Value: 1}, {Key: "locationId", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.InventoryRecord
	err = cursor.All(ctx, &records)
	return records, err
}
