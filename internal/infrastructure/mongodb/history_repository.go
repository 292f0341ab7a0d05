package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockwatch-platform/alert-service/internal/domain"
	storage "github.com/stockwatch-platform/alert-service/pkg/mongodb"
)

// StockHistoryRepository persists the append-only adjustment log.
// Entries are only ever inserted.
type StockHistoryRepository struct {
	collection *storage.CircuitBreakerCollection
}

func NewStockHistoryRepository(client *storage.CircuitBreakerClient) *StockHistoryRepository {
	repo := &StockHistoryRepository{
		collection: client.Collection("inventory_history"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StockHistoryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	for _, index := range indexes {
		r.collection.CreateIndex(ctx, index)
	}
}

func (r *StockHistoryRepository) Append(ctx context.Context, entry *domain.StockHistoryEntry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *StockHistoryRepository) FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*domain.StockHistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*domain.StockHistoryEntry
	err = cursor.All(ctx, &entries)
	return entries, err
}
