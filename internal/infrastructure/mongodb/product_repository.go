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

type ProductRepository struct {
	collection *storage.CircuitBreakerCollection
}

func NewProductRepository(client *storage.CircuitBreakerClient) *ProductRepository {
	repo := &ProductRepository{
		collection: client.Collection("products"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ProductRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	for _, index := range indexes {
		r.collection.CreateIndex(ctx, index)
	}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"productId": product.ProductID}
	update := bson.M{"$set": bson.M{
		"productId":    product.ProductID,
		"name":         product.Name,
		"description":  product.Description,
		"minThreshold": product.MinThreshold,
		"updatedAt":    product.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"createdAt": product.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *ProductRepository) FindByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.M{"productId": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &product, err
}

func (r *ProductRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "productId", Value: 1}})
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

	var products []*domain.Product
	err = cursor.All(ctx, &products)
	return products, err
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"productId": productID})
	return err
}
