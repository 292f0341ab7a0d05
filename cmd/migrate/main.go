package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// Migration tool that collapses duplicate NEW alerts down to one per
// product and then creates the collection indexes, including the
// partial unique index that enforces the invariant going forward.
// Databases written before the index existed can hold duplicates that
// would make the index build fail.

var (
	mongoURI = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName   = flag.String("db", "stockwatch", "Database name")
	dryRun   = flag.Bool("dry-run", true, "Dry run mode (no actual writes)")
)

type alertDocument struct {
	AlertID   string    `bson:"alertId"`
	ProductID string    `bson:"productId"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"createdAt"`
}

func main() {
	flag.Parse()

	log.Printf("Starting alert migration...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Dry Run: %v", *dryRun)

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB successfully")

	db := client.Database(*dbName)

	if err := collapseDuplicateAlerts(context.Background(), db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if !*dryRun {
		if err := createIndexes(context.Background(), db); err != nil {
			log.Fatalf("Index creation failed: %v", err)
		}
		log.Println("Indexes created")
	}

	log.Println("Migration completed successfully!")
}

// collapseDuplicateAlerts keeps the oldest NEW alert per product and
// acknowledges the rest as "system". Alerts are never deleted.
func collapseDuplicateAlerts(ctx context.Context, db *mongo.Database) error {
	alerts := db.Collection("alerts")

	// Group NEW alerts by product and surface products with more than one
	pipeline := []bson.M{
		{"$match": bson.M{"status": string(domain.AlertStatusNew)}},
		{"$sort": bson.M{"createdAt": 1}},
		{"$group": bson.M{
			"_id":    "$productId",
			"count":  bson.M{"$sum": 1},
			"alerts": bson.M{"$push": bson.M{"alertId": "$alertId", "createdAt": "$createdAt"}},
		}},
		{"$match": bson.M{"count": bson.M{"$gt": 1}}},
	}

	cursor, err := alerts.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	type duplicateGroup struct {
		ProductID string `bson:"_id"`
		Count     int    `bson:"count"`
		Alerts    []struct {
			AlertID   string    `bson:"alertId"`
			CreatedAt time.Time `bson:"createdAt"`
		} `bson:"alerts"`
	}

	var (
		productsWithDuplicates int
		alertsCollapsed        int
	)

	for cursor.Next(ctx) {
		var group duplicateGroup
		if err := cursor.Decode(&group); err != nil {
			log.Printf("WARNING: Failed to decode group: %v", err)
			continue
		}

		productsWithDuplicates++
		log.Printf("Product %s has %d NEW alerts, keeping %s",
			group.ProductID, group.Count, group.Alerts[0].AlertID)

		// Acknowledge everything after the oldest
		for _, duplicate := range group.Alerts[1:] {
			alertsCollapsed++

			if *dryRun {
				continue
			}

			now := time.Now()
			filter := bson.M{"alertId": duplicate.AlertID, "status": string(domain.AlertStatusNew)}
			update := bson.M{"$set": bson.M{
				"status":         string(domain.AlertStatusAcknowledged),
				"acknowledgedBy": "system",
				"acknowledgedAt": now,
				"updatedAt":      now,
			}}
			if _, err := alerts.UpdateOne(ctx, filter, update); err != nil {
				log.Printf("WARNING: Failed to acknowledge alert %s: %v", duplicate.AlertID, err)
			}
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error: %w", err)
	}

	// Print summary
	fmt.Println("\n=== Migration Summary ===")
	fmt.Printf("Products with duplicate NEW alerts: %d\n", productsWithDuplicates)
	fmt.Printf("Alerts acknowledged as duplicates:  %d\n", alertsCollapsed)

	if *dryRun {
		fmt.Println("\nDRY RUN MODE - No actual changes were made")
		fmt.Println("Run with -dry-run=false to perform actual migration")
	}

	return nil
}

func createIndexes(ctx context.Context, db *mongo.Database) error {
	indexSets := map[string][]mongo.IndexModel{
		"products": {
			{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"inventory": {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "locationId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "currentStock", Value: 1}}},
		},
		"inventory_history": {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"alerts": {
			{Keys: bson.D{{Key: "alertId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys: bson.D{{Key: "productId", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(domain.AlertStatusNew)}),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for collection, indexes := range indexSets {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		log.Printf("Indexes ensured on %s", collection)
	}

	return nil
}
