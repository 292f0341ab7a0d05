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
)

// Alert backlog monitoring tool
// Reports open alerts by age and products currently below threshold

var (
	mongoURI = flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName   = flag.String("db", "stockwatch", "Database name")
	maxAge   = flag.Duration("max-age", 24*time.Hour, "Age after which a NEW alert is flagged as stale")
	limit    = flag.Int("limit", 50, "Maximum number of results to display")
)

type openAlertInfo struct {
	AlertID      string    `bson:"alertId"`
	ProductID    string    `bson:"productId"`
	CurrentStock int       `bson:"currentStock"`
	MinThreshold int       `bson:"minThreshold"`
	Origin       string    `bson:"origin"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func main() {
	flag.Parse()

	log.Printf("Starting alert backlog monitoring...")
	log.Printf("MongoDB URI: %s", *mongoURI)
	log.Printf("Database: %s", *dbName)
	log.Printf("Stale Threshold: %s", *maxAge)

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

	if err := reportStatusCounts(context.Background(), db); err != nil {
		log.Fatalf("Status report failed: %v", err)
	}

	if err := reportOpenAlerts(context.Background(), db); err != nil {
		log.Fatalf("Backlog report failed: %v", err)
	}

	if err := reportUnalertedLowStock(context.Background(), db); err != nil {
		log.Printf("WARNING: Low stock report failed: %v", err)
	}
}

func reportStatusCounts(ctx context.Context, db *mongo.Database) error {
	alerts := db.Collection("alerts")

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := alerts.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	type statusCount struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}

	var counts []statusCount
	if err := cursor.All(ctx, &counts); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	fmt.Println("\n=== Alerts by Status ===")
	if len(counts) == 0 {
		fmt.Println("No alerts recorded")
		return nil
	}
	for _, c := range counts {
		fmt.Printf("  %-14s %d\n", c.Status, c.Count)
	}
	return nil
}

func reportOpenAlerts(ctx context.Context, db *mongo.Database) error {
	alerts := db.Collection("alerts")

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(*limit))
	cursor, err := alerts.Find(ctx, bson.M{"status": "NEW"}, opts)
	if err != nil {
		return fmt.Errorf("failed to query open alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var open []openAlertInfo
	if err := cursor.All(ctx, &open); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	fmt.Println("\n=== Open Alerts (oldest first) ===")
	if len(open) == 0 {
		fmt.Println("No open alerts")
		return nil
	}

	fmt.Println("Product                   Stock  Threshold  Origin          Age         Status")
	fmt.Println("------------------------  -----  ---------  --------------  ----------  ------")

	staleCount := 0
	for _, alert := range open {
		age := time.Since(alert.CreatedAt).Round(time.Minute)
		status := "ok"
		if age > *maxAge {
			status = "STALE"
			staleCount++
		}
		fmt.Printf("%-24s  %5d  %9d  %-14s  %-10s  %s\n",
			alert.ProductID,
			alert.CurrentStock,
			alert.MinThreshold,
			alert.Origin,
			age,
			status,
		)
	}

	if staleCount > 0 {
		fmt.Printf("\n%d alerts older than %s, consider acknowledging or restocking\n", staleCount, *maxAge)
	}
	return nil
}

// reportUnalertedLowStock lists products whose summed stock is below the
// threshold but have no open alert. A non-empty result means the next
// reconciliation sweep has work to do.
func reportUnalertedLowStock(ctx context.Context, db *mongo.Database) error {
	inventory := db.Collection("inventory")

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":        "$productId",
			"totalStock": bson.M{"$sum": "$currentStock"},
		}},
		{"$lookup": bson.M{
			"from":         "products",
			"localField":   "_id",
			"foreignField": "productId",
			"as":           "product",
		}},
		{"$unwind": "$product"},
		{"$match": bson.M{
			"$expr": bson.M{"$lt": []interface{}{"$totalStock", "$product.minThreshold"}},
		}},
		{"$lookup": bson.M{
			"from": "alerts",
			"let":  bson.M{"pid": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$and": []bson.M{
					{"$eq": []interface{}{"$productId", "$$pid"}},
					{"$eq": []interface{}{"$status", "NEW"}},
				}}}},
			},
			"as": "openAlerts",
		}},
		{"$match": bson.M{"openAlerts": bson.M{"$size": 0}}},
		{"$limit": int64(*limit)},
	}

	cursor, err := inventory.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	type lowStockInfo struct {
		ProductID  string `bson:"_id"`
		TotalStock int    `bson:"totalStock"`
		Product    struct {
			MinThreshold int `bson:"minThreshold"`
		} `bson:"product"`
	}

	var missing []lowStockInfo
	if err := cursor.All(ctx, &missing); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	fmt.Println("\n=== Low Stock Without Open Alert ===")
	if len(missing) == 0 {
		fmt.Println("None, alert coverage is complete")
		return nil
	}

	for _, item := range missing {
		fmt.Printf("  %-24s stock %d below threshold %d\n",
			item.ProductID, item.TotalStock, item.Product.MinThreshold)
	}
	fmt.Println("\nRun POST /api/v1/alerts/reconcile to backfill these alerts")
	return nil
}
