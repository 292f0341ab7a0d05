package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"
	"github.com/stockwatch-platform/alert-service/pkg/mongodb"
	"github.com/stockwatch-platform/alert-service/pkg/tracing"

	"github.com/stockwatch-platform/alert-service/internal/application"
	mongoRepo "github.com/stockwatch-platform/alert-service/internal/infrastructure/mongodb"
	"github.com/stockwatch-platform/alert-service/internal/infrastructure/queue"
)

const serviceName = "stock-alert-worker"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting stock-alert-worker")

	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// Initialize MongoDB with circuit breaker and instrumentation
	mongoClient, err := mongodb.NewProductionClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer for the events the evaluator emits
	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()

	// Initialize CloudEvents factory
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceAlertWorker)

	// Initialize the evaluator and the queue processor
	alertRepo := mongoRepo.NewAlertRepository(mongoClient)
	evaluator := application.NewAlertEvaluator(alertRepo, producer, eventFactory, m, logger)
	processor := queue.NewAlertRequestProcessor(evaluator, logger)

	// Initialize Kafka consumer with circuit breaker and instrumentation
	consumer := kafka.NewProductionConsumer(config.Kafka, m, logger)
	defer consumer.Close()

	consumer.Subscribe(kafka.Topics.AlertRequests, cloudevents.AlertRequested, processor.Handle)
	logger.Info("Subscribed to alert request topic",
		"topic", kafka.Topics.AlertRequests,
		"group", config.Kafka.ConsumerGroup,
	)

	// Cancel the consumer context on SIGINT/SIGTERM
	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := consumer.Start(runCtx); err != nil && err != context.Canceled {
		logger.WithError(err).Error("Consumer stopped with error")
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}

// Config holds worker configuration
type Config struct {
	MongoDB *mongodb.Config
	Kafka   *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "stockwatch"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    50,
			MinPoolSize:    5,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", serviceName),
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
			MinBytes:      1,
			MaxBytes:      10e6,
			MaxWait:       500 * time.Millisecond,
			CommitTimeout: 5 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
