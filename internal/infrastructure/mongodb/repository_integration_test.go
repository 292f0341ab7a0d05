package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stockwatch-platform/alert-service/internal/domain"
	storage "github.com/stockwatch-platform/alert-service/pkg/mongodb"
)

type RepositoryIntegrationTestSuite struct {
	suite.Suite
	mongoContainer *mongodb.MongoDBContainer
	client         *storage.CircuitBreakerClient
	db             *mongo.Database
	products       *ProductRepository
	inventory      *InventoryRepository
	history        *StockHistoryRepository
	alerts         *AlertRepository
	ctx            context.Context
}

func (s *RepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := mongodb.Run(s.ctx, "mongo:6")
	s.Require().NoError(err)
	s.mongoContainer = container

	connStr, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	// The repositories run behind the same instrumented, breaker-protected
	// client stack the binaries use
	cfg := storage.DefaultConfig()
	cfg.URI = connStr
	cfg.Database = "stockwatch_test"

	base, err := storage.NewClient(s.ctx, cfg)
	s.Require().NoError(err)

	s.client = storage.NewCircuitBreakerClient(storage.NewInstrumentedClient(base, nil, nil), nil, nil)
	s.Require().NoError(s.client.HealthCheck(s.ctx))

	s.db = s.client.Database()

	s.products = NewProductRepository(s.client)
	s.inventory = NewInventoryRepository(s.client)
	s.history = NewStockHistoryRepository(s.client)
	s.alerts = NewAlertRepository(s.client)
}

func (s *RepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close(s.ctx)
	}
	if s.mongoContainer != nil {
		s.Require().NoError(s.mongoContainer.Terminate(s.ctx))
	}
}

func (s *RepositoryIntegrationTestSuite) TearDownTest() {
	s.db.Collection("products").Drop(s.ctx)
	s.db.Collection("inventory").Drop(s.ctx)
	s.db.Collection("inventory_history").Drop(s.ctx)
	s.db.Collection("alerts").Drop(s.ctx)

	// Dropping a collection drops its indexes too
	s.products.ensureIndexes(s.ctx)
	s.inventory.ensureIndexes(s.ctx)
	s.history.ensureIndexes(s.ctx)
	s.alerts.ensureIndexes(s.ctx)
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}

func (s *RepositoryIntegrationTestSuite) TestProductRepository_SaveAndFind() {
	product, err := domain.NewProduct("PROD-1", "Widget", 5)
	s.Require().NoError(err)

	s.Require().NoError(s.products.Save(s.ctx, product))

	retrieved, err := s.products.FindByProductID(s.ctx, "PROD-1")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal("Widget", retrieved.Name)
	s.Equal(5, retrieved.MinThreshold)

	// Save again updates in place
	s.Require().NoError(retrieved.UpdateThreshold(8))
	s.Require().NoError(s.products.Save(s.ctx, retrieved))

	updated, err := s.products.FindByProductID(s.ctx, "PROD-1")
	s.Require().NoError(err)
	s.Equal(8, updated.MinThreshold)

	all, err := s.products.FindAll(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Len(all, 1)

	missing, err := s.products.FindByProductID(s.ctx, "missing")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *RepositoryIntegrationTestSuite) TestInventoryRepository_UpsertAndFind() {
	record := domain.NewInventoryRecord("PROD-1", "main")
	_, err := record.ApplyChange(10, "initial stock", "")
	s.Require().NoError(err)

	s.Require().NoError(s.inventory.Save(s.ctx, record))

	retrieved, err := s.inventory.FindByProductAndLocation(s.ctx, "PROD-1", "main")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal(10, retrieved.CurrentStock)

	_, err = retrieved.ApplyChange(-4, "sale", "")
	s.Require().NoError(err)
	s.Require().NoError(s.inventory.Save(s.ctx, retrieved))

	updated, err := s.inventory.FindByProductAndLocation(s.ctx, "PROD-1", "main")
	s.Require().NoError(err)
	s.Equal(6, updated.CurrentStock)

	// Two locations for the same product are separate records
	backroom := domain.NewInventoryRecord("PROD-1", "backroom")
	s.Require().NoError(s.inventory.Save(s.ctx, backroom))

	records, err := s.inventory.FindByProduct(s.ctx, "PROD-1")
	s.Require().NoError(err)
	s.Len(records, 2)

	missing, err := s.inventory.FindByProductAndLocation(s.ctx, "PROD-1", "elsewhere")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *RepositoryIntegrationTestSuite) TestStockHistoryRepository_AppendOnlyNewestFirst() {
	first := domain.NewStockHistoryEntry("PROD-1", "main", 0, 10, 10, "initial stock", "alice")
	s.Require().NoError(s.history.Append(s.ctx, first))

	second := domain.NewStockHistoryEntry("PROD-1", "main", 10, 4, -6, "sale", "alice")
	s.Require().NoError(s.history.Append(s.ctx, second))

	entries, err := s.history.FindByProduct(s.ctx, "PROD-1", 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(-6, entries[0].ChangeAmount)
	s.Equal(10, entries[1].ChangeAmount)

	limited, err := s.history.FindByProduct(s.ctx, "PROD-1", 1, 0)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

func (s *RepositoryIntegrationTestSuite) TestAlertRepository_InsertIfNoActive() {
	first, err := domain.NewAlert("PROD-1", "main", domain.AlertTypeLow, 4, 5, domain.AlertOriginAdjustment)
	s.Require().NoError(err)

	stored, created, err := s.alerts.InsertIfNoActive(s.ctx, first)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(first.AlertID, stored.AlertID)

	// The location snapshot survives the round trip
	fetched, err := s.alerts.FindByAlertID(s.ctx, first.AlertID)
	s.Require().NoError(err)
	s.Require().NotNil(fetched)
	s.Equal("main", fetched.LocationID)

	// Second insert for the same product is rejected by the partial
	// unique index and the active alert is returned instead
	second, err := domain.NewAlert("PROD-1", "main", domain.AlertTypeLow, 2, 5, domain.AlertOriginQueue)
	s.Require().NoError(err)

	stored, created, err = s.alerts.InsertIfNoActive(s.ctx, second)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.AlertID, stored.AlertID)

	// A different product is unaffected
	other, err := domain.NewAlert("PROD-2", "main", domain.AlertTypeLow, 1, 5, domain.AlertOriginAdjustment)
	s.Require().NoError(err)

	_, created, err = s.alerts.InsertIfNoActive(s.ctx, other)
	s.Require().NoError(err)
	s.True(created)
}

func (s *RepositoryIntegrationTestSuite) TestAlertRepository_NewAlertAfterAcknowledgement() {
	first, err := domain.NewAlert("PROD-1", "main", domain.AlertTypeLow, 4, 5, domain.AlertOriginAdjustment)
	s.Require().NoError(err)

	_, created, err := s.alerts.InsertIfNoActive(s.ctx, first)
	s.Require().NoError(err)
	s.Require().True(created)

	changed, err := first.Acknowledge("alice")
	s.Require().NoError(err)
	s.Require().True(changed)
	s.Require().NoError(s.alerts.Save(s.ctx, first))

	// With no NEW alert left, a fresh one can be inserted
	second, err := domain.NewAlert("PROD-1", "main", domain.AlertTypeLow, 3, 5, domain.AlertOriginAdjustment)
	s.Require().NoError(err)

	_, created, err = s.alerts.InsertIfNoActive(s.ctx, second)
	s.Require().NoError(err)
	s.True(created)

	active, err := s.alerts.FindActiveByProduct(s.ctx, "PROD-1")
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(second.AlertID, active.AlertID)
}

func (s *RepositoryIntegrationTestSuite) TestAlertRepository_FindByStatusSortedNewestFirst() {
	for _, productID := range []string{"PROD-1", "PROD-2", "PROD-3"} {
		alert, err := domain.NewAlert(productID, "", domain.AlertTypeLow, 1, 5, domain.AlertOriginReconciliation)
		s.Require().NoError(err)
		_, _, err = s.alerts.InsertIfNoActive(s.ctx, alert)
		s.Require().NoError(err)
	}

	alerts, err := s.alerts.FindByStatus(s.ctx, domain.AlertStatusNew)
	s.Require().NoError(err)
	s.Require().Len(alerts, 3)
	for i := 1; i < len(alerts); i++ {
		s.False(alerts[i-1].CreatedAt.Before(alerts[i].CreatedAt))
	}

	all, err := s.alerts.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}
