package application

import (
	"context"
	"fmt"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// reconcilePageSize is the product page size for the full scan
const reconcilePageSize = 100

// ReconciliationService backfills alerts that were missed, for example
// when evaluation was skipped during an outage. A sweep directly after
// another sweep creates nothing: the one-active-alert-per-product
// invariant makes reconciliation a fixed point.
type ReconciliationService struct {
	products     domain.ProductRepository
	inventory    domain.InventoryRepository
	evaluator    *AlertEvaluator
	publisher    EventPublisher
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	products domain.ProductRepository,
	inventory domain.InventoryRepository,
	evaluator *AlertEvaluator,
	publisher EventPublisher,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		products:     products,
		inventory:    inventory,
		evaluator:    evaluator,
		publisher:    publisher,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// ReconcileAll scans every product, sums its stock across locations and
// evaluates it against the threshold. Products without any inventory
// record are skipped. Returns the alerts created by this sweep.
func (s *ReconciliationService) ReconcileAll(ctx context.Context) (*ReconciliationResultDTO, error) {
	created := make([]CreatedAlertDTO, 0)
	scanned := 0

	offset := 0
	for {
		products, err := s.products.FindAll(ctx, reconcilePageSize, offset)
		if err != nil {
			s.metrics.RecordReconciliationRun(false, len(created))
			s.logger.Error("Reconciliation scan failed", "offset", offset, "error", err)
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			scanned++

			records, err := s.inventory.FindByProduct(ctx, product.ProductID)
			if err != nil {
				s.logger.Warn("Skipping product, inventory lookup failed", "productId", product.ProductID, "error", err)
				continue
			}
			if len(records) == 0 {
				// No inventory record yet, nothing to evaluate
				continue
			}

			totalStock := 0
			for _, record := range records {
				totalStock += record.CurrentStock
			}

			alert, wasCreated, err := s.evaluator.Evaluate(ctx, product.ProductID, "", totalStock, product.MinThreshold, domain.AlertTypeLow, domain.AlertOriginReconciliation)
			if err != nil {
				s.logger.Warn("Reconciliation evaluation failed", "productId", product.ProductID, "error", err)
				continue
			}
			if wasCreated {
				created = append(created, CreatedAlertDTO{
					AlertID:     alert.AlertID,
					ProductID:   product.ProductID,
					ProductName: product.Name,
				})
			}
		}

		offset += len(products)
	}

	s.metrics.RecordReconciliationRun(true, len(created))
	s.logger.Info("Reconciliation completed", "productsScanned", scanned, "createdCount", len(created))

	s.publishCompleted(ctx, scanned, created)

	return &ReconciliationResultDTO{
		ProductsScanned: scanned,
		CreatedCount:    len(created),
		CreatedAlerts:   created,
	}, nil
}

func (s *ReconciliationService) publishCompleted(ctx context.Context, scanned int, created []CreatedAlertDTO) {
	if s.publisher == nil || s.eventFactory == nil {
		return
	}

	ids := make([]string, 0, len(created))
	for _, alert := range created {
		ids = append(ids, alert.AlertID)
	}

	event := s.eventFactory.CreateReconciliationCompletedEvent(ctx, scanned, len(created), ids)
	if err := s.publisher.PublishEvent(ctx, kafka.Topics.AlertEvents, event); err != nil {
		s.logger.Warn("Failed to publish reconciliation completed event", "error", err)
	}
}
