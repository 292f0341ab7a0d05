package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/errors"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// Dispatch modes for the alert evaluation substep
const (
	DispatchSync  = "sync"
	DispatchQueue = "queue"
)

// StockService handles stock adjustments and inventory reads
type StockService struct {
	products     domain.ProductRepository
	inventory    domain.InventoryRepository
	history      domain.StockHistoryRepository
	evaluator    *AlertEvaluator
	dispatcher   AlertDispatcher
	dispatchMode string
	publisher    EventPublisher
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	products domain.ProductRepository,
	inventory domain.InventoryRepository,
	history domain.StockHistoryRepository,
	evaluator *AlertEvaluator,
	dispatcher AlertDispatcher,
	dispatchMode string,
	publisher EventPublisher,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *StockService {
	if dispatchMode != DispatchQueue {
		dispatchMode = DispatchSync
	}
	return &StockService{
		products:     products,
		inventory:    inventory,
		history:      history,
		evaluator:    evaluator,
		dispatcher:   dispatcher,
		dispatchMode: dispatchMode,
		publisher:    publisher,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// Adjust applies a signed stock delta for a product at a location.
// On success the adjustment is recorded in the append-only history and
// the new stock level is handed to alert evaluation. Alert evaluation
// runs last and never fails an applied adjustment.
func (s *StockService) Adjust(ctx context.Context, cmd AdjustStockCommand) (*AdjustmentResultDTO, error) {
	if cmd.ProductID == "" {
		return nil, errors.ErrValidation(domain.ErrEmptyProductID.Error())
	}
	if cmd.Reason == "" {
		return nil, errors.ErrValidation(domain.ErrEmptyReason.Error())
	}

	product, err := s.products.FindByProductID(ctx, cmd.ProductID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFound("product")
	}

	locationID := cmd.LocationID
	if locationID == "" {
		locationID = domain.DefaultLocationID
	}

	record, err := s.inventory.FindByProductAndLocation(ctx, cmd.ProductID, locationID)
	if err != nil {
		s.logger.Error("Failed to get inventory", "productId", cmd.ProductID, "locationId", locationID, "error", err)
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if record == nil {
		// First adjustment for this product and location starts from zero
		record = domain.NewInventoryRecord(cmd.ProductID, locationID)
	}

	previous, err := record.ApplyChange(cmd.ChangeAmount, cmd.Reason, cmd.UserID)
	if err != nil {
		s.metrics.RecordStockAdjustment("rejected")
		return nil, errors.MapDomainError(err)
	}

	if err := s.inventory.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save inventory", "productId", cmd.ProductID, "locationId", locationID, "error", err)
		s.metrics.RecordStockAdjustment("failed")
		return nil, fmt.Errorf("failed to save inventory: %w", err)
	}

	entry := domain.NewStockHistoryEntry(cmd.ProductID, locationID, previous, record.CurrentStock, cmd.ChangeAmount, cmd.Reason, cmd.UserID)
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append history", "productId", cmd.ProductID, "error", err)
		s.metrics.RecordStockAdjustment("failed")
		return nil, fmt.Errorf("failed to append history: %w", err)
	}

	s.metrics.RecordStockAdjustment("applied")
	s.logger.Info("Adjusted stock",
		"productId", cmd.ProductID,
		"locationId", locationID,
		"previousStock", previous,
		"currentStock", record.CurrentStock,
		"changeAmount", cmd.ChangeAmount,
		"reason", cmd.Reason,
	)

	s.publishStockAdjusted(ctx, cmd, locationID, previous, record.CurrentStock)

	// Alert evaluation is the final, best-effort step. The adjustment is
	// already committed; any failure here is logged and swallowed.
	s.evaluateAlert(ctx, product, record)

	return &AdjustmentResultDTO{
		ProductID:     cmd.ProductID,
		LocationID:    locationID,
		PreviousStock: previous,
		CurrentStock:  record.CurrentStock,
		ChangeAmount:  cmd.ChangeAmount,
	}, nil
}

// GetInventory returns the current stock for a product at a location
func (s *StockService) GetInventory(ctx context.Context, query GetInventoryQuery) (*InventoryDTO, error) {
	locationID := query.LocationID
	if locationID == "" {
		locationID = domain.DefaultLocationID
	}

	record, err := s.inventory.FindByProductAndLocation(ctx, query.ProductID, locationID)
	if err != nil {
		s.logger.Error("Failed to get inventory", "productId", query.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	if record == nil {
		return nil, errors.ErrNotFound("inventory")
	}

	return ToInventoryDTO(record), nil
}

// GetInventoryByProduct returns all inventory records for a product
func (s *StockService) GetInventoryByProduct(ctx context.Context, productID string) ([]InventoryDTO, error) {
	records, err := s.inventory.FindByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to get inventory by product", "productId", productID, "error", err)
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	return ToInventoryDTOs(records), nil
}

// ListInventory returns inventory records across all products, paged
func (s *StockService) ListInventory(ctx context.Context, limit, offset int) ([]InventoryDTO, error) {
	records, err := s.inventory.FindAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list inventory", "error", err)
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	return ToInventoryDTOs(records), nil
}

// ListLowStock returns every product whose stock, summed across locations,
// sits below its threshold. The read does not create alerts; the
// reconciliation sweep does that.
func (s *StockService) ListLowStock(ctx context.Context) ([]LowStockItemDTO, error) {
	low := make([]LowStockItemDTO, 0)

	for offset := 0; ; offset += reconcilePageSize {
		products, err := s.products.FindAll(ctx, reconcilePageSize, offset)
		if err != nil {
			s.logger.Error("Failed to scan products", "offset", offset, "error", err)
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			records, err := s.inventory.FindByProduct(ctx, product.ProductID)
			if err != nil {
				s.logger.Warn("Failed to read inventory", "productId", product.ProductID, "error", err)
				continue
			}
			if len(records) == 0 {
				continue
			}

			total := 0
			for _, record := range records {
				total += record.CurrentStock
			}
			if total < product.MinThreshold {
				low = append(low, LowStockItemDTO{
					ProductID:    product.ProductID,
					TotalStock:   total,
					MinThreshold: product.MinThreshold,
				})
			}
		}

		if len(products) < reconcilePageSize {
			break
		}
	}

	return low, nil
}

// GetHistory returns the adjustment history for a product, newest first
func (s *StockService) GetHistory(ctx context.Context, query GetHistoryQuery) ([]HistoryEntryDTO, error) {
	entries, err := s.history.FindByProduct(ctx, query.ProductID, query.Limit, query.Offset)
	if err != nil {
		s.logger.Error("Failed to get history", "productId", query.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return ToHistoryEntryDTOs(entries), nil
}

func (s *StockService) publishStockAdjusted(ctx context.Context, cmd AdjustStockCommand, locationID string, previous, current int) {
	if s.publisher == nil || s.eventFactory == nil {
		return
	}

	event := s.eventFactory.CreateStockAdjustedEvent(ctx, cmd.ProductID, locationID, previous, current, cmd.ChangeAmount, cmd.Reason, cmd.UserID)
	if err := s.publisher.PublishEvent(ctx, kafka.Topics.InventoryEvents, event); err != nil {
		s.logger.Warn("Failed to publish stock adjusted event", "productId", cmd.ProductID, "error", err)
	}
}

// evaluateAlert routes the post-adjustment evaluation either through the
// queue or synchronously. A queue send failure falls back to synchronous
// evaluation so the alert is not lost.
func (s *StockService) evaluateAlert(ctx context.Context, product *domain.Product, record *domain.InventoryRecord) {
	if s.dispatchMode == DispatchQueue && s.dispatcher != nil {
		req := AlertRequest{
			ProductID:    product.ProductID,
			LocationID:   record.LocationID,
			CurrentStock: record.CurrentStock,
			MinThreshold: product.MinThreshold,
			AlertType:    string(domain.AlertTypeLow),
			RequestID:    uuid.New().String(),
		}

		err := s.dispatcher.Dispatch(ctx, req)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to enqueue alert request, evaluating synchronously",
			"productId", product.ProductID, "requestId", req.RequestID, "error", err)
	}

	if s.evaluator == nil {
		return
	}

	if _, _, err := s.evaluator.Evaluate(ctx, product.ProductID, record.LocationID, record.CurrentStock, product.MinThreshold, domain.AlertTypeLow, domain.AlertOriginAdjustment); err != nil {
		s.logger.Error("Alert evaluation failed after adjustment",
			"productId", product.ProductID, "currentStock", record.CurrentStock, "error", err)
	}
}
