package application

import (
	"context"
	"fmt"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/errors"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// InitialStockReason marks the adjustment that seeds stock at product creation
const InitialStockReason = "initial stock"

// ProductService handles product registration and threshold management
type ProductService struct {
	products     domain.ProductRepository
	stock        *StockService
	publisher    EventPublisher
	eventFactory *cloudevents.EventFactory
	logger       *logging.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products domain.ProductRepository,
	stock *StockService,
	publisher EventPublisher,
	eventFactory *cloudevents.EventFactory,
	logger *logging.Logger,
) *ProductService {
	return &ProductService{
		products:     products,
		stock:        stock,
		publisher:    publisher,
		eventFactory: eventFactory,
		logger:       logger,
	}
}

// CreateProduct registers a product. A positive initial stock is applied
// as a regular adjustment so it lands in the history and goes through
// alert evaluation like any other stock change.
func (s *ProductService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*ProductDTO, error) {
	if cmd.InitialStock < 0 {
		return nil, errors.ErrValidation("initial stock cannot be negative")
	}

	existing, err := s.products.FindByProductID(ctx, cmd.ProductID)
	if err != nil {
		s.logger.Error("Failed to check product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("product already exists: " + cmd.ProductID)
	}

	product, err := domain.NewProduct(cmd.ProductID, cmd.Name, cmd.MinThreshold)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	product.Description = cmd.Description

	if err := s.products.Save(ctx, product); err != nil {
		s.logger.Error("Failed to create product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Created product", "productId", cmd.ProductID, "minThreshold", cmd.MinThreshold)

	if s.publisher != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateProductCreatedEvent(ctx, cmd.ProductID, cmd.Name, cmd.MinThreshold, cmd.InitialStock)
		if err := s.publisher.PublishEvent(ctx, kafka.Topics.ProductEvents, event); err != nil {
			s.logger.Warn("Failed to publish product created event", "productId", cmd.ProductID, "error", err)
		}
	}

	if cmd.InitialStock > 0 && s.stock != nil {
		_, err := s.stock.Adjust(ctx, AdjustStockCommand{
			ProductID:    cmd.ProductID,
			ChangeAmount: cmd.InitialStock,
			Reason:       InitialStockReason,
			UserID:       cmd.UserID,
		})
		if err != nil {
			s.logger.Error("Failed to apply initial stock", "productId", cmd.ProductID, "error", err)
			return nil, fmt.Errorf("failed to apply initial stock: %w", err)
		}
	}

	return ToProductDTO(product), nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, query GetProductQuery) (*ProductDTO, error) {
	product, err := s.products.FindByProductID(ctx, query.ProductID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", query.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFound("product")
	}

	return ToProductDTO(product), nil
}

// ListProducts lists products with pagination
func (s *ProductService) ListProducts(ctx context.Context, query ListProductsQuery) ([]ProductDTO, error) {
	products, err := s.products.FindAll(ctx, query.Limit, query.Offset)
	if err != nil {
		s.logger.Error("Failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return ToProductDTOs(products), nil
}

// UpdateProduct updates a product's name or threshold
func (s *ProductService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*ProductDTO, error) {
	product, err := s.products.FindByProductID(ctx, cmd.ProductID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFound("product")
	}

	if cmd.Name != nil {
		product.Rename(*cmd.Name)
	}
	if cmd.MinThreshold != nil {
		if err := product.UpdateThreshold(*cmd.MinThreshold); err != nil {
			return nil, errors.MapDomainError(err)
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Updated product", "productId", cmd.ProductID)
	return ToProductDTO(product), nil
}

// DeleteProduct removes a product from the catalog
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	product, err := s.products.FindByProductID(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", productID, "error", err)
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return errors.ErrNotFound("product")
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		s.logger.Error("Failed to delete product", "productId", productID, "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Deleted product", "productId", productID)
	return nil
}
