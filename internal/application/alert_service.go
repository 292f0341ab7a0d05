package application

import (
	"context"
	"fmt"

	"github.com/stockwatch-platform/alert-service/pkg/cloudevents"
	"github.com/stockwatch-platform/alert-service/pkg/errors"
	"github.com/stockwatch-platform/alert-service/pkg/kafka"
	"github.com/stockwatch-platform/alert-service/pkg/logging"
	"github.com/stockwatch-platform/alert-service/pkg/metrics"

	"github.com/stockwatch-platform/alert-service/internal/domain"
)

// AlertService handles the alert lifecycle: listing, acknowledgement and
// the direct creation escape hatch
type AlertService struct {
	alerts       domain.AlertRepository
	products     domain.ProductRepository
	inventory    domain.InventoryRepository
	publisher    EventPublisher
	eventFactory *cloudevents.EventFactory
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(
	alerts domain.AlertRepository,
	products domain.ProductRepository,
	inventory domain.InventoryRepository,
	publisher EventPublisher,
	eventFactory *cloudevents.EventFactory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *AlertService {
	return &AlertService{
		alerts:       alerts,
		products:     products,
		inventory:    inventory,
		publisher:    publisher,
		eventFactory: eventFactory,
		metrics:      m,
		logger:       logger,
	}
}

// Acknowledge moves an alert to ACKNOWLEDGED. Acknowledging an already
// acknowledged alert succeeds without changing who acknowledged it first.
func (s *AlertService) Acknowledge(ctx context.Context, cmd AcknowledgeAlertCommand) (*AlertDTO, error) {
	alert, err := s.alerts.FindByAlertID(ctx, cmd.AlertID)
	if err != nil {
		s.logger.Error("Failed to get alert", "alertId", cmd.AlertID, "error", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	if alert == nil {
		return nil, errors.ErrNotFound("alert")
	}

	changed, err := alert.Acknowledge(cmd.UserID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if !changed {
		return ToAlertDTO(alert), nil
	}

	if err := s.alerts.Save(ctx, alert); err != nil {
		s.logger.Error("Failed to save alert", "alertId", cmd.AlertID, "error", err)
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}

	s.metrics.RecordAlertAcknowledged()
	s.logger.Info("Acknowledged alert", "alertId", alert.AlertID, "acknowledgedBy", alert.AcknowledgedBy)

	s.publishAcknowledged(ctx, alert)

	return ToAlertDTO(alert), nil
}

// Get returns a single alert by its ID
func (s *AlertService) Get(ctx context.Context, alertID string) (*AlertDTO, error) {
	alert, err := s.alerts.FindByAlertID(ctx, alertID)
	if err != nil {
		s.logger.Error("Failed to get alert", "alertId", alertID, "error", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	if alert == nil {
		return nil, errors.ErrNotFound("alert")
	}

	return ToAlertDTO(alert), nil
}

// List returns alerts sorted by creation time, newest first. An optional
// status filters the result.
func (s *AlertService) List(ctx context.Context, query ListAlertsQuery) ([]AlertDTO, error) {
	if query.Status == "" {
		alerts, err := s.alerts.FindAll(ctx)
		if err != nil {
			s.logger.Error("Failed to list alerts", "error", err)
			return nil, fmt.Errorf("failed to list alerts: %w", err)
		}
		return ToAlertDTOs(alerts), nil
	}

	status := domain.AlertStatus(query.Status)
	if !status.IsValid() {
		return nil, errors.ErrValidation("unknown alert status: " + query.Status)
	}

	alerts, err := s.alerts.FindByStatus(ctx, status)
	if err != nil {
		s.logger.Error("Failed to list alerts", "status", query.Status, "error", err)
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return ToAlertDTOs(alerts), nil
}

// Create raises an alert directly, bypassing stock evaluation. The
// one-active-alert-per-product invariant still holds: if a NEW alert
// exists for the product it is returned instead of a duplicate.
func (s *AlertService) Create(ctx context.Context, cmd CreateAlertCommand) (*AlertDTO, error) {
	if cmd.ProductID == "" {
		return nil, errors.ErrValidation(domain.ErrEmptyProductID.Error())
	}

	product, err := s.products.FindByProductID(ctx, cmd.ProductID)
	if err != nil {
		s.logger.Error("Failed to get product", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, errors.ErrNotFound("product")
	}

	minThreshold := product.MinThreshold
	if cmd.MinThreshold != nil {
		minThreshold = *cmd.MinThreshold
	}

	currentStock := 0
	if cmd.CurrentStock != nil {
		currentStock = *cmd.CurrentStock
	} else {
		records, err := s.inventory.FindByProduct(ctx, cmd.ProductID)
		if err != nil {
			s.logger.Error("Failed to get inventory", "productId", cmd.ProductID, "error", err)
			return nil, fmt.Errorf("failed to get inventory: %w", err)
		}
		for _, record := range records {
			currentStock += record.CurrentStock
		}
	}

	candidate, err := domain.NewAlert(cmd.ProductID, cmd.LocationID, domain.AlertType(cmd.AlertType), currentStock, minThreshold, domain.AlertOriginManual)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	alert, created, err := s.alerts.InsertIfNoActive(ctx, candidate)
	if err != nil {
		s.logger.Error("Failed to create alert", "productId", cmd.ProductID, "error", err)
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	if !created {
		s.metrics.RecordAlertDeduplicated(domain.AlertOriginManual)
		s.logger.Info("Reused active alert", "productId", cmd.ProductID, "alertId", alert.AlertID)
		return ToAlertDTO(alert), nil
	}

	s.metrics.RecordAlertCreated(domain.AlertOriginManual)
	s.logger.Info("Created alert", "alertId", alert.AlertID, "productId", cmd.ProductID, "origin", domain.AlertOriginManual)

	if s.publisher != nil && s.eventFactory != nil {
		event := s.eventFactory.CreateAlertCreatedEvent(ctx, alert.AlertID, alert.ProductID, alert.LocationID, string(alert.AlertType), alert.MinThreshold, alert.CurrentStock, alert.Origin)
		if err := s.publisher.PublishEvent(ctx, kafka.Topics.AlertEvents, event); err != nil {
			s.logger.Warn("Failed to publish alert created event", "alertId", alert.AlertID, "error", err)
		}
	}

	return ToAlertDTO(alert), nil
}

func (s *AlertService) publishAcknowledged(ctx context.Context, alert *domain.Alert) {
	if s.publisher == nil || s.eventFactory == nil || alert.AcknowledgedAt == nil {
		return
	}

	event := s.eventFactory.CreateAlertAcknowledgedEvent(ctx, alert.AlertID, alert.ProductID, alert.AcknowledgedBy, *alert.AcknowledgedAt)
	if err := s.publisher.PublishEvent(ctx, kafka.Topics.AlertEvents, event); err != nil {
		s.logger.Warn("Failed to publish alert acknowledged event", "alertId", alert.AlertID, "error", err)
	}
}
