package application

import "github.com/stockwatch-platform/alert-service/internal/domain"

// ToProductDTO converts a domain Product to ProductDTO
func ToProductDTO(product *domain.Product) *ProductDTO {
	if product == nil {
		return nil
	}

	return &ProductDTO{
		ProductID:    product.ProductID,
		Name:         product.Name,
		Description:  product.Description,
		MinThreshold: product.MinThreshold,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

// ToProductDTOs converts a slice of domain Products to ProductDTOs
func ToProductDTOs(products []*domain.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for _, product := range products {
		if dto := ToProductDTO(product); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToInventoryDTO converts a domain InventoryRecord to InventoryDTO
func ToInventoryDTO(record *domain.InventoryRecord) *InventoryDTO {
	if record == nil {
		return nil
	}

	return &InventoryDTO{
		ProductID:    record.ProductID,
		LocationID:   record.LocationID,
		CurrentStock: record.CurrentStock,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

// ToInventoryDTOs converts a slice of domain InventoryRecords to InventoryDTOs
func ToInventoryDTOs(records []*domain.InventoryRecord) []InventoryDTO {
	dtos := make([]InventoryDTO, 0, len(records))
	for _, record := range records {
		if dto := ToInventoryDTO(record); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToHistoryEntryDTO converts a domain StockHistoryEntry to HistoryEntryDTO
func ToHistoryEntryDTO(entry *domain.StockHistoryEntry) *HistoryEntryDTO {
	if entry == nil {
		return nil
	}

	return &HistoryEntryDTO{
		ProductID:     entry.ProductID,
		LocationID:    entry.LocationID,
		PreviousStock: entry.PreviousStock,
		NewStock:      entry.NewStock,
		ChangeAmount:  entry.ChangeAmount,
		Reason:        entry.Reason,
		UserID:        entry.UserID,
		CreatedAt:     entry.CreatedAt,
	}
}

// ToHistoryEntryDTOs converts a slice of domain StockHistoryEntries to HistoryEntryDTOs
func ToHistoryEntryDTOs(entries []*domain.StockHistoryEntry) []HistoryEntryDTO {
	dtos := make([]HistoryEntryDTO, 0, len(entries))
	for _, entry := range entries {
		if dto := ToHistoryEntryDTO(entry); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToAlertDTO converts a domain Alert to AlertDTO
func ToAlertDTO(alert *domain.Alert) *AlertDTO {
	if alert == nil {
		return nil
	}

	return &AlertDTO{
		AlertID:        alert.AlertID,
		ProductID:      alert.ProductID,
		LocationID:     alert.LocationID,
		AlertType:      string(alert.AlertType),
		Status:         string(alert.Status),
		CurrentStock:   alert.CurrentStock,
		MinThreshold:   alert.MinThreshold,
		Origin:         alert.Origin,
		AcknowledgedBy: alert.AcknowledgedBy,
		AcknowledgedAt: alert.AcknowledgedAt,
		CreatedAt:      alert.CreatedAt,
		UpdatedAt:      alert.UpdatedAt,
	}
}

// ToAlertDTOs converts a slice of domain Alerts to AlertDTOs
func ToAlertDTOs(alerts []*domain.Alert) []AlertDTO {
	dtos := make([]AlertDTO, 0, len(alerts))
	for _, alert := range alerts {
		if dto := ToAlertDTO(alert); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}
