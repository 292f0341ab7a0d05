package domain

import "errors"

var (
	// ErrEmptyProductID is returned when a product ID is missing
	ErrEmptyProductID = errors.New("product ID is required")

	// ErrEmptyReason is returned when a stock adjustment has no reason
	ErrEmptyReason = errors.New("adjustment reason is required")

	// ErrNegativeStock is returned when an adjustment would drop stock below zero
	ErrNegativeStock = errors.New("negative stock: adjustment would drop stock below zero")

	// ErrInvalidThreshold is returned when a minimum threshold is below 1
	ErrInvalidThreshold = errors.New("minimum threshold must be at least 1")

	// ErrProductNotFound is returned when a product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrInventoryNotFound is returned when no inventory record exists
	ErrInventoryNotFound = errors.New("inventory not found")

	// ErrAlertNotFound is returned when an alert does not exist
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidStatusTransition is returned on a backward alert status move
	ErrInvalidStatusTransition = errors.New("invalid alert status transition")

	// ErrDuplicateActiveAlert is returned when a NEW alert already exists for the product
	ErrDuplicateActiveAlert = errors.New("an active alert already exists for this product")
)
