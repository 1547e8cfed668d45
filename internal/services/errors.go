package services

import (
	"errors"
	"fmt"
)

// Business-rule and validation failures are returned as values so handlers
// can render user-facing messages; unexpected infrastructure failures
// propagate as plain wrapped errors.

var (
	ErrEmptyCart      = errors.New("cart must not be empty")
	ErrSaleNotPending = errors.New("sale is not pending")
)

// ValidationError rejects a sale request before any mutation happened.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError aborts the whole sale; any stock already reserved
// for earlier cart lines has been released by the time it is returned.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// TableOccupiedError reports a lost race for a dining table.
type TableOccupiedError struct {
	TableID uint
}

func (e *TableOccupiedError) Error() string {
	return fmt.Sprintf("table %d is already occupied", e.TableID)
}
