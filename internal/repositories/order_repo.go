package repositories

import (
	"errors"

	"shop/internal/models"
)

// ErrInsufficientStock is returned when a guarded stock decrement matches no
// row, meaning a concurrent order depleted the stock first.
var ErrInsufficientStock = errors.New("insufficient stock")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order, its items, and the matching stock
	// deductions in one atomic transaction. It returns
	// ErrInsufficientStock if any product no longer has enough stock,
	// in which case nothing is written.
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
}
