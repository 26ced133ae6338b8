package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shop/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create writes the order row, its items, and the stock deductions inside
// a single transaction. Each deduction is a guarded conditional update
// (stock = stock - q WHERE stock >= q), so a concurrent order that drained
// the stock between validation and commit rolls the whole transaction back
// instead of driving stock negative.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to deduct stock for product %d: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		return nil
	})
}

// GetByID retrieves an order with its items, each item's product, and the
// owning user.
func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.Product").Preload("User").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}
