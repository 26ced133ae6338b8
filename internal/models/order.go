package models

import "time"

// OrderItem is a single line of an order. Price is the unit price captured
// at order time and does not track later product price changes.
type OrderItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	OrderID   uint     `json:"-"`
	ProductID uint     `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Order represents a placed order. Immutable after creation; TotalPrice
// equals the sum of item price times quantity over its items.
type Order struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"userId"`
	TotalPrice float64     `json:"totalPrice"`
	Items      []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
