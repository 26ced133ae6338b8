package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"shop/internal/models"
	"shop/internal/repositories"
	"shop/pkg/activitylog"
)

var (
	// ErrOrderNotFound maps to a 404 response.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAccessDenied maps to a 403 response: only the order's owner
	// or an admin may view it.
	ErrOrderAccessDenied = errors.New("you can only view your own orders")
)

// OrderValidationError carries every per-item problem found while
// validating an order request. Validation never stops at the first
// failure, so the caller gets complete feedback in one round trip.
type OrderValidationError struct {
	Details []string
}

func (e *OrderValidationError) Error() string {
	return "Order validation failed"
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	activity    *activitylog.Logger
	events      EventPublisher
}

// NewOrderService creates a new OrderService. activity and events may be
// nil; both are best-effort side channels and never fail an order.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	activity *activitylog.Logger,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		activity:    activity,
		events:      events,
	}
}

// PlaceOrder validates every requested item against the catalog, then
// atomically creates the order with price snapshots and deducts stock.
// On any validation failure it returns an *OrderValidationError listing
// every problem and writes nothing.
func (s *OrderService) PlaceOrder(userID uint, items []OrderItemInput) (*models.Order, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user %d: %w", userID, err)
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	// One batch lookup instead of a query per item.
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productMap := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	// Stock is checked against the summed quantity per product, so
	// duplicate lines for the same product cannot slip past per-item
	// validation and trip the commit-time guard.
	requested := make(map[uint]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
	}

	var details []string
	var totalPrice float64
	flagged := make(map[uint]bool)
	for _, item := range items {
		product, ok := productMap[item.ProductID]
		if !ok {
			details = append(details, fmt.Sprintf("Product with ID %d not found", item.ProductID))
			continue
		}
		if product.Stock < requested[item.ProductID] {
			if !flagged[item.ProductID] {
				flagged[item.ProductID] = true
				details = append(details, fmt.Sprintf(
					"Insufficient stock for %q. Available: %d, Requested: %d",
					product.Name, product.Stock, requested[item.ProductID]))
			}
			continue
		}
		totalPrice += product.Price * float64(item.Quantity)
	}
	if len(details) > 0 {
		return nil, &OrderValidationError{Details: details}
	}

	order := &models.Order{
		UserID:     userID,
		TotalPrice: totalPrice,
	}
	for _, item := range items {
		product := productMap[item.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price, // snapshot of the unit price at order time
		})
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.activity.Logf("Order created (id=%d, userId=%d, totalPrice=%.2f)", order.ID, userID, totalPrice)
	s.publishOrderCreated(order)

	// Reload with item, product, and user expansion for the response.
	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created order %d: %w", order.ID, err)
	}
	return created, nil
}

// publishOrderCreated emits an order.created event. Failures are logged
// and swallowed; the order has already committed.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"orderId":    order.ID,
		"userId":     order.UserID,
		"totalPrice": order.TotalPrice,
	})
	if err != nil {
		log.Printf("Failed to marshal order event for order %d: %v", order.ID, err)
		return
	}
	if err := s.events.Publish("order", "order.created", body); err != nil {
		log.Printf("Warning: failed to publish order.created event for order %d: %v", order.ID, err)
	}
}

// GetOrder retrieves an order with full item detail, enforcing that only
// the owner or an admin may view it.
func (s *OrderService) GetOrder(orderID, requesterID uint, requesterRole models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != requesterID && requesterRole != models.RoleAdmin {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}
