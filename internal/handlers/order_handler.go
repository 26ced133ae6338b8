package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shop/internal/middleware"
	"shop/internal/models"
	"shop/internal/repositories"
	"shop/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.RequireRoles(models.RoleCustomer, models.RoleAdmin))
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrder)
}

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	ProductID int `json:"productId" validate:"required,min=1"`
	Quantity  int `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the request body for order placement.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"min=1,dive"`
}

// userSummary is the slimmed owner embedded in order responses.
type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// productSummary is the slimmed product embedded in order item responses.
type productSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Product   *productSummary `json:"product,omitempty"`
}

type orderResponse struct {
	ID         uint                `json:"id"`
	UserID     uint                `json:"userId"`
	TotalPrice float64             `json:"totalPrice"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	User       *userSummary        `json:"user,omitempty"`
	OrderItems []orderItemResponse `json:"orderItems"`
}

func shapeOrder(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
		OrderItems: make([]orderItemResponse, 0, len(order.Items)),
	}
	if order.User != nil {
		resp.User = &userSummary{
			ID:       order.User.ID,
			Username: order.User.Username,
			Email:    order.User.Email,
		}
	}
	for _, item := range order.Items {
		ir := orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.Product != nil {
			ir.Product = &productSummary{
				ID:    item.Product.ID,
				Name:  item.Product.Name,
				Price: item.Product.Price,
			}
		}
		resp.OrderItems = append(resp.OrderItems, ir)
	}
	return resp
}

// HandleCreateOrder places a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, _, ok := currentIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": validationDetails(err),
		})
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItemInput{
			ProductID: uint(item.ProductID),
			Quantity:  item.Quantity,
		})
	}

	order, err := h.service.PlaceOrder(userID, items)
	if err != nil {
		var verr *services.OrderValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Order validation failed",
				"details": verr.Details,
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		case errors.Is(err, repositories.ErrInsufficientStock):
			// A concurrent order won the stock between validation and
			// commit; nothing was written.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Stock changed while placing the order, please retry",
			})
		}
		log.Printf("Error creating order for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create order",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(shapeOrder(order))
}

// HandleGetOrder retrieves an order with full item detail. Only the owner
// or an admin may view it.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	userID, role, ok := currentIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Order id must be a number",
		})
	}

	order, err := h.service.GetOrder(uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		case errors.Is(err, services.ErrOrderAccessDenied):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You can only view your own orders",
			})
		}
		log.Printf("Error getting order %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not retrieve order",
		})
	}

	return c.JSON(shapeOrder(order))
}
