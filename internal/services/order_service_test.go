package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shop/internal/models"
	"shop/internal/repositories"
	"shop/internal/services"
)

func newOrderService(orderRepo *MockOrderRepository, productRepo *MockProductRepository, userRepo *MockUserRepository) *services.OrderService {
	return services.NewOrderService(orderRepo, productRepo, userRepo, nil, nil)
}

func TestOrderService_PlaceOrderComputesTotalAndSnapshots(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{10, 20}).Return([]models.Product{
		{ID: 10, Name: "Laptop", Price: 25.00, Stock: 100},
		{ID: 20, Name: "Mouse", Price: 10.00, Stock: 5},
	}, nil).Once()

	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		order := args.Get(0).(*models.Order)
		assert.Equal(t, uint(1), order.UserID)
		assert.Equal(t, 70.00, order.TotalPrice) // 2*25 + 2*10
		assert.Len(t, order.Items, 2)
		assert.Equal(t, 25.00, order.Items[0].Price)
		assert.Equal(t, 10.00, order.Items[1].Price)
		order.ID = 42
	}).Return(nil).Once()

	reloaded := &models.Order{ID: 42, UserID: 1, TotalPrice: 70.00}
	orderRepo.On("GetByID", uint(42)).Return(reloaded, nil).Once()

	order, err := service.PlaceOrder(1, []services.OrderItemInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 20, Quantity: 2},
	})

	assert.NoError(t, err)
	assert.Equal(t, reloaded, order)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestOrderService_PlaceOrderUnknownUser(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(99)).Return(nil, repositories.ErrNotFound).Once()

	order, err := service.PlaceOrder(99, []services.OrderItemInput{{ProductID: 1, Quantity: 1}})

	assert.Nil(t, order)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	productRepo.AssertNotCalled(t, "GetByIDs", mock.Anything)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_PlaceOrderInsufficientStock(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{10}).Return([]models.Product{
		{ID: 10, Name: "Laptop", Price: 25.00, Stock: 100},
	}, nil).Once()

	order, err := service.PlaceOrder(1, []services.OrderItemInput{{ProductID: 10, Quantity: 1000}})

	assert.Nil(t, order)
	var verr *services.OrderValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{`Insufficient stock for "Laptop". Available: 100, Requested: 1000`}, verr.Details)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_PlaceOrderSumsDuplicateLines(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{10, 10}).Return([]models.Product{
		{ID: 10, Name: "Laptop", Price: 25.00, Stock: 100},
	}, nil).Once()

	// Each line fits on its own but together they exceed the stock:
	// validation must reject up front with a single aggregated message,
	// not let the write path discover the shortfall.
	order, err := service.PlaceOrder(1, []services.OrderItemInput{
		{ProductID: 10, Quantity: 60},
		{ProductID: 10, Quantity: 60},
	})

	assert.Nil(t, order)
	var verr *services.OrderValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{`Insufficient stock for "Laptop". Available: 100, Requested: 120`}, verr.Details)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_PlaceOrderKeepsDuplicateLinesThatFit(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{10, 10}).Return([]models.Product{
		{ID: 10, Name: "Laptop", Price: 25.00, Stock: 100},
	}, nil).Once()

	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		order := args.Get(0).(*models.Order)
		assert.Equal(t, 125.00, order.TotalPrice) // (2+3)*25
		assert.Len(t, order.Items, 2)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, 3, order.Items[1].Quantity)
		order.ID = 43
	}).Return(nil).Once()

	reloaded := &models.Order{ID: 43, UserID: 1, TotalPrice: 125.00}
	orderRepo.On("GetByID", uint(43)).Return(reloaded, nil).Once()

	order, err := service.PlaceOrder(1, []services.OrderItemInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 10, Quantity: 3},
	})

	assert.NoError(t, err)
	assert.Equal(t, reloaded, order)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_PlaceOrderUnknownProduct(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{424242}).Return([]models.Product{}, nil).Once()

	order, err := service.PlaceOrder(1, []services.OrderItemInput{{ProductID: 424242, Quantity: 1}})

	assert.Nil(t, order)
	var verr *services.OrderValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Product with ID 424242 not found"}, verr.Details)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_PlaceOrderCollectsEveryError(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	userRepo.On("GetByID", uint(1)).Return(&models.User{ID: 1}, nil).Once()
	productRepo.On("GetByIDs", []uint{10, 424242}).Return([]models.Product{
		{ID: 10, Name: "Laptop", Price: 25.00, Stock: 1},
	}, nil).Once()

	order, err := service.PlaceOrder(1, []services.OrderItemInput{
		{ProductID: 10, Quantity: 5},
		{ProductID: 424242, Quantity: 1},
	})

	assert.Nil(t, order)
	var verr *services.OrderValidationError
	assert.ErrorAs(t, err, &verr)
	// Validation never stops at the first problem; messages keep input order.
	assert.Equal(t, []string{
		`Insufficient stock for "Laptop". Available: 1, Requested: 5`,
		"Product with ID 424242 not found",
	}, verr.Details)
	orderRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	stored := &models.Order{ID: 5, UserID: 7, TotalPrice: 50}
	orderRepo.On("GetByID", uint(5)).Return(stored, nil)

	// Owner can view.
	order, err := service.GetOrder(5, 7, models.RoleCustomer)
	assert.NoError(t, err)
	assert.Equal(t, stored, order)

	// Admin can view someone else's order.
	order, err = service.GetOrder(5, 8, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, stored, order)

	// Any other customer is rejected.
	order, err = service.GetOrder(5, 8, models.RoleCustomer)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, services.ErrOrderAccessDenied)
}

func TestOrderService_GetOrderNotFound(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	userRepo := new(MockUserRepository)
	service := newOrderService(orderRepo, productRepo, userRepo)

	orderRepo.On("GetByID", uint(404)).Return(nil, repositories.ErrNotFound).Once()

	order, err := service.GetOrder(404, 1, models.RoleAdmin)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
