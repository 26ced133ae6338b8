package services

import (
	"errors"

	"shop/internal/models"
	"shop/internal/repositories"
	"shop/pkg/activitylog"
)

// ErrProductNotFound maps to a 404 response.
var ErrProductNotFound = errors.New("product not found")

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	activity *activitylog.Logger
}

// NewProductService creates a new ProductService. activity may be nil, in
// which case mutations are not audit-logged.
func NewProductService(repo repositories.ProductRepository, activity *activitylog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		activity: activity,
	}
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a new product and records the mutation in the
// activity log.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.activity.Logf("Product created (id=%d, name=%s)", product.ID, product.Name)
	return nil
}

// UpdateProduct applies a partial update. fields holds column names mapped
// to their new values and must contain at least one entry.
func (s *ProductService) UpdateProduct(id uint, fields map[string]interface{}) (*models.Product, error) {
	product, err := s.repo.Update(id, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID and records the mutation in
// the activity log.
func (s *ProductService) DeleteProduct(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.activity.Logf("Product deleted (id=%d, name=%s)", product.ID, product.Name)
	return nil
}
