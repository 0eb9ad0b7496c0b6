package services

import (
	"log"
	"time"

	"inventorylite/internal/models"
	"inventorylite/internal/repositories"
)

// EventPublisher publishes product lifecycle events to a message broker.
// pkg/rabbitmq's Client satisfies it.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products: timestamp
// stamping, existence checks and event publication. Field validation is a
// boundary concern and lives in the handler.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewProductService creates a new ProductService. events may be nil, in
// which case no events are published.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// ListProducts retrieves all products ordered by name.
func (s *ProductService) ListProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(id int) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct persists a new product. The store assigns the ID and the
// service stamps UpdatedAt; the full stored record is returned.
func (s *ProductService) CreateProduct(input models.ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:      input.Name,
		Category:  input.Category,
		Price:     input.Price,
		Quantity:  input.Quantity,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publish("product.created", product)
	return product, nil
}

// UpdateProduct overwrites all mutable fields of an existing product and
// refreshes UpdatedAt. If no product exists for id, it performs no write and
// returns repositories.ErrProductNotFound.
func (s *ProductService) UpdateProduct(id int, input models.ProductInput) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	existing.Name = input.Name
	existing.Category = input.Category
	existing.Price = input.Price
	existing.Quantity = input.Quantity
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(existing); err != nil {
		return err
	}

	s.publish("product.updated", existing)
	return nil
}

// DeleteProduct removes a product by its ID. Deleting a missing product
// returns repositories.ErrProductNotFound.
func (s *ProductService) DeleteProduct(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.publish("product.deleted", &models.Product{ID: id})
	return nil
}

// publish sends a product event if a publisher is configured. Publishing is
// best-effort: failures are logged and never surfaced to the caller.
func (s *ProductService) publish(event string, product *models.Product) {
	if s.events == nil {
		return
	}

	payload := map[string]interface{}{
		"productID": product.ID,
	}
	if event != "product.deleted" {
		payload["name"] = product.Name
		payload["category"] = product.Category
		payload["price"] = product.Price
		payload["quantity"] = product.Quantity
	}

	if err := s.events.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}
