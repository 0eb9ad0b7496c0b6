package repositories

import (
	"errors"

	"inventorylite/internal/models"
)

// ErrProductNotFound signals that no product matches the given ID. It is a
// normal outcome, not an infrastructure failure; callers check it with
// errors.Is.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id int) error
}
