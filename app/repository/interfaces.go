package repository

import (
	"github.com/vivaarte/vivaarte/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ProductRepository defines the interface for catalog database operations.
// DecrementStock is the only way stock leaves the shelf: it is a single
// conditional UPDATE that fails instead of overselling.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Product, error)
	ListActive(offset, limit int) ([]models.Product, error)
	Count() (int64, error)
	Search(query string) ([]models.Product, error)
	DecrementStock(id uint, quantity int) error
	IncrementStock(id uint, quantity int) error
}

// OrderRepository defines the interface for order database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNumber(number string) (*models.Order, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Order, error)
	Save(order *models.Order) error
	List(offset, limit int) ([]models.Order, error)
	ListByStatus(status string, offset, limit int) ([]models.Order, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Product ProductRepository
	Order   OrderRepository
}
